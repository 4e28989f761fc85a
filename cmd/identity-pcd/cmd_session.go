package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/session"
)

type loginCmd struct {
	Credentials `embed:""`
}

func (c *loginCmd) Run(ctx context.Context, g *Globals, env *environment) error {
	env.machine.Rehydrate(ctx)
	if err := env.machine.Dispatch(ctx, session.LoginRequest{Args: c.args(g.BaseMessage)}); err != nil {
		return err
	}
	return printStatus(env.machine.State())
}

type logoutCmd struct{}

func (c *logoutCmd) Run(ctx context.Context, env *environment) error {
	env.machine.Rehydrate(ctx)
	if err := env.machine.Dispatch(ctx, session.LogoutRequest{}); err != nil {
		return err
	}
	return printStatus(env.machine.State())
}

type statusCmd struct{}

func (c *statusCmd) Run(ctx context.Context, env *environment) error {
	return printStatus(env.machine.Rehydrate(ctx))
}

type statusOutput struct {
	Status  session.Status `json:"status"`
	ID      string         `json:"id,omitempty"`
	Modulus string         `json:"modulus,omitempty"`
}

func printStatus(s session.State) error {
	out := statusOutput{Status: s.Status()}
	if in, ok := s.(session.LoggedIn); ok {
		out.ID = in.PCD.ID
		out.Modulus = in.PCD.Claim.Modulus.String()
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Println(string(b))
	return nil
}
