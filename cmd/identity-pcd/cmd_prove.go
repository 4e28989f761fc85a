package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	identity "github.com/anon-identity/go-identity-pcd"
)

// Credentials are the proving inputs of prove and login.
type Credentials struct {
	Signature string `required:"" env:"IDENTITY_PCD_SIGNATURE" help:"RSA signature over the base message."`
	Modulus   string `required:"" help:"RSA public modulus."`
}

func (c Credentials) args(baseMessage string) identity.ProveArgs {
	return identity.ProveArgs{BaseMessage: baseMessage, Signature: c.Signature, Modulus: c.Modulus}
}

type proveCmd struct {
	Credentials `embed:""`
	Output      string `short:"o" placeholder:"FILE" help:"Write the PCD to FILE instead of stdout."`
}

func (c *proveCmd) Run(ctx context.Context, g *Globals, env *environment) error {
	p, err := env.prover.Prove(ctx, c.args(g.BaseMessage))
	if err != nil {
		return err
	}
	data, err := identity.Serialize(p)
	if err != nil {
		return err
	}
	if c.Output == "" {
		_, err = fmt.Fprintf(os.Stdout, "%s\n", data)
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(c.Output, data, 0o600))
}

type verifyCmd struct {
	File string `arg:"" default:"-" help:"Serialized PCD, - for stdin."`
}

func (c *verifyCmd) Run(ctx context.Context, env *environment) error {
	var (
		data []byte
		err  error
	)
	if c.File == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	ok, err := env.registry.Verify(ctx, data)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("proof does not verify")
	}
	fmt.Println("valid")
	return nil
}
