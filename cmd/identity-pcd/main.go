package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
)

type CLI struct {
	Globals

	Prove  proveCmd  `cmd:"" help:"Generate an identity proof and print it."`
	Verify verifyCmd `cmd:"" help:"Verify a serialized PCD."`
	Login  loginCmd  `cmd:"" help:"Log in with an identity proof."`
	Logout logoutCmd `cmd:"" help:"Log out and clear the stored session."`
	Status statusCmd `cmd:"" help:"Show the session state."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("identity-pcd"),
		kong.Description("Prove and verify identity proof-carrying data."),
		kong.Configuration(kongtoml.Loader, ".identity-pcd.toml", "~/.identity-pcd.toml"),
		kong.ShortUsageOnError(),
		kong.HelpOptions{Compact: true, WrapUpperBound: 80},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(ctx, cli.Globals)
	kctx.FatalIfErrorf(err)

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.Globals, env)
	err = kctx.Run()
	env.Close()
	if err != nil {
		kctx.Errorf("%v", err)
		os.Exit(1)
	}
}
