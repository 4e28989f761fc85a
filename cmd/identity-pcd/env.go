package main

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	identity "github.com/anon-identity/go-identity-pcd"
	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/loaders"
	"github.com/anon-identity/go-identity-pcd/pcd"
	"github.com/anon-identity/go-identity-pcd/proofs"
	"github.com/anon-identity/go-identity-pcd/session"
	"github.com/anon-identity/go-identity-pcd/storage"
	"github.com/anon-identity/go-identity-pcd/transport"
)

// Globals are the flags shared by every command.
type Globals struct {
	Executor     *url.URL      `default:"http://127.0.0.1:8090" env:"IDENTITY_PCD_EXECUTOR" help:"Circuit executor endpoint."`
	BaseMessage  string        `required:"" env:"IDENTITY_PCD_BASE_MESSAGE" help:"Message the identity signature is over (decimal or 0x hex)."`
	KeyDir       string        `env:"IDENTITY_PCD_KEY_DIR" placeholder:"DIR" help:"Directory of <circuit>.json verification keys. Verify locally instead of through the executor."`
	Engine       proofs.Engine `default:"native" enum:"native,rapidsnark" help:"Local groth16 verifier (${enum})."`
	Store        string        `default:"file:.identity-pcd" env:"IDENTITY_PCD_STORE" help:"Session store: memory, file:<dir> or sqlite:<path>."`
	ProveTimeout time.Duration `default:"5m" help:"Proof generation timeout."`
	LogLevel     zapcore.Level `default:"info" env:"LOG_LEVEL" help:"Log level."`
	LogJSON      bool          `env:"LOG_JSON" help:"Log as JSON."`
}

// environment is what commands run against.
type environment struct {
	log      *zap.Logger
	prover   *identity.Prover
	verifier *identity.Verifier
	registry *pcd.Registry
	store    storage.Storage
	machine  *session.Machine
}

func newLogger(g Globals) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if g.LogJSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(g.LogLevel)
	return cfg.Build()
}

func newEnvironment(ctx context.Context, g Globals) (*environment, error) {
	log, err := newLogger(g)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	baseMessage, err := bigint.Normalize(g.BaseMessage)
	if err != nil {
		return nil, errors.Wrap(err, "--base-message")
	}
	if g.Executor == nil {
		return nil, errors.New("--executor is required")
	}

	client := transport.NewClient(g.Executor.String(), transport.WithLogger(log.Named("executor")))

	var raw circuits.RawVerifier = client
	if g.KeyDir != "" {
		keys := loaders.NewChainKeyLoader(loaders.FSKeyLoader{Dir: g.KeyDir})
		raw = proofs.NewVerifier(keys, g.Engine)
	}

	store, err := storage.Open(ctx, g.Store)
	if err != nil {
		return nil, err
	}

	opts := []identity.Option{identity.WithLogger(log.Named("identity"))}
	prover := identity.NewProver(client, baseMessage, append(opts, identity.WithTimeout(g.ProveTimeout))...)
	verifier := identity.NewVerifier(raw, baseMessage, opts...)

	registry := pcd.NewRegistry()
	if err = identity.Register(registry, verifier); err != nil {
		return nil, err
	}

	return &environment{
		log:      log,
		prover:   prover,
		verifier: verifier,
		registry: registry,
		store:    store,
		machine:  session.New(prover, verifier, store, session.WithLogger(log.Named("session"))),
	}, nil
}

// Close releases the store and flushes the logger.
func (e *environment) Close() {
	if c, ok := e.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			e.log.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}
