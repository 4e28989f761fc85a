package identity

import (
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/anon-identity/go-identity-pcd/cache"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/constants"
	"github.com/anon-identity/go-identity-pcd/types"
)

type config struct {
	baseMessage *big.Int
	circuitID   circuits.CircuitID
	layout      circuits.Layout
	protocol    types.ProofProtocol
	curve       types.Curve
	timeout     time.Duration
	logger      *zap.Logger
	verified    cache.Cache[bool]
	newID       func() string
}

func newConfig(baseMessage *big.Int, timeout time.Duration, opts []Option) config {
	cfg := config{
		baseMessage: copyInt(baseMessage),
		circuitID:   circuits.IdentityCircuitID,
		layout:      circuits.DefaultLayout,
		protocol:    types.Groth16,
		curve:       types.BN128,
		timeout:     timeout,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Option configures a Prover or Verifier.
type Option func(c *config)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCircuitID overrides the circuit proofs are produced and checked with.
func WithCircuitID(id circuits.CircuitID) Option {
	return func(c *config) {
		c.circuitID = id
	}
}

// WithLayout overrides how integers are split into circuit limbs.
func WithLayout(l circuits.Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

// WithProofSystem sets the protocol and curve the Verifier accepts.
func WithProofSystem(protocol types.ProofProtocol, curve types.Curve) Option {
	return func(c *config) {
		c.protocol = protocol
		c.curve = curve
	}
}

// WithTimeout bounds a single call to the circuit executor. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithVerificationCache sets the cache of positive verification results.
// Pass cache.Disabled[bool]() to turn memoization off.
func WithVerificationCache(vc cache.Cache[bool]) Option {
	return func(c *config) {
		c.verified = vc
	}
}

// WithIDGenerator replaces uuid generation of PCD ids. Generated ids must be
// valid UUIDs or the PCD will not deserialize.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		c.newID = fn
	}
}

func defaultVerificationCache() cache.Cache[bool] {
	return cache.NewInMemoryCache[bool](constants.VerificationCacheOptions.MaxSize, constants.VerificationCacheOptions.TTL)
}
