package loaders

import (
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/cache"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/constants"
)

// ChainKeyLoader tries its loaders in order and caches what it finds.
// A loader failing with anything other than ErrKeyNotFound stops the chain.
type ChainKeyLoader struct {
	loaders []VerificationKeyLoader
	cache   cache.Cache[[]byte]
}

// Option defines functional option for configuring ChainKeyLoader
type Option func(*ChainKeyLoader)

// WithKeyLoader appends a loader to the chain
func WithKeyLoader(loader VerificationKeyLoader) Option {
	return func(c *ChainKeyLoader) {
		c.loaders = append(c.loaders, loader)
	}
}

// WithCache replaces the default key cache
func WithCache(kc cache.Cache[[]byte]) Option {
	return func(c *ChainKeyLoader) {
		c.cache = kc
	}
}

// WithoutCache disables caching of loaded keys
func WithoutCache() Option {
	return WithCache(cache.Disabled[[]byte]())
}

// NewChainKeyLoader creates a loader over primary followed by the loaders
// given as options. Caching is enabled by default.
//
// Example:
//
//	loader := NewChainKeyLoader(FSKeyLoader{Dir: "/etc/identity/keys"},
//		WithKeyLoader(StaticKeyLoader{circuits.IdentityCircuitID: vk}))
func NewChainKeyLoader(primary VerificationKeyLoader, opts ...Option) *ChainKeyLoader {
	c := &ChainKeyLoader{
		cache: cache.NewInMemoryCache[[]byte](
			constants.KeyCacheOptions.MaxSize, constants.KeyCacheOptions.TTL),
	}
	if primary != nil {
		c.loaders = append(c.loaders, primary)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached key or the first key found along the chain.
func (c *ChainKeyLoader) Load(id circuits.CircuitID) ([]byte, error) {
	return c.cache.Fetch(string(id), func() ([]byte, error) {
		for _, l := range c.loaders {
			key, err := l.Load(id)
			if err == nil {
				return key, nil
			}
			if !errors.Is(err, ErrKeyNotFound) {
				return nil, errors.Wrapf(err, "failed to load key for circuit %s", id)
			}
		}
		return nil, errors.Wrapf(ErrKeyNotFound, "circuit %s", id)
	})
}
