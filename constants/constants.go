package constants

import "time"

const (
	DefaultCacheMaxSize int64 = 10_000
	VerifiedProofTTL          = time.Hour        // 1 hour
	VerificationKeyTTL        = time.Hour * 24   // 24 hours
	DefaultProveTimeout       = 5 * time.Minute  // 5 minutes
	DefaultVerifyTimeout      = 30 * time.Second // 30 seconds

	// SessionStorageKey is the single storage slot holding the current session.
	SessionStorageKey = "country-identity/pcd"
)

var (
	VerificationCacheOptions = CacheTTLOptions{
		TTL:     VerifiedProofTTL,
		MaxSize: DefaultCacheMaxSize,
	}

	KeyCacheOptions = CacheTTLOptions{
		TTL:     VerificationKeyTTL,
		MaxSize: 64,
	}
)

// CacheTTLOptions defines the TTL options for cache entries.
type CacheTTLOptions struct {
	TTL     time.Duration
	MaxSize int64
}
