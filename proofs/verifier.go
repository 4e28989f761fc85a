package proofs

import (
	"context"

	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/loaders"
	"github.com/anon-identity/go-identity-pcd/types"
)

// Verifier is an in-process circuits.RawVerifier. Keys come from the loader.
type Verifier struct {
	loader loaders.VerificationKeyLoader
	engine Engine
}

// NewVerifier creates a verifier reading keys from loader.
func NewVerifier(loader loaders.VerificationKeyLoader, engine Engine) *Verifier {
	return &Verifier{loader: loader, engine: engine}
}

// VerifyRaw returns false for proofs that do not verify and an error only
// when the proof could not be checked at all.
func (v *Verifier) VerifyRaw(ctx context.Context, id circuits.CircuitID, proof types.SnarkProof, pubSignals []string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key, err := v.loader.Load(id)
	if err != nil {
		return false, err
	}
	err = VerifyProof(v.engine, proof, pubSignals, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInvalidProof):
		return false, nil
	default:
		return false, err
	}
}
