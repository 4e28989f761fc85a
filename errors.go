package identity

import (
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/circuits"
)

var (
	// ErrMalformedNumber is returned for numeric input that does not denote an
	// integer, before any cryptographic work is done.
	ErrMalformedNumber = bigint.ErrMalformedNumber
	// ErrMalformedPCD is returned by Deserialize for structurally invalid data.
	ErrMalformedPCD = errors.New("malformed identity pcd")
	// ErrCircuitUnavailable is an infrastructural proving failure. Retryable.
	ErrCircuitUnavailable = circuits.ErrCircuitUnavailable
	// ErrProofGeneration means the credential is invalid: the signature does
	// not verify under the modulus. Not retryable with the same input.
	ErrProofGeneration = circuits.ErrProofGeneration
)
