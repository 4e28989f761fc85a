// Package circuits describes the identity circuit as seen from outside: how
// claims map to circuit inputs and public signals, and the contract of the
// external executor that proves and verifies it.
package circuits

import (
	"context"

	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/types"
)

// CircuitID is the identifier of a circuit known to the executor.
type CircuitID string

// IdentityCircuitID checks an RSA (e = 65537) signature over a base message.
const IdentityCircuitID CircuitID = "rsaVerify65537"

var (
	// ErrProofGeneration means the witness does not satisfy the circuit, i.e.
	// the signature does not verify under the modulus for the message.
	ErrProofGeneration = errors.New("proof generation failed: constraints not satisfied")
	// ErrCircuitUnavailable means the executor could not be reached or did not
	// answer in time. Callers may retry.
	ErrCircuitUnavailable = errors.New("circuit executor unavailable")
)

// Executor runs the circuit and returns a raw proof. Implementations must wrap
// ErrProofGeneration when the witness is rejected and ErrCircuitUnavailable on
// infrastructural failures.
//
//go:generate mockgen -destination=mock/ExecutorMock.go . Executor
type Executor interface {
	Execute(ctx context.Context, id CircuitID, public PublicInputs, witness Witness) (*types.SnarkProof, error)
}

// RawVerifier checks a raw proof against public signals. A false result with
// a nil error means the proof is invalid; an error means it could not be checked.
//
//go:generate mockgen -destination=mock/RawVerifierMock.go . RawVerifier
type RawVerifier interface {
	VerifyRaw(ctx context.Context, id CircuitID, proof types.SnarkProof, pubSignals []string) (bool, error)
}
