// Package circuittest provides an in-memory stand-in for the identity circuit.
// It really checks the RSA signature, but its "proofs" are digests of the
// public signals and prove nothing.
package circuittest

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/types"
)

var e = big.NewInt(65537)

// Key is a textbook RSA key pair (p = 61, q = 53). 65537 and 17 agree modulo
// phi(N), so D inverts the circuit's fixed exponent.
var Key = struct {
	N *big.Int
	D *big.Int
}{
	N: big.NewInt(3233),
	D: big.NewInt(2753),
}

// Sign returns m^D mod N.
func Sign(m *big.Int) *big.Int {
	return new(big.Int).Exp(m, Key.D, Key.N)
}

// Circuit implements circuits.Executor and circuits.RawVerifier.
type Circuit struct {
	Layout circuits.Layout

	mu          sync.Mutex
	calls       int
	gate        chan struct{}
	started     chan struct{}
	unavailable bool
}

// New returns a circuit using layout.
func New(layout circuits.Layout) *Circuit {
	return &Circuit{Layout: layout}
}

// Hold makes subsequent Execute calls block until Release. The returned
// channel receives one value per call that reached the gate.
func (c *Circuit) Hold() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
	c.started = make(chan struct{}, 16)
	return c.started
}

// Release unblocks held Execute calls.
func (c *Circuit) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != nil {
		close(c.gate)
		c.gate = nil
	}
}

// SetUnavailable makes Execute fail with circuits.ErrCircuitUnavailable.
func (c *Circuit) SetUnavailable(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = v
}

// Calls returns the number of Execute calls so far.
func (c *Circuit) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Execute checks signature^65537 = base_message (mod modulus).
func (c *Circuit) Execute(ctx context.Context, _ circuits.CircuitID, public circuits.PublicInputs, witness circuits.Witness) (*types.SnarkProof, error) {
	c.mu.Lock()
	c.calls++
	gate, started, unavailable := c.gate, c.started, c.unavailable
	c.mu.Unlock()

	if gate != nil {
		started <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errors.Wrap(circuits.ErrCircuitUnavailable, ctx.Err().Error())
		}
	}
	if unavailable {
		return nil, errors.Wrap(circuits.ErrCircuitUnavailable, "executor is down")
	}

	m := new(big.Int).Mod(public.BaseMessage, public.Modulus)
	if new(big.Int).Exp(witness.Signature, e, public.Modulus).Cmp(m) != 0 {
		return nil, errors.Wrap(circuits.ErrProofGeneration, "signature does not verify")
	}
	signals, err := c.Layout.PublicSignals(public.Modulus, public.BaseMessage)
	if err != nil {
		return nil, errors.Wrap(circuits.ErrProofGeneration, err.Error())
	}
	return Proof(signals), nil
}

// VerifyRaw accepts exactly the proofs Execute produces for signals.
func (c *Circuit) VerifyRaw(_ context.Context, _ circuits.CircuitID, proof types.SnarkProof, signals []string) (bool, error) {
	if len(proof.A) == 0 {
		return false, nil
	}
	return proof.A[0] == digest(signals), nil
}

// Proof returns the fake proof for signals.
func Proof(signals []string) *types.SnarkProof {
	return &types.SnarkProof{
		A:        []string{digest(signals), "1", "1"},
		B:        [][]string{{"1", "0"}, {"1", "0"}, {"1", "0"}},
		C:        []string{"1", "2", "1"},
		Protocol: types.Groth16,
		Curve:    types.BN128,
	}
}

func digest(signals []string) string {
	sum := blake3.Sum256([]byte(strings.Join(signals, ",")))
	return new(big.Int).SetBytes(sum[:16]).String()
}
