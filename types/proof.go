package types

import (
	rstypes "github.com/iden3/go-rapidsnark/types"
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/bigint"
)

// ProofProtocol names the proving system that produced a proof.
type ProofProtocol string

func (p ProofProtocol) String() string {
	return string(p)
}

// Curve names the elliptic curve a proof lives on.
type Curve string

func (c Curve) String() string {
	return string(c)
}

const (
	// Groth16 is the groth16 proving system as emitted by snarkjs and rapidsnark
	Groth16 ProofProtocol = "groth16"
	// BN128 is the snarkjs name of the alt_bn128 (bn254) curve
	BN128 Curve = "bn128"
)

// SnarkProof is a raw proof as emitted by snarkjs: three group elements in
// projective coordinates plus the protocol and curve that produced them.
type SnarkProof struct {
	A        []string      `json:"pi_a"`
	B        [][]string    `json:"pi_b"`
	C        []string      `json:"pi_c"`
	Protocol ProofProtocol `json:"protocol"`
	Curve    Curve         `json:"curve"`
}

// Normalize returns a copy of p with every coordinate rewritten as a canonical
// decimal string.
func (p SnarkProof) Normalize() (SnarkProof, error) {
	var (
		out = SnarkProof{Protocol: p.Protocol, Curve: p.Curve}
		err error
	)
	if out.A, err = normalizeAll(p.A); err != nil {
		return SnarkProof{}, errors.Wrap(err, "pi_a")
	}
	out.B = make([][]string, len(p.B))
	for i := range p.B {
		if out.B[i], err = normalizeAll(p.B[i]); err != nil {
			return SnarkProof{}, errors.Wrapf(err, "pi_b[%d]", i)
		}
	}
	if out.C, err = normalizeAll(p.C); err != nil {
		return SnarkProof{}, errors.Wrap(err, "pi_c")
	}
	return out, nil
}

// Equal reports whether both proofs carry the same protocol, curve and points.
// Coordinates are compared as integers.
func (p SnarkProof) Equal(o SnarkProof) bool {
	if p.Protocol != o.Protocol || p.Curve != o.Curve {
		return false
	}
	if !equalAll(p.A, o.A) || !equalAll(p.C, o.C) || len(p.B) != len(o.B) {
		return false
	}
	for i := range p.B {
		if !equalAll(p.B[i], o.B[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of p.
func (p SnarkProof) Clone() SnarkProof {
	out := SnarkProof{
		A:        append([]string(nil), p.A...),
		C:        append([]string(nil), p.C...),
		Protocol: p.Protocol,
		Curve:    p.Curve,
	}
	if p.B != nil {
		out.B = make([][]string, len(p.B))
		for i := range p.B {
			out.B[i] = append([]string(nil), p.B[i]...)
		}
	}
	return out
}

// ZKProof converts p into the rapidsnark proof envelope together with the
// public signals it is checked against.
func (p SnarkProof) ZKProof(pubSignals []string) rstypes.ZKProof {
	c := p.Clone()
	return rstypes.ZKProof{
		Proof: &rstypes.ProofData{
			A:        c.A,
			B:        c.B,
			C:        c.C,
			Protocol: c.Protocol.String(),
		},
		PubSignals: append([]string(nil), pubSignals...),
	}
}

func normalizeAll(in []string) ([]string, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		n, err := bigint.Normalize(s)
		if err != nil {
			return nil, err
		}
		out[i] = bigint.String(n)
	}
	return out, nil
}

func equalAll(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bigint.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
