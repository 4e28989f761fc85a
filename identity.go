// Package identity implements the identity proof-carrying data package: a
// zero-knowledge proof that the holder knows a valid RSA signature over a
// pinned message under a public modulus, without revealing the signature.
package identity

import (
	"math/big"

	"github.com/anon-identity/go-identity-pcd/types"
)

// PCDType is the discriminator identity PCDs are registered under.
const PCDType = "identity-pcd"

// IdentityClaim is the public statement: a valid signature exists under Modulus.
type IdentityClaim struct {
	Modulus *big.Int
}

// IdentityProof carries the raw proof together with the modulus it was
// produced for, so it can be checked without external lookups.
type IdentityProof struct {
	Modulus *big.Int
	Proof   types.SnarkProof
}

// IdentityPCD pairs a claim with its proof. ID is unique per proof instance.
type IdentityPCD struct {
	ID    string
	Type  string
	Claim IdentityClaim
	Proof IdentityProof
}

// ProveArgs is the witness input of proof generation. Each field accepts any
// representation understood by bigint.Normalize. Signature is secret.
type ProveArgs struct {
	BaseMessage interface{} `json:"base_message"`
	Signature   interface{} `json:"signature"`
	Modulus     interface{} `json:"modulus"`
}

// NewIdentityPCD builds a PCD of type PCDType.
func NewIdentityPCD(id string, claim IdentityClaim, proof IdentityProof) *IdentityPCD {
	return &IdentityPCD{
		ID:    id,
		Type:  PCDType,
		Claim: claim,
		Proof: proof,
	}
}

// Equal compares two PCDs structurally; integers are compared by value.
func (p *IdentityPCD) Equal(o *IdentityPCD) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.ID == o.ID &&
		p.Type == o.Type &&
		equalInt(p.Claim.Modulus, o.Claim.Modulus) &&
		equalInt(p.Proof.Modulus, o.Proof.Modulus) &&
		p.Proof.Proof.Equal(o.Proof.Proof)
}

// Clone returns a deep copy of p.
func (p *IdentityPCD) Clone() *IdentityPCD {
	if p == nil {
		return nil
	}
	return &IdentityPCD{
		ID:    p.ID,
		Type:  p.Type,
		Claim: IdentityClaim{Modulus: copyInt(p.Claim.Modulus)},
		Proof: IdentityProof{
			Modulus: copyInt(p.Proof.Modulus),
			Proof:   p.Proof.Proof.Clone(),
		},
	}
}

func equalInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func copyInt(n *big.Int) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set(n)
}
