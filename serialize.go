package identity

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/pcd"
	"github.com/anon-identity/go-identity-pcd/types"
)

type wirePCD struct {
	ID    string     `json:"id"`
	Claim *wireClaim `json:"claim"`
	Proof *wireProof `json:"proof"`
}

type wireClaim struct {
	Modulus string `json:"modulus"`
}

type wireProof struct {
	Modulus string            `json:"modulus"`
	Proof   *types.SnarkProof `json:"proof"`
}

// Serialize encodes p into the identity-pcd envelope. Integers are written as
// canonical decimal strings.
func Serialize(p *IdentityPCD) ([]byte, error) {
	w, err := toWire(p)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out, err := json.Marshal(pcd.SerializedPCD{Type: PCDType, PCD: payload})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// Deserialize decodes an identity-pcd envelope. It checks structure only; use
// Verifier.Verify before trusting the result.
func Deserialize(data []byte) (*IdentityPCD, error) {
	env, err := pcd.Parse(data)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPCD, err.Error())
	}
	if env.Type != PCDType {
		return nil, errors.Wrapf(ErrMalformedPCD, "type %q is not %s", env.Type, PCDType)
	}
	if len(env.PCD) == 0 || bytes.Equal(env.PCD, []byte("null")) {
		return nil, errors.Wrap(ErrMalformedPCD, "pcd payload is missing")
	}

	var w wirePCD
	if err = json.Unmarshal(env.PCD, &w); err != nil {
		return nil, errors.Wrapf(ErrMalformedPCD, "failed to parse pcd payload: %v", err)
	}
	return fromWire(w)
}

func toWire(p *IdentityPCD) (wirePCD, error) {
	if p == nil {
		return wirePCD{}, errors.Wrap(ErrMalformedPCD, "pcd is nil")
	}
	if p.Type != PCDType {
		return wirePCD{}, errors.Wrapf(ErrMalformedPCD, "type %q is not %s", p.Type, PCDType)
	}
	if p.Claim.Modulus == nil || p.Proof.Modulus == nil {
		return wirePCD{}, errors.Wrap(ErrMalformedPCD, "modulus is missing")
	}
	proof, err := p.Proof.Proof.Normalize()
	if err != nil {
		return wirePCD{}, errors.Wrapf(ErrMalformedPCD, "proof: %v", err)
	}
	return wirePCD{
		ID:    p.ID,
		Claim: &wireClaim{Modulus: bigint.String(p.Claim.Modulus)},
		Proof: &wireProof{Modulus: bigint.String(p.Proof.Modulus), Proof: &proof},
	}, nil
}

func fromWire(w wirePCD) (*IdentityPCD, error) {
	if w.ID == "" {
		return nil, errors.Wrap(ErrMalformedPCD, "id is missing")
	}
	if _, err := uuid.Parse(w.ID); err != nil {
		return nil, errors.Wrapf(ErrMalformedPCD, "id %q is not a uuid", w.ID)
	}
	if w.Claim == nil {
		return nil, errors.Wrap(ErrMalformedPCD, "claim is missing")
	}
	if w.Proof == nil || w.Proof.Proof == nil {
		return nil, errors.Wrap(ErrMalformedPCD, "proof is missing")
	}

	claimModulus, err := parseField("claim.modulus", w.Claim.Modulus)
	if err != nil {
		return nil, err
	}
	proofModulus, err := parseField("proof.modulus", w.Proof.Modulus)
	if err != nil {
		return nil, err
	}

	raw := *w.Proof.Proof
	switch {
	case len(raw.A) == 0:
		return nil, errors.Wrap(ErrMalformedPCD, "proof.proof.pi_a is missing")
	case len(raw.B) == 0:
		return nil, errors.Wrap(ErrMalformedPCD, "proof.proof.pi_b is missing")
	case len(raw.C) == 0:
		return nil, errors.Wrap(ErrMalformedPCD, "proof.proof.pi_c is missing")
	case raw.Protocol == "":
		return nil, errors.Wrap(ErrMalformedPCD, "proof.proof.protocol is missing")
	case raw.Curve == "":
		return nil, errors.Wrap(ErrMalformedPCD, "proof.proof.curve is missing")
	}
	proof, err := raw.Normalize()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedPCD, "proof.proof: %v", err)
	}

	return NewIdentityPCD(w.ID,
		IdentityClaim{Modulus: claimModulus},
		IdentityProof{Modulus: proofModulus, Proof: proof},
	), nil
}

func parseField(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.Wrapf(ErrMalformedPCD, "%s is missing", name)
	}
	n, err := bigint.Normalize(s)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedPCD, "%s: %v", name, err)
	}
	return n, nil
}
