package proofs

import (
	"encoding/json"
	"math/big"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/iden3/go-iden3-crypto/utils"
	rstypes "github.com/iden3/go-rapidsnark/types"
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/types"
)

// ErrInvalidProof is returned when a proof does not verify, including proofs
// whose points or public signals are malformed.
var ErrInvalidProof = errors.New("invalid proof")

// proofPairingData describes three components of zkp proof in bn256 format.
type proofPairingData struct {
	A *bn256.G1
	B *bn256.G2
	C *bn256.G1
}

// vk is the Verification Key data structure in bn256 format.
type vk struct {
	Alpha *bn256.G1
	Beta  *bn256.G2
	Gamma *bn256.G2
	Delta *bn256.G2
	IC    []*bn256.G1
}

// vkJSON is the Verification Key data structure in string format (from json).
type vkJSON struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	Alpha    []string   `json:"vk_alpha_1"`
	Beta     [][]string `json:"vk_beta_2"`
	Gamma    [][]string `json:"vk_gamma_2"`
	Delta    [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// VerifyGroth16Proof performs a verification of zkp based on verification key and public inputs
func VerifyGroth16Proof(zkProof rstypes.ZKProof, verificationKey []byte) error {
	if zkProof.Proof == nil {
		return errors.Wrap(ErrInvalidProof, "proof data is missing")
	}

	// 1. cast external verification key data to internal model.
	var vkStr vkJSON
	if err := json.Unmarshal(verificationKey, &vkStr); err != nil {
		return errors.Wrap(err, "failed to parse verification key")
	}
	if vkStr.Protocol != "" && vkStr.Protocol != types.Groth16.String() {
		return errors.Errorf("verification key is for %s, not groth16", vkStr.Protocol)
	}
	if vkStr.Curve != "" && vkStr.Curve != types.BN128.String() {
		return errors.Errorf("verification key is for curve %s, not bn128", vkStr.Curve)
	}
	vkKey, err := parseVK(vkStr)
	if err != nil {
		return errors.Wrap(err, "failed to parse verification key")
	}

	// 2. cast external proof data to internal model.
	p, err := parseProofData(*zkProof.Proof)
	if err != nil {
		return errors.Wrap(ErrInvalidProof, err.Error())
	}

	// 3. cast external public inputs data to internal model.
	pubSignals, err := bigint.ArrayStringToBigInt(zkProof.PubSignals)
	if err != nil {
		return errors.Wrap(ErrInvalidProof, err.Error())
	}

	return verifyGroth16(vkKey, p, pubSignals)
}

// verifyGroth16 performs the verification the Groth16 zkSNARK proofs
func verifyGroth16(vk *vk, proof proofPairingData, inputs []*big.Int) error {
	if len(inputs)+1 != len(vk.IC) {
		return errors.Wrapf(ErrInvalidProof, "got %d public signals, verification key expects %d", len(inputs), len(vk.IC)-1)
	}
	vkX := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	for i := 0; i < len(inputs); i++ {
		// check input inside field
		if !utils.CheckBigIntInField(inputs[i]) {
			return errors.Wrapf(ErrInvalidProof, "public signal %d is not in the field", i)
		}
		vkX = new(bn256.G1).Add(vkX, new(bn256.G1).ScalarMult(vk.IC[i+1], inputs[i]))
	}
	vkX = new(bn256.G1).Add(vkX, vk.IC[0])

	g1 := []*bn256.G1{proof.A, new(bn256.G1).Neg(vk.Alpha), vkX.Neg(vkX), new(bn256.G1).Neg(proof.C)}
	g2 := []*bn256.G2{proof.B, vk.Beta, vk.Gamma, vk.Delta}

	if !bn256.PairingCheck(g1, g2) {
		return errors.Wrap(ErrInvalidProof, "pairing check failed")
	}
	return nil
}

func parseProofData(pr rstypes.ProofData) (proofPairingData, error) {
	var (
		p   proofPairingData
		err error
	)

	p.A, err = stringToG1(pr.A)
	if err != nil {
		return p, errors.Wrap(err, "pi_a")
	}

	p.B, err = stringToG2(pr.B)
	if err != nil {
		return p, errors.Wrap(err, "pi_b")
	}

	p.C, err = stringToG1(pr.C)
	if err != nil {
		return p, errors.Wrap(err, "pi_c")
	}

	return p, nil
}

func parseVK(vkStr vkJSON) (*vk, error) {
	var v vk
	var err error
	v.Alpha, err = stringToG1(vkStr.Alpha)
	if err != nil {
		return nil, err
	}

	v.Beta, err = stringToG2(vkStr.Beta)
	if err != nil {
		return nil, err
	}

	v.Gamma, err = stringToG2(vkStr.Gamma)
	if err != nil {
		return nil, err
	}

	v.Delta, err = stringToG2(vkStr.Delta)
	if err != nil {
		return nil, err
	}

	if len(vkStr.IC) == 0 {
		return nil, errors.New("IC is empty")
	}
	for i := 0; i < len(vkStr.IC); i++ {
		p, err := stringToG1(vkStr.IC[i])
		if err != nil {
			return nil, err
		}
		v.IC = append(v.IC, p)
	}

	return &v, nil
}

// stringToG1 parses a snarkjs [x, y, z] point. z must be 1, or 0 for the
// point at infinity.
func stringToG1(h []string) (*bn256.G1, error) {
	coords, err := affine(h)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, 64)
	for _, c := range coords {
		if b, err = appendFieldElement(b, c); err != nil {
			return nil, err
		}
	}
	p := new(bn256.G1)
	if _, err = p.Unmarshal(b); err != nil {
		return nil, err
	}
	return p, nil
}

// stringToG2 parses a snarkjs [[x0, x1], [y0, y1], [z0, z1]] point where
// x = x0 + x1*u. bn256 expects the imaginary part first.
func stringToG2(h [][]string) (*bn256.G2, error) {
	if len(h) < 2 {
		return nil, errors.New("G2 point needs at least two coordinates")
	}
	if len(h) > 2 {
		z, err := bigint.ArrayStringToBigInt(h[2])
		if err != nil {
			return nil, err
		}
		if len(z) != 2 || z[1].Sign() != 0 || z[0].Cmp(big.NewInt(1)) != 0 {
			return nil, errors.New("G2 point is not in affine form")
		}
	}
	b := make([]byte, 0, 128)
	for _, pair := range h[:2] {
		if len(pair) != 2 {
			return nil, errors.New("G2 coordinate needs two elements")
		}
		c, err := bigint.ArrayStringToBigInt(pair)
		if err != nil {
			return nil, err
		}
		if b, err = appendFieldElement(b, c[1]); err != nil {
			return nil, err
		}
		if b, err = appendFieldElement(b, c[0]); err != nil {
			return nil, err
		}
	}
	p := new(bn256.G2)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, err
	}
	return p, nil
}

func affine(h []string) ([]*big.Int, error) {
	if len(h) != 2 && len(h) != 3 {
		return nil, errors.Errorf("G1 point needs 2 or 3 coordinates, got %d", len(h))
	}
	c, err := bigint.ArrayStringToBigInt(h)
	if err != nil {
		return nil, err
	}
	if len(c) == 3 {
		switch {
		case c[2].Sign() == 0:
			return []*big.Int{new(big.Int), new(big.Int)}, nil
		case c[2].Cmp(big.NewInt(1)) != 0:
			return nil, errors.New("G1 point is not in affine form")
		}
	}
	return c[:2], nil
}

func appendFieldElement(b []byte, n *big.Int) ([]byte, error) {
	if n.Sign() < 0 || n.BitLen() > 256 {
		return nil, errors.Errorf("coordinate %s out of range", n)
	}
	return append(b, n.FillBytes(make([]byte, 32))...), nil
}
