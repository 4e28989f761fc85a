package proofs

import (
	"github.com/iden3/go-rapidsnark/verifier"
	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/types"
)

// Engine selects the groth16 implementation.
type Engine string

const (
	// EngineNative verifies with the bn256 pairing code in this package
	EngineNative Engine = "native"
	// EngineRapidsnark verifies with go-rapidsnark
	EngineRapidsnark Engine = "rapidsnark"
)

// VerifyProof checks proof against public signals and a snarkjs verification key.
func VerifyProof(engine Engine, proof types.SnarkProof, pubSignals []string, verificationKey []byte) error {
	if proof.Curve != types.BN128 {
		return errors.Wrapf(ErrInvalidProof, "%s curve is not supported", proof.Curve)
	}
	switch proof.Protocol {
	case types.Groth16:
		zkProof := proof.ZKProof(pubSignals)
		switch engine {
		case EngineNative, "":
			return VerifyGroth16Proof(zkProof, verificationKey)
		case EngineRapidsnark:
			if err := verifier.VerifyGroth16(zkProof, verificationKey); err != nil {
				return errors.Wrap(ErrInvalidProof, err.Error())
			}
			return nil
		default:
			return errors.Errorf("unknown verification engine %q", engine)
		}
	default:
		return errors.Wrapf(ErrInvalidProof, "%s protocol is not supported", proof.Protocol)
	}
}
