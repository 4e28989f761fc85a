package circuits

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/bigint"
)

const (
	// DefaultLimbBits is the width of one circuit limb.
	DefaultLimbBits = 64
	// DefaultLimbCount fits a 2048 bit RSA modulus.
	DefaultLimbCount = 32
)

// PublicInputs are the inputs revealed to verifiers.
type PublicInputs struct {
	BaseMessage *big.Int
	Modulus     *big.Int
}

// Witness holds the secret inputs. It is never persisted.
type Witness struct {
	Signature *big.Int
}

// Inputs is the circom input document for the identity circuit.
type Inputs struct {
	Signature   []string `json:"signature"`
	Modulus     []string `json:"modulus"`
	BaseMessage []string `json:"base_message"`
}

// Layout describes how big integers are split into circuit limbs.
type Layout struct {
	LimbBits  int
	LimbCount int
}

// DefaultLayout is the layout of the identity circuit.
var DefaultLayout = Layout{LimbBits: DefaultLimbBits, LimbCount: DefaultLimbCount}

// MaxBits is the widest value the layout can carry.
func (l Layout) MaxBits() int {
	return l.LimbBits * l.LimbCount
}

// Limbs splits n into decimal limb strings.
func (l Layout) Limbs(n *big.Int) ([]string, error) {
	limbs, err := bigint.Split(n, l.LimbBits, l.LimbCount)
	if err != nil {
		return nil, err
	}
	return bigint.Strings(limbs), nil
}

// PublicSignals returns the public signals of the circuit in the order the
// verification key expects them: modulus limbs followed by base message limbs.
func (l Layout) PublicSignals(modulus, baseMessage *big.Int) ([]string, error) {
	m, err := l.Limbs(modulus)
	if err != nil {
		return nil, errors.Wrap(err, "modulus")
	}
	b, err := l.Limbs(baseMessage)
	if err != nil {
		return nil, errors.Wrap(err, "base message")
	}
	return append(m, b...), nil
}

// CircuitInputs builds the circom input document for a proving request.
func (l Layout) CircuitInputs(public PublicInputs, witness Witness) (Inputs, error) {
	var (
		in  Inputs
		err error
	)
	if in.Signature, err = l.Limbs(witness.Signature); err != nil {
		return Inputs{}, errors.Wrap(err, "signature")
	}
	if in.Modulus, err = l.Limbs(public.Modulus); err != nil {
		return Inputs{}, errors.Wrap(err, "modulus")
	}
	if in.BaseMessage, err = l.Limbs(public.BaseMessage); err != nil {
		return Inputs{}, errors.Wrap(err, "base message")
	}
	return in, nil
}
