package circuits

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anon-identity/go-identity-pcd/bigint"
)

func TestPublicSignals(t *testing.T) {
	l := Layout{LimbBits: 8, LimbCount: 2}

	signals, err := l.PublicSignals(big.NewInt(0x0102), big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "42", "0"}, signals)

	_, err = l.PublicSignals(big.NewInt(0x10000), big.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bigint.ErrMalformedNumber))
}

func TestCircuitInputs(t *testing.T) {
	l := Layout{LimbBits: 8, LimbCount: 2}
	inputs, err := l.CircuitInputs(
		PublicInputs{BaseMessage: big.NewInt(42), Modulus: big.NewInt(0x0102)},
		Witness{Signature: big.NewInt(0xff)},
	)
	require.NoError(t, err)
	b, err := json.Marshal(inputs)
	require.NoError(t, err)

	var in map[string][]string
	require.NoError(t, json.Unmarshal(b, &in))
	assert.Equal(t, []string{"255", "0"}, in["signature"])
	assert.Equal(t, []string{"2", "1"}, in["modulus"])
	assert.Equal(t, []string{"42", "0"}, in["base_message"])

	_, err = l.CircuitInputs(PublicInputs{BaseMessage: big.NewInt(1), Modulus: big.NewInt(1)}, Witness{})
	require.Error(t, err)
}

func TestDefaultLayoutFitsRSA2048(t *testing.T) {
	n := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2048), big.NewInt(1))
	limbs, err := DefaultLayout.Limbs(n)
	require.NoError(t, err)
	assert.Len(t, limbs, DefaultLimbCount)
	assert.Equal(t, 2048, DefaultLayout.MaxBits())
}
