package identity

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/internal/circuittest"
)

var baseMessage = big.NewInt(42)

func validArgs() ProveArgs {
	return ProveArgs{
		BaseMessage: "42",
		Signature:   circuittest.Sign(baseMessage).String(),
		Modulus:     circuittest.Key.N.String(),
	}
}

func provePCD(t *testing.T) (*IdentityPCD, *circuittest.Circuit) {
	t.Helper()
	c := circuittest.New(circuits.DefaultLayout)
	pcd, err := NewProver(c, baseMessage).Prove(context.Background(), validArgs())
	require.NoError(t, err)
	return pcd, c
}

func TestSerializeRoundTrip(t *testing.T) {
	pcd, _ := provePCD(t)

	b, err := Serialize(pcd)
	require.NoError(t, err)

	back, err := Deserialize(b)
	require.NoError(t, err)
	assert.True(t, pcd.Equal(back))
	assert.Equal(t, PCDType, back.Type)

	// canonical: a second pass is byte-identical
	again, err := Serialize(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))
}

func TestSerializeWireFormat(t *testing.T) {
	pcd, _ := provePCD(t)
	pcd.Proof.Proof.C = []string{"0x01", "0002", "1"}

	b, err := Serialize(pcd)
	require.NoError(t, err)

	var wire struct {
		Type string `json:"type"`
		PCD  struct {
			ID    string `json:"id"`
			Claim struct {
				Modulus string `json:"modulus"`
			} `json:"claim"`
			Proof struct {
				Modulus string `json:"modulus"`
				Proof   struct {
					PiA      []string   `json:"pi_a"`
					PiB      [][]string `json:"pi_b"`
					PiC      []string   `json:"pi_c"`
					Protocol string     `json:"protocol"`
					Curve    string     `json:"curve"`
				} `json:"proof"`
			} `json:"proof"`
		} `json:"pcd"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	assert.Equal(t, "identity-pcd", wire.Type)
	assert.Equal(t, pcd.ID, wire.PCD.ID)
	assert.Equal(t, "3233", wire.PCD.Claim.Modulus)
	assert.Equal(t, "3233", wire.PCD.Proof.Modulus)
	assert.Equal(t, []string{"1", "2", "1"}, wire.PCD.Proof.Proof.PiC)
	assert.Equal(t, "groth16", wire.PCD.Proof.Proof.Protocol)
	assert.Equal(t, "bn128", wire.PCD.Proof.Proof.Curve)
}

func TestSerializeRejectsInvalid(t *testing.T) {
	_, err := Serialize(nil)
	assert.True(t, errors.Is(err, ErrMalformedPCD))

	pcd, _ := provePCD(t)
	other := pcd.Clone()
	other.Type = "other-pcd"
	_, err = Serialize(other)
	assert.True(t, errors.Is(err, ErrMalformedPCD))

	noModulus := pcd.Clone()
	noModulus.Claim.Modulus = nil
	_, err = Serialize(noModulus)
	assert.True(t, errors.Is(err, ErrMalformedPCD))
}

func TestDeserializeMalformed(t *testing.T) {
	const id = "7f4c8f4e-4c1e-4a55-9a55-5d3c0b8f9e11"
	proof := `{"pi_a":["1","2","1"],"pi_b":[["1","0"],["1","0"],["1","0"]],"pi_c":["1","2","1"],"protocol":"groth16","curve":"bn128"}`

	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: `identity`},
		{name: "other type", in: `{"type":"other-pcd","pcd":{"id":"` + id + `"}}`},
		{name: "missing type", in: `{"pcd":{"id":"` + id + `"}}`},
		{name: "missing payload", in: `{"type":"identity-pcd"}`},
		{name: "null payload", in: `{"type":"identity-pcd","pcd":null}`},
		{name: "payload not an object", in: `{"type":"identity-pcd","pcd":"{}"}`},
		{name: "missing id", in: `{"type":"identity-pcd","pcd":{"claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "id not a uuid", in: `{"type":"identity-pcd","pcd":{"id":"abc","claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "missing claim", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "missing claim modulus", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{},"proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "missing proof", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"}}}`},
		{name: "missing raw proof", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"3233"}}}`},
		{name: "bad claim modulus", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"12ab"},"proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "bad proof modulus", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"n","proof":` + proof + `}}}`},
		{name: "numeric modulus", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":3233},"proof":{"modulus":"3233","proof":` + proof + `}}}`},
		{name: "bad point", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":{"pi_a":["x"],"pi_b":[["1"]],"pi_c":["1"],"protocol":"groth16","curve":"bn128"}}}}`},
		{name: "missing pi_b", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":{"pi_a":["1"],"pi_c":["1"],"protocol":"groth16","curve":"bn128"}}}}`},
		{name: "missing protocol", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":{"pi_a":["1"],"pi_b":[["1"]],"pi_c":["1"],"curve":"bn128"}}}}`},
		{name: "missing curve", in: `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"3233","proof":{"pi_a":["1"],"pi_b":[["1"]],"pi_c":["1"],"protocol":"groth16"}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPCD), "got %v", err)
		})
	}

	valid := `{"type":"identity-pcd","pcd":{"id":"` + id + `","claim":{"modulus":"3233"},"proof":{"modulus":"0xca1","proof":` + proof + `}}}`
	p, err := Deserialize([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, int64(3233), p.Proof.Modulus.Int64())
}

func TestDeserializeKeepsModulusMismatch(t *testing.T) {
	pcd, _ := provePCD(t)
	pcd.Proof.Modulus = big.NewInt(3227)

	b, err := Serialize(pcd)
	require.NoError(t, err)

	// structure only: the mismatch is for the verifier to reject
	back, err := Deserialize(b)
	require.NoError(t, err)
	assert.Equal(t, int64(3227), back.Proof.Modulus.Int64())
}

func TestEqualAndClone(t *testing.T) {
	pcd, _ := provePCD(t)
	c := pcd.Clone()
	assert.True(t, pcd.Equal(c))

	c.Claim.Modulus.SetInt64(1)
	assert.Equal(t, int64(3233), pcd.Claim.Modulus.Int64())
	assert.False(t, pcd.Equal(c))

	var nilPCD *IdentityPCD
	assert.True(t, nilPCD.Equal(nil))
	assert.False(t, pcd.Equal(nil))
	assert.Nil(t, nilPCD.Clone())
}
