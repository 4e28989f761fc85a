package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/anon-identity/go-identity-pcd/circuits"
)

// ErrKeyNotFound is returned when key is not found
var ErrKeyNotFound = errors.New("key not found")

// VerificationKeyLoader load verification key bytes for specific circuit
type VerificationKeyLoader interface {
	Load(id circuits.CircuitID) ([]byte, error)
}

// FSKeyLoader read keys from filesystem, one <circuit id>.json per circuit
type FSKeyLoader struct {
	Dir string
}

// Load key from Dir
func (m FSKeyLoader) Load(id circuits.CircuitID) ([]byte, error) {
	key, err := os.ReadFile(filepath.Join(m.Dir, fmt.Sprintf("%v.json", id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrKeyNotFound, "circuit %s", id)
	}
	return key, err
}

// StaticKeyLoader serves keys held in memory.
type StaticKeyLoader map[circuits.CircuitID][]byte

// Load returns the key registered for id.
func (s StaticKeyLoader) Load(id circuits.CircuitID) ([]byte, error) {
	key, ok := s[id]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "circuit %s", id)
	}
	return key, nil
}
