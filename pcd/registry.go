// Package pcd dispatches serialized proof-carrying data to the verifier
// registered for its type.
package pcd

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownType is returned for envelopes whose type has no registered verifier.
var ErrUnknownType = errors.New("pcd type is not registered")

// SerializedPCD is the transport envelope shared by every PCD package.
type SerializedPCD struct {
	Type string          `json:"type"`
	PCD  json.RawMessage `json:"pcd"`
}

// Parse decodes an envelope without looking at the payload.
func Parse(data []byte) (SerializedPCD, error) {
	var s SerializedPCD
	if err := json.Unmarshal(data, &s); err != nil {
		return SerializedPCD{}, errors.Wrap(err, "failed to parse pcd envelope")
	}
	if s.Type == "" {
		return SerializedPCD{}, errors.New("pcd envelope has no type")
	}
	return s, nil
}

// VerifyFunc verifies a full serialized envelope of its package's type.
type VerifyFunc func(ctx context.Context, serialized []byte) (bool, error)

// Registry maps PCD type names to verifiers.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[string]VerifyFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{verifiers: map[string]VerifyFunc{}}
}

// Register installs fn for typ. Registering a type twice is an error.
func (r *Registry) Register(typ string, fn VerifyFunc) error {
	if typ == "" || fn == nil {
		return errors.New("pcd type and verifier are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.verifiers[typ]; ok {
		return errors.Errorf("pcd type %s is already registered", typ)
	}
	r.verifiers[typ] = fn
	return nil
}

// Types lists registered types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.verifiers))
	for typ := range r.verifiers {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Verify routes serialized to the verifier registered for its envelope type.
func (r *Registry) Verify(ctx context.Context, serialized []byte) (bool, error) {
	env, err := Parse(serialized)
	if err != nil {
		return false, err
	}
	r.mu.RLock()
	fn, ok := r.verifiers[env.Type]
	r.mu.RUnlock()
	if !ok {
		return false, errors.Wrapf(ErrUnknownType, "%s", env.Type)
	}
	return fn(ctx, serialized)
}
