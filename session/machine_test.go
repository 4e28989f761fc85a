package session

import (
	"context"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	identity "github.com/anon-identity/go-identity-pcd"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/constants"
	"github.com/anon-identity/go-identity-pcd/internal/circuittest"
	"github.com/anon-identity/go-identity-pcd/storage"
	mock_storage "github.com/anon-identity/go-identity-pcd/storage/mock"
)

var baseMessage = big.NewInt(42)

func validArgs() identity.ProveArgs {
	return identity.ProveArgs{
		BaseMessage: "42",
		Signature:   circuittest.Sign(baseMessage).String(),
		Modulus:     circuittest.Key.N.String(),
	}
}

type fixture struct {
	circuit  *circuittest.Circuit
	store    *storage.Memory
	prover   *identity.Prover
	verifier *identity.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := circuittest.New(circuits.DefaultLayout)
	return &fixture{
		circuit:  c,
		store:    storage.NewMemory(),
		prover:   identity.NewProver(c, baseMessage),
		verifier: identity.NewVerifier(c, baseMessage),
	}
}

func (f *fixture) machine(t *testing.T) *Machine {
	return New(f.prover, f.verifier, f.store, WithLogger(zaptest.NewLogger(t)))
}

func stored(t *testing.T, s storage.Storage) ([]byte, bool) {
	t.Helper()
	v, err := s.Get(context.Background(), constants.SessionStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	require.NoError(t, err)
	return v, true
}

func TestLoginThenLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)

	assert.Equal(t, StatusLoggedOut, m.Rehydrate(ctx).Status())

	require.NoError(t, m.Login(ctx, validArgs()))

	st, ok := m.State().(LoggedIn)
	require.True(t, ok)
	assert.Equal(t, circuittest.Key.N.String(), st.PCD.Claim.Modulus.String())
	assert.Equal(t, identity.PCDType, st.PCD.Type)

	persisted, ok := stored(t, f.store)
	require.True(t, ok)
	assert.Equal(t, st.SerializedPCD, persisted)

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, LoggedOut{}, m.State())
	_, ok = stored(t, f.store)
	assert.False(t, ok)
}

func TestRehydrate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.machine(t)
	require.NoError(t, first.Login(ctx, validArgs()))
	want := first.State().(LoggedIn)

	second := f.machine(t)
	st, ok := second.Rehydrate(ctx).(LoggedIn)
	require.True(t, ok)
	assert.True(t, want.PCD.Equal(st.PCD))
	assert.Equal(t, 1, f.circuit.Calls())
}

func TestRehydrateDiscardsInvalidEntry(t *testing.T) {
	ctx := context.Background()
	pcd, err := identity.NewProver(circuittest.New(circuits.DefaultLayout), baseMessage).
		Prove(ctx, validArgs())
	require.NoError(t, err)

	tampered := pcd.Clone()
	tampered.Proof.Proof.A[0] = "1"
	tamperedJSON, err := identity.Serialize(tampered)
	require.NoError(t, err)

	other := pcd.Clone()
	other.Claim.Modulus = big.NewInt(3127)
	mismatchJSON, err := identity.Serialize(other)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "tampered proof", data: tamperedJSON},
		{name: "claim and proof moduli differ", data: mismatchJSON},
		{name: "not json", data: []byte("{not json")},
		{name: "other pcd type", data: []byte(`{"type":"other-pcd","pcd":{}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.store.Set(ctx, constants.SessionStorageKey, tt.data))

			m := f.machine(t)
			assert.Equal(t, LoggedOut{}, m.Rehydrate(ctx))
			_, ok := stored(t, f.store)
			assert.False(t, ok, "bad entry must be deleted")
		})
	}
}

func TestRehydrateRunsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)
	assert.Equal(t, LoggedOut{}, m.Rehydrate(ctx))

	other := f.machine(t)
	require.NoError(t, other.Login(ctx, validArgs()))

	assert.Equal(t, LoggedOut{}, m.Rehydrate(ctx))
}

func TestRehydrateSwallowsStorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_storage.NewMockStorage(ctrl)
	store.EXPECT().Get(gomock.Any(), constants.SessionStorageKey).
		Return(nil, errors.New("disk on fire"))

	f := newFixture(t)
	m := New(f.prover, f.verifier, store, WithLogger(zaptest.NewLogger(t)))
	assert.Equal(t, LoggedOut{}, m.Rehydrate(context.Background()))
}

func TestConcurrentLoginProvesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)

	started := f.circuit.Hold()
	first := m.DispatchAsync(ctx, LoginRequest{Args: validArgs()})
	<-started

	assert.Equal(t, LoggingIn{}, m.State())
	err := m.Login(ctx, validArgs())
	assert.True(t, errors.Is(err, ErrLoginInProgress))

	f.circuit.Release()
	require.NoError(t, <-first)
	assert.Equal(t, StatusLoggedIn, m.State().Status())
	assert.Equal(t, 1, f.circuit.Calls())
}

func TestConcurrentLoginsRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)

	const n = 8
	started := f.circuit.Hold()
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			results <- m.Login(ctx, validArgs())
		}()
	}
	<-started

	// the winner is parked in the circuit, so the first n-1 results are rejections
	for i := 0; i < n-1; i++ {
		assert.True(t, errors.Is(<-results, ErrLoginInProgress))
	}
	f.circuit.Release()
	require.NoError(t, <-results)

	assert.Equal(t, 1, f.circuit.Calls())
	assert.Equal(t, StatusLoggedIn, m.State().Status())
}

func TestLogoutDuringLoginDiscardsResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)

	started := f.circuit.Hold()
	done := m.DispatchAsync(ctx, LoginRequest{Args: validArgs()})
	<-started

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, LoggedOut{}, m.State())

	f.circuit.Release()
	err := <-done
	assert.True(t, errors.Is(err, ErrLoginSuperseded))
	assert.Equal(t, LoggedOut{}, m.State())
	_, ok := stored(t, f.store)
	assert.False(t, ok)
}

func TestFailedLogin(t *testing.T) {
	bad := validArgs()
	bad.Signature = "12345"
	malformed := validArgs()
	malformed.Modulus = "0xZZ"

	tests := []struct {
		name string
		args identity.ProveArgs
		down bool
		want error
	}{
		{name: "invalid signature", args: bad, want: identity.ErrProofGeneration},
		{name: "malformed modulus", args: malformed, want: identity.ErrMalformedNumber},
		{name: "executor down", args: validArgs(), down: true, want: identity.ErrCircuitUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.circuit.SetUnavailable(tt.down)
			m := f.machine(t)

			err := m.Login(ctx, tt.args)
			var loginErr *LoginError
			require.True(t, errors.As(err, &loginErr))
			assert.True(t, errors.Is(err, tt.want), err)

			assert.Equal(t, LoggedOut{}, m.State())
			_, ok := stored(t, f.store)
			assert.False(t, ok)
		})
	}
}

func TestFailedReloginClearsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)
	require.NoError(t, m.Login(ctx, validArgs()))

	f.circuit.SetUnavailable(true)
	err := m.Login(ctx, validArgs())
	assert.True(t, errors.Is(err, identity.ErrCircuitUnavailable))

	assert.Equal(t, LoggedOut{}, m.State())
	_, ok := stored(t, f.store)
	assert.False(t, ok)

	// a restart must not bring the old session back
	assert.Equal(t, LoggedOut{}, f.machine(t).Rehydrate(ctx))
}

func TestLoginPersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_storage.NewMockStorage(ctrl)
	store.EXPECT().Set(gomock.Any(), constants.SessionStorageKey, gomock.Any()).
		Return(errors.New("read-only filesystem"))

	f := newFixture(t)
	m := New(f.prover, f.verifier, store, WithLogger(zaptest.NewLogger(t)))

	err := m.Login(context.Background(), validArgs())
	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Contains(t, err.Error(), "read-only filesystem")
	assert.Equal(t, LoggedOut{}, m.State())
}

func TestLogoutStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_storage.NewMockStorage(ctrl)
	store.EXPECT().Delete(gomock.Any(), "custom").Return(errors.New("locked"))

	f := newFixture(t)
	m := New(f.prover, f.verifier, store, WithStorageKey("custom"))

	require.Error(t, m.Logout(context.Background()))
	assert.Equal(t, LoggedOut{}, m.State())
}

func TestStateIsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)
	require.NoError(t, m.Login(ctx, validArgs()))

	snap := m.State().(LoggedIn)
	snap.PCD.Claim.Modulus.SetInt64(1)
	snap.SerializedPCD[0] = 'x'

	again := m.State().(LoggedIn)
	assert.Equal(t, circuittest.Key.N.String(), again.PCD.Claim.Modulus.String())
	assert.Equal(t, byte('{'), again.SerializedPCD[0])
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.machine(t)

	states, cancel := m.Subscribe()
	require.NoError(t, m.Login(ctx, validArgs()))
	assert.Equal(t, StatusLoggedIn, (<-states).Status())

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, LoggedOut{}, <-states)

	cancel()
	cancel()
	_, open := <-states
	assert.False(t, open)
}

type panickingProver struct{}

func (panickingProver) Prove(context.Context, identity.ProveArgs) (*identity.IdentityPCD, error) {
	panic("prover crashed")
}

func TestLoginRecoversProverPanic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := New(panickingProver{}, f.verifier, f.store, WithLogger(zaptest.NewLogger(t)))

	err := m.Login(ctx, validArgs())
	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Contains(t, err.Error(), "prover crashed")
	assert.Equal(t, LoggedOut{}, m.State())

	// not stuck in logging-in
	err = m.Login(ctx, validArgs())
	assert.False(t, errors.Is(err, ErrLoginInProgress))
	assert.Equal(t, LoggedOut{}, m.State())
}
