package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	identity "github.com/anon-identity/go-identity-pcd"
	"github.com/anon-identity/go-identity-pcd/constants"
	"github.com/anon-identity/go-identity-pcd/storage"
)

// Prover generates identity proofs.
type Prover interface {
	Prove(ctx context.Context, args identity.ProveArgs) (*identity.IdentityPCD, error)
}

// Verifier checks identity proofs.
type Verifier interface {
	Verify(ctx context.Context, p *identity.IdentityPCD) bool
}

// Machine is the only writer of the session state and of its storage slot.
// It is safe for concurrent use.
type Machine struct {
	prover   Prover
	verifier Verifier
	store    storage.Storage
	key      string
	log      *zap.Logger

	rehydrate sync.Once

	mu    sync.Mutex
	state State
	// incremented by every login and logout; a login only applies its
	// result if the epoch it started in is still current
	epoch   uint64
	subs    map[int]chan State
	nextSub int
}

// Option configures a Machine.
type Option func(m *Machine)

// WithStorageKey overrides constants.SessionStorageKey.
func WithStorageKey(key string) Option {
	return func(m *Machine) {
		m.key = key
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a logged out machine. Call Rehydrate before accepting requests.
func New(prover Prover, verifier Verifier, store storage.Storage, opts ...Option) *Machine {
	m := &Machine{
		prover:   prover,
		verifier: verifier,
		store:    store,
		key:      constants.SessionStorageKey,
		log:      zap.NewNop(),
		state:    LoggedOut{},
		subs:     map[int]chan State{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

// Rehydrate restores a persisted session. Only the first call has an effect.
// A stored entry that does not deserialize or verify is deleted. Errors are
// logged, never returned: the worst outcome is a logged out session.
func (m *Machine) Rehydrate(ctx context.Context) State {
	m.rehydrate.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.restore(ctx)
	})
	return m.State()
}

func (m *Machine) restore(ctx context.Context) {
	if _, ok := m.state.(LoggedOut); !ok {
		return
	}
	log := m.log.With(zap.String("key", m.key))

	data, err := m.store.Get(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.Warn("failed to read persisted session", zap.Error(err))
		return
	}

	pcd, err := identity.Deserialize(data)
	if err != nil {
		log.Warn("discarding malformed persisted session", zap.Error(err))
		m.discard(ctx)
		return
	}
	if !m.verifier.Verify(ctx, pcd) {
		log.Warn("discarding persisted session that does not verify", zap.String("id", pcd.ID))
		m.discard(ctx)
		return
	}

	log.Info("session restored", zap.String("id", pcd.ID))
	m.setState(LoggedIn{SerializedPCD: data, PCD: pcd})
}

// Login proves args and, on success, persists the result and moves to
// LoggedIn. Only one login runs at a time; a concurrent call fails with
// ErrLoginInProgress without calling the prover. Prover or storage failures
// are returned as *LoginError with the machine logged out. A failed login
// that started from LoggedIn also clears the persisted session.
func (m *Machine) Login(ctx context.Context, args identity.ProveArgs) error {
	m.mu.Lock()
	if _, ok := m.state.(LoggingIn); ok {
		m.mu.Unlock()
		return ErrLoginInProgress
	}
	_, relogin := m.state.(LoggedIn)
	m.epoch++
	epoch := m.epoch
	m.setState(LoggingIn{})
	m.mu.Unlock()

	pcd, err := m.prove(ctx, args)

	m.mu.Lock()
	defer m.mu.Unlock()
	// storage writes must not be lost to a prove deadline on ctx
	ctx = context.WithoutCancel(ctx)

	if m.epoch != epoch {
		m.log.Info("discarding login result after logout")
		return ErrLoginSuperseded
	}
	if err == nil {
		var data []byte
		if data, err = identity.Serialize(pcd); err == nil {
			err = errors.Wrap(m.store.Set(ctx, m.key, data), "failed to persist session")
		}
		if err == nil {
			m.log.Info("logged in", zap.String("id", pcd.ID))
			m.setState(LoggedIn{SerializedPCD: data, PCD: pcd})
			return nil
		}
	}

	m.log.Info("login failed", zap.Error(err), zap.Bool("relogin", relogin))
	if relogin {
		m.discard(ctx)
	}
	m.setState(LoggedOut{})
	return &LoginError{Err: err}
}

// prove runs the prover. A panic is returned as an error so Login always
// leaves LoggingIn.
func (m *Machine) prove(ctx context.Context, args identity.ProveArgs) (pcd *identity.IdentityPCD, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("prover panicked", zap.Any("panic", r))
			pcd, err = nil, errors.Errorf("prover panicked: %v", r)
		}
	}()
	return m.prover.Prove(ctx, args)
}

// Logout clears the persisted session and moves to LoggedOut. A login that
// is still running will have its result discarded.
func (m *Machine) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	err := m.store.Delete(ctx, m.key)
	m.setState(LoggedOut{})
	if err != nil {
		m.log.Warn("failed to clear persisted session", zap.Error(err))
		return errors.Wrap(err, "failed to clear persisted session")
	}
	m.log.Info("logged out")
	return nil
}

// Subscribe returns a channel receiving the latest state after every
// transition. Slow readers only see the most recent state. cancel closes
// the channel.
func (m *Machine) Subscribe() (states <-chan State, cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

// discard deletes the persisted session. Must be called with mu held.
func (m *Machine) discard(ctx context.Context) {
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.log.Warn("failed to delete persisted session", zap.Error(err))
	}
}

// setState must be called with mu held.
func (m *Machine) setState(s State) {
	m.state = s
	for _, ch := range m.subs {
		// drop a stale unread state so the send never blocks
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cloneState(s):
		default:
		}
	}
}
