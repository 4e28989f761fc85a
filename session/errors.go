package session

import (
	"github.com/pkg/errors"
)

var (
	// ErrLoginInProgress is returned by Login while another login is running.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrLoginSuperseded is returned by a login whose result arrived after a logout.
	ErrLoginSuperseded = errors.New("login superseded by logout")
	// ErrUnknownRequest is returned by Dispatch for requests it does not handle.
	ErrUnknownRequest = errors.New("unknown session request")
)

// LoginError reports a failed login. The machine is logged out when it is
// returned; Err is the underlying prover or storage error.
type LoginError struct {
	Err error
}

func (e *LoginError) Error() string {
	return "login failed: " + e.Err.Error()
}

func (e *LoginError) Unwrap() error {
	return e.Err
}
