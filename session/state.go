// Package session owns the single login session of a process: a state
// machine over identity proofs backed by durable storage.
package session

import (
	identity "github.com/anon-identity/go-identity-pcd"
)

// Status is the wire name of a session state.
type Status string

const (
	StatusLoggedOut Status = "logged-out"
	StatusLoggingIn Status = "logging-in"
	StatusLoggedIn  Status = "logged-in"
)

// State is one of LoggedOut, LoggingIn or LoggedIn.
type State interface {
	Status() Status
	isState()
}

// LoggedOut is the initial state.
type LoggedOut struct{}

// LoggingIn means a proof is being generated.
type LoggingIn struct{}

// LoggedIn holds a verified identity proof and its persisted encoding.
type LoggedIn struct {
	SerializedPCD []byte
	PCD           *identity.IdentityPCD
}

func (LoggedOut) Status() Status { return StatusLoggedOut }
func (LoggingIn) Status() Status { return StatusLoggingIn }
func (LoggedIn) Status() Status  { return StatusLoggedIn }

func (LoggedOut) isState() {}
func (LoggingIn) isState() {}
func (LoggedIn) isState()  {}

func cloneState(s State) State {
	if in, ok := s.(LoggedIn); ok {
		return LoggedIn{
			SerializedPCD: append([]byte(nil), in.SerializedPCD...),
			PCD:           in.PCD.Clone(),
		}
	}
	return s
}
