package session

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	identity "github.com/anon-identity/go-identity-pcd"
)

// Request is a session command: LoginRequest or LogoutRequest.
type Request interface {
	isRequest()
}

// LoginRequest asks for a login with Args.
type LoginRequest struct {
	Args identity.ProveArgs
}

// LogoutRequest asks for a logout.
type LogoutRequest struct{}

func (LoginRequest) isRequest()  {}
func (LogoutRequest) isRequest() {}

// Dispatch runs req to completion.
func (m *Machine) Dispatch(ctx context.Context, req Request) error {
	switch r := req.(type) {
	case LoginRequest:
		return m.Login(ctx, r.Args)
	case *LoginRequest:
		if r == nil {
			return errors.Wrap(ErrUnknownRequest, "nil login request")
		}
		return m.Login(ctx, r.Args)
	case LogoutRequest, *LogoutRequest:
		return m.Logout(ctx)
	default:
		return errors.Wrapf(ErrUnknownRequest, "%T", req)
	}
}

// DispatchAsync runs req in its own goroutine. The returned channel
// receives the result of Dispatch and is then closed.
func (m *Machine) DispatchAsync(ctx context.Context, req Request) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- m.Dispatch(ctx, req)
	}()
	return done
}

type rawRequest struct {
	Type string          `json:"type"`
	Args json.RawMessage `json:"args"`
}

// DecodeRequest parses {"type":"login","args":{...}} or {"type":"logout"}.
func DecodeRequest(data []byte) (Request, error) {
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode session request")
	}
	switch raw.Type {
	case "login":
		if len(raw.Args) == 0 {
			return nil, errors.New("login request has no args")
		}
		var args identity.ProveArgs
		dec := json.NewDecoder(bytes.NewReader(raw.Args))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return nil, errors.Wrap(err, "failed to decode login args")
		}
		return LoginRequest{Args: args}, nil
	case "logout":
		return LogoutRequest{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownRequest, "%q", raw.Type)
	}
}
