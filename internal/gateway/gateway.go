// Package gateway is the single call boundary between sysdeck and the
// backend that collects host state and performs privileged operations.
//
// A call names a command and carries a flat argument bag. It either returns
// a generic decoded value (maps, slices, strings, numbers, bools) or a
// structured error whose code is one of errors.ErrUnreachable,
// errors.ErrRejected, errors.ErrMalformed, or errors.ErrUnknownCommand.
//
// Each Invoke dispatches exactly once. Retries and timeouts are left to the
// caller; the context passed in is honored only as far as the transport
// supports it.
package gateway

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/spf13/cast"
)

// Gateway invokes backend commands.
type Gateway interface {
	Invoke(ctx context.Context, command string, args Args) (Result, error)
}

// Args is the argument bag for a command: a flat map of primitives or
// arrays of primitives.
type Args map[string]any

// String returns the named argument as a string, or "" if absent.
func (a Args) String(key string) string {
	return cast.ToString(a[key])
}

// Strings returns the named argument as a string slice.
func (a Args) Strings(key string) []string {
	return cast.ToStringSlice(a[key])
}

// Int returns the named argument as an int, or 0 if absent or unparseable.
func (a Args) Int(key string) int {
	return cast.ToInt(a[key])
}

// Has reports whether the argument is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// RequireString returns the named argument or a Rejected error when it is
// missing or empty.
func (a Args) RequireString(key string) (string, error) {
	v := a.String(key)
	if v == "" {
		return "", errors.New(errors.ErrRejected,
			fmt.Sprintf("missing argument %q", key),
			"")
	}
	return v, nil
}

// Result is the decoded value a command returned.
type Result struct {
	Value any
}

// Map returns the result as an object, or a Malformed error.
func (r Result) Map() (map[string]any, error) {
	if r.Value == nil {
		return map[string]any{}, nil
	}
	m, ok := r.Value.(map[string]any)
	if !ok {
		return nil, malformed("object", r.Value)
	}
	return m, nil
}

// List returns the result as an array, or a Malformed error.
// A null result is an empty list.
func (r Result) List() ([]any, error) {
	if r.Value == nil {
		return []any{}, nil
	}
	l, ok := r.Value.([]any)
	if !ok {
		return nil, malformed("array", r.Value)
	}
	return l, nil
}

// Text returns the result as a string, or a Malformed error.
func (r Result) Text() (string, error) {
	if r.Value == nil {
		return "", nil
	}
	s, ok := r.Value.(string)
	if !ok {
		return "", malformed("string", r.Value)
	}
	return s, nil
}

// Bool returns the result as a bool, or a Malformed error.
func (r Result) Bool() (bool, error) {
	b, ok := r.Value.(bool)
	if !ok {
		return false, malformed("bool", r.Value)
	}
	return b, nil
}

func malformed(want string, got any) *errors.Error {
	return errors.New(errors.ErrMalformed,
		fmt.Sprintf("backend returned %T where %s was expected", got, want),
		"The backend may be a different version than this client.")
}

// Reply carries the outcome of an asynchronous call.
type Reply struct {
	Result Result
	Err    error
}

// Go runs a call on its own goroutine and delivers exactly one Reply on the
// returned channel.
func Go(ctx context.Context, gw Gateway, command string, args Args) <-chan Reply {
	ch := make(chan Reply, 1)
	go func() {
		defer close(ch)
		res, err := gw.Invoke(ctx, command, args)
		ch <- Reply{Result: res, Err: err}
	}()
	return ch
}
