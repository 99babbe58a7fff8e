package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/logger"
)

// Handler executes one backend command.
type Handler func(ctx context.Context, args Args) (any, error)

// Registry is an in-process Gateway: a table of handlers keyed by command
// name. It backs the local transport and the `sysdeck backend` command.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	codec    Codec
	log      logger.Logger
}

// NewRegistry creates an empty registry. Handler results are normalized
// through the JSON codec.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		codec:    JSONCodec{},
		log:      logger.OrDefault(log),
	}
}

// Register binds a handler to a command name, replacing any previous one.
func (r *Registry) Register(command string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[command] = h
}

// Commands returns the registered command names in sorted order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named handler.
func (r *Registry) Invoke(ctx context.Context, command string, args Args) (res Result, err error) {
	r.mu.RLock()
	h, ok := r.handlers[command]
	r.mu.RUnlock()
	if !ok {
		return Result{}, errors.New(errors.ErrUnknownCommand,
			fmt.Sprintf("unknown backend command %q", command),
			"Run 'sysdeck backend --list' to see supported commands.")
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("handler %s panicked: %v", command, p)
			res = Result{}
			err = errors.New(errors.ErrRejected, fmt.Sprintf("%s failed: %v", command, p), "")
		}
	}()

	if args == nil {
		args = Args{}
	}
	r.log.Debug("invoke %s", command)

	value, err := h(ctx, args)
	if err != nil {
		return Result{}, asRejected(command, err)
	}

	generic, err := roundTrip(r.codec, value)
	if err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrMalformed,
			fmt.Sprintf("%s produced a result that can't be encoded", command), "")
	}
	return Result{Value: generic}, nil
}

// asRejected keeps gateway-coded errors as they are and classifies
// everything else as a domain error from the backend.
func asRejected(command string, err error) error {
	switch errors.CodeOf(err) {
	case errors.ErrRejected, errors.ErrUnknownCommand, errors.ErrMalformed, errors.ErrUnreachable:
		return err
	}
	var sdErr *errors.Error
	if stderrors.As(err, &sdErr) {
		return &errors.Error{
			Code:       errors.ErrRejected,
			Message:    sdErr.Message,
			Suggestion: sdErr.Suggestion,
			Cause:      sdErr.Cause,
		}
	}
	return errors.WrapWithCode(err, errors.ErrRejected, fmt.Sprintf("%s failed", command), "")
}
