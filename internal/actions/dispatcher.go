package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
)

// Confirmer asks the operator whether a dangerous action should proceed.
type Confirmer interface {
	Confirm(ctx context.Context, a Action) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, a Action) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, a Action) bool { return f(ctx, a) }

// Invalidator drops cached state after a mutating action.
type Invalidator interface {
	Invalidate()
}

// Outcome is what happened to one dispatch.
type Outcome struct {
	Key    string
	Output string
	Err    error
	// Skipped is set when the action was already in flight.
	Skipped bool
	// Declined is set when the operator refused the confirmation.
	Declined bool
}

// OK reports whether the action ran and succeeded.
func (o Outcome) OK() bool {
	return !o.Skipped && !o.Declined && o.Err == nil
}

// Dispatcher runs actions against the gateway, one in flight per key, and
// reports every outcome as a notification. No failure escapes as a panic.
type Dispatcher struct {
	gw         gateway.Gateway
	catalog    *Catalog
	notify     Notifier
	confirm    Confirmer
	invalidate Invalidator
	// shouldConfirm reads the confirmDangerousActions setting.
	shouldConfirm func() bool
	log           logger.Logger

	mu   sync.Mutex
	busy map[string]bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConfirmer sets the confirmation prompt for dangerous actions. Without
// one, dangerous actions are declined whenever confirmation is required.
func WithConfirmer(c Confirmer) Option {
	return func(d *Dispatcher) { d.confirm = c }
}

// WithInvalidator sets what gets invalidated after a mutating action
// succeeds.
func WithInvalidator(inv Invalidator) Option {
	return func(d *Dispatcher) { d.invalidate = inv }
}

// WithConfirmSetting sets the function consulted before confirming.
func WithConfirmSetting(fn func() bool) Option {
	return func(d *Dispatcher) { d.shouldConfirm = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher creates a dispatcher for catalog. A nil catalog means the
// default one; a nil notifier discards notifications.
func NewDispatcher(gw gateway.Gateway, catalog *Catalog, notify Notifier, opts ...Option) *Dispatcher {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if notify == nil {
		notify = NewQueue(nil)
	}
	d := &Dispatcher{
		gw:            gw,
		catalog:       catalog,
		notify:        notify,
		shouldConfirm: func() bool { return true },
		log:           logger.Default(),
		busy:          make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the dispatcher's catalog.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Dispatch runs a catalog action by key and reports the outcome through a
// notification.
func (d *Dispatcher) Dispatch(ctx context.Context, key string) Outcome {
	a, ok := d.catalog.Get(key)
	if !ok {
		err := errors.New(errors.ErrAction,
			"Unknown action: "+key,
			"Run 'sysdeck actions list' to see available actions.")
		d.notify.Notify(NotifyError, err.Short())
		return Outcome{Key: key, Err: err}
	}
	return d.Run(ctx, a)
}

// DispatchResult runs a catalog action and returns its textual output.
func (d *Dispatcher) DispatchResult(ctx context.Context, key string) (string, error) {
	o := d.Dispatch(ctx, key)
	return o.Output, o.resultErr()
}

func (o Outcome) resultErr() error {
	switch {
	case o.Err != nil:
		return o.Err
	case o.Skipped:
		return errors.New(errors.ErrAction, "Action "+o.Key+" is already running", "Wait for it to finish.")
	case o.Declined:
		return errors.New(errors.ErrAction, "Action "+o.Key+" was cancelled", "")
	}
	return nil
}

// NeedsConfirmation reports whether running a would prompt first.
func (d *Dispatcher) NeedsConfirmation(a Action) bool {
	return a.Dangerous && d.shouldConfirm()
}

// Run runs a, asking for confirmation first when it is dangerous.
func (d *Dispatcher) Run(ctx context.Context, a Action) Outcome {
	return d.run(ctx, a, false)
}

// RunConfirmed runs a whose confirmation the caller already obtained.
func (d *Dispatcher) RunConfirmed(ctx context.Context, a Action) Outcome {
	return d.run(ctx, a, true)
}

func (d *Dispatcher) run(ctx context.Context, a Action, confirmed bool) Outcome {
	if !d.acquire(a.Key) {
		d.log.Debug("action %s already in flight, ignoring", a.Key)
		return Outcome{Key: a.Key, Skipped: true}
	}
	defer d.release(a.Key)

	if !confirmed && d.NeedsConfirmation(a) {
		if d.confirm == nil || !d.confirm.Confirm(ctx, a) {
			d.notify.Notify(NotifyInfo, a.Label+" cancelled")
			return Outcome{Key: a.Key, Declined: true}
		}
	}

	out, err := d.safeRun(ctx, a)
	if err != nil {
		d.log.Warn("action %s failed: %s", a.Key, errors.Summary(err))
		d.notify.Notify(NotifyError, a.Label+" failed: "+errors.Summary(err))
		return Outcome{Key: a.Key, Err: err}
	}

	if a.Mutates && d.invalidate != nil {
		d.invalidate.Invalidate()
	}
	d.notify.Notify(NotifySuccess, successMessage(a))
	return Outcome{Key: a.Key, Output: out}
}

func successMessage(a Action) string {
	if a.Kind == KindResult {
		return a.Label + " finished"
	}
	return a.Label + " succeeded"
}

func (d *Dispatcher) safeRun(ctx context.Context, a Action) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrAction, fmt.Sprintf("action %s panicked: %v", a.Key, r), "")
		}
	}()
	if a.Run == nil {
		return "", errors.New(errors.ErrAction, "Action "+a.Key+" has no operation", "")
	}
	return a.Run(ctx, d.gw)
}

func (d *Dispatcher) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[key] {
		return false
	}
	d.busy[key] = true
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, key)
}

// IsBusy reports whether the action with key is in flight.
func (d *Dispatcher) IsBusy(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[key]
}

// Busy returns the keys currently in flight.
func (d *Dispatcher) Busy() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]string, 0, len(d.busy))
	for k := range d.busy {
		keys = append(keys, k)
	}
	return keys
}
