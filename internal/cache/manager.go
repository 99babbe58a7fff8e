package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/classify"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/normalize"
)

const (
	// DefaultTTL is how long a snapshot is served without refetching.
	DefaultTTL = 5 * time.Minute
	// DefaultRefreshInterval is how often the background refresher
	// replaces the snapshot regardless of TTL.
	DefaultRefreshInterval = 2 * time.Minute
)

// TickerFunc starts a ticker and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Manager owns the single SystemSnapshot slot. It fetches through the
// gateway, normalizes and classifies the payload, and hands out copies.
//
// Concurrent refreshes are not coalesced: overlapping callers each hit the
// gateway and the last one to finish wins.
type Manager struct {
	gw       gateway.Gateway
	norm     *normalize.Normalizer
	engine   *classify.Engine
	slot     *Slot[model.SystemSnapshot]
	clock    Clock
	ttl      time.Duration
	interval time.Duration
	ticker   TickerFunc
	log      logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for TTL checks and FetchedAt stamps.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) { m.ttl = d }
}

// WithRefreshInterval overrides DefaultRefreshInterval. Zero disables the
// background refresher.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithTicker replaces the background refresher's ticker.
func WithTicker(f TickerFunc) Option {
	return func(m *Manager) { m.ticker = f }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager. Nothing is fetched until the first
// Snapshot or Refresh call.
func NewManager(gw gateway.Gateway, norm *normalize.Normalizer, engine *classify.Engine, opts ...Option) *Manager {
	m := &Manager{
		gw:       gw,
		norm:     norm,
		engine:   engine,
		clock:    SystemClock,
		ttl:      DefaultTTL,
		interval: DefaultRefreshInterval,
		ticker:   realTicker,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logger.OrDefault(m.log)
	if m.norm == nil {
		m.norm = normalize.New(m.log)
	}
	if m.engine == nil {
		m.engine = classify.NewEngine(nil, "", m.log)
	}
	m.slot = NewSlot(m.ttl, m.clock, model.SystemSnapshot.Clone)
	return m
}

// Snapshot returns the cached snapshot if it is within the TTL, otherwise
// fetches a fresh one.
func (m *Manager) Snapshot(ctx context.Context) (model.SystemSnapshot, error) {
	if snap, ok := m.slot.Get(); ok {
		return snap, nil
	}
	return m.Refresh(ctx)
}

// Refresh fetches a new snapshot and replaces the cached one. On failure
// the previous snapshot stays in place.
func (m *Manager) Refresh(ctx context.Context) (model.SystemSnapshot, error) {
	res, err := m.gw.Invoke(ctx, gateway.CmdSystemInfo, nil)
	if err == nil {
		var raw map[string]any
		raw, err = res.Map()
		if err == nil {
			snap := m.engine.Snapshot(m.norm.Snapshot(raw))
			snap.FetchedAt = m.clock.Now()
			m.slot.Put(snap)
			m.setErr(nil)
			return snap, nil
		}
	}
	m.log.Debug("snapshot refresh failed: %v", err)
	m.setErr(err)
	return model.SystemSnapshot{}, err
}

// Cached returns the last good snapshot regardless of age.
func (m *Manager) Cached() (model.SystemSnapshot, bool) {
	e, ok := m.slot.Entry()
	return e.Value, ok
}

// Invalidate drops the cached snapshot so the next Snapshot call fetches.
func (m *Manager) Invalidate() {
	m.slot.Invalidate()
}

// LastError returns the error from the most recent refresh, or nil.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Start launches the background refresher. Calling Start twice is a no-op.
func (m *Manager) Start(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	ticks, stop := m.ticker(m.interval)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if _, err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
					m.log.Warn("background refresh failed: %v", err)
				}
			}
		}
	}()
}

// Close stops the background refresher and waits for it to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		m.wg.Wait()
	}
}
