// Package cache keeps the last-known-good system snapshot so view switches
// don't each cost a backend round trip.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a ManualClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock stopped at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Entry is a cached value and when it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Slot holds at most one value with a time-to-live. Values are copied on
// the way in and out, so callers never share memory with the slot.
type Slot[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	clock Clock
	clone func(T) T
	entry *Entry[T]
}

// NewSlot creates an empty slot. clone deep-copies a value; nil means T is
// safe to copy by assignment.
func NewSlot[T any](ttl time.Duration, clock Clock, clone func(T) T) *Slot[T] {
	if clock == nil {
		clock = SystemClock
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Slot[T]{ttl: ttl, clock: clock, clone: clone}
}

// Get returns the value if one is held and younger than the TTL.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if s.entry == nil {
		return zero, false
	}
	if s.clock.Now().Sub(s.entry.FetchedAt) >= s.ttl {
		return zero, false
	}
	return s.clone(s.entry.Value), true
}

// Entry returns whatever is held regardless of age, for showing stale data
// while a refresh is failing.
func (s *Slot[T]) Entry() (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil {
		return Entry[T]{}, false
	}
	return Entry[T]{Value: s.clone(s.entry.Value), FetchedAt: s.entry.FetchedAt}, true
}

// Put replaces the held value wholesale, stamped with the current time.
func (s *Slot[T]) Put(v T) {
	e := &Entry[T]{Value: s.clone(v), FetchedAt: s.clock.Now()}
	s.mu.Lock()
	s.entry = e
	s.mu.Unlock()
}

// Invalidate empties the slot.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()
}

// TTL returns the slot's time-to-live.
func (s *Slot[T]) TTL() time.Duration {
	return s.ttl
}
