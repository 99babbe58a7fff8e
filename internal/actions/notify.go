package actions

import (
	"sync"
	"time"
)

// NotificationKind is the severity of a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Auto-dismiss durations per kind.
const (
	SuccessDuration = 3000 * time.Millisecond
	ErrorDuration   = 5000 * time.Millisecond
	InfoDuration    = 3000 * time.Millisecond
)

// DurationFor returns the auto-dismiss duration for kind.
func DurationFor(kind NotificationKind) time.Duration {
	if kind == NotifyError {
		return ErrorDuration
	}
	return SuccessDuration
}

// Notification is a transient message for the operator.
type Notification struct {
	ID       int
	Kind     NotificationKind
	Message  string
	Duration time.Duration
	PostedAt time.Time
}

// Expired reports whether the notification should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	return n.Duration > 0 && !now.Before(n.PostedAt.Add(n.Duration))
}

// Notifier receives notifications.
type Notifier interface {
	Notify(kind NotificationKind, message string) Notification
}

// Queue is a Notifier that keeps notifications until they are dismissed or
// expire. Safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int
	items  []Notification
}

var _ Notifier = (*Queue)(nil)

// NewQueue creates an empty queue. A nil now uses time.Now.
func NewQueue(now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{now: now}
}

// Notify posts a notification with the default duration for its kind.
func (q *Queue) Notify(kind NotificationKind, message string) Notification {
	return q.Post(kind, message, DurationFor(kind))
}

// Post posts a notification with an explicit duration. A zero duration never
// expires on its own.
func (q *Queue) Post(kind NotificationKind, message string, d time.Duration) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	n := Notification{ID: q.nextID, Kind: kind, Message: message, Duration: d, PostedAt: q.now()}
	q.items = append(q.items, n)
	return n
}

// Dismiss removes a notification by id.
func (q *Queue) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Prune drops expired notifications and returns how many were removed.
func (q *Queue) Prune() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.items[:0]
	for _, n := range q.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	removed := len(q.items) - len(kept)
	q.items = kept
	return removed
}

// Active returns the unexpired notifications, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	out := make([]Notification, 0, len(q.items))
	for _, n := range q.items {
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	return out
}
