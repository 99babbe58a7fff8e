// Package lock provides an inter-process lock on a local path.
//
// Acquire uses mkdir as the atomic primitive: creating the lock directory
// fails if another process already holds it. The holder writes an info.json
// inside so waiters can say who holds it and clear it when it goes stale.
package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/errors"
)

// ErrLocked is returned by TryAcquire when another process holds the lock.
var ErrLocked = stderrors.New("lock is held by another process")

const infoName = "info.json"

// Options control how long Acquire waits.
type Options struct {
	// Timeout bounds the wait. Zero means try once.
	Timeout time.Duration
	// Stale is the age after which a held lock is broken. Zero never breaks.
	Stale time.Duration
	// Retry is the delay between attempts.
	Retry time.Duration
	// Purpose is recorded in the holder info.
	Purpose string
}

// DefaultOptions suit short critical sections like rewriting a state file.
var DefaultOptions = Options{
	Timeout: 5 * time.Second,
	Stale:   30 * time.Second,
	Retry:   50 * time.Millisecond,
}

// Lock is a held lock.
type Lock struct {
	Dir  string
	Info *Info
}

// PathFor returns the lock directory guarding target.
func PathFor(target string) string {
	return target + ".lock"
}

// TryAcquire takes the lock at dir once, returning ErrLocked if it is held.
func TryAcquire(dir, purpose string) (*Lock, error) {
	info := NewInfo(purpose)
	if err := os.Mkdir(dir, 0o700); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			fmt.Sprintf("Failed to create lock directory %s", dir),
			"Check that the parent directory exists and is writable.")
	}

	data, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, infoName), data, 0o600)
	}
	if err != nil {
		os.RemoveAll(dir) //nolint:errcheck // Cleanup, error not actionable
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			"Failed to write lock info file",
			"Check disk space and permissions.")
	}
	return &Lock{Dir: dir, Info: info}, nil
}

// Acquire takes the lock at dir, waiting up to opts.Timeout and breaking
// locks older than opts.Stale.
func Acquire(dir string, opts Options) (*Lock, error) {
	if opts.Retry <= 0 {
		opts.Retry = DefaultOptions.Retry
	}
	start := time.Now()
	for {
		l, err := TryAcquire(dir, opts.Purpose)
		if err == nil {
			return l, nil
		}
		if !stderrors.Is(err, ErrLocked) {
			return nil, err
		}

		if isStale(dir, opts.Stale) {
			if rmErr := os.RemoveAll(dir); rmErr == nil {
				continue
			}
		}

		if time.Since(start) >= opts.Timeout {
			return nil, errors.New(errors.ErrStorage,
				fmt.Sprintf("Timed out waiting for lock after %s", opts.Timeout),
				fmt.Sprintf("Lock held by: %s. Remove %s if that process is gone.", Holder(dir), dir))
		}
		time.Sleep(opts.Retry)
	}
}

// Release removes the lock.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir), "")
	}
	return nil
}

// Holder describes who holds the lock at dir.
func Holder(dir string) string {
	info, err := readInfo(dir)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

func isStale(dir string, threshold time.Duration) bool {
	if threshold <= 0 {
		return false
	}
	info, err := readInfo(dir)
	if err != nil {
		// A holder that died between mkdir and writing info leaves no
		// file; fall back to the directory's own age.
		st, statErr := os.Stat(dir)
		return statErr == nil && time.Since(st.ModTime()) > threshold
	}
	return info.Age() > threshold
}

func readInfo(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, infoName))
	if err != nil {
		return nil, err
	}
	return ParseInfo(data)
}
