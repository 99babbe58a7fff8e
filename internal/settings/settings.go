// Package settings persists the operator's preferences.
//
// Settings live as one flat JSON object under the key "sysdeck-settings" in
// a small state file. A missing file or key means defaults; unknown fields
// are ignored and missing fields take their default value. Other top-level
// keys in the file are preserved on save.
package settings

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/lock"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/spf13/cast"
)

// StorageKey is the top-level key the settings object is stored under.
const StorageKey = "sysdeck-settings"

// Refresh interval bounds, in seconds.
const (
	MinRefreshInterval = 5
	MaxRefreshInterval = 3600
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings are the persisted operator preferences.
type Settings struct {
	AutoRefresh             bool   `json:"autoRefresh"`
	RefreshInterval         int    `json:"refreshInterval"`
	ShowSystemProcesses     bool   `json:"showSystemProcesses"`
	ConfirmDangerousActions bool   `json:"confirmDangerousActions"`
	EnableAnimations        bool   `json:"enableAnimations"`
	Theme                   string `json:"theme"`
}

// Defaults returns the documented default settings.
func Defaults() Settings {
	return Settings{
		AutoRefresh:             true,
		RefreshInterval:         30,
		ShowSystemProcesses:     true,
		ConfirmDangerousActions: true,
		EnableAnimations:        true,
		Theme:                   ThemeDark,
	}
}

// Interval returns the refresh interval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

// Validate checks field ranges.
func (s Settings) Validate() error {
	if s.RefreshInterval < MinRefreshInterval || s.RefreshInterval > MaxRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refreshInterval %d is out of range", s.RefreshInterval),
			fmt.Sprintf("Use a value between %d and %d seconds.", MinRefreshInterval, MaxRefreshInterval))
	}
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown theme %q", s.Theme),
			"Use 'dark' or 'light'.")
	}
	return nil
}

// Keys returns the JSON names of every setting, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type field struct {
	get func(s *Settings) any
	set func(s *Settings, v string) error
}

var fields = map[string]field{
	"autoRefresh": {
		get: func(s *Settings) any { return s.AutoRefresh },
		set: func(s *Settings, v string) (err error) { s.AutoRefresh, err = cast.ToBoolE(v); return },
	},
	"refreshInterval": {
		get: func(s *Settings) any { return s.RefreshInterval },
		set: func(s *Settings, v string) (err error) { s.RefreshInterval, err = cast.ToIntE(v); return },
	},
	"showSystemProcesses": {
		get: func(s *Settings) any { return s.ShowSystemProcesses },
		set: func(s *Settings, v string) (err error) { s.ShowSystemProcesses, err = cast.ToBoolE(v); return },
	},
	"confirmDangerousActions": {
		get: func(s *Settings) any { return s.ConfirmDangerousActions },
		set: func(s *Settings, v string) (err error) { s.ConfirmDangerousActions, err = cast.ToBoolE(v); return },
	},
	"enableAnimations": {
		get: func(s *Settings) any { return s.EnableAnimations },
		set: func(s *Settings, v string) (err error) { s.EnableAnimations, err = cast.ToBoolE(v); return },
	},
	"theme": {
		get: func(s *Settings) any { return s.Theme },
		set: func(s *Settings, v string) error { s.Theme = strings.ToLower(strings.TrimSpace(v)); return nil },
	},
}

func lookupField(key string) (field, error) {
	f, ok := fields[key]
	if !ok {
		return field{}, errors.New(errors.ErrConfig,
			"Unknown setting: "+key,
			"Known settings: "+strings.Join(Keys(), ", "))
	}
	return f, nil
}

// Get returns the value of the named setting.
func (s Settings) Get(key string) (any, error) {
	f, err := lookupField(key)
	if err != nil {
		return nil, err
	}
	return f.get(&s), nil
}

// With returns a copy of s with the named setting parsed from value and
// validated.
func (s Settings) With(key, value string) (Settings, error) {
	f, err := lookupField(key)
	if err != nil {
		return s, err
	}
	next := s
	if err := f.set(&next, value); err != nil {
		return s, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid value %q for %s", value, key), "")
	}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// DefaultPath returns ~/.config/sysdeck/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrStorage,
			"Can't find home directory",
			"Set HOME or pass an explicit state path.")
	}
	return filepath.Join(home, ".config", "sysdeck", "state.json"), nil
}

// Store loads and saves settings at a path. Safe for concurrent use; saves
// are also serialized across processes with a lock directory.
type Store struct {
	path string
	log  logger.Logger

	mu      sync.RWMutex
	current Settings
	subs    []func(Settings)
}

// Open loads the store at path. A missing or unreadable file yields
// defaults; only an inaccessible path is an error.
func Open(path string, log logger.Logger) (*Store, error) {
	s := &Store{path: path, log: logger.OrDefault(log), current: Defaults()}
	cur, err := s.read()
	if err != nil {
		return nil, err
	}
	s.current = cur
	return s, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ConfirmDangerous reports the confirmDangerousActions setting.
func (s *Store) ConfirmDangerous() bool {
	return s.Get().ConfirmDangerousActions
}

// OnChange registers fn to run after every successful save.
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Save validates and persists next.
func (s *Store) Save(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = next
	subs := append([]func(Settings){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// Set parses and persists one named setting.
func (s *Store) Set(key, value string) (Settings, error) {
	next, err := s.Get().With(key, value)
	if err != nil {
		return s.Get(), err
	}
	return next, s.Save(next)
}

// Update applies fn to a copy of the current settings and saves the result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	next := s.Get()
	fn(&next)
	return next, s.Save(next)
}

// Reset restores and persists the defaults.
func (s *Store) Reset() error {
	return s.Save(Defaults())
}

func (s *Store) read() (Settings, error) {
	out := Defaults()
	doc, err := readDoc(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		if stderrors.Is(err, fs.ErrPermission) {
			return out, errors.WrapWithCode(err, errors.ErrStorage,
				"Can't read settings file "+s.path,
				"Check the file's permissions.")
		}
		s.log.Warn("settings file %s is unreadable, using defaults: %v", s.path, err)
		return out, nil
	}

	raw, ok := doc[StorageKey]
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("stored settings are malformed, using defaults: %v", err)
		return Defaults(), nil
	}
	if err := out.Validate(); err != nil {
		s.log.Warn("stored settings are invalid, using defaults: %s", errors.Summary(err))
		return Defaults(), nil
	}
	return out, nil
}

func (s *Store) write(next Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Can't create settings directory",
			"Check permissions on "+filepath.Dir(s.path))
	}

	l, err := lock.Acquire(lock.PathFor(s.path), lock.Options{
		Timeout: lock.DefaultOptions.Timeout,
		Stale:   lock.DefaultOptions.Stale,
		Purpose: "settings",
	})
	if err != nil {
		return err
	}
	defer l.Release() //nolint:errcheck // Cleanup, error not actionable

	doc, err := readDoc(s.path)
	if err != nil {
		// Start over rather than fail on a corrupt file.
		doc = map[string]json.RawMessage{}
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage, "Failed to encode settings", "")
	}
	doc[StorageKey] = encoded

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage, "Failed to encode settings file", "")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Failed to write settings file",
			"Check disk space and permissions.")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) //nolint:errcheck // Cleanup, error not actionable
		return errors.WrapWithCode(err, errors.ErrStorage, "Failed to replace settings file", "")
	}
	s.log.Debug("saved settings to %s", s.path)
	return nil
}

func readDoc(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	// A literal null decodes to a nil map.
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}
