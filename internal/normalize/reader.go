package normalize

import (
	"math"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/spf13/cast"
)

// reader wraps one loosely typed payload object. Every accessor is total:
// missing, null, or unparseable values become a default and a debug line.
type reader struct {
	log  logger.Logger
	path string
	m    map[string]any
}

func newReader(log logger.Logger, path string, v any) (reader, bool) {
	r := reader{log: log, path: path}
	if v == nil {
		return r, false
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		log.Debug("%s: expected an object, got %T", path, v)
		return r, false
	}
	r.m = m
	return r, true
}

func (r reader) child(key string) (reader, bool) {
	return newReader(r.log, r.join(key), r.m[key])
}

func (r reader) join(key string) string {
	if r.path == "" {
		return key
	}
	return r.path + "." + key
}

// lookup returns the first non-null value among keys.
func (r reader) lookup(keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := r.m[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

func (r reader) has(keys ...string) bool {
	_, _, ok := r.lookup(keys...)
	return ok
}

func (r reader) defaulted(keys []string, format string, args ...any) {
	name := r.join(strings.Join(keys, "|"))
	r.log.Debug(name+": "+format, args...)
}

// float reads a non-negative number. Strings are parsed tolerantly.
func (r reader) float(keys ...string) float64 {
	v, _, ok := r.lookup(keys...)
	if !ok {
		r.defaulted(keys, "missing, using 0")
		return 0
	}
	f, ok := toFloat(v)
	if !ok {
		r.defaulted(keys, "unparseable %v, using 0", v)
		return 0
	}
	if f < 0 {
		r.defaulted(keys, "negative %v, clamping to 0", f)
		return 0
	}
	return f
}

// optFloat reads a number that is legitimately absent, such as a
// temperature sensor. Absent, unparseable, or negative gives nil.
func (r reader) optFloat(keys ...string) *float64 {
	v, _, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		r.defaulted(keys, "unparseable %v, omitting", v)
		return nil
	}
	if f < 0 {
		r.defaulted(keys, "negative %v, omitting", f)
		return nil
	}
	return &f
}

func (r reader) percent(keys ...string) float64 {
	return clampPercent(r.float(keys...))
}

func (r reader) integer(keys ...string) int {
	f := r.float(keys...)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func (r reader) str(def string, keys ...string) string {
	v, _, ok := r.lookup(keys...)
	if !ok {
		if def != "" {
			r.defaulted(keys, "missing, using %q", def)
		}
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		r.defaulted(keys, "not a string (%T), using %q", v, def)
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func (r reader) boolean(def bool, keys ...string) bool {
	v, _, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.defaulted(keys, "not a bool (%v), using %v", v, def)
		return def
	}
	return b
}

// strings reads a list of strings. A single string becomes a one-element
// list; comma separated strings are not split here.
func (r reader) strings(keys ...string) []string {
	v, _, ok := r.lookup(keys...)
	if !ok {
		return []string{}
	}
	if s, isStr := v.(string); isStr {
		if s = strings.TrimSpace(s); s == "" {
			return []string{}
		}
		return []string{s}
	}
	list, err := cast.ToStringSliceE(v)
	if err != nil {
		r.defaulted(keys, "not a list (%T), using empty", v)
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r reader) list(keys ...string) []any {
	v, _, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	list, err := cast.ToSliceE(v)
	if err != nil {
		r.defaulted(keys, "not a list (%T), using empty", v)
		return nil
	}
	return list
}

func toFloat(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// toUint converts a non-negative quantity to an integer count, scaling by
// mult first (e.g. 1024 for KB).
func toUint(f, mult float64) uint64 {
	v := f * mult
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(v)
	}
}

func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return clampPercent(float64(part) / float64(total) * 100)
}
