// Package normalize turns loosely shaped records written by several legacy
// producers into the canonical domain shapes. Nothing in this package returns
// an error: unreadable fields fall back to their documented defaults.
package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Record is one decoded JSON object of unknown shape
type Record map[string]any

// First returns the value of the first alias that is present and not null.
func (r Record) First(aliases ...string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// FirstNonEmpty is First that also passes over empty strings, zero numbers
// and false, so a blank primary field falls through to its aliases.
func (r Record) FirstNonEmpty(aliases ...string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok && !isBlank(v) {
			return v, true
		}
	}
	return nil, false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case float64:
		return t == 0 || math.IsNaN(t)
	}
	return false
}

// String resolves the first alias to a trimmed string, or "" when none is usable.
func (r Record) String(aliases ...string) string {
	v, ok := r.First(aliases...)
	if !ok {
		return ""
	}
	return toString(v)
}

// NonEmptyString resolves the first non-blank alias to a trimmed string.
func (r Record) NonEmptyString(aliases ...string) string {
	v, ok := r.FirstNonEmpty(aliases...)
	if !ok {
		return ""
	}
	return toString(v)
}

func toString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Amount resolves the first alias to a finite, non-negative number.
func (r Record) Amount(aliases ...string) float64 {
	v, ok := r.First(aliases...)
	if !ok {
		return 0
	}
	return toAmount(v)
}

// Bool resolves the first alias to a boolean, falling back to def.
func (r Record) Bool(def bool, aliases ...string) bool {
	v, ok := r.First(aliases...)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Object resolves the first alias holding a nested object.
func (r Record) Object(aliases ...string) (Record, bool) {
	for _, alias := range aliases {
		if m, ok := r[alias].(map[string]any); ok {
			return Record(m), true
		}
	}
	return nil, false
}

// List resolves the first alias holding an array.
func (r Record) List(aliases ...string) ([]any, bool) {
	for _, alias := range aliases {
		if l, ok := r[alias].([]any); ok {
			return l, true
		}
	}
	return nil, false
}

// ParseRecord decodes a single JSON object. Anything else yields ok=false.
func ParseRecord(raw []byte) (Record, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return Record(m), true
}

// ParseRecords decodes a JSON array, keeping only its object elements.
func ParseRecords(raw []byte) ([]Record, bool) {
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, false
	}
	return objects(list), true
}

func objects(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func toAmount(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

var epoch = time.Unix(0, 0).UTC()

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp parses a date value. Numbers are milliseconds since the epoch;
// strings are tried against the common ISO layouts. Anything unparseable is
// the epoch, never an error.
func Timestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC()
			}
		}
		return epoch
	case bool, nil:
		return epoch
	}

	ms, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return epoch
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// IsEpoch reports whether t is the value used for unparseable dates.
func IsEpoch(t time.Time) bool {
	return t.Equal(epoch)
}
