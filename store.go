package consolekit

import (
	"sort"
	"strings"
)

// PathSep joins parent prefix, field name and repeated-entry index into a
// FieldPrefix. Two sibling fields never share a prefix; a child prefix
// always extends its parent's prefix textually.
const PathSep = "-"

// countSuffix marks the reserved per-field key holding the next unused
// repeated-entry index.
const countSuffix = "_count"

// JoinPrefix extends a parent prefix with one path segment.
func JoinPrefix(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + PathSep + segment
}

// CountKey returns the reserved count key for a repeated field's prefix.
// The count key is the sole source of truth for repeated-field cardinality;
// it is never derived by scanning existing children.
func CountKey(prefix string) string {
	return prefix + countSuffix
}

// FormStore holds the field values of one form instance, keyed by field id
// or FieldPrefix. Values are scalars (string or bool) or small per-option
// maps; keys are unique within a store. A store is created when its form
// container fragment is inserted and discarded, with all its keys, when the
// fragment is removed.
type FormStore struct {
	vals map[string]any
}

// NewFormStore creates an empty store.
func NewFormStore() *FormStore {
	return &FormStore{vals: make(map[string]any)}
}

// Set writes value under key, replacing any previous value.
func (s *FormStore) Set(key string, value any) {
	s.vals[key] = value
}

// Get returns the value stored under key.
func (s *FormStore) Get(key string) (any, bool) {
	v, ok := s.vals[key]
	return v, ok
}

// GetString returns the string stored under key, or "" if the key is absent
// or holds a non-string.
func (s *FormStore) GetString(key string) string {
	if v, ok := s.vals[key].(string); ok {
		return v
	}
	return ""
}

// Delete removes key from the store. Absent keys are ignored.
func (s *FormStore) Delete(key string) {
	delete(s.vals, key)
}

// Len returns the number of keys in the store.
func (s *FormStore) Len() int {
	return len(s.vals)
}

// Keys returns all keys in sorted order.
func (s *FormStore) Keys() []string {
	keys := make([]string, 0, len(s.vals))
	for k := range s.vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the store's contents for submission.
func (s *FormStore) Snapshot() map[string]any {
	out := make(map[string]any, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// ClearPrefix removes the key exactly equal to prefix and every key nested
// under it (keys beginning with prefix + "-"). Keys that merely contain
// prefix as a non-boundary substring are kept: clearing "field-1" does not
// touch "field-10-x".
//
// This is the only mechanism for reclaiming removed repeated entries and
// torn-down option sub-forms; callers must invoke it on teardown or stale
// values leak into a later submission.
func (s *FormStore) ClearPrefix(prefix string) {
	delete(s.vals, prefix)
	nested := prefix + PathSep
	for k := range s.vals {
		if strings.HasPrefix(k, nested) {
			delete(s.vals, k)
		}
	}
}

// AddIndex reserves the next slot of a repeated field and returns its index.
//
// The count key holds the next unused index: the first add assigns index 0
// and writes a count of 1; each later add assigns the current count and
// increments it. Removal never decrements the count - removed indices are
// frozen slots, not a compacted list - so after n adds the count is n
// regardless of intervening removes.
func (s *FormStore) AddIndex(prefix string) int {
	key := CountKey(prefix)
	idx := 0
	if v, ok := s.vals[key].(int); ok {
		idx = v
	}
	s.vals[key] = idx + 1
	return idx
}

// Count returns the current value of the count key, or 0 if no entry was
// ever added.
func (s *FormStore) Count(prefix string) int {
	if v, ok := s.vals[CountKey(prefix)].(int); ok {
		return v
	}
	return 0
}
