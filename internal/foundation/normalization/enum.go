// Package normalization maps loosely written configuration values onto typed
// enumerations.
package normalization

import (
	"sort"
	"strings"
)

// Enum resolves case-insensitive, whitespace-tolerant names to values of T.
type Enum[T ~string] struct {
	name   string
	values map[string]T
	keys   []string
}

// NewEnum builds an Enum over values. The name is used in messages.
func NewEnum[T ~string](name string, values ...T) *Enum[T] {
	e := &Enum[T]{name: name, values: make(map[string]T, len(values))}
	for _, v := range values {
		k := Clean(string(v))
		e.values[k] = v
		e.keys = append(e.keys, k)
	}
	sort.Strings(e.keys)
	return e
}

// Name returns the name given to NewEnum.
func (e *Enum[T]) Name() string { return e.name }

// Parse returns the value matching raw after cleaning.
func (e *Enum[T]) Parse(raw string) (T, bool) {
	v, ok := e.values[Clean(raw)]
	return v, ok
}

// Resolve is Parse with a fallback for empty input. Unknown input is returned
// cleaned so a later validation step can report it. changed reports whether
// the result differs from raw.
func (e *Enum[T]) Resolve(raw string, fallback T) (value T, changed bool) {
	cleaned := Clean(raw)
	switch v, ok := e.values[cleaned]; {
	case cleaned == "":
		value = fallback
	case ok:
		value = v
	default:
		value = T(cleaned)
	}
	return value, raw != "" && string(value) != raw
}

// Valid reports whether v is one of the enumeration's values.
func (e *Enum[T]) Valid(v T) bool {
	got, ok := e.values[string(v)]
	return ok && got == v
}

// Keys lists the accepted names in sorted order.
func (e *Enum[T]) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Clean lower-cases and trims s.
func Clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
