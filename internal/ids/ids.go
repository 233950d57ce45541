// Package ids generates the short random identifiers used for tools, tasks and notes.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Source yields identifier suffixes. Tests substitute a constant source to make
// generated documents comparable.
type Source interface {
	Suffix(n int) string
}

// Random draws suffixes from a v4 UUID.
type Random struct{}

// Suffix returns n lowercase hex characters (at most 32).
func (Random) Suffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n <= 0 || n > len(s) {
		return s
	}
	return s[:n]
}

// Fixed always returns the same suffix.
type Fixed string

func (f Fixed) Suffix(int) string { return string(f) }

// New builds "<prefix>-<suffix>" with a seven character suffix.
func New(src Source, prefix string) string {
	if src == nil {
		src = Random{}
	}
	return prefix + "-" + src.Suffix(7)
}
