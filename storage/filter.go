package storage

import (
	"fmt"
	"slices"

	"github.com/poiesic/packvault/core"
)

// Filter selects documents by attribute equality. Every entry must match.
// A list attribute matches when it contains the value.
type Filter map[string]string

// Matches reports whether attrs satisfies every condition of f.
func (f Filter) Matches(attrs core.Attributes) bool {
	for key, want := range f {
		value, ok := attrs[key]
		if !ok {
			return false
		}
		switch v := value.(type) {
		case string:
			if v != want {
				return false
			}
		case []string:
			if !slices.Contains(v, want) {
				return false
			}
		default:
			if fmt.Sprint(v) != want {
				return false
			}
		}
	}
	return true
}
