package site

import (
	"fmt"
	"slices"
	"strings"
)

// Mode selects how the generator lays out the site.
type Mode string

const (
	// ModeSite renders a full site with a top nav bar and sections.
	ModeSite Mode = "site"
	// ModeDoc renders a single component-library document.
	ModeDoc Mode = "doc"
)

var modes = map[string]Mode{
	"site": ModeSite,
	"doc":  ModeDoc,
}

// ParseMode normalizes case and surrounding whitespace. Unknown values are an error.
func ParseMode(raw string) (Mode, error) {
	if m, ok := modes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid mode %q (valid: %s)", raw, strings.Join(ModeValues(), ", "))
}

// ModeValues lists the accepted mode names, sorted.
func ModeValues() []string {
	out := make([]string, 0, len(modes))
	for k := range modes {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modes[string(m)]
	return ok
}
