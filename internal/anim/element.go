package anim

import (
	"strconv"
	"strings"
)

// Element is the animated target as seen by the core: an id, its tag and
// its static attributes.
type Element struct {
	ID    string            `yaml:"id"`
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// Attr returns the static attribute value, "" when unset
func (e *Element) Attr(name string) string {
	if e == nil || e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// Number parses a numeric static attribute, ignoring a trailing "px"
func (e *Element) Number(name string) (float64, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(e.Attr(name)), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
