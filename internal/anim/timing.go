package anim

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const indefinite = "indefinite"

// Repeat is the repeatCount policy. The zero value plays once.
type Repeat struct {
	Count      float64
	Indefinite bool
}

// RepeatForever is repeatCount="indefinite"
var RepeatForever = Repeat{Indefinite: true}

// Times builds a finite repeat policy
func Times(n float64) Repeat {
	return Repeat{Count: n}
}

func (r Repeat) IsZero() bool {
	return !r.Indefinite && r.Count == 0
}

func (r Repeat) String() string {
	if r.Indefinite {
		return indefinite
	}
	if r.Count <= 0 {
		return "1"
	}
	return strconv.FormatFloat(r.Count, 'f', -1, 64)
}

// ParseRepeat reads a repeatCount attribute value
func ParseRepeat(s string) (Repeat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Repeat{}, nil
	}
	if s == indefinite {
		return RepeatForever, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Repeat{}, fmt.Errorf("invalid repeatCount %q: %w", s, err)
	}
	return Repeat{Count: n}, nil
}

func (r Repeat) MarshalYAML() (interface{}, error) {
	if r.Indefinite {
		return indefinite, nil
	}
	return r.Count, nil
}

func (r *Repeat) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseRepeat(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Begin is a begin offset, either absolute or chained to the end of another
// animation ("<ref>.end+<delay>").
type Begin struct {
	Offset float64 // seconds, used when Ref is empty
	Ref    string
	Delay  float64 // seconds after the referenced end
}

// At builds an absolute begin offset
func At(seconds float64) Begin {
	return Begin{Offset: seconds}
}

// After builds a chained begin: ref.end+delay
func After(ref string, delay float64) Begin {
	return Begin{Ref: ref, Delay: delay}
}

func (b Begin) IsZero() bool {
	return b.Ref == "" && b.Offset == 0
}

func (b Begin) IsChained() bool {
	return b.Ref != ""
}

func (b Begin) String() string {
	if b.Ref == "" {
		return FormatSeconds(b.Offset)
	}
	switch {
	case b.Delay > 0:
		return b.Ref + ".end+" + FormatSeconds(b.Delay)
	case b.Delay < 0:
		return b.Ref + ".end-" + FormatSeconds(-b.Delay)
	}
	return b.Ref + ".end"
}

// ParseBegin reads "1.5s", "500ms", "a1.end" or "a1.end+0.5s"
func ParseBegin(s string) (Begin, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Begin{}, nil
	}
	if i := strings.Index(s, ".end"); i > 0 {
		b := Begin{Ref: s[:i]}
		rest := strings.TrimSpace(s[i+len(".end"):])
		if rest == "" {
			return b, nil
		}
		sign := 1.0
		switch rest[0] {
		case '+':
		case '-':
			sign = -1
		default:
			return Begin{}, fmt.Errorf("invalid begin %q", s)
		}
		d, err := ParseClock(strings.TrimSpace(rest[1:]))
		if err != nil {
			return Begin{}, fmt.Errorf("invalid begin %q: %w", s, err)
		}
		b.Delay = sign * d
		return b, nil
	}
	d, err := ParseClock(s)
	if err != nil {
		return Begin{}, fmt.Errorf("invalid begin %q: %w", s, err)
	}
	return Begin{Offset: d}, nil
}

func (b Begin) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b *Begin) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseBegin(node.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseClock parses a SMIL clock value with an optional h/min/s/ms unit.
// A bare number is seconds.
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	unit := 1.0
	switch {
	case strings.HasSuffix(s, "ms"):
		s, unit = strings.TrimSuffix(s, "ms"), 0.001
	case strings.HasSuffix(s, "min"):
		s, unit = strings.TrimSuffix(s, "min"), 60
	case strings.HasSuffix(s, "h"):
		s, unit = strings.TrimSuffix(s, "h"), 3600
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return v * unit, nil
}

// FormatSeconds renders seconds with the "s" suffix and no trailing zeros
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}
