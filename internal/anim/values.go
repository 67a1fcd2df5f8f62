package anim

import (
	"strconv"
	"strings"
)

// ParseNumbers splits a whitespace/comma separated value ("10 20", "45,50,50")
// into numbers. ok is false when any field is not a number.
func ParseNumbers(s string) ([]float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// FormatNumbers joins numbers with single spaces, without trailing zeros
func FormatNumbers(nums ...float64) string {
	parts := make([]string, len(nums))
	for i, v := range nums {
		if v == 0 {
			v = 0 // -0
		}
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// IsColorAttribute reports whether name holds a paint/color value
func IsColorAttribute(name string) bool {
	return colorAttributes[strings.ToLower(name)]
}
