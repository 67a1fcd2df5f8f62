package compiler

import (
	"math"
	"strconv"
	"strings"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// maxFractional is the magnitude from which float64 holds no fractional
// digits, so rounding can only lose precision
const maxFractional = 1 << 52

// formatNumber rounds v to precision decimals and prints it without
// trailing zeros. A negative precision prints v as is.
func formatNumber(v float64, precision int) string {
	v = roundTo(v, precision)
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ',', ';', '(', ')':
		return true
	}
	return false
}

// parseToken reports whether tok is entirely a finite number. The fast
// scanner only finds the token's extent; it loses precision on long
// mantissas, so the value itself comes from strconv.
func parseToken(tok string) (float64, bool) {
	if _, n := pstrconv.ParseFloat([]byte(tok)); n == 0 || n != len(tok) {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// RoundValue rounds every token of s that parses as a finite number and
// leaves everything else (colors, units, path commands, separators) as is.
func RoundValue(s string, precision int) string {
	if precision < 0 || s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if isSeparator(s[i]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && !isSeparator(s[j]) {
			j++
		}
		tok := s[i:j]
		if v, ok := parseToken(tok); ok {
			b.WriteString(formatNumber(v, precision))
		} else {
			b.WriteString(tok)
		}
		i = j
	}
	return b.String()
}
