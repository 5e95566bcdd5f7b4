package parsers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// floatPrefix matches the longest leading float literal, the way a browser's
// parseFloat reads it: optional sign, Infinity or a decimal with exponent.
var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// Characters kept by Average before parsing.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseFloatPrefix parses the leading float literal of s, ignoring leading
// whitespace and anything after the literal. ok is false when s does not
// start with a number.
func ParseFloatPrefix(s string) (value float64, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range still yields ±Inf or 0, which is what we want
		if ne, isNum := err.(*strconv.NumError); !isNum || ne.Err != strconv.ErrRange {
			return math.NaN(), false
		}
	}
	return v, true
}

// IsNumeric reports whether s is non-empty and starts with a float literal.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, ok := ParseFloatPrefix(s)
	return ok
}

// Average strips every field down to digits, '.' and '-', parses what is
// left and returns the mean rounded half-up as an integer string.
// Fields that end up empty or unparseable are skipped; when none remain
// the result is "".
func Average(fields []string) string {
	var sum float64
	count := 0
	for _, f := range fields {
		s := strings.TrimSpace(nonNumeric.ReplaceAllString(f, ""))
		if s == "" {
			continue
		}
		v, ok := ParseFloatPrefix(s)
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return ""
	}
	return FormatNumber(RoundHalfUp(sum / float64(count)))
}

// RoundHalfUp rounds to the nearest integer with ties going toward +Inf.
func RoundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

// FormatNumber renders a float the way a browser stringifies numbers:
// integers without a fraction, no negative zero, exponent form from 1e21.
func FormatNumber(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == 0:
		return "0"
	case math.Abs(x) >= 1e21:
		return strconv.FormatFloat(x, 'e', -1, 64)
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
