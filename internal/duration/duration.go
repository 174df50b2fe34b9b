// Package duration converts between Jira style duration strings ("2h 30m")
// and whole seconds.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// ErrNegative is returned by Format for negative input.
var ErrNegative = fmt.Errorf("duration cannot be negative")

// ParseError describes why a duration string could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse duration %q: %s", e.Input, e.Reason)
}

// Parse converts a duration string into seconds. Supported suffixes are d
// (days), h (hours), m (minutes) and s (seconds). Tokens may appear in any
// order, separated by optional whitespace; repeated units are summed.
func Parse(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, &ParseError{Input: input, Reason: "empty duration"}
	}

	total := 0
	token := ""
	for _, r := range trimmed {
		switch {
		case unicode.IsDigit(r):
			token += string(r)
		case unicode.IsSpace(r):
			if token != "" {
				return 0, &ParseError{Input: input, Reason: "suffix missing for duration segment"}
			}
		default:
			if token == "" {
				return 0, &ParseError{Input: input, Reason: fmt.Sprintf("missing value before suffix %q", r)}
			}
			value, err := strconv.Atoi(token)
			if err != nil {
				return 0, &ParseError{Input: input, Reason: fmt.Sprintf("bad value %q", token)}
			}
			token = ""
			switch r {
			case 'd':
				total += value * secondsPerDay
			case 'h':
				total += value * secondsPerHour
			case 'm':
				total += value * secondsPerMinute
			case 's':
				total += value
			default:
				return 0, &ParseError{Input: input, Reason: fmt.Sprintf("unknown suffix %q", r)}
			}
		}
	}
	if token != "" {
		return 0, &ParseError{Input: input, Reason: "duration segment missing suffix"}
	}
	return total, nil
}

// Format renders seconds in Jira's duration representation, largest unit
// first, omitting zero components. Values under a minute always include the
// seconds part, so zero formats as "0s".
func Format(seconds int) (string, error) {
	if seconds < 0 {
		return "", ErrNegative
	}

	var parts []string
	remaining := seconds

	if remaining >= secondsPerDay {
		parts = append(parts, fmt.Sprintf("%dd", remaining/secondsPerDay))
		remaining %= secondsPerDay
	}
	if remaining >= secondsPerHour {
		parts = append(parts, fmt.Sprintf("%dh", remaining/secondsPerHour))
		remaining %= secondsPerHour
	}
	if remaining >= secondsPerMinute {
		parts = append(parts, fmt.Sprintf("%dm", remaining/secondsPerMinute))
		remaining %= secondsPerMinute
	}
	if len(parts) == 0 || remaining > 0 {
		parts = append(parts, fmt.Sprintf("%ds", remaining))
	}

	return strings.Join(parts, " "), nil
}

// MustFormat is Format for values already known to be non-negative, such as
// timer reads. It falls back to "0s" rather than panicking.
func MustFormat(seconds int) string {
	s, err := Format(seconds)
	if err != nil {
		return "0s"
	}
	return s
}
