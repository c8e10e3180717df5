// Package dates computes calendar-day differences between textual dates.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPattern is the date pattern used by DaysBetween.
const DefaultPattern = "dd/MM/yyyy"

const secondsPerDay = 24 * 60 * 60

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports an absent or unparsable date argument.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DaysBetween returns the signed number of days from first to second,
// both written as dd/MM/yyyy.
func DaysBetween(first, second string) (int, error) {
	return DaysBetweenPattern(first, second, DefaultPattern)
}

// DaysBetweenPattern is DaysBetween for an arbitrary pattern made of the
// tokens yyyy, MM, M, dd and d plus punctuation literals.
func DaysBetweenPattern(first, second, pattern string) (int, error) {
	layout, err := layoutFromPattern(pattern)
	if err != nil {
		return 0, err
	}
	a, err := parse("first", first, layout, pattern)
	if err != nil {
		return 0, err
	}
	b, err := parse("second", second, layout, pattern)
	if err != nil {
		return 0, err
	}
	// Both values are midnight UTC, so the difference is an exact multiple of a day.
	return int((b.Unix() - a.Unix()) / secondsPerDay), nil
}

func parse(name, value, layout, pattern string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &ValidationError{
			Message: fmt.Sprintf("%s date must not be empty", name),
		}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, &ValidationError{
			Message: fmt.Sprintf("%s date %q does not match format %s", name, value, pattern),
			Err:     err,
		}
	}
	return t, nil
}

// layoutFromPattern translates a dd/MM/yyyy style pattern into a time layout.
func layoutFromPattern(pattern string) (string, error) {
	if pattern == "" {
		return "", errors.New("date pattern must not be empty")
	}
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		run := 1
		for i+run < len(pattern) && pattern[i+run] == c {
			run++
		}
		switch {
		case c == 'y' && run == 4:
			b.WriteString("2006")
		case c == 'M' && run == 2:
			b.WriteString("01")
		case c == 'M' && run == 1:
			b.WriteString("1")
		case c == 'd' && run == 2:
			b.WriteString("02")
		case c == 'd' && run == 1:
			b.WriteString("2")
		case isLetter(c) || isDigit(c):
			return "", fmt.Errorf("unsupported token %q in date pattern %q", pattern[i:i+run], pattern)
		default:
			b.WriteString(pattern[i : i+run])
		}
		i += run
	}
	return b.String(), nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
