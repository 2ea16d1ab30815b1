// Package timeexpr parses the compact time expressions accepted by the
// reminder CLI, such as "1D2h3m4s" or "2025Y10M12D15h", and resolves them
// into a due time.
//
// An expression is a run of <digits><unit> fields. Units are Y M D h m s and
// must appear in that order, each at most once. Any leading or trailing
// fields may be left out.
package timeexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/letiantian/reminder/internal/dueat"
)

// ErrInvalidTimeExpression is returned when a string is not a well formed
// expression.
var ErrInvalidTimeExpression = errors.New("invalid format of time")

// ErrInvalidDateTime aliases the dueat sentinel so callers only need this
// package to classify parse failures.
var ErrInvalidDateTime = dueat.ErrInvalidDateTime

// Field indexes into Expression.Values.
type Field int

const (
	Year Field = iota
	Month
	Day
	Hour
	Minute
	Second
	numFields
)

var units = [numFields]byte{'Y', 'M', 'D', 'h', 'm', 's'}

func (f Field) String() string {
	switch f {
	case Year:
		return "year"
	case Month:
		return "month"
	case Day:
		return "day"
	case Hour:
		return "hour"
	case Minute:
		return "minute"
	case Second:
		return "second"
	}
	return "unknown"
}

// Expression is a parsed time expression. Values of fields that were not
// written are zero and Present is false for them.
type Expression struct {
	Values  [numFields]int
	Present [numFields]bool
}

// Has reports whether f was written in the expression.
func (e Expression) Has(f Field) bool { return e.Present[f] }

// Get returns the value of f, or zero when it was not written.
func (e Expression) Get(f Field) int { return e.Values[f] }

// Parse reads an expression. Units must be strictly increasing in the
// Y M D h m s order, so the first field decides the longest chain that can
// still match and every later field must come after it.
func Parse(s string) (Expression, error) {
	var expr Expression

	src := strings.TrimSpace(s)
	if src == "" {
		return expr, fmt.Errorf("%w: empty expression", ErrInvalidTimeExpression)
	}

	next := Year
	for i := 0; i < len(src); {
		start := i
		n := 0
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			n = n*10 + int(src[i]-'0')
			if n > 99999999 {
				return expr, fmt.Errorf("%w: number too large in %q", ErrInvalidTimeExpression, s)
			}
			i++
		}
		if i == start {
			return expr, fmt.Errorf("%w: expected digits at offset %d in %q", ErrInvalidTimeExpression, start, s)
		}
		if i == len(src) {
			return expr, fmt.Errorf("%w: missing unit after %q", ErrInvalidTimeExpression, src[start:])
		}

		f, ok := unitField(src[i])
		if !ok {
			return expr, fmt.Errorf("%w: unknown unit %q in %q", ErrInvalidTimeExpression, src[i], s)
		}
		if f < next {
			return expr, fmt.Errorf("%w: unit %q out of order in %q", ErrInvalidTimeExpression, src[i], s)
		}
		expr.Values[f] = n
		expr.Present[f] = true
		next = f + 1
		i++
	}

	return expr, nil
}

func unitField(c byte) (Field, bool) {
	for f, u := range units {
		if u == c {
			return Field(f), true
		}
	}
	return 0, false
}

// Resolve turns the optional when/after pair into a due time.
//
// when overlays the written fields onto now and must produce a real
// calendar date-time. after adds the day, hour, minute and second fields to
// now; year and month are accepted but have no effect. when takes
// precedence and after is not even parsed when both are given. With neither,
// the due time is now.
func Resolve(when, after string, now time.Time) (dueat.DueAt, error) {
	now = now.Local()

	if strings.TrimSpace(when) != "" {
		expr, err := Parse(when)
		if err != nil {
			return 0, err
		}
		return Overlay(expr, now)
	}

	if strings.TrimSpace(after) != "" {
		expr, err := Parse(after)
		if err != nil {
			return 0, err
		}
		t, err := Offset(expr, now)
		if err != nil {
			return 0, err
		}
		return dueat.FromTime(t), nil
	}

	return dueat.FromTime(now), nil
}

// Overlay replaces the fields of now that expr names and validates the result.
func Overlay(expr Expression, now time.Time) (dueat.DueAt, error) {
	vals := [numFields]int{
		now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second(),
	}
	for f := Year; f < numFields; f++ {
		if expr.Present[f] {
			vals[f] = expr.Values[f]
		}
	}
	return dueat.Fields(vals[Year], vals[Month], vals[Day], vals[Hour], vals[Minute], vals[Second])
}

// Offset adds the day/hour/minute/second fields of expr to now. Days move
// the calendar date; hours, minutes and seconds are elapsed time. A result
// past year 9999 cannot be encoded and yields ErrInvalidDateTime.
func Offset(expr Expression, now time.Time) (time.Time, error) {
	t := now.AddDate(0, 0, expr.Get(Day))
	// Summed in unix seconds: as a time.Duration, 99999999h overflows int64
	// nanoseconds.
	secs := int64(expr.Get(Hour))*3600 + int64(expr.Get(Minute))*60 + int64(expr.Get(Second))
	t = time.Unix(t.Unix()+secs, int64(t.Nanosecond())).In(now.Location())
	if t.Year() > 9999 {
		return time.Time{}, fmt.Errorf("%w: %q lands past year 9999", ErrInvalidDateTime, formatOffset(expr))
	}
	return t, nil
}

func formatOffset(expr Expression) string {
	var sb strings.Builder
	for f := Year; f < numFields; f++ {
		if expr.Present[f] {
			fmt.Fprintf(&sb, "%d%c", expr.Values[f], units[f])
		}
	}
	return sb.String()
}
