// Package dueat implements the fixed-width YYYYMMDDHHMMSS encoding used to
// order and compare reminder due times.
package dueat

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDateTime is returned when a set of fields does not name a real
// calendar date-time (Feb 30, hour 24, minute 60, negative day, ...).
var ErrInvalidDateTime = errors.New("invalid datetime")

// DueAt is a wall-clock timestamp packed as a 14-digit decimal integer.
// Numeric order equals chronological order.
type DueAt int64

const displayLayout = "2006-01-02 15:04:05"

// FromTime encodes the wall-clock fields of t.
func FromTime(t time.Time) DueAt {
	return pack(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Fields validates the six fields and encodes them.
func Fields(year, month, day, hour, minute, second int) (DueAt, error) {
	if !Valid(year, month, day, hour, minute, second) {
		return 0, fmt.Errorf("%w: %04d-%02d-%02d %02d:%02d:%02d",
			ErrInvalidDateTime, year, month, day, hour, minute, second)
	}
	return pack(year, month, day, hour, minute, second), nil
}

// Valid reports whether the fields name an existing date-time. time.Date
// normalizes overflow, so a round trip that changes any field means the
// input was out of range.
func Valid(year, month, day, hour, minute, second int) bool {
	if year < 1 || year > 9999 {
		return false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day &&
		t.Hour() == hour && t.Minute() == minute && t.Second() == second
}

// Parse reads the 14-digit form.
func Parse(s string) (DueAt, error) {
	if len(s) != 14 {
		return 0, fmt.Errorf("%w: %q is not 14 digits", ErrInvalidDateTime, s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
	}
	d := DueAt(n)
	y, mo, dd, h, mi, sec := d.Split()
	if !Valid(y, mo, dd, h, mi, sec) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
	}
	return d, nil
}

// Split unpacks the six fields.
func (d DueAt) Split() (year, month, day, hour, minute, second int) {
	n := int64(d)
	second = int(n % 100)
	n /= 100
	minute = int(n % 100)
	n /= 100
	hour = int(n % 100)
	n /= 100
	day = int(n % 100)
	n /= 100
	month = int(n % 100)
	n /= 100
	year = int(n)
	return
}

// Time decodes d as a wall-clock time in loc.
func (d DueAt) Time(loc *time.Location) (time.Time, error) {
	y, mo, dd, h, mi, s := d.Split()
	if !Valid(y, mo, dd, h, mi, s) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidDateTime, int64(d))
	}
	return time.Date(y, time.Month(mo), dd, h, mi, s, 0, loc), nil
}

// String returns the zero-padded 14-digit form.
func (d DueAt) String() string {
	return fmt.Sprintf("%014d", int64(d))
}

// Format renders d for people, falling back to the raw digits when d does
// not decode.
func (d DueAt) Format() string {
	t, err := d.Time(time.Local)
	if err != nil {
		return d.String()
	}
	return t.Format(displayLayout)
}

func pack(year, month, day, hour, minute, second int) DueAt {
	n := int64(year)
	for _, f := range []int{month, day, hour, minute, second} {
		n = n*100 + int64(f)
	}
	return DueAt(n)
}
