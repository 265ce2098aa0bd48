package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DayLayout is the accepted input format for record dates.
	DayLayout = "2006-01-02"

	// TimestampLayout renders dates as UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// NewDate returns the noon UTC instant of the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)}
}

// NormalizeDate moves any instant to noon UTC of its UTC calendar day.
func NormalizeDate(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// ParseDate accepts YYYY-MM-DD and returns the noon UTC instant of that day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, NewValidationError("date", MsgInvalidDate)
	}
	return NormalizeDate(t), nil
}

// String renders the date as 2024-03-01T12:00:00.000Z.
func (d Date) String() string {
	return d.UTC().Format(TimestampLayout)
}

// Day renders the calendar day as YYYY-MM-DD.
func (d Date) Day() string {
	return d.UTC().Format(DayLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if len(s) == len(DayLayout) {
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("decode date %q: %w", s, err)
	}
	*d = NormalizeDate(t)
	return nil
}
