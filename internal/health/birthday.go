package health

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tartampluch/go-garden/internal/config"
)

// MonthDay is a yearless calendar date, used for birthdays.
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewMonthDay validates month and day against a leap year, so --02-29 is accepted.
func NewMonthDay(month time.Month, day int) (MonthDay, error) {
	if month < time.January || month > time.December || day < 1 {
		return MonthDay{}, fmt.Errorf("%s: month %d day %d", config.ErrDateParse, month, day)
	}
	probe := time.Date(config.DefaultLeapYear, month, day, 0, 0, 0, 0, time.UTC)
	if probe.Month() != month || probe.Day() != day {
		return MonthDay{}, fmt.Errorf("%s: month %d day %d", config.ErrDateParse, month, day)
	}
	return MonthDay{Month: month, Day: day}, nil
}

// ParseMonthDay handles the date shapes found in contact records:
// full dates (2006-01-02, 20060102, RFC 3339) and yearless vCard forms (--01-02, --0102, 01-02).
func ParseMonthDay(value string) (MonthDay, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return MonthDay{}, errors.New(config.ErrDateParse)
	}

	if t, ok := parseTimestamp(value); ok {
		return MonthDay{Month: t.Month(), Day: t.Day()}, nil
	}

	// Yearless layouts parse into year 0, a leap year, so --02-29 is accepted.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB, config.DateFormatMonthDay} {
		if t, err := time.Parse(f, value); err == nil {
			return NewMonthDay(t.Month(), t.Day())
		}
	}

	return MonthDay{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}

// String renders the yearless vCard form, e.g. --06-20.
func (m MonthDay) String() string {
	return fmt.Sprintf("--%02d-%02d", int(m.Month), m.Day)
}

// Next returns the start of the next occurrence relative to now, in now's location.
// A birthday falling today is its own next occurrence. February 29th resolves to
// March 1st in non-leap years.
func (m MonthDay) Next(now time.Time) time.Time {
	loc := now.Location()
	today := startOfDay(now)

	candidate := time.Date(now.Year(), m.Month, m.Day, 0, 0, 0, 0, loc)
	if candidate.Before(today) {
		candidate = time.Date(now.Year()+1, m.Month, m.Day, 0, 0, 0, 0, loc)
	}
	return candidate
}

// DaysUntil counts calendar days from today to the next occurrence.
func (m MonthDay) DaysUntil(now time.Time) int {
	next := m.Next(now)
	// Rounding absorbs 23h and 25h days around DST transitions.
	return int(math.Round(next.Sub(startOfDay(now)).Hours() / config.HoursPerDay))
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
