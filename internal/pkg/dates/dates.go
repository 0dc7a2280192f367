// Package dates parses the date formats accepted from clients and CSV files
// and renders dates the way exports and templates expect them.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	ISOLayout = "2006-01-02"
	USLayout  = "01/02/2006"
)

var dateOnlyLayouts = []string{
	ISOLayout,
	USLayout,
	"1/2/2006",
	"2006/01/02",
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse accepts YYYY-MM-DD, RFC 3339 timestamps or MM/DD/YYYY and returns the
// instant in UTC. Date-only values are midnight UTC.
func Parse(s string) (time.Time, error) {
	t, _, err := parse(s)
	return t, err
}

// ParseEnd is Parse for the upper bound of an inclusive range: a date-only
// value covers the whole day.
func ParseEnd(s string) (time.Time, error) {
	t, dateOnly, err := parse(s)
	if err != nil {
		return t, err
	}
	if dateOnly {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ParseLoose is Parse for file imports: when none of the strict layouts
// match it accepts any form dateparse recognizes ("March 4, 1980",
// "4-Mar-1980", "1980-03-04 05:00" ...). Slash dates stay month first.
func ParseLoose(s string) (time.Time, error) {
	if t, err := Parse(s); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parse(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty date")
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true, nil
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
}

// ISO renders t as YYYY-MM-DD in UTC.
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// US renders t as MM/DD/YYYY in UTC.
func US(t time.Time) string {
	return t.UTC().Format(USLayout)
}

// ISOPtr is ISO with nil rendered as "".
func ISOPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ISO(*t)
}

// USPtr is US with nil rendered as "".
func USPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return US(*t)
}
