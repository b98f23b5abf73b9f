package entities

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Granularity is the calendar precision a PartialDate was written with.
type Granularity int

const (
	GranularityYear Granularity = iota + 1
	GranularityMonth
	GranularityDay
)

// String returns the layout name of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityYear:
		return "year"
	case GranularityMonth:
		return "month"
	case GranularityDay:
		return "day"
	default:
		return "unknown"
	}
}

// ErrInvalidDate is returned when a date literal is not YYYY, YYYY-MM or YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

var rePartialDate = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)

// PartialDate is a date written at year, month or day precision.
type PartialDate struct {
	Year        int         `json:"year"`
	Month       int         `json:"month,omitempty"`
	Day         int         `json:"day,omitempty"`
	Granularity Granularity `json:"granularity"`
}

// ParsePartialDate parses "2021", "2021-05" or "2021-05-17". Surrounding
// whitespace is rejected.
func ParsePartialDate(s string) (PartialDate, error) {
	if !rePartialDate.MatchString(s) {
		return PartialDate{}, fmt.Errorf("%w: %q (want YYYY, YYYY-MM or YYYY-MM-DD)", ErrInvalidDate, s)
	}

	var (
		layout string
		g      Granularity
	)
	switch len(s) {
	case 4:
		layout, g = "2006", GranularityYear
	case 7:
		layout, g = "2006-01", GranularityMonth
	default:
		layout, g = "2006-01-02", GranularityDay
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return PartialDate{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}

	d := PartialDate{Year: t.Year(), Granularity: g}
	if g >= GranularityMonth {
		d.Month = int(t.Month())
	}
	if g == GranularityDay {
		d.Day = t.Day()
	}
	return d, nil
}

// Point returns the first instant of the period the date names.
// "2021" is 2021-01-01, "2020-05" is 2020-05-01.
func (d PartialDate) Point() time.Time {
	month, day := 1, 1
	if d.Granularity >= GranularityMonth {
		month = d.Month
	}
	if d.Granularity == GranularityDay {
		day = d.Day
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Compare compares point values: -1 if d is before o, 0 if equal, +1 if after.
func (d PartialDate) Compare(o PartialDate) int {
	return d.Point().Compare(o.Point())
}

// String formats the date at its own granularity.
func (d PartialDate) String() string {
	switch d.Granularity {
	case GranularityYear:
		return fmt.Sprintf("%04d", d.Year)
	case GranularityMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// DateRange is an inclusive range of partial dates. A nil bound is open.
type DateRange struct {
	Start *PartialDate
	End   *PartialDate
}

// Bounded reports whether at least one side of the range is set.
func (r DateRange) Bounded() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether d falls inside the range, comparing point values.
func (r DateRange) Contains(d PartialDate) bool {
	if r.Start != nil && d.Compare(*r.Start) < 0 {
		return false
	}
	if r.End != nil && d.Compare(*r.End) > 0 {
		return false
	}
	return true
}
