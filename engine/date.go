package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (no time-of-day component)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }
func (d Date) String() string    { return d.Time.Format("2006-01-02") }

// YearMonth returns the calendar month this date falls in.
func (d Date) YearMonth() YearMonth { return YearMonth{Year: d.Year(), Month: d.Month()} }

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// DaysBetween returns the number of whole days in [from, to).
// Half-open on purpose: DaysBetween(d, d) == 0.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// YEAR MONTH - Calendar-month bucket key
// =============================================================================

type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// Start returns the first day of the month.
func (ym YearMonth) Start() Date { return NewDate(ym.Year, ym.Month, 1) }

// NextStart returns the first day of the following month, i.e. the
// exclusive end of this month's window.
func (ym YearMonth) NextStart() Date { return ym.Start().AddMonths(1) }

func (ym YearMonth) Next() YearMonth { return ym.NextStart().YearMonth() }

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Compare orders year-months chronologically: -1, 0, or 1.
func (ym YearMonth) Compare(o YearMonth) int {
	switch {
	case ym == o:
		return 0
	case ym.Before(o):
		return -1
	default:
		return 1
	}
}

// MonthsBetween returns every calendar month from first to last inclusive.
func MonthsBetween(first, last YearMonth) []YearMonth {
	var months []YearMonth
	for ym := first; !last.Before(ym); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}
