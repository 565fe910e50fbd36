/*
fiscal.go - Financial-year resolution and month-bucket slicing

PURPOSE:
  Maps a financial-year label ("2024-2025") to its Apr 1 – Mar 31 window
  and filters calendar-month buckets against it. Calendar-month buckets are
  the finest granularity: a bucket is dropped or kept whole, never split.
  Queries that need sub-month precision at the FY boundary pass the FY
  bounds to BucketizeWindow instead (see bucket.go).

SEE ALSO:
  - bucket.go: BucketizeWindow for FY-clamped proration
  - summary.go: FinancialYearSummary composition
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FiscalWindow is a resolved financial year: [Start, End] inclusive,
// Start = Apr 1 of the first labelled year, End = Mar 31 of the next.
type FiscalWindow struct {
	Label string
	Start Date
	End   Date
}

// ResolveFiscalYear parses a "YYYY-YYYY" label where the second year is
// exactly the first plus one. Anything else is ErrMalformedFYLabel.
func ResolveFiscalYear(label string) (FiscalWindow, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return FiscalWindow{}, fmt.Errorf("%w: %q", ErrMalformedFYLabel, label)
	}

	first, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return FiscalWindow{}, fmt.Errorf("%w: %q", ErrMalformedFYLabel, label)
	}
	second, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return FiscalWindow{}, fmt.Errorf("%w: %q", ErrMalformedFYLabel, label)
	}
	if second != first+1 {
		return FiscalWindow{}, fmt.Errorf("%w: %q (second year must be first+1)", ErrMalformedFYLabel, label)
	}

	return FiscalWindow{
		Label: label,
		Start: NewDate(first, time.April, 1),
		End:   NewDate(second, time.March, 31),
	}, nil
}

// EndExclusive returns the day after the window's inclusive end, for
// half-open proration arithmetic.
func (fw FiscalWindow) EndExclusive() Date { return fw.End.AddDays(1) }

// Contains reports whether the calendar month lies entirely inside the
// window. FY windows are month-aligned, so a month is either fully in
// or fully out.
func (fw FiscalWindow) Contains(ym YearMonth) bool {
	return ym.Start().AfterOrEqual(fw.Start) && ym.NextStart().BeforeOrEqual(fw.EndExclusive())
}

// Months returns the twelve calendar months of the window in order.
func (fw FiscalWindow) Months() []YearMonth {
	return MonthsBetween(fw.Start.YearMonth(), fw.End.YearMonth())
}

// Clamp intersects the half-open [start, endExclusive) with the window.
func (fw FiscalWindow) Clamp(start, endExclusive Date) (Date, Date) {
	return MaxDate(start, fw.Start), MinDate(endExclusive, fw.EndExclusive())
}

// SliceByFY keeps the buckets whose month lies inside the window.
// Buckets are never split: sub-month FY precision is the bucketizer's job.
func SliceByFY(buckets []MonthBucket, fw FiscalWindow) []MonthBucket {
	var kept []MonthBucket
	for _, b := range buckets {
		if fw.Contains(b.Month) {
			kept = append(kept, b)
		}
	}
	return kept
}
