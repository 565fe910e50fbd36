/*
prorate.go - Assignment × window proration

PURPOSE:
  Computes the cost attributable to the overlap between one assignment and
  an arbitrary time window. This is the innermost calculation: everything
  else (monthly buckets, financial-year slices, hierarchy rollups) is built
  by invoking it with different windows and summing.

ARITHMETIC:
  Windows are half-open [start, end). An assignment's inclusive
  [StartDate, EndDate] is treated internally as [StartDate, EndDate+1day)
  so that boundary days are counted exactly once and partitioning a range
  into sub-windows is lossless.

SEE ALSO:
  - bucket.go: Partitions an assignment into calendar-month windows
  - summary.go: Uses full-lifetime proration for project totals
*/
package engine

import "github.com/shopspring/decimal"

// Proration is the outcome of prorating one assignment over one window.
type Proration struct {
	Days int
	Cost Money
}

// DailyRate returns billingRate × allocationPercentage / 100.
func DailyRate(a Assignment) Money {
	return a.BillingRate.Mul(a.AllocationPercentage).Div(hundred)
}

// Prorate computes the cost of assignment a attributable to the half-open
// window [windowStart, windowEnd). Pure function: no overlap means a zero
// result, never an error. Invalid rows are rejected upstream by
// Assignment.Validate.
func Prorate(a Assignment, windowStart, windowEnd Date) Proration {
	overlapStart := MaxDate(a.StartDate, windowStart)
	overlapEnd := MinDate(a.EndDate.AddDays(1), windowEnd)

	days := DaysBetween(overlapStart, overlapEnd)
	if days <= 0 {
		return Proration{Days: 0, Cost: ZeroMoney()}
	}

	cost := DailyRate(a).Mul(decimal.NewFromInt(int64(days)))
	return Proration{Days: days, Cost: cost}
}

// ProrateLifetime prorates the assignment over its own full [start, end].
func ProrateLifetime(a Assignment) Proration {
	return Prorate(a, a.StartDate, a.EndDate.AddDays(1))
}
