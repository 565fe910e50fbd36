/*
bucket.go - Calendar-month bucketization and revenue spread

PURPOSE:
  Splits an assignment's active interval into calendar-month segments with
  no gaps or double counting, and spreads a project's fixed budget evenly
  across the project's own active months.

INVARIANTS:
  1. Lossless partition: the segment costs of Bucketize(a) sum to
     ProrateLifetime(a).Cost exactly (same decimal arithmetic per segment).
  2. Revenue is a project-level quantity: budget / totalActiveMonths per
     month, independent of assignment activity.

SEE ALSO:
  - prorate.go: Per-window cost calculation
  - fiscal.go: Clamping a bucketization window to a financial year
  - rollup.go: Aggregating month buckets up the hierarchy
*/
package engine

// CostSegment is one calendar month's share of an assignment's cost.
type CostSegment struct {
	Month YearMonth
	Days  int
	Cost  Money
}

// MonthBucket is a derived revenue/cost figure for one entity and month.
// Created and discarded within a single aggregation request; never stored.
type MonthBucket struct {
	EntityType EntityType
	EntityID   string
	Month      YearMonth
	Revenue    Money
	Cost       Money
}

// Margin is always recomputed from the bucket's own revenue and cost,
// never summed across levels, so it cannot drift from independent rounding.
func (b MonthBucket) Margin() Money { return b.Revenue.Sub(b.Cost) }

// BucketTotals is the revenue/cost/margin triple used in reports.
type BucketTotals struct {
	Revenue Money
	Cost    Money
	Margin  Money
}

func totalsOf(revenue, cost Money) BucketTotals {
	return BucketTotals{Revenue: revenue, Cost: cost, Margin: revenue.Sub(cost)}
}

// =============================================================================
// MONTHLY BUCKETIZER
// =============================================================================

// Bucketize splits assignment a into calendar-month cost segments covering
// exactly [a.StartDate, a.EndDate].
func Bucketize(a Assignment) []CostSegment {
	return BucketizeWindow(a, a.StartDate, a.EndDate.AddDays(1))
}

// BucketizeWindow is the generic variant: it partitions the intersection of
// the assignment and the half-open [windowStart, windowEnd) into
// calendar-month segments. Financial-year scoped queries pass the FY bounds
// here so partial coverage is handled at proration granularity rather than
// by splitting month buckets downstream.
func BucketizeWindow(a Assignment, windowStart, windowEnd Date) []CostSegment {
	overlapStart := MaxDate(a.StartDate, windowStart)
	overlapEnd := MinDate(a.EndDate.AddDays(1), windowEnd)
	if DaysBetween(overlapStart, overlapEnd) <= 0 {
		return nil
	}

	var segments []CostSegment
	for ym := overlapStart.YearMonth(); ym.Start().Before(overlapEnd); ym = ym.Next() {
		segStart := MaxDate(ym.Start(), overlapStart)
		segEnd := MinDate(ym.NextStart(), overlapEnd)
		p := Prorate(a, segStart, segEnd)
		if p.Days == 0 {
			continue
		}
		segments = append(segments, CostSegment{Month: ym, Days: p.Days, Cost: p.Cost})
	}
	return segments
}

// =============================================================================
// PROJECT REVENUE SPREAD
// =============================================================================

// ActiveMonths returns every calendar month touched by the project's
// [StartDate, EndDate], in order.
func ActiveMonths(p Project) []YearMonth {
	if p.EndDate.Before(p.StartDate) {
		return nil
	}
	return MonthsBetween(p.StartDate.YearMonth(), p.EndDate.YearMonth())
}

// MonthlyRevenue spreads the project's fixed budget evenly across its
// active months and returns the per-month figure alongside those months.
// Even spread (not assignment-prorated): revenue is a project-level fact.
func MonthlyRevenue(p Project) (Money, []YearMonth) {
	months := ActiveMonths(p)
	if len(months) == 0 {
		return ZeroMoney(), nil
	}
	return p.Budget.Div(decimalFromInt(len(months))), months
}
