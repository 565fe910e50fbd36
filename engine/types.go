/*
Package engine provides the financial aggregation and cost-allocation core.

PURPOSE:
  This package turns time-bounded, percentage-allocated project assignments
  into revenue, cost, and margin figures: prorated per day, bucketed by
  calendar month, rolled up through the Organisation → Department → Project
  hierarchy, and sliced by April-to-March financial years.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount (full precision, rounded only at presentation)
  - Organisation/Department/Project/Assignment: Entity snapshot records
  - FinancialYear: User-defined Apr 1 – Mar 31 accounting window
  - Typed IDs: Prevent mixing organisation/department/project identifiers

DESIGN PRINCIPLES:
  1. Purity: Aggregation is a pure function over an entity snapshot
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in rollups
  3. Type Safety: Strong typing for IDs across the hierarchy
  4. Fail-soft: Bad rows are excluded with warnings, never abort a report

USAGE:
  p := engine.Prorate(assignment, windowStart, windowEnd)
  segments := engine.Bucketize(assignment)
  dept, org := engine.Rollup(projectBuckets, deptOf, orgOf)

SEE ALSO:
  - prorate.go: Assignment × window proration
  - bucket.go: Calendar-month bucketization and revenue spread
  - fiscal.go: Financial-year resolution and slicing
  - rollup.go: Hierarchy aggregation
  - summary.go: Public query surface
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal amount with full internal precision
// =============================================================================

// Money is a monetary amount. Internal arithmetic keeps full decimal
// precision; two-place rounding happens only at presentation boundaries.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money        { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int) Money     { return Money{Value: decimal.NewFromInt(int64(value))} }
func ZeroMoney() Money                    { return Money{Value: decimal.Zero} }

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool             { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool       { return m.Value.GreaterThan(o.Value) }
func (m Money) String() string                 { return m.Value.String() }

// Round2 applies two-place presentation rounding. Never call mid-computation.
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

// Float64 returns the two-place rounded value for DTO serialization.
func (m Money) Float64() float64 { return m.Value.Round(2).InexactFloat64() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OrgID string
type DeptID string
type ProjectID string
type EmployeeID string

// EntityType tags which hierarchy level a month bucket belongs to.
type EntityType string

const (
	EntityOrg     EntityType = "org"
	EntityDept    EntityType = "dept"
	EntityProject EntityType = "project"
)

// =============================================================================
// ENTITY SNAPSHOT RECORDS
// =============================================================================
// These mirror the external CRUD store. The engine only ever reads them.

// Organisation is the root of the hierarchy.
type Organisation struct {
	ID   OrgID
	Name string
}

// Department belongs to exactly one organisation.
type Department struct {
	ID         DeptID
	Name       string
	OrgID      OrgID
	ManagerIDs []EmployeeID
}

// Project belongs to exactly one department. Budget is the fixed total
// revenue for the project's full lifetime.
type Project struct {
	ID           ProjectID
	Name         string
	DepartmentID DeptID
	StartDate    Date
	EndDate      Date
	Budget       Money
}

// Validate checks the project's structural invariants.
func (p Project) Validate() error {
	if p.EndDate.Before(p.StartDate) {
		return &RowError{ProjectID: p.ID, Code: WarnInvalidRange, Err: ErrInvalidRange}
	}
	if !p.Budget.IsPositive() {
		return &RowError{ProjectID: p.ID, Code: WarnInvalidAllocation, Err: ErrInvalidAllocation}
	}
	return nil
}

// Assignment is one employee's time-bounded, percentage-allocated
// engagement on one project.
type Assignment struct {
	ProjectID            ProjectID
	EmployeeID           EmployeeID
	Role                 string
	BillingRate          Money
	AllocationPercentage decimal.Decimal
	StartDate            Date
	EndDate              Date
}

// Validate enforces the per-row invariants. Rows failing validation are
// excluded from aggregation with a warning (fail-soft), never a hard error.
func (a Assignment) Validate() error {
	if a.EndDate.Before(a.StartDate) {
		return &RowError{ProjectID: a.ProjectID, EmployeeID: a.EmployeeID, Code: WarnInvalidRange, Err: ErrInvalidRange}
	}
	if !a.AllocationPercentage.IsPositive() || a.AllocationPercentage.GreaterThan(hundred) {
		return &RowError{ProjectID: a.ProjectID, EmployeeID: a.EmployeeID, Code: WarnInvalidAllocation, Err: ErrInvalidAllocation}
	}
	if a.BillingRate.IsNegative() {
		return &RowError{ProjectID: a.ProjectID, EmployeeID: a.EmployeeID, Code: WarnInvalidAllocation, Err: ErrInvalidAllocation}
	}
	return nil
}

// FinancialYear is a user-defined Apr 1 – Mar 31 accounting window.
// Label format: "2024-2025".
type FinancialYear struct {
	Label     string
	StartDate Date
	EndDate   Date
}

var hundred = decimal.NewFromInt(100)

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
