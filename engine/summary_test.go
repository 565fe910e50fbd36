package engine_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/costing-engine/engine"
	"github.com/warp/costing-engine/engine/store"
	"github.com/warp/costing-engine/internal/log"
)

// =============================================================================
// FIXTURES
// =============================================================================

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestService(m *store.Memory) *engine.Service {
	return engine.NewService(m, quietLogger())
}

// seedAcme builds the rollup fixture: acme org with Eng (p1 12000/12mo,
// p2 6000/6mo) and Sales (p3 2400/12mo), one assignment per project.
func seedAcme(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, m.PutOrganisation(ctx, engine.Organisation{ID: "acme", Name: "Acme"}))
	require.NoError(t, m.PutDepartment(ctx, engine.Department{ID: "eng", Name: "Eng", OrgID: "acme"}))
	require.NoError(t, m.PutDepartment(ctx, engine.Department{ID: "sales", Name: "Sales", OrgID: "acme"}))

	projects := []engine.Project{
		{
			ID: "p1", Name: "Platform Rebuild", DepartmentID: "eng",
			StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
			Budget: engine.NewMoneyFromInt(12000),
		},
		{
			ID: "p2", Name: "Mobile App", DepartmentID: "eng",
			StartDate: date(2024, time.April, 1), EndDate: date(2024, time.September, 30),
			Budget: engine.NewMoneyFromInt(6000),
		},
		{
			ID: "p3", Name: "CRM Rollout", DepartmentID: "sales",
			StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
			Budget: engine.NewMoneyFromInt(2400),
		},
	}
	for _, p := range projects {
		require.NoError(t, m.PutProject(ctx, p))
	}

	assignments := []engine.Assignment{
		{
			ProjectID: "p1", EmployeeID: "emp-1", Role: "Engineer",
			BillingRate: engine.NewMoneyFromInt(20), AllocationPercentage: pct(100),
			StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
		},
		{
			ProjectID: "p2", EmployeeID: "emp-2", Role: "Engineer",
			BillingRate: engine.NewMoneyFromInt(30), AllocationPercentage: pct(50),
			StartDate: date(2024, time.April, 1), EndDate: date(2024, time.September, 30),
		},
		{
			ProjectID: "p3", EmployeeID: "emp-3", Role: "Consultant",
			BillingRate: engine.NewMoneyFromInt(5), AllocationPercentage: pct(100),
			StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
		},
	}
	for _, a := range assignments {
		require.NoError(t, m.PutAssignment(ctx, a))
	}

	require.NoError(t, m.PutFinancialYear(ctx, engine.FinancialYear{
		Label: "2024-2025", StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
	}))
}

// seedBoundary builds the Apr 1 straddle fixture: one project (4000 over
// Mar-Apr 2024) with one assignment (rate 100 at 50%, Mar 15 - Apr 15).
func seedBoundary(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, m.PutOrganisation(ctx, engine.Organisation{ID: "acme", Name: "Acme"}))
	require.NoError(t, m.PutDepartment(ctx, engine.Department{ID: "eng", Name: "Eng", OrgID: "acme"}))
	require.NoError(t, m.PutProject(ctx, engine.Project{
		ID: "straddle", Name: "Boundary Project", DepartmentID: "eng",
		StartDate: date(2024, time.March, 1), EndDate: date(2024, time.April, 30),
		Budget: engine.NewMoneyFromInt(4000),
	}))
	require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
		ProjectID: "straddle", EmployeeID: "emp-1", Role: "Engineer",
		BillingRate: engine.NewMoneyFromInt(100), AllocationPercentage: pct(50),
		StartDate: date(2024, time.March, 15), EndDate: date(2024, time.April, 15),
	}))
	require.NoError(t, m.PutFinancialYear(ctx, engine.FinancialYear{
		Label: "2023-2024", StartDate: date(2023, time.April, 1), EndDate: date(2024, time.March, 31),
	}))
	require.NoError(t, m.PutFinancialYear(ctx, engine.FinancialYear{
		Label: "2024-2025", StartDate: date(2024, time.April, 1), EndDate: date(2025, time.March, 31),
	}))
}

// =============================================================================
// PROJECT TOTAL COST
// =============================================================================

func TestProjectTotalCost(t *testing.T) {
	// GIVEN: p1 with budget 12000 and a 365-day assignment at 20/day
	// WHEN: Querying the total cost
	// THEN: Budget 12000 vs. actual 7300, no warnings

	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	summary, err := svc.ProjectTotalCost(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, summary.TotalCost.Equal(money(12000)), "budget: %v", summary.TotalCost)
	assert.True(t, summary.ActualCost.Equal(money(7300)), "actual: %v", summary.ActualCost)
	assert.Empty(t, summary.Warnings)
}

func TestProjectTotalCost_UnknownProject(t *testing.T) {
	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	_, err := svc.ProjectTotalCost(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))
	assert.ErrorIs(t, err, engine.ErrProjectNotFound)
}

func TestProjectTotalCost_OutsideWindowAdvisory(t *testing.T) {
	// GIVEN: An assignment spilling past the project window
	// WHEN: Querying the total cost
	// THEN: The row still counts, with an advisory warning

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.PutProject(ctx, engine.Project{
		ID: "p", Name: "P", DepartmentID: "eng",
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 30),
		Budget: engine.NewMoneyFromInt(1000),
	}))
	require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
		ProjectID: "p", EmployeeID: "emp-1", Role: "Engineer",
		BillingRate: engine.NewMoneyFromInt(10), AllocationPercentage: pct(100),
		StartDate: date(2024, time.March, 25), EndDate: date(2024, time.April, 5),
	}))
	svc := newTestService(m)

	summary, err := svc.ProjectTotalCost(ctx, "p")
	require.NoError(t, err)

	// 12 days at 10/day, over the assignment's own window
	assert.True(t, summary.ActualCost.Equal(money(120)), "actual: %v", summary.ActualCost)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, engine.WarnOutsideProjectWindow, summary.Warnings[0].Code)
	assert.NotEmpty(t, summary.Warnings[0].ID)
}

// =============================================================================
// MONTH-WISE REPORT
// =============================================================================

func TestMonthWiseReport_DeptView(t *testing.T) {
	// GIVEN: The Acme fixture
	// WHEN: Requesting the department view
	// THEN: For April 2024, Eng revenue 2000 / cost 1050, Sales 200 / 150

	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	report, err := svc.MonthWiseReport(context.Background(), engine.ViewDept)
	require.NoError(t, err)
	require.Len(t, report.Entities, 2)

	eng := report.Entities["eng"]
	assert.Equal(t, "Eng", eng.Name)
	april := eng.Monthly["2024-04"]
	assert.True(t, april.Revenue.Equal(money(2000)), "eng april revenue: %v", april.Revenue)
	assert.True(t, april.Cost.Equal(money(1050)), "eng april cost: %v", april.Cost)
	assert.True(t, april.Margin.Equal(money(950)), "eng april margin: %v", april.Margin)

	sales := report.Entities["sales"]
	aprilSales := sales.Monthly["2024-04"]
	assert.True(t, aprilSales.Revenue.Equal(money(200)))
	assert.True(t, aprilSales.Cost.Equal(money(150)))

	// Eng total revenue across the year: 12000 + 6000
	assert.True(t, eng.Total.Revenue.Equal(money(18000)), "eng total revenue: %v", eng.Total.Revenue)
}

func TestMonthWiseReport_OrgView(t *testing.T) {
	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	report, err := svc.MonthWiseReport(context.Background(), engine.ViewOrg)
	require.NoError(t, err)
	require.Len(t, report.Entities, 1)

	acme := report.Entities["acme"]
	assert.Equal(t, "Acme", acme.Name)
	april := acme.Monthly["2024-04"]
	assert.True(t, april.Revenue.Equal(money(2200)), "org april revenue: %v", april.Revenue)
	assert.True(t, april.Cost.Equal(money(1200)), "org april cost: %v", april.Cost)
}

func TestMonthWiseReport_ProjectView(t *testing.T) {
	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	report, err := svc.MonthWiseReport(context.Background(), engine.ViewProject)
	require.NoError(t, err)
	require.Len(t, report.Entities, 3)

	p2 := report.Entities["p2"]
	assert.Equal(t, "Mobile App", p2.Name)
	assert.Len(t, p2.Monthly, 6)
	assert.True(t, p2.Total.Revenue.Equal(money(6000)), "p2 total revenue: %v", p2.Total.Revenue)
	// 183 days (Apr-Sep 2024) at 15/day
	assert.True(t, p2.Total.Cost.Equal(money(2745)), "p2 total cost: %v", p2.Total.Cost)
}

func TestMonthWiseReport_BadRowIsolated(t *testing.T) {
	// GIVEN: One assignment with end before start
	// WHEN: Computing the dept report
	// THEN: The row is excluded with a warning; valid totals are untouched

	m := store.NewMemory()
	seedAcme(t, m)
	require.NoError(t, m.PutAssignment(context.Background(), engine.Assignment{
		ProjectID: "p1", EmployeeID: "emp-bad", Role: "Engineer",
		BillingRate: engine.NewMoneyFromInt(500), AllocationPercentage: pct(100),
		StartDate: date(2024, time.June, 10), EndDate: date(2024, time.June, 1),
	}))
	svc := newTestService(m)

	report, err := svc.MonthWiseReport(context.Background(), engine.ViewDept)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, engine.WarnInvalidRange, report.Warnings[0].Code)
	assert.Equal(t, engine.EmployeeID("emp-bad"), report.Warnings[0].EmployeeID)

	april := report.Entities["eng"].Monthly["2024-04"]
	assert.True(t, april.Cost.Equal(money(1050)), "bad row leaked into totals: %v", april.Cost)
}

func TestMonthWiseReport_OverAllocationAdvisory(t *testing.T) {
	// GIVEN: One employee at 60% on two projects in the same months
	// WHEN: Computing the report
	// THEN: An advisory warning is raised; totals still include both rows

	m := store.NewMemory()
	seedAcme(t, m)
	ctx := context.Background()
	for _, projectID := range []engine.ProjectID{"p1", "p2"} {
		require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
			ProjectID: projectID, EmployeeID: "emp-busy", Role: "Engineer",
			BillingRate: engine.NewMoneyFromInt(10), AllocationPercentage: pct(60),
			StartDate: date(2024, time.May, 1), EndDate: date(2024, time.May, 31),
		}))
	}
	svc := newTestService(m)

	report, err := svc.MonthWiseReport(ctx, engine.ViewDept)
	require.NoError(t, err)

	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, engine.WarnAllocationExceeds100, report.Warnings[0].Code)
	assert.Equal(t, engine.EmployeeID("emp-busy"), report.Warnings[0].EmployeeID)
}

func TestMonthWiseReport_Idempotent(t *testing.T) {
	// Re-running on an unchanged snapshot yields identical figures.
	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)

	first, err := svc.MonthWiseReport(context.Background(), engine.ViewOrg)
	require.NoError(t, err)
	second, err := svc.MonthWiseReport(context.Background(), engine.ViewOrg)
	require.NoError(t, err)

	assert.Equal(t, first.Entities, second.Entities)
}

func TestMonthWiseReport_CacheReuseAndInvalidation(t *testing.T) {
	// GIVEN: Caching enabled
	// WHEN: Querying twice, then mutating, then querying again
	// THEN: Second query reuses the cached report; mutation forces recompute

	m := store.NewMemory()
	seedAcme(t, m)
	svc := newTestService(m)
	svc.EnableCache(8, time.Minute)

	ctx := context.Background()
	first, err := svc.MonthWiseReport(ctx, engine.ViewOrg)
	require.NoError(t, err)
	second, err := svc.MonthWiseReport(ctx, engine.ViewOrg)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged snapshot should serve the cached report")

	require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
		ProjectID: "p3", EmployeeID: "emp-4", Role: "Consultant",
		BillingRate: engine.NewMoneyFromInt(5), AllocationPercentage: pct(50),
		StartDate: date(2024, time.May, 1), EndDate: date(2024, time.May, 31),
	}))
	third, err := svc.MonthWiseReport(ctx, engine.ViewOrg)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "mutation must invalidate the cached report")
}

func TestMonthWiseReport_UnknownView(t *testing.T) {
	_, err := engine.ParseView("quarterly")
	assert.Error(t, err)

	view, err := engine.ParseView("dept")
	require.NoError(t, err)
	assert.Equal(t, engine.ViewDept, view)
}

// =============================================================================
// FINANCIAL YEAR QUERIES
// =============================================================================

func TestFinancialYearSummary_BoundaryProration(t *testing.T) {
	// GIVEN: The Apr 1 straddle fixture
	// WHEN: Summarising each financial year
	// THEN: FY 2023-2024 carries 850 of cost, FY 2024-2025 carries 750

	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)
	ctx := context.Background()

	early, err := svc.FinancialYearSummary(ctx, "2023-2024")
	require.NoError(t, err)
	assert.True(t, early.Stats.Revenue.Equal(money(2000)), "FY23 revenue: %v", early.Stats.Revenue)
	assert.True(t, early.Stats.Cost.Equal(money(850)), "FY23 cost: %v", early.Stats.Cost)
	assert.True(t, early.Stats.Profit.Equal(money(1150)), "FY23 profit: %v", early.Stats.Profit)
	assert.Equal(t, 1, early.Stats.ProjectCount)

	late, err := svc.FinancialYearSummary(ctx, "2024-2025")
	require.NoError(t, err)
	assert.True(t, late.Stats.Revenue.Equal(money(2000)), "FY24 revenue: %v", late.Stats.Revenue)
	assert.True(t, late.Stats.Cost.Equal(money(750)), "FY24 cost: %v", late.Stats.Cost)
	assert.True(t, late.Stats.Profit.Equal(money(1250)), "FY24 profit: %v", late.Stats.Profit)

	// No cost is lost or double-counted across the boundary.
	total := early.Stats.Cost.Add(late.Stats.Cost)
	assert.True(t, total.Equal(money(1600)), "boundary total: %v", total)
}

func TestFinancialYearSummary_ChartShape(t *testing.T) {
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	summary, err := svc.FinancialYearSummary(context.Background(), "2024-2025")
	require.NoError(t, err)

	require.Len(t, summary.ChartData, 12)
	assert.Equal(t, "2024-04", summary.ChartData[0].Month)
	assert.Equal(t, "2025-03", summary.ChartData[11].Month)
	assert.True(t, summary.ChartData[0].Profit.Equal(money(1250)), "april profit: %v", summary.ChartData[0].Profit)
	assert.True(t, summary.ChartData[1].Profit.IsZero(), "may profit: %v", summary.ChartData[1].Profit)
}

func TestFinancialYearSummary_MalformedLabel(t *testing.T) {
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	_, err := svc.FinancialYearSummary(context.Background(), "2024")
	assert.ErrorIs(t, err, engine.ErrMalformedFYLabel)

	_, err = svc.FinancialYearSummary(context.Background(), "2024-2027")
	assert.ErrorIs(t, err, engine.ErrMalformedFYLabel)
}

func TestFinancialYearSummary_UnknownYear(t *testing.T) {
	// Well-formed label without a matching record is not-found, not 400.
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	_, err := svc.FinancialYearSummary(context.Background(), "2030-2031")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrFinancialYearNotFound)
	assert.True(t, engine.IsNotFound(err))
}

func TestFinancialYearSummary_Cancelled(t *testing.T) {
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FinancialYearSummary(ctx, "2024-2025")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFinancialYearProjects(t *testing.T) {
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	projects, err := svc.FinancialYearProjects(context.Background(), "2024-2025")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	p := projects[0]
	assert.Equal(t, engine.ProjectID("straddle"), p.ID)
	// Only April of the two-month spread falls in this FY.
	assert.True(t, p.Revenue.Equal(money(2000)), "FY revenue: %v", p.Revenue)
}

// =============================================================================
// EMPLOYEE-LEVEL QUERIES
// =============================================================================

func TestEmployeeCostContribution_ProRata(t *testing.T) {
	// GIVEN: Budget 1000; emp-a contributes 300 of cost, emp-b 100
	// WHEN: Computing contributions
	// THEN: Revenue shares are 750 and 250

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.PutProject(ctx, engine.Project{
		ID: "p", Name: "P", DepartmentID: "eng",
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 30),
		Budget: engine.NewMoneyFromInt(1000),
	}))
	require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
		ProjectID: "p", EmployeeID: "emp-a", Role: "Engineer",
		BillingRate: engine.NewMoneyFromInt(30), AllocationPercentage: pct(100),
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 10),
	}))
	require.NoError(t, m.PutAssignment(ctx, engine.Assignment{
		ProjectID: "p", EmployeeID: "emp-b", Role: "Designer",
		BillingRate: engine.NewMoneyFromInt(10), AllocationPercentage: pct(100),
		StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 10),
	}))
	svc := newTestService(m)

	report, err := svc.EmployeeCostContribution(ctx, "p")
	require.NoError(t, err)
	require.Len(t, report.Items, 2)

	a, b := report.Items[0], report.Items[1]
	assert.Equal(t, engine.EmployeeID("emp-a"), a.EmployeeID)
	assert.True(t, a.Cost.Equal(money(300)), "emp-a cost: %v", a.Cost)
	assert.True(t, a.RevenueShare.Equal(money(750)), "emp-a share: %v", a.RevenueShare)

	assert.Equal(t, engine.EmployeeID("emp-b"), b.EmployeeID)
	assert.True(t, b.Cost.Equal(money(100)), "emp-b cost: %v", b.Cost)
	assert.True(t, b.RevenueShare.Equal(money(250)), "emp-b share: %v", b.RevenueShare)

	// Shares add back up to the full budget.
	assert.True(t, a.RevenueShare.Add(b.RevenueShare).Equal(money(1000)))
}

func TestProjectAssignments_AllocatedHours(t *testing.T) {
	// 32 days x 8 hours x 50% allocation = 128 hours
	m := store.NewMemory()
	seedBoundary(t, m)
	svc := newTestService(m)

	report, err := svc.ProjectAssignments(context.Background(), "straddle")
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, engine.EmployeeID("emp-1"), item.EmployeeID)
	assert.Equal(t, "Engineer", item.Role)
	assert.True(t, item.AllocatedHours.Equal(pct(128)), "hours: %v", item.AllocatedHours)
}

// =============================================================================
// SNAPSHOT CONSISTENCY
// =============================================================================

// scriptedVersionReader wraps a real store but serves a scripted sequence
// of snapshot versions, simulating concurrent writers.
type scriptedVersionReader struct {
	engine.SnapshotReader

	mu       sync.Mutex
	versions []uint64
	calls    int
}

func (r *scriptedVersionReader) Version(_ context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.versions[r.calls]
	if r.calls < len(r.versions)-1 {
		r.calls++
	}
	return v, nil
}

func TestSnapshot_RetriesOnceOnVersionChange(t *testing.T) {
	// GIVEN: The version shifts during the first attempt, then settles
	// WHEN: Querying
	// THEN: The query re-runs and succeeds

	m := store.NewMemory()
	seedAcme(t, m)
	reader := &scriptedVersionReader{SnapshotReader: m, versions: []uint64{1, 2, 2}}
	svc := engine.NewService(reader, quietLogger())

	summary, err := svc.ProjectTotalCost(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, summary.ActualCost.Equal(money(7300)))
}

func TestSnapshot_InvalidatedAfterTwoAttempts(t *testing.T) {
	// GIVEN: The version keeps shifting on every read
	// WHEN: Querying
	// THEN: ErrSnapshotInvalidated, flagged retryable for the API layer

	m := store.NewMemory()
	seedAcme(t, m)
	reader := &scriptedVersionReader{SnapshotReader: m, versions: []uint64{1, 2, 3, 4}}
	svc := engine.NewService(reader, quietLogger())

	_, err := svc.ProjectTotalCost(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrSnapshotInvalidated)
	assert.True(t, engine.IsRetryable(err))
}
