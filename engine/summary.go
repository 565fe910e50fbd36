/*
summary.go - Public query surface of the costing engine

PURPOSE:
  Composes proration, bucketization, financial-year slicing, and hierarchy
  rollup into the queries the dashboards consume:

    ProjectTotalCost          budget vs. summed assignment cost
    MonthWiseReport           per-entity monthly revenue/cost/margin
    FinancialYearSummary      org-level stats + profit chart for one FY
    FinancialYearProjects     projects overlapping an FY with FY revenue
    EmployeeCostContribution  per-assignee cost and pro-rata revenue share
    ProjectAssignments        assignment detail rows for the screens

FAIL-SOFT DESIGN:
  A single bad row (end before start, allocation out of range) must not
  blank out a whole dashboard. Bad rows contribute zero and are reported
  in the response's Warnings list; structural problems (unknown project,
  malformed FY label) are hard errors. No anomaly is silently dropped.

SNAPSHOT DISCIPLINE:
  Every query reads the store version before and after computing. On a
  mismatch the partial result is discarded and the whole query re-runs
  once; a second mismatch surfaces ErrSnapshotInvalidated. Aggregation is
  linear in assignments × months and runs synchronously in the request;
  long organisation-wide reports honor context cancellation.
*/
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/costing-engine/internal/log"
)

// =============================================================================
// VIEWS AND WARNINGS
// =============================================================================

// View selects the hierarchy level of a month-wise report.
type View string

const (
	ViewOrg     View = "org"
	ViewDept    View = "dept"
	ViewProject View = "project"
)

// ParseView validates a view string from the API layer.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewOrg, ViewDept, ViewProject:
		return View(s), nil
	default:
		return "", fmt.Errorf("unknown view %q (want org, dept, or project)", s)
	}
}

// Warning codes attached to responses.
const (
	WarnInvalidRange         = "invalid_range"
	WarnInvalidAllocation    = "invalid_allocation"
	WarnOutsideProjectWindow = "outside_project_window"
	WarnAllocationExceeds100 = "allocation_exceeds_100"
)

// Warning is a non-fatal anomaly recorded during aggregation.
type Warning struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	ProjectID  ProjectID  `json:"project_id,omitempty"`
	EmployeeID EmployeeID `json:"employee_id,omitempty"`
	Message    string     `json:"message"`
}

func newWarning(code string, projectID ProjectID, employeeID EmployeeID, message string) Warning {
	return Warning{
		ID:         uuid.NewString(),
		Code:       code,
		ProjectID:  projectID,
		EmployeeID: employeeID,
		Message:    message,
	}
}

// =============================================================================
// RESULT TYPES - One explicit struct per operation
// =============================================================================

// ProjectCostSummary compares a project's fixed revenue to its actual
// assignment-driven cost.
type ProjectCostSummary struct {
	ProjectID  ProjectID
	TotalCost  Money // project budget (revenue)
	ActualCost Money // summed assignment cost over the full lifetime
	Warnings   []Warning
}

// EntityReport is one entity's slice of a month-wise report.
type EntityReport struct {
	Name    string
	Monthly map[string]BucketTotals // keyed "YYYY-MM"
	Total   BucketTotals
}

// MonthWiseReport maps entity ids to their monthly and total figures.
type MonthWiseReport struct {
	View     View
	Entities map[string]EntityReport
	Warnings []Warning
}

// FYStats is the organisation-level headline of a financial year.
type FYStats struct {
	Revenue      Money
	Cost         Money
	Profit       Money
	ProjectCount int
}

// MonthProfit is one point of the FY profit chart.
type MonthProfit struct {
	Month  string
	Profit Money
}

// FYSummary is the financial-year dashboard payload.
type FYSummary struct {
	Label     string
	Stats     FYStats
	ChartData []MonthProfit
	Warnings  []Warning
}

// FYProject is a project overlapping a financial year, with the revenue
// attributed to that year.
type FYProject struct {
	ID        ProjectID
	Name      string
	StartDate Date
	EndDate   Date
	Revenue   Money
}

// EmployeeContribution is one assignee's share of a project's cost and,
// pro rata by cost, of its revenue. The revenue share is an allocation
// heuristic for the screens, not a ledger fact.
type EmployeeContribution struct {
	EmployeeID   EmployeeID
	Role         string
	Cost         Money
	RevenueShare Money
}

// ContributionReport wraps the per-assignee breakdown of one project.
type ContributionReport struct {
	ProjectID ProjectID
	Items     []EmployeeContribution
	Warnings  []Warning
}

// AssignmentDetail is one assignment row as shown by the management screens.
type AssignmentDetail struct {
	EmployeeID           EmployeeID
	Role                 string
	BillingRate          Money
	AllocationPercentage decimal.Decimal
	AllocatedHours       decimal.Decimal
	StartDate            Date
	EndDate              Date
}

// AssignmentListReport wraps a project's assignment rows.
type AssignmentListReport struct {
	ProjectID ProjectID
	Items     []AssignmentDetail
	Warnings  []Warning
}

// =============================================================================
// SERVICE
// =============================================================================

// Service is the cost summary query surface. Stateless over the snapshot
// reader: concurrent queries never block each other.
type Service struct {
	reader SnapshotReader
	logger *log.Logger

	mwCache *ReportCache[*MonthWiseReport]
}

func NewService(reader SnapshotReader, logger *log.Logger) *Service {
	return &Service{reader: reader, logger: logger.WithComponent("engine")}
}

// EnableCache turns on month-wise report caching. Keys embed the snapshot
// version, so any entity mutation makes a new key and stale entries age
// out via LRU/TTL.
func (s *Service) EnableCache(maxSize int, ttl time.Duration) {
	s.mwCache = NewReportCache[*MonthWiseReport](maxSize, ttl)
}

// withSnapshot runs fn against a consistent snapshot. If the store version
// changes while fn runs, the result is discarded and fn re-runs once from
// the new snapshot. All-or-nothing: no partial results are published.
func (s *Service) withSnapshot(ctx context.Context, fn func(ctx context.Context, version uint64) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		before, err := s.reader.Version(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, before); err != nil {
			return err
		}
		after, err := s.reader.Version(ctx)
		if err != nil {
			return err
		}
		if after == before {
			return nil
		}
		s.logger.Warn("snapshot changed mid-aggregation, re-running", "before", before, "after", after)
	}
	return ErrSnapshotInvalidated
}

// =============================================================================
// PROJECT TOTAL COST
// =============================================================================

// ProjectTotalCost sums all of a project's assignment costs across the
// project's full lifetime and pairs them with the fixed budget.
func (s *Service) ProjectTotalCost(ctx context.Context, projectID ProjectID) (*ProjectCostSummary, error) {
	var result *ProjectCostSummary
	err := s.withSnapshot(ctx, func(ctx context.Context, _ uint64) error {
		project, err := s.reader.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		assignments, err := s.reader.ListAssignments(ctx, projectID)
		if err != nil {
			return err
		}

		actual := ZeroMoney()
		var warnings []Warning
		for _, a := range assignments {
			w, ok := s.vetAssignment(project, a)
			warnings = append(warnings, w...)
			if !ok {
				continue
			}
			actual = actual.Add(ProrateLifetime(a).Cost)
		}

		result = &ProjectCostSummary{
			ProjectID:  projectID,
			TotalCost:  project.Budget,
			ActualCost: actual,
			Warnings:   warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// vetAssignment applies the fail-soft row checks. ok=false means the row
// is excluded from aggregation; ok=true with warnings means the row counts
// but carries an advisory (e.g. dates outside the project window, which
// the source system never enforced).
func (s *Service) vetAssignment(p Project, a Assignment) (warnings []Warning, ok bool) {
	if err := a.Validate(); err != nil {
		var code string
		if rowErr, isRow := err.(*RowError); isRow {
			code = rowErr.Code
		} else {
			code = WarnInvalidAllocation
		}
		w := newWarning(code, a.ProjectID, a.EmployeeID, err.Error())
		s.logger.Warn("excluding bad assignment row", "code", w.Code, "project", a.ProjectID, "employee", a.EmployeeID)
		return []Warning{w}, false
	}
	if a.StartDate.Before(p.StartDate) || a.EndDate.After(p.EndDate) {
		w := newWarning(WarnOutsideProjectWindow, a.ProjectID, a.EmployeeID,
			fmt.Sprintf("assignment %s..%s outside project window %s..%s",
				a.StartDate, a.EndDate, p.StartDate, p.EndDate))
		return []Warning{w}, true
	}
	return nil, true
}

// =============================================================================
// MONTH-WISE REPORT
// =============================================================================

type projectBucketResult struct {
	buckets  []MonthBucket
	warnings []Warning
}

// MonthWiseReport computes monthly revenue/cost/margin per entity at the
// requested hierarchy level. Projects are bucketized concurrently; the
// rollup and response assembly are deterministic, so re-running on an
// unchanged snapshot yields identical output.
func (s *Service) MonthWiseReport(ctx context.Context, view View) (*MonthWiseReport, error) {
	var result *MonthWiseReport
	err := s.withSnapshot(ctx, func(ctx context.Context, version uint64) error {
		if s.mwCache != nil {
			if cached, ok := s.mwCache.Get(CacheKey("monthwise:"+string(view), version)); ok {
				result = cached
				return nil
			}
		}

		projects, err := s.reader.ListProjects(ctx)
		if err != nil {
			return err
		}
		departments, err := s.reader.ListDepartments(ctx)
		if err != nil {
			return err
		}

		// Fan out per project; results land in fixed slots so ordering
		// stays deterministic regardless of scheduling.
		results := make([]projectBucketResult, len(projects))
		allAssignments := make([][]Assignment, len(projects))
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range projects {
			i, p := i, p
			g.Go(func() error {
				assignments, err := s.reader.ListAssignments(gctx, p.ID)
				if err != nil {
					return err
				}
				allAssignments[i] = assignments
				buckets, warnings := s.projectBuckets(p, assignments)
				results[i] = projectBucketResult{buckets: buckets, warnings: warnings}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var projectBuckets []MonthBucket
		var warnings []Warning
		for _, r := range results {
			projectBuckets = append(projectBuckets, r.buckets...)
			warnings = append(warnings, r.warnings...)
		}
		warnings = append(warnings, s.overAllocationWarnings(allAssignments)...)

		entities := make(map[string]EntityReport)
		switch view {
		case ViewProject:
			names := make(map[string]string, len(projects))
			for _, p := range projects {
				names[string(p.ID)] = p.Name
			}
			entities = buildEntityReports(projectBuckets, names)

		case ViewDept, ViewOrg:
			deptOf, orgOf := hierarchyResolvers(projects, departments)
			deptBuckets, orgBuckets := Rollup(projectBuckets, deptOf, orgOf)
			if view == ViewDept {
				names := make(map[string]string, len(departments))
				for _, d := range departments {
					names[string(d.ID)] = d.Name
				}
				entities = buildEntityReports(deptBuckets, names)
			} else {
				orgs, err := s.reader.ListOrganisations(ctx)
				if err != nil {
					return err
				}
				names := make(map[string]string, len(orgs))
				for _, o := range orgs {
					names[string(o.ID)] = o.Name
				}
				entities = buildEntityReports(orgBuckets, names)
			}
		}

		result = &MonthWiseReport{View: view, Entities: entities, Warnings: warnings}
		if s.mwCache != nil {
			s.mwCache.Set(CacheKey("monthwise:"+string(view), version), result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// projectBuckets merges the project's even revenue spread with its
// fail-soft assignment cost segments into month buckets.
func (s *Service) projectBuckets(p Project, assignments []Assignment) ([]MonthBucket, []Warning) {
	var warnings []Warning
	if err := p.Validate(); err != nil {
		warnings = append(warnings, newWarning(WarnInvalidRange, p.ID, "", err.Error()))
		return nil, warnings
	}

	monthlyRev, revMonths := MonthlyRevenue(p)
	revenue := make(map[YearMonth]Money, len(revMonths))
	for _, ym := range revMonths {
		revenue[ym] = monthlyRev
	}

	cost := make(map[YearMonth]Money)
	for _, a := range assignments {
		w, ok := s.vetAssignment(p, a)
		warnings = append(warnings, w...)
		if !ok {
			continue
		}
		for _, seg := range Bucketize(a) {
			c, exists := cost[seg.Month]
			if !exists {
				c = ZeroMoney()
			}
			cost[seg.Month] = c.Add(seg.Cost)
		}
	}

	months := unionMonths(revenue, cost)
	buckets := make([]MonthBucket, 0, len(months))
	for _, ym := range months {
		rev, cst := revenue[ym], cost[ym]
		buckets = append(buckets, MonthBucket{
			EntityType: EntityProject,
			EntityID:   string(p.ID),
			Month:      ym,
			Revenue:    rev,
			Cost:       cst,
		})
	}
	return buckets, warnings
}

// overAllocationWarnings flags employee-months whose summed allocation
// across concurrent assignments exceeds 100%. Advisory only: the source
// system never enforced this, so totals are left untouched.
func (s *Service) overAllocationWarnings(assignmentsByProject [][]Assignment) []Warning {
	type empMonth struct {
		employee EmployeeID
		month    YearMonth
	}
	sums := make(map[empMonth]decimal.Decimal)
	for _, assignments := range assignmentsByProject {
		for _, a := range assignments {
			if a.Validate() != nil {
				continue
			}
			for _, ym := range MonthsBetween(a.StartDate.YearMonth(), a.EndDate.YearMonth()) {
				k := empMonth{employee: a.EmployeeID, month: ym}
				sums[k] = sums[k].Add(a.AllocationPercentage)
			}
		}
	}

	var keys []empMonth
	for k, total := range sums {
		if total.GreaterThan(hundred) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].employee != keys[j].employee {
			return keys[i].employee < keys[j].employee
		}
		return keys[i].month.Before(keys[j].month)
	})

	warnings := make([]Warning, 0, len(keys))
	for _, k := range keys {
		warnings = append(warnings, newWarning(WarnAllocationExceeds100, "", k.employee,
			fmt.Sprintf("allocation %s%% in %s exceeds 100%%", sums[k].String(), k.month)))
	}
	return warnings
}

// =============================================================================
// FINANCIAL YEAR QUERIES
// =============================================================================

// FinancialYearSummary composes FY resolution, FY-clamped bucketization,
// and the organisation-level rollup into the FY dashboard payload.
func (s *Service) FinancialYearSummary(ctx context.Context, label string) (*FYSummary, error) {
	fw, err := s.resolveKnownFY(ctx, label)
	if err != nil {
		return nil, err
	}

	var result *FYSummary
	err = s.withSnapshot(ctx, func(ctx context.Context, _ uint64) error {
		projects, err := s.reader.ListProjects(ctx)
		if err != nil {
			return err
		}

		revenue := make(map[YearMonth]Money)
		cost := make(map[YearMonth]Money)
		var warnings []Warning
		projectCount := 0

		for _, p := range projects {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !overlapsFY(p, fw) {
				continue
			}
			projectCount++

			monthlyRev, months := MonthlyRevenue(p)
			for _, ym := range months {
				if !fw.Contains(ym) {
					continue
				}
				r, exists := revenue[ym]
				if !exists {
					r = ZeroMoney()
				}
				revenue[ym] = r.Add(monthlyRev)
			}

			assignments, err := s.reader.ListAssignments(ctx, p.ID)
			if err != nil {
				return err
			}
			for _, a := range assignments {
				w, ok := s.vetAssignment(p, a)
				warnings = append(warnings, w...)
				if !ok {
					continue
				}
				for _, seg := range BucketizeWindow(a, fw.Start, fw.EndExclusive()) {
					c, exists := cost[seg.Month]
					if !exists {
						c = ZeroMoney()
					}
					cost[seg.Month] = c.Add(seg.Cost)
				}
			}
		}

		totalRevenue, totalCost := ZeroMoney(), ZeroMoney()
		chart := make([]MonthProfit, 0, 12)
		for _, ym := range fw.Months() {
			rev, cst := revenue[ym], cost[ym]
			totalRevenue = totalRevenue.Add(rev)
			totalCost = totalCost.Add(cst)
			chart = append(chart, MonthProfit{Month: ym.String(), Profit: rev.Sub(cst)})
		}

		result = &FYSummary{
			Label: fw.Label,
			Stats: FYStats{
				Revenue:      totalRevenue,
				Cost:         totalCost,
				Profit:       totalRevenue.Sub(totalCost),
				ProjectCount: projectCount,
			},
			ChartData: chart,
			Warnings:  warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FinancialYearProjects lists the projects overlapping a financial year
// with the revenue attributed to that year (even spread × FY months).
func (s *Service) FinancialYearProjects(ctx context.Context, label string) ([]FYProject, error) {
	fw, err := s.resolveKnownFY(ctx, label)
	if err != nil {
		return nil, err
	}

	var result []FYProject
	err = s.withSnapshot(ctx, func(ctx context.Context, _ uint64) error {
		projects, err := s.reader.ListProjects(ctx)
		if err != nil {
			return err
		}

		result = nil
		for _, p := range projects {
			if !overlapsFY(p, fw) {
				continue
			}
			monthlyRev, months := MonthlyRevenue(p)
			fyRevenue := ZeroMoney()
			for _, ym := range months {
				if fw.Contains(ym) {
					fyRevenue = fyRevenue.Add(monthlyRev)
				}
			}
			result = append(result, FYProject{
				ID:        p.ID,
				Name:      p.Name,
				StartDate: p.StartDate,
				EndDate:   p.EndDate,
				Revenue:   fyRevenue,
			})
		}
		sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveKnownFY parses the label (hard error if malformed) and requires a
// matching financial-year record (hard error if unknown).
func (s *Service) resolveKnownFY(ctx context.Context, label string) (FiscalWindow, error) {
	fw, err := ResolveFiscalYear(label)
	if err != nil {
		return FiscalWindow{}, err
	}
	fys, err := s.reader.ListFinancialYears(ctx)
	if err != nil {
		return FiscalWindow{}, err
	}
	for _, fy := range fys {
		if fy.Label == label {
			return fw, nil
		}
	}
	return FiscalWindow{}, fmt.Errorf("%w: %q", ErrFinancialYearNotFound, label)
}

func overlapsFY(p Project, fw FiscalWindow) bool {
	return p.StartDate.BeforeOrEqual(fw.End) && p.EndDate.AfterOrEqual(fw.Start)
}

// =============================================================================
// EMPLOYEE-LEVEL QUERIES
// =============================================================================

// EmployeeCostContribution breaks a project's cost down per assignee and
// allocates the project's revenue pro rata by each assignee's cost share.
func (s *Service) EmployeeCostContribution(ctx context.Context, projectID ProjectID) (*ContributionReport, error) {
	var result *ContributionReport
	err := s.withSnapshot(ctx, func(ctx context.Context, _ uint64) error {
		project, err := s.reader.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		assignments, err := s.reader.ListAssignments(ctx, projectID)
		if err != nil {
			return err
		}

		type contribKey struct {
			employee EmployeeID
			role     string
		}
		costs := make(map[contribKey]Money)
		var warnings []Warning
		totalCost := ZeroMoney()

		for _, a := range assignments {
			w, ok := s.vetAssignment(project, a)
			warnings = append(warnings, w...)
			if !ok {
				continue
			}
			c := ProrateLifetime(a).Cost
			k := contribKey{employee: a.EmployeeID, role: a.Role}
			existing, exists := costs[k]
			if !exists {
				existing = ZeroMoney()
			}
			costs[k] = existing.Add(c)
			totalCost = totalCost.Add(c)
		}

		keys := make([]contribKey, 0, len(costs))
		for k := range costs {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].employee != keys[j].employee {
				return keys[i].employee < keys[j].employee
			}
			return keys[i].role < keys[j].role
		})

		items := make([]EmployeeContribution, 0, len(keys))
		for _, k := range keys {
			c := costs[k]
			share := ZeroMoney()
			if totalCost.IsPositive() {
				share = project.Budget.Mul(c.Value).Div(totalCost.Value)
			}
			items = append(items, EmployeeContribution{
				EmployeeID:   k.employee,
				Role:         k.role,
				Cost:         c,
				RevenueShare: share,
			})
		}

		result = &ContributionReport{ProjectID: projectID, Items: items, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProjectAssignments lists a project's assignment rows for the management
// screens. Allocated hours assume an 8-hour workday scaled by allocation.
func (s *Service) ProjectAssignments(ctx context.Context, projectID ProjectID) (*AssignmentListReport, error) {
	var result *AssignmentListReport
	err := s.withSnapshot(ctx, func(ctx context.Context, _ uint64) error {
		project, err := s.reader.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		assignments, err := s.reader.ListAssignments(ctx, projectID)
		if err != nil {
			return err
		}

		items := make([]AssignmentDetail, 0, len(assignments))
		var warnings []Warning
		for _, a := range assignments {
			w, ok := s.vetAssignment(project, a)
			warnings = append(warnings, w...)

			hours := decimal.Zero
			if ok {
				days := ProrateLifetime(a).Days
				hours = decimal.NewFromInt(int64(days * 8)).Mul(a.AllocationPercentage).Div(hundred)
			}
			items = append(items, AssignmentDetail{
				EmployeeID:           a.EmployeeID,
				Role:                 a.Role,
				BillingRate:          a.BillingRate,
				AllocationPercentage: a.AllocationPercentage,
				AllocatedHours:       hours,
				StartDate:            a.StartDate,
				EndDate:              a.EndDate,
			})
		}

		result = &AssignmentListReport{ProjectID: projectID, Items: items, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// REPORT ASSEMBLY HELPERS
// =============================================================================

func buildEntityReports(buckets []MonthBucket, names map[string]string) map[string]EntityReport {
	reports := make(map[string]EntityReport)
	for _, b := range buckets {
		r, ok := reports[b.EntityID]
		if !ok {
			r = EntityReport{
				Name:    names[b.EntityID],
				Monthly: make(map[string]BucketTotals),
			}
		}
		r.Monthly[b.Month.String()] = totalsOf(b.Revenue, b.Cost)

		total := r.Total
		total.Revenue = total.Revenue.Add(b.Revenue)
		total.Cost = total.Cost.Add(b.Cost)
		total.Margin = total.Revenue.Sub(total.Cost)
		r.Total = total

		reports[b.EntityID] = r
	}
	return reports
}

func hierarchyResolvers(projects []Project, departments []Department) (func(ProjectID) (DeptID, bool), func(DeptID) (OrgID, bool)) {
	deptByProject := make(map[ProjectID]DeptID, len(projects))
	for _, p := range projects {
		deptByProject[p.ID] = p.DepartmentID
	}
	orgByDept := make(map[DeptID]OrgID, len(departments))
	for _, d := range departments {
		orgByDept[d.ID] = d.OrgID
	}
	deptOf := func(id ProjectID) (DeptID, bool) {
		d, ok := deptByProject[id]
		return d, ok
	}
	orgOf := func(id DeptID) (OrgID, bool) {
		o, ok := orgByDept[id]
		return o, ok
	}
	return deptOf, orgOf
}

func unionMonths(a, b map[YearMonth]Money) []YearMonth {
	seen := make(map[YearMonth]bool, len(a)+len(b))
	var months []YearMonth
	for ym := range a {
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	for ym := range b {
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
