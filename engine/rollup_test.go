package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/warp/costing-engine/engine"
)

// =============================================================================
// ROLLUP FIXTURE - The Acme hierarchy
// =============================================================================
// acme ── eng ──── p1 (revenue 1000/month, cost 600)
//      │       └── p2 (revenue 1000/month, cost 450)
//      └─ sales ── p3 (revenue  200/month, cost 150)

func acmeResolvers() (func(engine.ProjectID) (engine.DeptID, bool), func(engine.DeptID) (engine.OrgID, bool)) {
	deptOf := func(id engine.ProjectID) (engine.DeptID, bool) {
		switch id {
		case "p1", "p2":
			return "eng", true
		case "p3":
			return "sales", true
		}
		return "", false
	}
	orgOf := func(id engine.DeptID) (engine.OrgID, bool) {
		if id == "eng" || id == "sales" {
			return "acme", true
		}
		return "", false
	}
	return deptOf, orgOf
}

func acmeProjectBuckets() []engine.MonthBucket {
	april := engine.YearMonth{Year: 2024, Month: time.April}
	return []engine.MonthBucket{
		{EntityType: engine.EntityProject, EntityID: "p1", Month: april, Revenue: money(1000), Cost: money(600)},
		{EntityType: engine.EntityProject, EntityID: "p2", Month: april, Revenue: money(1000), Cost: money(450)},
		{EntityType: engine.EntityProject, EntityID: "p3", Month: april, Revenue: money(200), Cost: money(150)},
	}
}

// =============================================================================
// ROLLUP TESTS
// =============================================================================

func TestRollup_DepartmentAndOrgSums(t *testing.T) {
	// GIVEN: The Acme fixture for April
	// WHEN: Rolling up
	// THEN: Eng revenue 2000, Sales 200, org 2200

	deptOf, orgOf := acmeResolvers()
	deptBuckets, orgBuckets := engine.Rollup(acmeProjectBuckets(), deptOf, orgOf)

	if len(deptBuckets) != 2 {
		t.Fatalf("expected 2 department buckets, got %d", len(deptBuckets))
	}
	// Deterministic ordering: "eng" before "sales"
	eng, sales := deptBuckets[0], deptBuckets[1]
	if eng.EntityID != "eng" || sales.EntityID != "sales" {
		t.Fatalf("unexpected department order: %s, %s", eng.EntityID, sales.EntityID)
	}
	if !eng.Revenue.Equal(money(2000)) {
		t.Errorf("expected eng revenue 2000, got %v", eng.Revenue)
	}
	if !eng.Cost.Equal(money(1050)) {
		t.Errorf("expected eng cost 1050, got %v", eng.Cost)
	}
	if !sales.Revenue.Equal(money(200)) {
		t.Errorf("expected sales revenue 200, got %v", sales.Revenue)
	}

	if len(orgBuckets) != 1 {
		t.Fatalf("expected 1 org bucket, got %d", len(orgBuckets))
	}
	org := orgBuckets[0]
	if org.EntityID != "acme" {
		t.Errorf("expected org acme, got %s", org.EntityID)
	}
	if !org.Revenue.Equal(money(2200)) {
		t.Errorf("expected org revenue 2200, got %v", org.Revenue)
	}
	if !org.Cost.Equal(money(1200)) {
		t.Errorf("expected org cost 1200, got %v", org.Cost)
	}
}

func TestRollup_Additivity(t *testing.T) {
	// GIVEN: Any fixed month
	// WHEN: Summing revenue at each level
	// THEN: Org sum equals project sum exactly (no epsilon)

	deptOf, orgOf := acmeResolvers()
	projectBuckets := acmeProjectBuckets()
	deptBuckets, orgBuckets := engine.Rollup(projectBuckets, deptOf, orgOf)

	sumRevenue := func(buckets []engine.MonthBucket) engine.Money {
		total := engine.ZeroMoney()
		for _, b := range buckets {
			total = total.Add(b.Revenue)
		}
		return total
	}

	projectSum := sumRevenue(projectBuckets)
	if !sumRevenue(deptBuckets).Equal(projectSum) {
		t.Errorf("department revenue sum differs from project sum")
	}
	if !sumRevenue(orgBuckets).Equal(projectSum) {
		t.Errorf("org revenue sum differs from project sum")
	}
}

func TestRollup_MarginRecomputedPerLevel(t *testing.T) {
	// Margin at each level must equal that level's revenue minus cost.
	deptOf, orgOf := acmeResolvers()
	deptBuckets, orgBuckets := engine.Rollup(acmeProjectBuckets(), deptOf, orgOf)

	for _, b := range append(deptBuckets, orgBuckets...) {
		if !b.Margin().Equal(b.Revenue.Sub(b.Cost)) {
			t.Errorf("%s/%s: margin not recomputed from own revenue and cost", b.EntityType, b.EntityID)
		}
	}
}

func TestRollup_UnresolvableLinksSkipped(t *testing.T) {
	// GIVEN: A project with no department link
	// WHEN: Rolling up
	// THEN: Its buckets appear at no higher level

	buckets := append(acmeProjectBuckets(), engine.MonthBucket{
		EntityType: engine.EntityProject, EntityID: "orphan",
		Month: engine.YearMonth{Year: 2024, Month: time.April}, Revenue: money(99), Cost: money(99),
	})
	deptOf, orgOf := acmeResolvers()
	deptBuckets, orgBuckets := engine.Rollup(buckets, deptOf, orgOf)

	if len(deptBuckets) != 2 || len(orgBuckets) != 1 {
		t.Fatalf("orphan project leaked into rollup: %d dept, %d org", len(deptBuckets), len(orgBuckets))
	}
	if !orgBuckets[0].Revenue.Equal(money(2200)) {
		t.Errorf("orphan revenue counted at org level: %v", orgBuckets[0].Revenue)
	}
}

func TestRollup_Deterministic(t *testing.T) {
	// Repeated runs over the same input must be bit-identical.
	deptOf, orgOf := acmeResolvers()

	dept1, org1 := engine.Rollup(acmeProjectBuckets(), deptOf, orgOf)
	dept2, org2 := engine.Rollup(acmeProjectBuckets(), deptOf, orgOf)

	if !reflect.DeepEqual(dept1, dept2) {
		t.Error("department rollup not deterministic")
	}
	if !reflect.DeepEqual(org1, org2) {
		t.Error("org rollup not deterministic")
	}
}

// =============================================================================
// DATE ARITHMETIC SPOT CHECKS
// =============================================================================

func TestDaysBetween_HalfOpen(t *testing.T) {
	d := date(2024, time.March, 15)
	if got := engine.DaysBetween(d, d); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := engine.DaysBetween(d, d.AddDays(1)); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	// Across the Feb 29 leap day
	if got := engine.DaysBetween(date(2024, time.February, 1), date(2024, time.March, 1)); got != 29 {
		t.Errorf("expected 29, got %d", got)
	}
}

func TestMonthsBetween_Inclusive(t *testing.T) {
	months := engine.MonthsBetween(
		engine.YearMonth{Year: 2024, Month: time.November},
		engine.YearMonth{Year: 2025, Month: time.February},
	)
	if len(months) != 4 {
		t.Fatalf("expected 4 months, got %d", len(months))
	}
	if months[0].String() != "2024-11" || months[3].String() != "2025-02" {
		t.Errorf("unexpected range: %s .. %s", months[0], months[3])
	}
}
