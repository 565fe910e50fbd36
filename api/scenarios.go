/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates an organisation hierarchy,
	projects, assignments, and financial years that exercise a specific
	part of the engine.

AVAILABLE SCENARIOS:

	acme-rollup:  One organisation, two departments, three projects with
	              even monthly revenue. Shows the hierarchy rollup.
	fy-boundary:  A single assignment straddling the Apr 1 financial-year
	              boundary. Shows per-day FY proration.

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create organisation, departments, projects
 3. Add assignments and financial years

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "acme-rollup"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared handler plumbing
  - engine/summary.go: The queries these datasets exercise
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/costing-engine/engine"
)

func percent(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "acme-rollup",
		Name:        "Acme Rollup",
		Description: "Org with Eng (two projects) and Sales (one project) showing department and organisation rollups",
	},
	{
		ID:          "fy-boundary",
		Name:        "Financial Year Boundary",
		Description: "One assignment straddling Apr 1, split per-day between two financial years",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario resets the store and seeds the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "acme-rollup":
		err = loadAcmeRollupScenario(ctx, h.Store)
	case "fy-boundary":
		err = loadFYBoundaryScenario(ctx, h.Store)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadAcmeRollupScenario seeds one organisation with Eng (P1: 12000 over
// 12 months, P2: 6000 over 6 months) and Sales (P3: 2400 over 12 months).
// For months where all three run, Eng revenue is 2000 and org revenue 2200.
func loadAcmeRollupScenario(ctx context.Context, store EntityStore) error {
	if err := store.PutOrganisation(ctx, engine.Organisation{ID: "acme", Name: "Acme"}); err != nil {
		return err
	}
	departments := []engine.Department{
		{ID: "eng", Name: "Eng", OrgID: "acme", ManagerIDs: []engine.EmployeeID{"emp-lead-1"}},
		{ID: "sales", Name: "Sales", OrgID: "acme", ManagerIDs: []engine.EmployeeID{"emp-lead-2"}},
	}
	for _, d := range departments {
		if err := store.PutDepartment(ctx, d); err != nil {
			return err
		}
	}

	projects := []engine.Project{
		{
			ID: "p1", Name: "Platform Rebuild", DepartmentID: "eng",
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2025, time.March, 31),
			Budget:    engine.NewMoneyFromInt(12000),
		},
		{
			ID: "p2", Name: "Mobile App", DepartmentID: "eng",
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2024, time.September, 30),
			Budget:    engine.NewMoneyFromInt(6000),
		},
		{
			ID: "p3", Name: "CRM Rollout", DepartmentID: "sales",
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2025, time.March, 31),
			Budget:    engine.NewMoneyFromInt(2400),
		},
	}
	for _, p := range projects {
		if err := store.PutProject(ctx, p); err != nil {
			return err
		}
	}

	assignments := []engine.Assignment{
		{
			ProjectID: "p1", EmployeeID: "emp-1", Role: "Engineer",
			BillingRate: engine.NewMoneyFromInt(20), AllocationPercentage: percent(100),
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2025, time.March, 31),
		},
		{
			ProjectID: "p2", EmployeeID: "emp-2", Role: "Engineer",
			BillingRate: engine.NewMoneyFromInt(30), AllocationPercentage: percent(50),
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2024, time.September, 30),
		},
		{
			ProjectID: "p3", EmployeeID: "emp-3", Role: "Consultant",
			BillingRate: engine.NewMoneyFromInt(5), AllocationPercentage: percent(100),
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2025, time.March, 31),
		},
	}
	for _, a := range assignments {
		if err := store.PutAssignment(ctx, a); err != nil {
			return err
		}
	}

	return store.PutFinancialYear(ctx, engine.FinancialYear{
		Label:     "2024-2025",
		StartDate: engine.NewDate(2024, time.April, 1),
		EndDate:   engine.NewDate(2025, time.March, 31),
	})
}

// loadFYBoundaryScenario seeds the Apr 1 straddle: rate 100 at 50% from
// Mar 15 to Apr 15. FY 2023-2024 sees 850 (17 days), FY 2024-2025 sees
// 750 (15 days).
func loadFYBoundaryScenario(ctx context.Context, store EntityStore) error {
	if err := store.PutOrganisation(ctx, engine.Organisation{ID: "acme", Name: "Acme"}); err != nil {
		return err
	}
	if err := store.PutDepartment(ctx, engine.Department{ID: "eng", Name: "Eng", OrgID: "acme"}); err != nil {
		return err
	}
	if err := store.PutProject(ctx, engine.Project{
		ID: "straddle", Name: "Boundary Project", DepartmentID: "eng",
		StartDate: engine.NewDate(2024, time.March, 1),
		EndDate:   engine.NewDate(2024, time.April, 30),
		Budget:    engine.NewMoneyFromInt(4000),
	}); err != nil {
		return err
	}
	if err := store.PutAssignment(ctx, engine.Assignment{
		ProjectID: "straddle", EmployeeID: "emp-1", Role: "Engineer",
		BillingRate: engine.NewMoneyFromInt(100), AllocationPercentage: percent(50),
		StartDate: engine.NewDate(2024, time.March, 15),
		EndDate:   engine.NewDate(2024, time.April, 15),
	}); err != nil {
		return err
	}

	financialYears := []engine.FinancialYear{
		{
			Label:     "2023-2024",
			StartDate: engine.NewDate(2023, time.April, 1),
			EndDate:   engine.NewDate(2024, time.March, 31),
		},
		{
			Label:     "2024-2025",
			StartDate: engine.NewDate(2024, time.April, 1),
			EndDate:   engine.NewDate(2025, time.March, 31),
		},
	}
	for _, fy := range financialYears {
		if err := store.PutFinancialYear(ctx, fy); err != nil {
			return err
		}
	}
	return nil
}
