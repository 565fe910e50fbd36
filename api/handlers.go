/*
handlers.go - HTTP API handlers for the costing engine

PURPOSE:
  Exposes the cost summary queries via REST. Handles HTTP request/response,
  JSON serialization, and delegates all computation to engine.Service.

ENDPOINTS:
  Reports:
    GET /api/projects/{id}/total-cost        Budget vs. actual cost
    GET /api/projects/{id}/assignments       Assignment detail rows
    GET /api/projects/{id}/contributions     Per-assignee cost/revenue share
    GET /api/reports/monthwise?view=...      Monthly figures per entity
    GET /api/financial-years/{label}/summary FY stats + profit chart
    GET /api/financial-years/{label}/projects FY project list

  Entities (read-only snapshot views):
    GET /api/projects, /api/projects/{id}
    GET /api/departments
    GET /api/organisations/{id}
    GET /api/financial-years

  Scenarios:
    GET  /api/scenarios        List demo scenarios
    POST /api/scenarios/load   Load a demo scenario

ERROR HANDLING:
  - 400: Malformed FY label, unknown view parameter
  - 404: Unknown project/department/organisation/financial year
  - 503: Snapshot invalidated twice (transient, client may retry)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine/summary.go: The queries behind these handlers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/costing-engine/engine"
	"github.com/warp/costing-engine/internal/log"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// EntityStore is what the API layer needs from a store: the engine's
// read-only snapshot view plus the external CRUD mutations used by the
// scenario seeder. Both the memory and SQLite stores satisfy it.
type EntityStore interface {
	engine.SnapshotReader

	Reset(ctx context.Context) error
	PutOrganisation(ctx context.Context, o engine.Organisation) error
	PutDepartment(ctx context.Context, d engine.Department) error
	PutProject(ctx context.Context, p engine.Project) error
	PutAssignment(ctx context.Context, a engine.Assignment) error
	RemoveAssignments(ctx context.Context, projectID engine.ProjectID) error
	PutFinancialYear(ctx context.Context, fy engine.FinancialYear) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   EntityStore
	Service *engine.Service
	Logger  *log.Logger

	currentScenario string
}

// NewHandler creates a handler around the given store.
func NewHandler(store EntityStore, logger *log.Logger) *Handler {
	return &Handler{
		Store:   store,
		Service: engine.NewService(store, logger),
		Logger:  logger.WithComponent("api"),
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetProjectTotalCost returns budget vs. summed assignment cost.
// GET /api/projects/{id}/total-cost
func (h *Handler) GetProjectTotalCost(w http.ResponseWriter, r *http.Request) {
	projectID := engine.ProjectID(chi.URLParam(r, "id"))

	summary, err := h.Service.ProjectTotalCost(r.Context(), projectID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProjectTotalCostDTO{
		ProjectID:  string(summary.ProjectID),
		TotalCost:  summary.TotalCost.Float64(),
		ActualCost: summary.ActualCost.Float64(),
		Warnings:   toWarningDTOs(summary.Warnings),
	})
}

// GetMonthWiseReport returns monthly revenue/cost/margin per entity.
// GET /api/reports/monthwise?view=org|dept|project
func (h *Handler) GetMonthWiseReport(w http.ResponseWriter, r *http.Request) {
	view, err := engine.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid view", err)
		return
	}

	report, err := h.Service.MonthWiseReport(r.Context(), view)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMonthWiseReportDTO(report))
}

// GetFinancialYearSummary returns FY stats and the monthly profit chart.
// GET /api/financial-years/{label}/summary
func (h *Handler) GetFinancialYearSummary(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	summary, err := h.Service.FinancialYearSummary(r.Context(), label)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFYSummaryDTO(summary))
}

// GetFinancialYearProjects lists projects overlapping a financial year.
// GET /api/financial-years/{label}/projects
func (h *Handler) GetFinancialYearProjects(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	projects, err := h.Service.FinancialYearProjects(r.Context(), label)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]FYProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = FYProjectDTO{
			ID:        string(p.ID),
			Name:      p.Name,
			StartDate: p.StartDate.String(),
			EndDate:   p.EndDate.String(),
			Revenue:   p.Revenue.Float64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProjectAssignments lists a project's assignment rows.
// GET /api/projects/{id}/assignments
func (h *Handler) GetProjectAssignments(w http.ResponseWriter, r *http.Request) {
	projectID := engine.ProjectID(chi.URLParam(r, "id"))

	report, err := h.Service.ProjectAssignments(r.Context(), projectID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]AssignmentDetailDTO, len(report.Items))
	for i, item := range report.Items {
		dtos[i] = AssignmentDetailDTO{
			EmployeeID:          string(item.EmployeeID),
			Role:                item.Role,
			BillingRate:         item.BillingRate.Float64(),
			AllocatedPercentage: item.AllocationPercentage.InexactFloat64(),
			AllocatedHours:      item.AllocatedHours.Round(2).InexactFloat64(),
			StartDate:           item.StartDate.String(),
			EndDate:             item.EndDate.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployeeContributions returns the per-assignee breakdown.
// GET /api/projects/{id}/contributions
func (h *Handler) GetEmployeeContributions(w http.ResponseWriter, r *http.Request) {
	projectID := engine.ProjectID(chi.URLParam(r, "id"))

	report, err := h.Service.EmployeeCostContribution(r.Context(), projectID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]ContributionDTO, len(report.Items))
	for i, item := range report.Items {
		dtos[i] = ContributionDTO{
			EmployeeID:   string(item.EmployeeID),
			Role:         item.Role,
			Cost:         item.Cost.Float64(),
			RevenueShare: item.RevenueShare.Float64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ENTITY HANDLERS - Read-only snapshot views
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.Store.GetProject(r.Context(), engine.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

// ListDepartments returns all departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list departments", err)
		return
	}
	dtos := make([]DepartmentDTO, len(departments))
	for i, d := range departments {
		dtos[i] = toDepartmentDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOrganisation returns a single organisation.
func (h *Handler) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	org, err := h.Store.GetOrganisation(r.Context(), engine.OrgID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OrganisationDTO{ID: string(org.ID), Name: org.Name})
}

// ListFinancialYears returns all financial-year records.
func (h *Handler) ListFinancialYears(w http.ResponseWriter, r *http.Request) {
	fys, err := h.Store.ListFinancialYears(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list financial years", err)
		return
	}
	dtos := make([]FinancialYearDTO, len(fys))
	for i, fy := range fys {
		dtos[i] = FinancialYearDTO{
			Label:     fy.Label,
			StartDate: fy.StartDate.String(),
			EndDate:   fy.EndDate.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, engine.ErrMalformedFYLabel):
		writeError(w, http.StatusBadRequest, "Malformed financial year label", err)
	case engine.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, "Snapshot changed, retry", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, "Request cancelled", err)
	default:
		h.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
