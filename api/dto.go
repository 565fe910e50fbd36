/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. One explicit struct
  per query operation, decoupling the engine's internal types from the
  wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY RENDERING:
  All monetary fields are two-place rounded here, and only here. The
  engine keeps full decimal precision internally.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/summary.go: The result types these are built from
*/
package api

import (
	"sort"

	"github.com/warp/costing-engine/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WarningDTO mirrors an engine warning on the wire.
type WarningDTO struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	ProjectID  string `json:"project_id,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Message    string `json:"message"`
}

// TotalsDTO is the revenue/cost/margin triple.
type TotalsDTO struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Margin  float64 `json:"margin"`
}

// ProjectTotalCostDTO compares budget to summed assignment cost.
type ProjectTotalCostDTO struct {
	ProjectID  string       `json:"project_id"`
	TotalCost  float64      `json:"total_cost"`
	ActualCost float64      `json:"actual_cost"`
	Warnings   []WarningDTO `json:"warnings,omitempty"`
}

// EntityReportDTO is one entity's slice of the month-wise report.
type EntityReportDTO struct {
	Name    string               `json:"name"`
	Monthly map[string]TotalsDTO `json:"monthly"`
	Total   TotalsDTO            `json:"total"`
}

// MonthWiseReportDTO maps entity ids to monthly figures.
type MonthWiseReportDTO struct {
	View     string                     `json:"view"`
	Entities map[string]EntityReportDTO `json:"entities"`
	Warnings []WarningDTO               `json:"warnings,omitempty"`
}

// FYStatsDTO is the financial-year headline block.
type FYStatsDTO struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	ProjectCount int     `json:"project_count"`
}

// MonthProfitDTO is one chart point.
type MonthProfitDTO struct {
	Month  string  `json:"month"`
	Profit float64 `json:"profit"`
}

// FYSummaryDTO is the financial-year dashboard payload.
type FYSummaryDTO struct {
	Label     string           `json:"label"`
	Stats     FYStatsDTO       `json:"stats"`
	ChartData []MonthProfitDTO `json:"chart_data"`
	Warnings  []WarningDTO     `json:"warnings,omitempty"`
}

// FYProjectDTO is one project overlapping a financial year.
type FYProjectDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Revenue   float64 `json:"revenue"`
}

// AssignmentDetailDTO is one assignment row for the management screens.
type AssignmentDetailDTO struct {
	EmployeeID          string  `json:"employee_id"`
	Role                string  `json:"role"`
	BillingRate         float64 `json:"billing_rate"`
	AllocatedPercentage float64 `json:"allocated_percentage"`
	AllocatedHours      float64 `json:"allocated_hours"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
}

// ContributionDTO is one assignee's cost and pro-rata revenue share.
type ContributionDTO struct {
	EmployeeID   string  `json:"employee_id"`
	Role         string  `json:"role"`
	Cost         float64 `json:"cost"`
	RevenueShare float64 `json:"revenue_share"`
}

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DepartmentID string  `json:"department_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Budget       float64 `json:"budget"`
}

// DepartmentDTO represents a department in API responses.
type DepartmentDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	OrgID      string   `json:"org_id"`
	ManagerIDs []string `json:"manager_ids,omitempty"`
}

// OrganisationDTO represents an organisation in API responses.
type OrganisationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FinancialYearDTO represents a financial-year record.
type FinancialYearDTO struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toWarningDTOs(warnings []engine.Warning) []WarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	dtos := make([]WarningDTO, len(warnings))
	for i, w := range warnings {
		dtos[i] = WarningDTO{
			ID:         w.ID,
			Code:       w.Code,
			ProjectID:  string(w.ProjectID),
			EmployeeID: string(w.EmployeeID),
			Message:    w.Message,
		}
	}
	return dtos
}

func toTotalsDTO(t engine.BucketTotals) TotalsDTO {
	return TotalsDTO{
		Revenue: t.Revenue.Float64(),
		Cost:    t.Cost.Float64(),
		Margin:  t.Margin.Float64(),
	}
}

func toMonthWiseReportDTO(r *engine.MonthWiseReport) MonthWiseReportDTO {
	entities := make(map[string]EntityReportDTO, len(r.Entities))
	for id, er := range r.Entities {
		monthly := make(map[string]TotalsDTO, len(er.Monthly))
		for month, totals := range er.Monthly {
			monthly[month] = toTotalsDTO(totals)
		}
		entities[id] = EntityReportDTO{
			Name:    er.Name,
			Monthly: monthly,
			Total:   toTotalsDTO(er.Total),
		}
	}
	return MonthWiseReportDTO{
		View:     string(r.View),
		Entities: entities,
		Warnings: toWarningDTOs(r.Warnings),
	}
}

func toFYSummaryDTO(s *engine.FYSummary) FYSummaryDTO {
	chart := make([]MonthProfitDTO, len(s.ChartData))
	for i, mp := range s.ChartData {
		chart[i] = MonthProfitDTO{Month: mp.Month, Profit: mp.Profit.Float64()}
	}
	return FYSummaryDTO{
		Label: s.Label,
		Stats: FYStatsDTO{
			Revenue:      s.Stats.Revenue.Float64(),
			Cost:         s.Stats.Cost.Float64(),
			Profit:       s.Stats.Profit.Float64(),
			ProjectCount: s.Stats.ProjectCount,
		},
		ChartData: chart,
		Warnings:  toWarningDTOs(s.Warnings),
	}
}

func toProjectDTO(p engine.Project) ProjectDTO {
	return ProjectDTO{
		ID:           string(p.ID),
		Name:         p.Name,
		DepartmentID: string(p.DepartmentID),
		StartDate:    p.StartDate.String(),
		EndDate:      p.EndDate.String(),
		Budget:       p.Budget.Float64(),
	}
}

func toDepartmentDTO(d engine.Department) DepartmentDTO {
	managers := make([]string, len(d.ManagerIDs))
	for i, m := range d.ManagerIDs {
		managers[i] = string(m)
	}
	sort.Strings(managers)
	return DepartmentDTO{
		ID:         string(d.ID),
		Name:       d.Name,
		OrgID:      string(d.OrgID),
		ManagerIDs: managers,
	}
}
