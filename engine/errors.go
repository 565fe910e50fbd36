/*
errors.go - Centralized error types for the costing engine

PURPOSE:
  All engine error types in one place. Callers distinguish two classes:

  1. Structural errors - unknown entity, malformed financial-year label,
     invalidated snapshot. These propagate to the caller as hard errors.
  2. Row errors - a single assignment or project violating its invariants.
     These are recovered locally (the row contributes zero) and reported
     as warnings on the response, never aborting a whole report.

USAGE:
  if engine.IsNotFound(err) { ... 404 ... }
  if engine.IsRetryable(err) { ... retry ... }

SEE ALSO:
  - summary.go: Converts row errors into response warnings
  - api/handlers.go: Maps error classes to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOrgNotFound is returned when a referenced organisation doesn't exist.
	ErrOrgNotFound = errors.New("organisation not found")

	// ErrDepartmentNotFound is returned when a referenced department doesn't exist.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrFinancialYearNotFound is returned when no financial-year record
	// matches a well-formed label.
	ErrFinancialYearNotFound = errors.New("financial year not found")

	// ErrMalformedFYLabel is returned for labels not of the form
	// "YYYY-YYYY" with the second year exactly one after the first.
	ErrMalformedFYLabel = errors.New("malformed financial year label")

	// ErrInvalidRange marks a row whose end date precedes its start date.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInvalidAllocation marks a row with allocation outside (0, 100]
	// or a negative billing rate.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrSnapshotInvalidated is returned when entity data changed while an
	// aggregation was running. The first occurrence is retried internally;
	// a recurrence surfaces as this transient error.
	ErrSnapshotInvalidated = errors.New("snapshot invalidated during aggregation")
)

// =============================================================================
// ROW ERRORS - Per-row anomalies recovered as warnings
// =============================================================================

// RowError identifies a single bad row and which invariant it violates.
// Wraps a sentinel so callers can use errors.Is().
type RowError struct {
	ProjectID  ProjectID
	EmployeeID EmployeeID
	Code       string
	Err        error
}

func (e *RowError) Error() string {
	if e.EmployeeID != "" {
		return fmt.Sprintf("%s: project %s employee %s: %v", e.Code, e.ProjectID, e.EmployeeID, e.Err)
	}
	return fmt.Sprintf("%s: project %s: %v", e.Code, e.ProjectID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrgNotFound) ||
		errors.Is(err, ErrDepartmentNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrFinancialYearNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSnapshotInvalidated)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedFYLabel) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidAllocation)
}
