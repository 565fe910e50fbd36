/*
snapshot.go - Entity snapshot contract consumed by the engine

PURPOSE:
  The engine never persists entities and never writes to the store. It
  reads organisations, departments, projects, assignments, and financial
  years through this interface and treats them as a consistent snapshot.

SNAPSHOT CONSISTENCY:
  Version() is a monotonic counter that every mutation of entity data
  bumps. The summary service reads it before and after an aggregation:
  a mismatch means assignments changed mid-computation, the partial result
  is discarded, and the aggregation is re-run once from the new snapshot.
  Mixing rows read at different points in time is a correctness hazard -
  all-or-nothing per request.

SEE ALSO:
  - store/memory.go: In-memory implementation (tests, demos)
  - store/sqlite: SQLite-backed implementation
  - summary.go: Retry-once orchestration around Version()
*/
package engine

import "context"

// SnapshotReader is the read-only view over entity data. Implementations
// must be safe for concurrent readers.
type SnapshotReader interface {
	GetOrganisation(ctx context.Context, id OrgID) (Organisation, error)
	ListOrganisations(ctx context.Context) ([]Organisation, error)

	GetDepartment(ctx context.Context, id DeptID) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)

	GetProject(ctx context.Context, id ProjectID) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)

	// ListAssignments returns every assignment of one project.
	ListAssignments(ctx context.Context, projectID ProjectID) ([]Assignment, error)

	ListFinancialYears(ctx context.Context) ([]FinancialYear, error)

	// Version is the logical snapshot handle. Any add/edit/remove of
	// entity data bumps it.
	Version(ctx context.Context) (uint64, error)
}
