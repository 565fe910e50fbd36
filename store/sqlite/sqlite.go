/*
Package sqlite provides a SQLite-backed implementation of the entity
snapshot store.

PURPOSE:
  Implements engine.SnapshotReader plus the mutation methods the external
  CRUD screens use. The engine itself never writes; every write here is an
  external collaborator action and bumps the snapshot version inside the
  same database transaction, so readers detect mid-aggregation changes.

KEY TABLES:
  organisations:       Hierarchy roots
  departments:         One organisation each, zero or more managers
  department_managers: Manager employee links
  projects:            One department each, fixed lifetime budget
  assignments:         Time-bounded, percentage-allocated engagements
  financial_years:     User-defined Apr-Mar windows
  meta:                Single-row snapshot version counter

REPRESENTATION:
  Money and percentages are stored as TEXT decimals (exact round-trip
  through shopspring/decimal); dates as "YYYY-MM-DD" TEXT.

WAL MODE:
  SQLite is opened with WAL so report reads don't block entity writes.

USAGE:
  store, err := sqlite.New("./data/costing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := engine.NewService(store, logger)

SEE ALSO:
  - engine/snapshot.go: Interface definition and version contract
  - engine/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/costing-engine/engine"
)

// Store implements engine.SnapshotReader over SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS organisations (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		org_id TEXT NOT NULL REFERENCES organisations(id)
	);

	CREATE TABLE IF NOT EXISTS department_managers (
		department_id TEXT NOT NULL REFERENCES departments(id),
		employee_id   TEXT NOT NULL,
		PRIMARY KEY (department_id, employee_id)
	);

	CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		department_id TEXT NOT NULL REFERENCES departments(id),
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		budget        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_department
		ON projects(department_id);

	CREATE TABLE IF NOT EXISTS assignments (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id            TEXT NOT NULL REFERENCES projects(id),
		employee_id           TEXT NOT NULL,
		role                  TEXT NOT NULL DEFAULT '',
		billing_rate          TEXT NOT NULL,
		allocation_percentage TEXT NOT NULL,
		start_date            TEXT NOT NULL,
		end_date              TEXT NOT NULL
	);

	-- Hot path: every report walks a project's assignments.
	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON assignments(project_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON assignments(employee_id);

	CREATE TABLE IF NOT EXISTS financial_years (
		label      TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO meta (key, value) VALUES ('snapshot_version', 0);
	`
	_, err := s.db.Exec(schema)
	return err
}

// withBump runs fn and increments the snapshot version in one transaction.
func (s *Store) withBump(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE meta SET value = value + 1 WHERE key = 'snapshot_version'`); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// MUTATIONS
// =============================================================================

func (s *Store) Reset(ctx context.Context) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"assignments", "projects", "department_managers", "departments", "organisations", "financial_years"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) PutOrganisation(ctx context.Context, o engine.Organisation) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO organisations (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
			string(o.ID), o.Name)
		return err
	})
}

func (s *Store) PutDepartment(ctx context.Context, d engine.Department) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO departments (id, name, org_id) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, org_id = excluded.org_id`,
			string(d.ID), d.Name, string(d.OrgID))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM department_managers WHERE department_id = ?`, string(d.ID)); err != nil {
			return err
		}
		for _, managerID := range d.ManagerIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO department_managers (department_id, employee_id) VALUES (?, ?)`,
				string(d.ID), string(managerID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) PutProject(ctx context.Context, p engine.Project) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, department_id, start_date, end_date, budget)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				department_id = excluded.department_id,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				budget = excluded.budget`,
			string(p.ID), p.Name, string(p.DepartmentID),
			p.StartDate.String(), p.EndDate.String(), p.Budget.String())
		return err
	})
}

func (s *Store) PutAssignment(ctx context.Context, a engine.Assignment) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assignments
				(project_id, employee_id, role, billing_rate, allocation_percentage, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(a.ProjectID), string(a.EmployeeID), a.Role,
			a.BillingRate.String(), a.AllocationPercentage.String(),
			a.StartDate.String(), a.EndDate.String())
		return err
	})
}

// RemoveAssignments drops every assignment of one project.
func (s *Store) RemoveAssignments(ctx context.Context, projectID engine.ProjectID) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM assignments WHERE project_id = ?`, string(projectID))
		return err
	})
}

func (s *Store) PutFinancialYear(ctx context.Context, fy engine.FinancialYear) error {
	return s.withBump(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO financial_years (label, start_date, end_date) VALUES (?, ?, ?)
			ON CONFLICT(label) DO UPDATE SET
				start_date = excluded.start_date,
				end_date = excluded.end_date`,
			fy.Label, fy.StartDate.String(), fy.EndDate.String())
		return err
	})
}

// =============================================================================
// SNAPSHOT READER
// =============================================================================

func (s *Store) GetOrganisation(ctx context.Context, id engine.OrgID) (engine.Organisation, error) {
	var o engine.Organisation
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM organisations WHERE id = ?`, string(id)).
		Scan(&rawID, &o.Name)
	if err == sql.ErrNoRows {
		return engine.Organisation{}, fmt.Errorf("%w: %s", engine.ErrOrgNotFound, id)
	}
	if err != nil {
		return engine.Organisation{}, err
	}
	o.ID = engine.OrgID(rawID)
	return o, nil
}

func (s *Store) ListOrganisations(ctx context.Context) ([]engine.Organisation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM organisations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Organisation
	for rows.Next() {
		var o engine.Organisation
		var rawID string
		if err := rows.Scan(&rawID, &o.Name); err != nil {
			return nil, err
		}
		o.ID = engine.OrgID(rawID)
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, id engine.DeptID) (engine.Department, error) {
	var d engine.Department
	var rawID, rawOrgID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, org_id FROM departments WHERE id = ?`, string(id)).
		Scan(&rawID, &d.Name, &rawOrgID)
	if err == sql.ErrNoRows {
		return engine.Department{}, fmt.Errorf("%w: %s", engine.ErrDepartmentNotFound, id)
	}
	if err != nil {
		return engine.Department{}, err
	}
	d.ID = engine.DeptID(rawID)
	d.OrgID = engine.OrgID(rawOrgID)
	d.ManagerIDs, err = s.listManagers(ctx, d.ID)
	return d, err
}

func (s *Store) listManagers(ctx context.Context, id engine.DeptID) ([]engine.EmployeeID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM department_managers WHERE department_id = ? ORDER BY employee_id`,
		string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var managers []engine.EmployeeID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		managers = append(managers, engine.EmployeeID(raw))
	}
	return managers, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context) ([]engine.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, org_id FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Department
	for rows.Next() {
		var d engine.Department
		var rawID, rawOrgID string
		if err := rows.Scan(&rawID, &d.Name, &rawOrgID); err != nil {
			return nil, err
		}
		d.ID = engine.DeptID(rawID)
		d.OrgID = engine.OrgID(rawOrgID)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		managers, err := s.listManagers(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].ManagerIDs = managers
	}
	return result, nil
}

func (s *Store) GetProject(ctx context.Context, id engine.ProjectID) (engine.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, department_id, start_date, end_date, budget
		FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return engine.Project{}, fmt.Errorf("%w: %s", engine.ErrProjectNotFound, id)
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context) ([]engine.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department_id, start_date, end_date, budget
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanProject(scan func(dest ...any) error) (engine.Project, error) {
	var rawID, rawDeptID, rawStart, rawEnd, rawBudget string
	var p engine.Project
	if err := scan(&rawID, &p.Name, &rawDeptID, &rawStart, &rawEnd, &rawBudget); err != nil {
		return engine.Project{}, err
	}

	p.ID = engine.ProjectID(rawID)
	p.DepartmentID = engine.DeptID(rawDeptID)

	var err error
	if p.StartDate, err = engine.ParseDate(rawStart); err != nil {
		return engine.Project{}, err
	}
	if p.EndDate, err = engine.ParseDate(rawEnd); err != nil {
		return engine.Project{}, err
	}
	if p.Budget, err = engine.MoneyFromString(rawBudget); err != nil {
		return engine.Project{}, err
	}
	return p, nil
}

func (s *Store) ListAssignments(ctx context.Context, projectID engine.ProjectID) ([]engine.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, employee_id, role, billing_rate, allocation_percentage, start_date, end_date
		FROM assignments WHERE project_id = ? ORDER BY id`, string(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Assignment
	for rows.Next() {
		var rawProjectID, rawEmployeeID, rawRate, rawAllocation, rawStart, rawEnd string
		var a engine.Assignment
		if err := rows.Scan(&rawProjectID, &rawEmployeeID, &a.Role, &rawRate, &rawAllocation, &rawStart, &rawEnd); err != nil {
			return nil, err
		}
		a.ProjectID = engine.ProjectID(rawProjectID)
		a.EmployeeID = engine.EmployeeID(rawEmployeeID)
		if a.BillingRate, err = engine.MoneyFromString(rawRate); err != nil {
			return nil, err
		}
		if a.AllocationPercentage, err = decimal.NewFromString(rawAllocation); err != nil {
			return nil, err
		}
		if a.StartDate, err = engine.ParseDate(rawStart); err != nil {
			return nil, err
		}
		if a.EndDate, err = engine.ParseDate(rawEnd); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) ListFinancialYears(ctx context.Context) ([]engine.FinancialYear, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, start_date, end_date FROM financial_years ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.FinancialYear
	for rows.Next() {
		var fy engine.FinancialYear
		var rawStart, rawEnd string
		if err := rows.Scan(&fy.Label, &rawStart, &rawEnd); err != nil {
			return nil, err
		}
		if fy.StartDate, err = engine.ParseDate(rawStart); err != nil {
			return nil, err
		}
		if fy.EndDate, err = engine.ParseDate(rawEnd); err != nil {
			return nil, err
		}
		result = append(result, fy)
	}
	return result, rows.Err()
}

func (s *Store) Version(ctx context.Context) (uint64, error) {
	var version uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'snapshot_version'`).Scan(&version)
	return version, err
}
