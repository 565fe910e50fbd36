// Package store provides SnapshotReader implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/costing-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds entity snapshots in maps guarded by an RWMutex. Reads copy,
// so callers never observe a mutation mid-iteration. Every mutation bumps
// the version counter the engine uses as its snapshot handle.
type Memory struct {
	mu             sync.RWMutex
	organisations  map[engine.OrgID]engine.Organisation
	departments    map[engine.DeptID]engine.Department
	projects       map[engine.ProjectID]engine.Project
	assignments    map[engine.ProjectID][]engine.Assignment
	financialYears map[string]engine.FinancialYear
	version        uint64
}

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.organisations = make(map[engine.OrgID]engine.Organisation)
	m.departments = make(map[engine.DeptID]engine.Department)
	m.projects = make(map[engine.ProjectID]engine.Project)
	m.assignments = make(map[engine.ProjectID][]engine.Assignment)
	m.financialYears = make(map[string]engine.FinancialYear)
}

// Reset clears all entity data. Used by demo scenario loading.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.version++
	return nil
}

// =============================================================================
// MUTATIONS - External CRUD writes; each bumps the snapshot version
// =============================================================================

func (m *Memory) PutOrganisation(_ context.Context, o engine.Organisation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organisations[o.ID] = o
	m.version++
	return nil
}

func (m *Memory) PutDepartment(_ context.Context, d engine.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = d
	m.version++
	return nil
}

func (m *Memory) PutProject(_ context.Context, p engine.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	m.version++
	return nil
}

func (m *Memory) PutAssignment(_ context.Context, a engine.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ProjectID] = append(m.assignments[a.ProjectID], a)
	m.version++
	return nil
}

// RemoveAssignments drops every assignment of one project.
func (m *Memory) RemoveAssignments(_ context.Context, projectID engine.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments, projectID)
	m.version++
	return nil
}

func (m *Memory) PutFinancialYear(_ context.Context, fy engine.FinancialYear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.financialYears[fy.Label] = fy
	m.version++
	return nil
}

// =============================================================================
// SNAPSHOT READER
// =============================================================================

func (m *Memory) GetOrganisation(_ context.Context, id engine.OrgID) (engine.Organisation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.organisations[id]
	if !ok {
		return engine.Organisation{}, fmt.Errorf("%w: %s", engine.ErrOrgNotFound, id)
	}
	return o, nil
}

func (m *Memory) ListOrganisations(_ context.Context) ([]engine.Organisation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Organisation, 0, len(m.organisations))
	for _, o := range m.organisations {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetDepartment(_ context.Context, id engine.DeptID) (engine.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return engine.Department{}, fmt.Errorf("%w: %s", engine.ErrDepartmentNotFound, id)
	}
	return d, nil
}

func (m *Memory) ListDepartments(_ context.Context) ([]engine.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Department, 0, len(m.departments))
	for _, d := range m.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetProject(_ context.Context, id engine.ProjectID) (engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.Project{}, fmt.Errorf("%w: %s", engine.ErrProjectNotFound, id)
	}
	return p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) ListAssignments(_ context.Context, projectID engine.ProjectID) ([]engine.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Assignment, len(m.assignments[projectID]))
	copy(result, m.assignments[projectID])
	return result, nil
}

func (m *Memory) ListFinancialYears(_ context.Context) ([]engine.FinancialYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.FinancialYear, 0, len(m.financialYears))
	for _, fy := range m.financialYears {
		result = append(result, fy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

func (m *Memory) Version(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version, nil
}
