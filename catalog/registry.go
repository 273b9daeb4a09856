/*
registry.go - Catalog lookup interfaces and the in-memory registry

PURPOSE:
  The engine resolves catalog rows at time of use and nothing more: a
  referenced row must exist when a contract touches it, but renaming or
  retiring a row later never rewrites history (snapshots are denormalized
  by design).

INTERFACES:
  Registry:       keyed lookups for every catalog kind, plus EntryTier
  SalarySchedule: (scale group, role, tier) -> amount

LOOKUP MISSES:
  Registry lookups return ErrNotFound for absent keys. SalarySchedule
  lookups return ErrNoScheduleRow - callers treat that as a soft miss and
  carry zero salary rather than aborting.

IMPLEMENTATIONS:
  - Memory (this file): tests and dev seeding
  - store/sqlite: production tables with referential integrity

SEE ALSO:
  - catalog.go: the row types
  - personnel/salary.go: the resolver that consumes SalarySchedule
*/
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced catalog row does not exist.
var ErrNotFound = errors.New("catalog row not found")

// ErrNoScheduleRow is returned when the salary schedule has no matching cell.
// This is a recoverable miss, not a failure.
var ErrNoScheduleRow = errors.New("no salary schedule row")

// =============================================================================
// INTERFACES
// =============================================================================

// Registry resolves catalog rows by key.
type Registry interface {
	Unit(ctx context.Context, id UnitID) (Unit, error)
	Department(ctx context.Context, id DepartmentID) (Department, error)
	Job(ctx context.Context, id JobID) (Job, error)
	ScaleGroup(ctx context.Context, id ScaleGroupID) (ScaleGroup, error)
	Role(ctx context.Context, id RoleID) (Role, error)
	Tier(ctx context.Context, id TierID) (Tier, error)
	Cause(ctx context.Context, id CauseID) (SeparationCause, error)
	Province(ctx context.Context, id ProvinceID) (Province, error)
	Municipality(ctx context.Context, id MunicipalityID) (Municipality, error)
	Specialty(ctx context.Context, id SpecialtyID) (Specialty, error)

	// EntryTier returns the first tier of entry kind; hires that omit a
	// tier get this one.
	EntryTier(ctx context.Context) (Tier, error)
}

// SalarySchedule looks up the monetary amount for a scale cell.
type SalarySchedule interface {
	Lookup(ctx context.Context, group ScaleGroupID, role RoleID, tier TierID) (decimal.Decimal, error)
}

// =============================================================================
// MEMORY REGISTRY - for tests and dev seeding
// =============================================================================

type scheduleKey struct {
	Group ScaleGroupID
	Role  RoleID
	Tier  TierID
}

// Memory implements Registry and SalarySchedule with plain maps.
type Memory struct {
	mu             sync.RWMutex
	units          map[UnitID]Unit
	departments    map[DepartmentID]Department
	jobs           map[JobID]Job
	scaleGroups    map[ScaleGroupID]ScaleGroup
	roles          map[RoleID]Role
	tiers          map[TierID]Tier
	causes         map[CauseID]SeparationCause
	provinces      map[ProvinceID]Province
	municipalities map[MunicipalityID]Municipality
	specialties    map[SpecialtyID]Specialty
	schedule       map[scheduleKey]decimal.Decimal
}

func NewMemory() *Memory {
	return &Memory{
		units:          make(map[UnitID]Unit),
		departments:    make(map[DepartmentID]Department),
		jobs:           make(map[JobID]Job),
		scaleGroups:    make(map[ScaleGroupID]ScaleGroup),
		roles:          make(map[RoleID]Role),
		tiers:          make(map[TierID]Tier),
		causes:         make(map[CauseID]SeparationCause),
		provinces:      make(map[ProvinceID]Province),
		municipalities: make(map[MunicipalityID]Municipality),
		specialties:    make(map[SpecialtyID]Specialty),
		schedule:       make(map[scheduleKey]decimal.Decimal),
	}
}

// ---- writers (seeding) ----

func (m *Memory) PutUnit(u Unit)                { m.mu.Lock(); m.units[u.ID] = u; m.mu.Unlock() }
func (m *Memory) PutDepartment(d Department)    { m.mu.Lock(); m.departments[d.ID] = d; m.mu.Unlock() }
func (m *Memory) PutJob(j Job)                  { m.mu.Lock(); m.jobs[j.ID] = j; m.mu.Unlock() }
func (m *Memory) PutScaleGroup(g ScaleGroup)    { m.mu.Lock(); m.scaleGroups[g.ID] = g; m.mu.Unlock() }
func (m *Memory) PutRole(r Role)                { m.mu.Lock(); m.roles[r.ID] = r; m.mu.Unlock() }
func (m *Memory) PutTier(t Tier)                { m.mu.Lock(); m.tiers[t.ID] = t; m.mu.Unlock() }
func (m *Memory) PutCause(c SeparationCause)    { m.mu.Lock(); m.causes[c.ID] = c; m.mu.Unlock() }
func (m *Memory) PutProvince(p Province)        { m.mu.Lock(); m.provinces[p.ID] = p; m.mu.Unlock() }
func (m *Memory) PutMunicipality(mu Municipality) {
	m.mu.Lock()
	m.municipalities[mu.ID] = mu
	m.mu.Unlock()
}
func (m *Memory) PutSpecialty(s Specialty) { m.mu.Lock(); m.specialties[s.ID] = s; m.mu.Unlock() }

func (m *Memory) PutSalaryRow(row SalaryRow) {
	m.mu.Lock()
	m.schedule[scheduleKey{row.ScaleGroupID, row.RoleID, row.TierID}] = row.Amount
	m.mu.Unlock()
}

// ---- Registry ----

func (m *Memory) Unit(_ context.Context, id UnitID) (Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[id]
	if !ok {
		return Unit{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) Department(_ context.Context, id DepartmentID) (Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return Department{}, ErrNotFound
	}
	return d, nil
}

func (m *Memory) Job(_ context.Context, id JobID) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (m *Memory) ScaleGroup(_ context.Context, id ScaleGroupID) (ScaleGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.scaleGroups[id]
	if !ok {
		return ScaleGroup{}, ErrNotFound
	}
	return g, nil
}

func (m *Memory) Role(_ context.Context, id RoleID) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) Tier(_ context.Context, id TierID) (Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiers[id]
	if !ok {
		return Tier{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) Cause(_ context.Context, id CauseID) (SeparationCause, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.causes[id]
	if !ok {
		return SeparationCause{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) Province(_ context.Context, id ProvinceID) (Province, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.provinces[id]
	if !ok {
		return Province{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) Municipality(_ context.Context, id MunicipalityID) (Municipality, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mu, ok := m.municipalities[id]
	if !ok {
		return Municipality{}, ErrNotFound
	}
	return mu, nil
}

func (m *Memory) Specialty(_ context.Context, id SpecialtyID) (Specialty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.specialties[id]
	if !ok {
		return Specialty{}, ErrNotFound
	}
	return s, nil
}

// EntryTier returns the entry-kind tier with the lowest ID so the choice is
// deterministic across runs.
func (m *Memory) EntryTier(_ context.Context) (Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []Tier
	for _, t := range m.tiers {
		if t.Kind == TierEntry {
			entries = append(entries, t)
		}
	}
	if len(entries) == 0 {
		return Tier{}, ErrNotFound
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries[0], nil
}

// ---- SalarySchedule ----

func (m *Memory) Lookup(_ context.Context, group ScaleGroupID, role RoleID, tier TierID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	amount, ok := m.schedule[scheduleKey{group, role, tier}]
	if !ok {
		return decimal.Zero, ErrNoScheduleRow
	}
	return amount, nil
}
