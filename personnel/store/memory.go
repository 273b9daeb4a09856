// Package store provides personnel.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/orbith/personnel-engine/personnel"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[personnel.EmployeeID]personnel.Employee
	positions map[personnel.PositionID]personnel.StaffingPosition
	contracts map[personnel.CaseFile]personnel.Contract
	closed    map[personnel.EmployeeID][]personnel.ClosedContract
	movements []personnel.MovementEvent
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[personnel.EmployeeID]personnel.Employee),
		positions: make(map[personnel.PositionID]personnel.StaffingPosition),
		contracts: make(map[personnel.CaseFile]personnel.Contract),
		closed:    make(map[personnel.EmployeeID][]personnel.ClosedContract),
	}
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) PutEmployee(_ context.Context, e personnel.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) Employee(_ context.Context, id personnel.EmployeeID) (personnel.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeeLocked(id)
}

func (m *Memory) employeeLocked(id personnel.EmployeeID) (personnel.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return personnel.Employee{}, personnel.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) SetEmployeeStatus(_ context.Context, id personnel.EmployeeID, status personnel.EmployeeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStatusLocked(id, status)
}

func (m *Memory) setStatusLocked(id personnel.EmployeeID, status personnel.EmployeeStatus) error {
	e, ok := m.employees[id]
	if !ok {
		return personnel.ErrEmployeeNotFound
	}
	e.Status = status
	m.employees[id] = e
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id personnel.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteEmployeeLocked(id)
}

func (m *Memory) deleteEmployeeLocked(id personnel.EmployeeID) error {
	if _, ok := m.employees[id]; !ok {
		return personnel.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

// -----------------------------------------------------------------------------
// Positions
// -----------------------------------------------------------------------------

func (m *Memory) Position(_ context.Context, id personnel.PositionID) (personnel.StaffingPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positionLocked(id)
}

func (m *Memory) positionLocked(id personnel.PositionID) (personnel.StaffingPosition, error) {
	p, ok := m.positions[id]
	if !ok {
		return personnel.StaffingPosition{}, personnel.ErrPositionNotFound
	}
	return p, nil
}

func (m *Memory) PutPosition(_ context.Context, p personnel.StaffingPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *Memory) Positions(_ context.Context) ([]personnel.StaffingPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positionsLocked(), nil
}

func (m *Memory) positionsLocked() []personnel.StaffingPosition {
	result := make([]personnel.StaffingPosition, 0, len(m.positions))
	for _, p := range m.positions {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// -----------------------------------------------------------------------------
// Contracts
// -----------------------------------------------------------------------------

func (m *Memory) InsertContract(_ context.Context, c personnel.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertContractLocked(c)
}

func (m *Memory) insertContractLocked(c personnel.Contract) error {
	if _, ok := m.contracts[c.CaseFile]; ok {
		return personnel.ErrDuplicateCaseFile
	}
	m.contracts[c.CaseFile] = c
	return nil
}

func (m *Memory) UpdateContract(_ context.Context, c personnel.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateContractLocked(c)
}

func (m *Memory) updateContractLocked(c personnel.Contract) error {
	if _, ok := m.contracts[c.CaseFile]; !ok {
		return personnel.ErrContractNotFound
	}
	m.contracts[c.CaseFile] = c
	return nil
}

func (m *Memory) DeleteContract(_ context.Context, cf personnel.CaseFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteContractLocked(cf)
}

func (m *Memory) deleteContractLocked(cf personnel.CaseFile) error {
	if _, ok := m.contracts[cf]; !ok {
		return personnel.ErrContractNotFound
	}
	delete(m.contracts, cf)
	return nil
}

func (m *Memory) Contract(_ context.Context, cf personnel.CaseFile) (personnel.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contractLocked(cf)
}

func (m *Memory) contractLocked(cf personnel.CaseFile) (personnel.Contract, error) {
	c, ok := m.contracts[cf]
	if !ok {
		return personnel.Contract{}, personnel.ErrContractNotFound
	}
	return c, nil
}

func (m *Memory) OpenContractsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.openContractsLocked(id), nil
}

func (m *Memory) openContractsLocked(id personnel.EmployeeID) []personnel.Contract {
	var result []personnel.Contract
	for _, c := range m.contracts {
		if c.EmployeeID == id {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CaseFile < result[j].CaseFile })
	return result
}

func (m *Memory) PendingMovements(_ context.Context) ([]personnel.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingLocked(), nil
}

func (m *Memory) pendingLocked() []personnel.Contract {
	var result []personnel.Contract
	for _, c := range m.contracts {
		if c.PendingMovement {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CaseFile < result[j].CaseFile })
	return result
}

// -----------------------------------------------------------------------------
// Closed contracts
// -----------------------------------------------------------------------------

func (m *Memory) InsertClosedContract(_ context.Context, c personnel.ClosedContract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertClosedLocked(c)
	return nil
}

func (m *Memory) insertClosedLocked(c personnel.ClosedContract) {
	m.closed[c.EmployeeID] = append(m.closed[c.EmployeeID], c)
}

func (m *Memory) ClosedContractsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.ClosedContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closedLocked(id), nil
}

func (m *Memory) closedLocked(id personnel.EmployeeID) []personnel.ClosedContract {
	result := make([]personnel.ClosedContract, len(m.closed[id]))
	copy(result, m.closed[id])
	return result
}

// -----------------------------------------------------------------------------
// Movements
// -----------------------------------------------------------------------------

func (m *Memory) AppendMovement(_ context.Context, ev personnel.MovementEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendMovementLocked(ev)
	return nil
}

func (m *Memory) appendMovementLocked(ev personnel.MovementEvent) {
	m.movements = append(m.movements, ev)
}

func (m *Memory) MovementsForCase(_ context.Context, cf personnel.CaseFile) ([]personnel.MovementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.movementsForCaseLocked(cf), nil
}

func (m *Memory) movementsForCaseLocked(cf personnel.CaseFile) []personnel.MovementEvent {
	var result []personnel.MovementEvent
	for _, ev := range m.movements {
		if ev.CaseFile == cf {
			result = append(result, ev)
		}
	}
	sortMovements(result)
	return result
}

func (m *Memory) MovementsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.MovementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.movementsForLocked(id), nil
}

func (m *Memory) movementsForLocked(id personnel.EmployeeID) []personnel.MovementEvent {
	var result []personnel.MovementEvent
	for _, ev := range m.movements {
		if ev.EmployeeID == id {
			result = append(result, ev)
		}
	}
	sortMovements(result)
	return result
}

// sortMovements orders by effective date ascending, insertion order on ties.
func sortMovements(evs []personnel.MovementEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].EffectiveDate.Before(evs[j].EffectiveDate)
	})
}

func (m *Memory) DetachContract(_ context.Context, cf personnel.CaseFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked(cf)
	return nil
}

func (m *Memory) detachLocked(cf personnel.CaseFile) {
	for i := range m.movements {
		if m.movements[i].CaseFile == cf {
			m.movements[i].ContractRef = nil
		}
	}
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(personnel.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	// Snapshot current state
	snapshot := tm.snapshot()

	// Create a transactional view
	txStore := &txMemoryView{parent: tm}

	// Execute function
	if err := fn(txStore); err != nil {
		// Rollback
		tm.restore(snapshot)
		return err
	}

	// Commit (already done via direct writes)
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		employees: make(map[personnel.EmployeeID]personnel.Employee, len(tm.employees)),
		positions: make(map[personnel.PositionID]personnel.StaffingPosition, len(tm.positions)),
		contracts: make(map[personnel.CaseFile]personnel.Contract, len(tm.contracts)),
		closed:    make(map[personnel.EmployeeID][]personnel.ClosedContract, len(tm.closed)),
		movements: append([]personnel.MovementEvent{}, tm.movements...),
	}
	for k, v := range tm.employees {
		s.employees[k] = v
	}
	for k, v := range tm.positions {
		s.positions[k] = v
	}
	for k, v := range tm.contracts {
		s.contracts[k] = v
	}
	for k, v := range tm.closed {
		s.closed[k] = append([]personnel.ClosedContract{}, v...)
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.employees = s.employees
	tm.positions = s.positions
	tm.contracts = s.contracts
	tm.closed = s.closed
	tm.movements = s.movements
}

type memorySnapshot struct {
	employees map[personnel.EmployeeID]personnel.Employee
	positions map[personnel.PositionID]personnel.StaffingPosition
	contracts map[personnel.CaseFile]personnel.Contract
	closed    map[personnel.EmployeeID][]personnel.ClosedContract
	movements []personnel.MovementEvent
}

// txMemoryView forwards to the parent's locked helpers. The parent holds
// the write lock for the duration of WithTx.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) PutEmployee(_ context.Context, e personnel.Employee) error {
	tv.parent.employees[e.ID] = e
	return nil
}

func (tv *txMemoryView) Employee(_ context.Context, id personnel.EmployeeID) (personnel.Employee, error) {
	return tv.parent.employeeLocked(id)
}

func (tv *txMemoryView) SetEmployeeStatus(_ context.Context, id personnel.EmployeeID, status personnel.EmployeeStatus) error {
	return tv.parent.setStatusLocked(id, status)
}

func (tv *txMemoryView) DeleteEmployee(_ context.Context, id personnel.EmployeeID) error {
	return tv.parent.deleteEmployeeLocked(id)
}

func (tv *txMemoryView) Position(_ context.Context, id personnel.PositionID) (personnel.StaffingPosition, error) {
	return tv.parent.positionLocked(id)
}

func (tv *txMemoryView) PutPosition(_ context.Context, p personnel.StaffingPosition) error {
	tv.parent.positions[p.ID] = p
	return nil
}

func (tv *txMemoryView) Positions(_ context.Context) ([]personnel.StaffingPosition, error) {
	return tv.parent.positionsLocked(), nil
}

func (tv *txMemoryView) InsertContract(_ context.Context, c personnel.Contract) error {
	return tv.parent.insertContractLocked(c)
}

func (tv *txMemoryView) UpdateContract(_ context.Context, c personnel.Contract) error {
	return tv.parent.updateContractLocked(c)
}

func (tv *txMemoryView) DeleteContract(_ context.Context, cf personnel.CaseFile) error {
	return tv.parent.deleteContractLocked(cf)
}

func (tv *txMemoryView) Contract(_ context.Context, cf personnel.CaseFile) (personnel.Contract, error) {
	return tv.parent.contractLocked(cf)
}

func (tv *txMemoryView) OpenContractsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.Contract, error) {
	return tv.parent.openContractsLocked(id), nil
}

func (tv *txMemoryView) PendingMovements(_ context.Context) ([]personnel.Contract, error) {
	return tv.parent.pendingLocked(), nil
}

func (tv *txMemoryView) InsertClosedContract(_ context.Context, c personnel.ClosedContract) error {
	tv.parent.insertClosedLocked(c)
	return nil
}

func (tv *txMemoryView) ClosedContractsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.ClosedContract, error) {
	return tv.parent.closedLocked(id), nil
}

func (tv *txMemoryView) AppendMovement(_ context.Context, ev personnel.MovementEvent) error {
	tv.parent.appendMovementLocked(ev)
	return nil
}

func (tv *txMemoryView) MovementsForCase(_ context.Context, cf personnel.CaseFile) ([]personnel.MovementEvent, error) {
	return tv.parent.movementsForCaseLocked(cf), nil
}

func (tv *txMemoryView) MovementsFor(_ context.Context, id personnel.EmployeeID) ([]personnel.MovementEvent, error) {
	return tv.parent.movementsForLocked(id), nil
}

func (tv *txMemoryView) DetachContract(_ context.Context, cf personnel.CaseFile) error {
	tv.parent.detachLocked(cf)
	return nil
}

var (
	_ personnel.Store   = (*Memory)(nil)
	_ personnel.TxStore = (*TxMemory)(nil)
	_ personnel.Store   = (*txMemoryView)(nil)
)
