/*
store.go - Persistence interfaces for the personnel engine

PURPOSE:
  Defines the boundary between the engine and the database. One Store
  groups the per-record-kind interfaces; TxStore adds the transactional
  envelope every mutating lifecycle operation runs inside.

ATOMICITY CONTRACT:
  hire / move / terminate each touch several tables (contract row, movement
  ledger, position counters, employee status, closed-contract archive).
  WithTx guarantees all-or-nothing: if fn returns an error every write is
  rolled back.

LEDGER CONTRACT:
  The movements table is append-only. The ONLY permitted update is
  DetachContract, which clears the open-contract back-reference of a case
  file's events at termination. Effective dates are never rewritten.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - personnel/store: in-memory for tests/dev

SEE ALSO:
  - lifecycle.go: the transactional call sites
  - ledger.go: queries layered on MovementStore
*/
package personnel

import "context"

// =============================================================================
// PER-KIND STORES
// =============================================================================

type EmployeeStore interface {
	// PutEmployee inserts or replaces the identity record.
	PutEmployee(ctx context.Context, e Employee) error

	// Employee returns ErrEmployeeNotFound for unknown IDs.
	Employee(ctx context.Context, id EmployeeID) (Employee, error)

	// SetEmployeeStatus flips the status flag; only contract lifecycle
	// transitions may call it.
	SetEmployeeStatus(ctx context.Context, id EmployeeID, status EmployeeStatus) error

	// DeleteEmployee removes an identity record. The engine guards against
	// deleting anyone a contract references.
	DeleteEmployee(ctx context.Context, id EmployeeID) error
}

type PositionStore interface {
	Position(ctx context.Context, id PositionID) (StaffingPosition, error)
	PutPosition(ctx context.Context, p StaffingPosition) error
	Positions(ctx context.Context) ([]StaffingPosition, error)
}

type ContractStore interface {
	// InsertContract fails with ErrDuplicateCaseFile when the business key
	// is taken.
	InsertContract(ctx context.Context, c Contract) error
	UpdateContract(ctx context.Context, c Contract) error
	DeleteContract(ctx context.Context, cf CaseFile) error

	Contract(ctx context.Context, cf CaseFile) (Contract, error)

	// OpenContractsFor returns the employee's open contracts (at most one
	// by invariant; returned as a slice so callers need no special case).
	OpenContractsFor(ctx context.Context, id EmployeeID) ([]Contract, error)

	// PendingMovements lists contracts staged for the movement workflow.
	PendingMovements(ctx context.Context) ([]Contract, error)
}

type ClosedContractStore interface {
	InsertClosedContract(ctx context.Context, c ClosedContract) error
	ClosedContractsFor(ctx context.Context, id EmployeeID) ([]ClosedContract, error)
}

type MovementStore interface {
	// AppendMovement adds one event. Append-only: no update, no delete.
	AppendMovement(ctx context.Context, ev MovementEvent) error

	// MovementsForCase returns a case file's events ordered by effective
	// date ascending (insertion order breaks ties).
	MovementsForCase(ctx context.Context, cf CaseFile) ([]MovementEvent, error)

	// MovementsFor returns every event ever recorded for an employee,
	// across all case files, ordered by effective date ascending.
	MovementsFor(ctx context.Context, id EmployeeID) ([]MovementEvent, error)

	// DetachContract clears ContractRef on all events of a case file. Called
	// exactly once, at termination, so history outlives the contract row.
	DetachContract(ctx context.Context, cf CaseFile) error
}

// =============================================================================
// AGGREGATE AND TRANSACTIONAL STORES
// =============================================================================

// Store groups everything the engine persists.
type Store interface {
	EmployeeStore
	PositionStore
	ContractStore
	ClosedContractStore
	MovementStore
}

// TxStore wraps Store with a transaction envelope.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view. fn returning an
	// error rolls back every write; nil commits.
	WithTx(ctx context.Context, fn func(Store) error) error
}
