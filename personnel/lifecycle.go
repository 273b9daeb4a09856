/*
lifecycle.go - Contract state machine

PURPOSE:
  Governs the lifecycle of one employee's contract:

    NONE -> OPEN -> OPEN(mutated) -> CLOSED

  Hire opens the contract, Move mutates it in place (appending a movement
  event with before/after snapshots), Terminate archives it. Each operation
  runs inside one store transaction: every effect commits or none does.

PRECONDITIONS:
  - Hire: employee holds no open contract; for open-ended contracts with a
    position the advisory capacity check must pass.
  - Move/Terminate: the date must not precede the chronology floor - the
    later of the hire date and the latest movement's effective date.

SNAPSHOTS:
  Before/after states are captured as denormalized value copies (unit name,
  position title, salary) at the moment of transition. A salary schedule
  miss records zero, logged, and the operation continues.

ACTORS:
  Every mutation takes an explicit actor; there is no ambient current-user
  state.

SEE ALSO:
  - capacity.go: the counters Hire/Terminate adjust
  - ledger.go: chronology floor and history queries
  - timeline.go: the read side
*/
package personnel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orbith/personnel-engine/catalog"
)

// Engine executes contract lifecycle transitions.
type Engine struct {
	store    TxStore
	registry catalog.Registry
	salary   *SalaryResolver
}

func NewEngine(store TxStore, registry catalog.Registry, salary *SalaryResolver) *Engine {
	return &Engine{store: store, registry: registry, salary: salary}
}

// Store exposes the underlying store for read paths.
func (e *Engine) Store() TxStore { return e.store }

// =============================================================================
// HIRE
// =============================================================================

type HireInput struct {
	Actor      string
	EmployeeID EmployeeID
	CaseFile   CaseFile
	PositionID PositionID // optional
	Type       ContractType
	TierID     catalog.TierID // empty = entry tier
	SalaryKind SalaryKind     // empty = scale
	HireDate   Date

	DurationDays       int
	MilitaryRegistry   MilitaryRegistry
	ProfessionalDriver bool
	RetireeRehired     bool

	LicenseExpiry         Date
	RequalificationExpiry Date
	InsuranceExpiry       Date
}

// Hire opens a contract, activates the employee and reserves the position
// slot for open-ended contracts. Atomic.
func (e *Engine) Hire(ctx context.Context, in HireInput) (Contract, error) {
	if err := validateHireInput(in); err != nil {
		return Contract{}, err
	}

	var created Contract
	err := e.store.WithTx(ctx, func(s Store) error {
		reg := e.registryFor(s)

		if _, err := s.Employee(ctx, in.EmployeeID); err != nil {
			return err
		}

		open, err := s.OpenContractsFor(ctx, in.EmployeeID)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return fmt.Errorf("employee %s: %w", in.EmployeeID, ErrOpenContractExists)
		}

		capacity := NewCapacityLedger(s)
		if in.Type == ContractIndefinite && in.PositionID != "" {
			ok, err := capacity.HasCapacity(ctx, in.PositionID, nil)
			if err != nil {
				return err
			}
			if !ok {
				pos, _ := s.Position(ctx, in.PositionID)
				return &CapacityError{
					PositionID: in.PositionID,
					Title:      e.positionTitle(ctx, reg, pos),
					Approved:   pos.Approved,
					Filled:     pos.Filled,
				}
			}
		}

		tier := in.TierID
		if tier == "" {
			if entry, err := reg.EntryTier(ctx); err == nil {
				tier = entry.ID
			}
		}
		kind := in.SalaryKind
		if kind == "" {
			kind = SalaryScale
		}

		now := time.Now().UTC()
		created = Contract{
			CaseFile:              in.CaseFile,
			EmployeeID:            in.EmployeeID,
			PositionID:            in.PositionID,
			Type:                  in.Type,
			TierID:                tier,
			SalaryKind:            kind,
			HireDate:              in.HireDate,
			DurationDays:          in.DurationDays,
			MilitaryRegistry:      in.MilitaryRegistry,
			ProfessionalDriver:    in.ProfessionalDriver,
			RetireeRehired:        in.RetireeRehired,
			LicenseExpiry:         in.LicenseExpiry,
			RequalificationExpiry: in.RequalificationExpiry,
			InsuranceExpiry:       in.InsuranceExpiry,
			CreatedBy:             in.Actor,
			CreatedAt:             now,
			UpdatedBy:             in.Actor,
			UpdatedAt:             now,
		}
		if err := s.InsertContract(ctx, created); err != nil {
			return err
		}
		if err := s.SetEmployeeStatus(ctx, in.EmployeeID, StatusActive); err != nil {
			return err
		}
		if in.Type == ContractIndefinite && in.PositionID != "" {
			if err := capacity.Reserve(ctx, in.PositionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Contract{}, err
	}
	return created, nil
}

func validateHireInput(in HireInput) error {
	fe := FieldErrors{}
	if in.CaseFile == "" {
		fe["case_file"] = "case-file number is required"
	}
	if in.EmployeeID == "" {
		fe["employee_id"] = "employee is required"
	}
	if in.HireDate.IsZero() {
		fe["hire_date"] = "hire date is required"
	}
	switch in.Type {
	case ContractIndefinite, ContractFixedTerm, ContractTraining, ContractTempMovement:
	default:
		fe["type"] = "unknown contract type"
	}
	if in.Type == ContractFixedTerm && in.DurationDays <= 0 {
		fe["duration_days"] = "fixed-term contracts need a duration"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// =============================================================================
// MOVE
// =============================================================================

type MoveInput struct {
	Actor         string
	CaseFile      CaseFile
	NewPositionID *PositionID     // nil = keep
	NewTierID     *catalog.TierID // nil = keep
	EffectiveDate Date
	RequestedDate *Date
	Notes         string
}

// Move mutates the contract's assignment or pay tier in place and appends
// the movement event. The hire date is untouched - it carries seniority.
// Atomic; a chronology violation rejects the mutation whole.
func (e *Engine) Move(ctx context.Context, in MoveInput) (MovementEvent, error) {
	if in.EffectiveDate.IsZero() {
		return MovementEvent{}, FieldErrors{"effective_date": "effective date is required"}
	}

	var recorded MovementEvent
	err := e.store.WithTx(ctx, func(s Store) error {
		contract, err := s.Contract(ctx, in.CaseFile)
		if err != nil {
			return err
		}

		if err := e.guardChronology(ctx, s, contract, in.EffectiveDate); err != nil {
			return err
		}

		if in.NewPositionID != nil && *in.NewPositionID != "" &&
			*in.NewPositionID != contract.PositionID && contract.Type == ContractIndefinite {
			capacity := NewCapacityLedger(s)
			ok, err := capacity.HasCapacity(ctx, *in.NewPositionID, &contract)
			if err != nil {
				return err
			}
			if !ok {
				pos, _ := s.Position(ctx, *in.NewPositionID)
				return &CapacityError{
					PositionID: *in.NewPositionID,
					Title:      e.positionTitle(ctx, e.registryFor(s), pos),
					Approved:   pos.Approved,
					Filled:     pos.Filled,
				}
			}
		}

		before := e.snapshot(ctx, s, contract)

		if in.NewPositionID != nil {
			contract.PositionID = *in.NewPositionID
		}
		if in.NewTierID != nil {
			contract.TierID = *in.NewTierID
		}
		contract.PendingMovement = false
		contract.UpdatedBy = in.Actor
		contract.UpdatedAt = time.Now().UTC()

		if err := s.UpdateContract(ctx, contract); err != nil {
			return err
		}

		after := e.snapshot(ctx, s, contract)

		ref := contract.CaseFile
		recorded = MovementEvent{
			ID:            uuid.NewString(),
			EmployeeID:    contract.EmployeeID,
			CaseFile:      contract.CaseFile,
			ContractRef:   &ref,
			EffectiveDate: in.EffectiveDate,
			RequestedDate: in.RequestedDate,
			Kind:          KindMovement,
			Before:        before,
			After:         after,
			Notes:         in.Notes,
			CreatedBy:     in.Actor,
			CreatedAt:     time.Now().UTC(),
		}
		return s.AppendMovement(ctx, recorded)
	})
	if err != nil {
		return MovementEvent{}, err
	}
	return recorded, nil
}

// FlagForMovement stages a contract for the movement workflow. Idempotent.
func (e *Engine) FlagForMovement(ctx context.Context, actor string, cf CaseFile) error {
	return e.store.WithTx(ctx, func(s Store) error {
		contract, err := s.Contract(ctx, cf)
		if err != nil {
			return err
		}
		if contract.PendingMovement {
			return nil
		}
		contract.PendingMovement = true
		contract.UpdatedBy = actor
		contract.UpdatedAt = time.Now().UTC()
		return s.UpdateContract(ctx, contract)
	})
}

// =============================================================================
// TERMINATE
// =============================================================================

type TerminateInput struct {
	Actor           string
	CaseFile        CaseFile
	TerminationDate Date
	CauseID         catalog.CauseID

	// DisableChronologyGuard skips the date floor check; reserved for
	// administrative corrections.
	DisableChronologyGuard bool
}

// Terminate closes the contract: detaches ledger back-references, appends
// the final separation event, archives a ClosedContract, releases the
// position slot for open-ended contracts, flips the employee to terminated
// and deletes the contract row. All-or-nothing.
func (e *Engine) Terminate(ctx context.Context, in TerminateInput) (ClosedContract, error) {
	if in.TerminationDate.IsZero() {
		return ClosedContract{}, FieldErrors{"termination_date": "termination date is required"}
	}
	cause, err := e.registry.Cause(ctx, in.CauseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return ClosedContract{}, FieldErrors{"cause_id": "unknown separation cause"}
		}
		return ClosedContract{}, err
	}
	if cause.Hire {
		return ClosedContract{}, FieldErrors{"cause_id": "cause is a hire cause, not a separation cause"}
	}

	var closed ClosedContract
	err = e.store.WithTx(ctx, func(s Store) error {
		contract, err := s.Contract(ctx, in.CaseFile)
		if err != nil {
			return err
		}

		if !in.DisableChronologyGuard {
			if err := e.guardChronology(ctx, s, contract, in.TerminationDate); err != nil {
				return err
			}
		}

		before := e.snapshot(ctx, s, contract)

		// History must outlive the contract row: clear back-references
		// first, then record the separation with no live reference.
		if err := s.DetachContract(ctx, contract.CaseFile); err != nil {
			return err
		}
		separation := MovementEvent{
			ID:            uuid.NewString(),
			EmployeeID:    contract.EmployeeID,
			CaseFile:      contract.CaseFile,
			ContractRef:   nil,
			EffectiveDate: in.TerminationDate,
			Kind:          KindSeparation,
			Before:        before,
			After:         Snapshot{},
			Notes:         cause.Description,
			CreatedBy:     in.Actor,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.AppendMovement(ctx, separation); err != nil {
			return err
		}

		closed = ClosedContract{
			CaseFile:        contract.CaseFile,
			EmployeeID:      contract.EmployeeID,
			PositionID:      contract.PositionID,
			Type:            contract.Type,
			TierID:          contract.TierID,
			SalaryKind:      contract.SalaryKind,
			HireDate:        contract.HireDate,
			TerminationDate: in.TerminationDate,
			CauseID:         in.CauseID,
			ClosedBy:        in.Actor,
			ClosedAt:        time.Now().UTC(),
		}
		if err := s.InsertClosedContract(ctx, closed); err != nil {
			return err
		}

		if contract.Type == ContractIndefinite && contract.PositionID != "" {
			if err := NewCapacityLedger(s).Release(ctx, contract.PositionID); err != nil {
				return err
			}
		}
		if err := s.SetEmployeeStatus(ctx, contract.EmployeeID, StatusTerminated); err != nil {
			return err
		}
		return s.DeleteContract(ctx, contract.CaseFile)
	})
	if err != nil {
		return ClosedContract{}, err
	}
	return closed, nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// guardChronology rejects dates that precede the later of the hire date
// and the latest movement's effective date.
func (e *Engine) guardChronology(ctx context.Context, s Store, c Contract, attempted Date) error {
	floor, from := c.HireDate, "hire date"
	latest, ok, err := NewMovementLedger(s).LatestFor(ctx, c.CaseFile)
	if err != nil {
		return err
	}
	if ok && latest.EffectiveDate.After(floor) {
		floor, from = latest.EffectiveDate, "latest movement"
	}
	if attempted.Before(floor) {
		return &ChronologyError{
			CaseFile:  c.CaseFile,
			Attempted: attempted,
			Floor:     floor,
			FloorFrom: from,
		}
	}
	return nil
}

// snapshot captures the contract's assignment state as a value copy.
func (e *Engine) snapshot(ctx context.Context, s Store, c Contract) Snapshot {
	return e.salary.SnapshotOf(ctx, s, c)
}

// registryFor prefers the transaction's view of the catalog when the
// store carries one. The production store pools a single connection, so
// a catalog lookup routed around an open transaction never gets served.
func (e *Engine) registryFor(s Store) catalog.Registry {
	if reg, ok := s.(catalog.Registry); ok {
		return reg
	}
	return e.registry
}

func (e *Engine) positionTitle(ctx context.Context, reg catalog.Registry, pos StaffingPosition) string {
	if job, err := reg.Job(ctx, pos.JobID); err == nil {
		return job.Title
	}
	return string(pos.ID)
}
