/*
ledger.go - Movement ledger queries

PURPOSE:
  The movement ledger is the immutable record of every contract state
  transition. This file layers the query shapes the engine needs on top
  of MovementStore:

  - LatestFor: the chronology floor. A new movement or termination date
    may never precede the latest recorded event of the contract.
  - AllFor: the full event history of an employee across every case file,
    including closed ones. Feeds the timeline reconstructor.

GUARANTEES:
  Events are never mutated or deleted. The single exception is clearing
  the open-contract back-reference at termination (DetachContract), which
  preserves the case-file number and employee for future lookups.

SEE ALSO:
  - store.go: MovementStore contract
  - timeline.go: the consumer of AllFor
*/
package personnel

import "context"

// MovementLedger wraps a MovementStore with the engine's query shapes.
type MovementLedger struct {
	store MovementStore
}

func NewMovementLedger(store MovementStore) *MovementLedger {
	return &MovementLedger{store: store}
}

// LatestFor returns the most recent event by effective date for a case
// file. ok is false when the contract has no events yet.
func (l *MovementLedger) LatestFor(ctx context.Context, cf CaseFile) (MovementEvent, bool, error) {
	events, err := l.store.MovementsForCase(ctx, cf)
	if err != nil {
		return MovementEvent{}, false, err
	}
	if len(events) == 0 {
		return MovementEvent{}, false, nil
	}
	return events[len(events)-1], true, nil
}

// EarliestFor returns the first event by effective date for a case file.
// Its "before" snapshot recovers the as-hired state of a contract whose
// row has since been mutated.
func (l *MovementLedger) EarliestFor(ctx context.Context, cf CaseFile) (MovementEvent, bool, error) {
	events, err := l.store.MovementsForCase(ctx, cf)
	if err != nil {
		return MovementEvent{}, false, err
	}
	if len(events) == 0 {
		return MovementEvent{}, false, nil
	}
	return events[0], true, nil
}

// ByCase returns the ordered event history of one case file.
func (l *MovementLedger) ByCase(ctx context.Context, cf CaseFile) ([]MovementEvent, error) {
	return l.store.MovementsForCase(ctx, cf)
}

// AllFor returns every event ever recorded for an employee, ordered by
// effective date ascending.
func (l *MovementLedger) AllFor(ctx context.Context, id EmployeeID) ([]MovementEvent, error) {
	return l.store.MovementsFor(ctx, id)
}
