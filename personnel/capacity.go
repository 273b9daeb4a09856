/*
capacity.go - Position headcount ledger

PURPOSE:
  Tracks approved vs. filled slots per staffing position. Reserve and
  Release run as side effects of open-ended contract creation and
  termination; HasCapacity is the advisory pre-check before assignment.

INVARIANTS:
  - Filled never goes negative: Release floors at zero.
  - Filled <= Approved is advisory, not enforced by storage. The check is
    check-then-act; two concurrent hires against the last slot can both
    pass. Known limitation, inherited deliberately.
  - Reserve against a vanished position is an already-resolved
    inconsistency: logged, not raised.

SEE ALSO:
  - lifecycle.go: the call sites
  - timeline.go is read-only and never touches counters
*/
package personnel

import (
	"context"
	"errors"
	"log"
)

// CapacityLedger mutates StaffingPosition counters through a PositionStore.
// Callers pass the store view of the enclosing transaction.
type CapacityLedger struct {
	store PositionStore
}

func NewCapacityLedger(store PositionStore) *CapacityLedger {
	return &CapacityLedger{store: store}
}

// Reserve increments the filled counter. A missing position is logged and
// ignored.
func (l *CapacityLedger) Reserve(ctx context.Context, id PositionID) error {
	pos, err := l.store.Position(ctx, id)
	if errors.Is(err, ErrPositionNotFound) {
		log.Printf("capacity: reserve on missing position %s, skipping", id)
		return nil
	}
	if err != nil {
		return err
	}
	pos.Filled++
	return l.store.PutPosition(ctx, pos)
}

// Release decrements the filled counter, floored at zero. A missing
// position is logged and ignored, same as Reserve.
func (l *CapacityLedger) Release(ctx context.Context, id PositionID) error {
	pos, err := l.store.Position(ctx, id)
	if errors.Is(err, ErrPositionNotFound) {
		log.Printf("capacity: release on missing position %s, skipping", id)
		return nil
	}
	if err != nil {
		return err
	}
	if pos.Filled > 0 {
		pos.Filled--
	}
	return l.store.PutPosition(ctx, pos)
}

// HasCapacity reports whether the position has a free slot. When the
// contract under validation already occupies this exact position the check
// passes unconditionally - editing in place must not count the occupant
// against itself.
func (l *CapacityLedger) HasCapacity(ctx context.Context, id PositionID, current *Contract) (bool, error) {
	if current != nil && current.PositionID == id {
		return true, nil
	}
	pos, err := l.store.Position(ctx, id)
	if err != nil {
		return false, err
	}
	return pos.Filled < pos.Approved, nil
}
