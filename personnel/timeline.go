/*
timeline.go - Career timeline reconstruction

PURPOSE:
  Rebuilds an employee's complete career as one ordered, gap-free sequence
  of segments by merging three heterogeneous sources:

    1. open contracts      - the "still active" case
    2. closed contracts    - archived terminations
    3. movement events     - every recorded transition in between

  The contract row only holds the LATEST state, so the as-hired conditions
  of a mutated contract are recovered from the EARLIEST movement event's
  "before" snapshot. Contracts that never moved use their own fields.

ALGORITHM:
  Gather candidate segments from the three sources, sort by reference date,
  then two passes:
    Pass 1 - hire labeling: the first hire-kind segment becomes the initial
             hire, every later one a rehire.
    Pass 2 - chaining: each non-terminal segment's end date becomes the
             start date of the next segment sharing its case file, demoting
             "active" display to "historical" along the way. Separations
             are point-in-time: end = own start.

  Segments of different case files interleave by date but chain
  independently; per case file the result is gap-free and non-overlapping.

MOVEMENT KINDS:
  The ledger stores one generic movement kind. The specific kind (unit /
  position / salary change) is derived here by diffing the before/after
  snapshots - a pure function over the values, never stored, so it cannot
  drift from the snapshots.

READ-ONLY:
  No mutating failure modes. An employee with no history yields an empty
  timeline, not an error.

SEE ALSO:
  - ledger.go: the event source
  - lifecycle.go: the write side producing all of this
*/
package personnel

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SEGMENT - one dated slice of a career
// =============================================================================

type SegmentKind string

const (
	// SegmentHire is the provisional label before the hire-labeling pass.
	SegmentHire        SegmentKind = "hire"
	SegmentInitialHire SegmentKind = "initial_hire"
	SegmentRehire      SegmentKind = "rehire"

	SegmentUnitChange     SegmentKind = "unit_change"
	SegmentPositionChange SegmentKind = "position_change"
	SegmentSalaryChange   SegmentKind = "salary_change"
	SegmentMovement       SegmentKind = "movement"
	SegmentSeparation     SegmentKind = "separation"
)

func (k SegmentKind) IsHire() bool {
	return k == SegmentHire || k == SegmentInitialHire || k == SegmentRehire
}

type DisplayClass string

const (
	DisplayActive     DisplayClass = "active"
	DisplayHistorical DisplayClass = "historical"
	DisplaySeparation DisplayClass = "separation"
)

// Segment is a reconstructed slice of an employee's career: the assignment
// in effect from Start until End (nil End = still active).
type Segment struct {
	Kind          SegmentKind
	CaseFile      CaseFile
	UnitName      string
	PositionTitle string
	Salary        decimal.Decimal
	Start         Date
	End           *Date
	Display       DisplayClass
}

// DeriveKind classifies a movement event by diffing its snapshots.
// Precedence: unit over position over salary - an assignment change
// dominates the pay change that usually rides along with it.
func DeriveKind(ev MovementEvent) SegmentKind {
	if ev.Kind == KindSeparation {
		return SegmentSeparation
	}
	switch {
	case ev.Before.UnitName != ev.After.UnitName:
		return SegmentUnitChange
	case ev.Before.PositionTitle != ev.After.PositionTitle:
		return SegmentPositionChange
	case !ev.Before.Salary.Equal(ev.After.Salary):
		return SegmentSalaryChange
	default:
		return SegmentMovement
	}
}

// =============================================================================
// RECONSTRUCTOR
// =============================================================================

// Reconstructor builds career timelines. Read-only over the store.
type Reconstructor struct {
	store  Store
	salary *SalaryResolver
}

func NewReconstructor(store Store, salary *SalaryResolver) *Reconstructor {
	return &Reconstructor{store: store, salary: salary}
}

// Timeline returns the employee's ordered, chained career segments.
// An unknown or history-less employee yields an empty slice.
func (r *Reconstructor) Timeline(ctx context.Context, id EmployeeID) ([]Segment, error) {
	segments, err := r.gather(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return []Segment{}, nil
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start.Before(segments[j].Start)
	})
	labelHires(segments)
	chain(segments)
	return segments, nil
}

// gather collects candidate segments from the three sources. Hire-kind
// segments are emitted before movement segments so the stable sort keeps
// a hire ahead of a same-day movement.
func (r *Reconstructor) gather(ctx context.Context, id EmployeeID) ([]Segment, error) {
	var segments []Segment
	ledger := NewMovementLedger(r.store)

	open, err := r.store.OpenContractsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range open {
		earliest, ok, err := ledger.EarliestFor(ctx, c.CaseFile)
		if err != nil {
			return nil, err
		}
		asHired := r.salary.SnapshotOf(ctx, r.store, c)
		if ok {
			// The row reflects the latest mutation; the earliest event's
			// "before" side still holds the original hire conditions.
			asHired = earliest.Before
		}
		segments = append(segments, Segment{
			Kind:          SegmentHire,
			CaseFile:      c.CaseFile,
			UnitName:      asHired.UnitName,
			PositionTitle: asHired.PositionTitle,
			Salary:        asHired.Salary,
			Start:         c.HireDate,
			End:           nil,
			Display:       DisplayActive,
		})
	}

	closed, err := r.store.ClosedContractsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range closed {
		earliest, ok, err := ledger.EarliestFor(ctx, c.CaseFile)
		if err != nil {
			return nil, err
		}
		var asHired Snapshot
		if ok {
			asHired = earliest.Before
		} else {
			asHired = r.salary.SnapshotOf(ctx, r.store, Contract{
				CaseFile:   c.CaseFile,
				PositionID: c.PositionID,
				TierID:     c.TierID,
				SalaryKind: c.SalaryKind,
			})
		}
		end := c.TerminationDate
		segments = append(segments, Segment{
			Kind:          SegmentHire,
			CaseFile:      c.CaseFile,
			UnitName:      asHired.UnitName,
			PositionTitle: asHired.PositionTitle,
			Salary:        asHired.Salary,
			Start:         c.HireDate,
			End:           &end,
			Display:       DisplayHistorical,
		})
	}

	events, err := ledger.AllFor(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		display := DisplayHistorical
		if ev.ContractRef != nil {
			display = DisplayActive
		}
		kind := DeriveKind(ev)
		if kind == SegmentSeparation {
			display = DisplaySeparation
		}
		segments = append(segments, Segment{
			Kind:          kind,
			CaseFile:      ev.CaseFile,
			UnitName:      ev.After.UnitName,
			PositionTitle: ev.After.PositionTitle,
			Salary:        ev.After.Salary,
			Start:         ev.EffectiveDate,
			End:           nil,
			Display:       display,
		})
	}

	return segments, nil
}

// labelHires marks the chronologically first hire as the initial hire and
// every later one as a rehire.
func labelHires(segments []Segment) {
	seen := false
	for i := range segments {
		if !segments[i].Kind.IsHire() {
			continue
		}
		if !seen {
			segments[i].Kind = SegmentInitialHire
			seen = true
		} else {
			segments[i].Kind = SegmentRehire
		}
	}
}

// chain closes each segment at the start of the next segment sharing its
// case file. Separations are point-in-time events.
func chain(segments []Segment) {
	for i := range segments {
		if segments[i].Kind == SegmentSeparation {
			start := segments[i].Start
			segments[i].End = &start
			continue
		}
		for j := i + 1; j < len(segments); j++ {
			if segments[j].CaseFile != segments[i].CaseFile {
				continue
			}
			next := segments[j].Start
			segments[i].End = &next
			if segments[i].Display == DisplayActive {
				segments[i].Display = DisplayHistorical
			}
			break
		}
	}
}
