package personnel_test

import (
	"context"
	"testing"
	"time"

	"github.com/orbith/personnel-engine/personnel"
	memstore "github.com/orbith/personnel-engine/personnel/store"
)

func appendEvent(t *testing.T, st *memstore.Memory, id string, emp personnel.EmployeeID, cf personnel.CaseFile, effective personnel.Date) {
	t.Helper()
	ref := cf
	err := st.AppendMovement(context.Background(), personnel.MovementEvent{
		ID:            id,
		EmployeeID:    emp,
		CaseFile:      cf,
		ContractRef:   &ref,
		EffectiveDate: effective,
		Kind:          personnel.KindMovement,
	})
	if err != nil {
		t.Fatalf("append %s: %v", id, err)
	}
}

func TestLedger_LatestAndEarliest(t *testing.T) {
	// GIVEN: events appended out of date order
	// WHEN: querying the bounds
	// THEN: ordering is by effective date, not insertion

	ctx := context.Background()
	st := memstore.NewMemory()
	ledger := personnel.NewMovementLedger(st)

	appendEvent(t, st, "ev-2", "85010212345", "CF-100", date(2024, time.June, 1))
	appendEvent(t, st, "ev-1", "85010212345", "CF-100", date(2024, time.March, 1))
	appendEvent(t, st, "ev-3", "85010212345", "CF-100", date(2024, time.September, 1))

	latest, ok, err := ledger.LatestFor(ctx, "CF-100")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if latest.ID != "ev-3" {
		t.Errorf("expected ev-3 latest, got %s", latest.ID)
	}

	earliest, ok, err := ledger.EarliestFor(ctx, "CF-100")
	if err != nil || !ok {
		t.Fatalf("earliest: ok=%v err=%v", ok, err)
	}
	if earliest.ID != "ev-1" {
		t.Errorf("expected ev-1 earliest, got %s", earliest.ID)
	}
}

func TestLedger_SameDayTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewMemory()
	ledger := personnel.NewMovementLedger(st)

	day := date(2024, time.June, 1)
	appendEvent(t, st, "first", "85010212345", "CF-100", day)
	appendEvent(t, st, "second", "85010212345", "CF-100", day)

	events, err := ledger.ByCase(ctx, "CF-100")
	if err != nil {
		t.Fatalf("by case: %v", err)
	}
	if len(events) != 2 || events[0].ID != "first" || events[1].ID != "second" {
		t.Errorf("ties must keep insertion order, got %+v", events)
	}

	latest, _, _ := ledger.LatestFor(ctx, "CF-100")
	if latest.ID != "second" {
		t.Errorf("latest on a tie is the last inserted, got %s", latest.ID)
	}
}

func TestLedger_EmptyCase(t *testing.T) {
	ledger := personnel.NewMovementLedger(memstore.NewMemory())

	if _, ok, err := ledger.LatestFor(context.Background(), "CF-NONE"); err != nil || ok {
		t.Errorf("expected no latest for an empty case, ok=%v err=%v", ok, err)
	}
	if _, ok, err := ledger.EarliestFor(context.Background(), "CF-NONE"); err != nil || ok {
		t.Errorf("expected no earliest for an empty case, ok=%v err=%v", ok, err)
	}
}

func TestLedger_AllForSpansCaseFiles(t *testing.T) {
	// AllFor merges every case file of the employee, ordered by date, and
	// leaves other employees out.

	ctx := context.Background()
	st := memstore.NewMemory()
	ledger := personnel.NewMovementLedger(st)

	appendEvent(t, st, "old", "85010212345", "CF-100", date(2022, time.March, 1))
	appendEvent(t, st, "new", "85010212345", "CF-200", date(2024, time.March, 1))
	appendEvent(t, st, "other", "90060754321", "CF-300", date(2023, time.March, 1))

	events, err := ledger.AllFor(ctx, "85010212345")
	if err != nil {
		t.Fatalf("all for: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "old" || events[1].ID != "new" {
		t.Errorf("expected chronological order across case files, got %+v", events)
	}
}

func TestLedger_DetachClearsOnlyTheBackReference(t *testing.T) {
	// GIVEN: events of two case files
	// WHEN: detaching one
	// THEN: its back-references are nil; case file and dates survive, the
	//       other case file is untouched

	ctx := context.Background()
	st := memstore.NewMemory()

	appendEvent(t, st, "ev-1", "85010212345", "CF-100", date(2024, time.March, 1))
	appendEvent(t, st, "ev-2", "85010212345", "CF-200", date(2024, time.April, 1))

	if err := st.DetachContract(ctx, "CF-100"); err != nil {
		t.Fatalf("detach: %v", err)
	}

	detached, _ := st.MovementsForCase(ctx, "CF-100")
	if len(detached) != 1 {
		t.Fatalf("history must survive the detach, got %d events", len(detached))
	}
	if detached[0].ContractRef != nil {
		t.Error("expected nil back-reference after detach")
	}
	if detached[0].CaseFile != "CF-100" || !detached[0].EffectiveDate.Equal(date(2024, time.March, 1)) {
		t.Error("detach must not touch case file or dates")
	}

	intact, _ := st.MovementsForCase(ctx, "CF-200")
	if intact[0].ContractRef == nil {
		t.Error("other case files must keep their back-references")
	}
}
