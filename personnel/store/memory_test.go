package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbith/personnel-engine/personnel"
	"github.com/orbith/personnel-engine/personnel/store"
)

func TestMemory_ContractRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	c := personnel.Contract{
		CaseFile:   "CF-100",
		EmployeeID: "85010212345",
		Type:       personnel.ContractIndefinite,
		HireDate:   personnel.NewDate(2024, time.March, 1),
	}
	if err := m.InsertContract(ctx, c); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.InsertContract(ctx, c); !errors.Is(err, personnel.ErrDuplicateCaseFile) {
		t.Fatalf("expected ErrDuplicateCaseFile, got %v", err)
	}

	got, err := m.Contract(ctx, "CF-100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EmployeeID != "85010212345" {
		t.Errorf("unexpected contract: %+v", got)
	}

	open, err := m.OpenContractsFor(ctx, "85010212345")
	if err != nil || len(open) != 1 {
		t.Fatalf("open contracts: %v (%d)", err, len(open))
	}

	if err := m.DeleteContract(ctx, "CF-100"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Contract(ctx, "CF-100"); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
	if err := m.UpdateContract(ctx, c); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("update of a deleted contract: expected ErrContractNotFound, got %v", err)
	}
}

func TestMemory_UnknownLookups(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	if _, err := m.Employee(ctx, "none"); !errors.Is(err, personnel.ErrEmployeeNotFound) {
		t.Errorf("employee: %v", err)
	}
	if _, err := m.Position(ctx, "none"); !errors.Is(err, personnel.ErrPositionNotFound) {
		t.Errorf("position: %v", err)
	}
	if err := m.SetEmployeeStatus(ctx, "none", personnel.StatusActive); !errors.Is(err, personnel.ErrEmployeeNotFound) {
		t.Errorf("set status: %v", err)
	}
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	// GIVEN: a populated store
	// WHEN: a transaction writes several records and then fails
	// THEN: none of the writes survive

	ctx := context.Background()
	tm := store.NewTxMemory()
	if err := tm.PutEmployee(ctx, personnel.Employee{ID: "85010212345", Status: personnel.StatusCandidate}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("boom")
	err := tm.WithTx(ctx, func(s personnel.Store) error {
		if err := s.InsertContract(ctx, personnel.Contract{
			CaseFile: "CF-100", EmployeeID: "85010212345",
		}); err != nil {
			return err
		}
		if err := s.SetEmployeeStatus(ctx, "85010212345", personnel.StatusActive); err != nil {
			return err
		}
		if err := s.AppendMovement(ctx, personnel.MovementEvent{
			ID: "ev-1", EmployeeID: "85010212345", CaseFile: "CF-100",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the inner error back, got %v", err)
	}

	if _, err := tm.Contract(ctx, "CF-100"); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("contract should be rolled back, got %v", err)
	}
	emp, _ := tm.Employee(ctx, "85010212345")
	if emp.Status != personnel.StatusCandidate {
		t.Errorf("status should be rolled back, got %q", emp.Status)
	}
	events, _ := tm.MovementsFor(ctx, "85010212345")
	if len(events) != 0 {
		t.Errorf("movements should be rolled back, got %d", len(events))
	}
}

func TestTxMemory_CommitOnNil(t *testing.T) {
	ctx := context.Background()
	tm := store.NewTxMemory()

	err := tm.WithTx(ctx, func(s personnel.Store) error {
		return s.PutEmployee(ctx, personnel.Employee{ID: "85010212345"})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := tm.Employee(ctx, "85010212345"); err != nil {
		t.Errorf("committed write should be visible, got %v", err)
	}
}
