package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
	"github.com/orbith/personnel-engine/personnel"
	"github.com/orbith/personnel-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedCatalog(t *testing.T, st *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	steps := []error{
		st.SaveUnit(ctx, catalog.Unit{ID: 10, Name: "Planta Norte", Kind: catalog.UnitBase}),
		st.SaveDepartment(ctx, catalog.Department{ID: "D-01", Name: "Calderas", UnitID: 10}),
		st.SaveScaleGroup(ctx, catalog.ScaleGroup{ID: "G4", Level: "IV"}),
		st.SaveJob(ctx, catalog.Job{
			ID: "J-OP", Title: "Operador de Caldera", Category: catalog.CategoryOperator,
			ScaleGroupID: "G4", BaseSalary: decimal.RequireFromString("2500"), Active: true,
		}),
		st.SaveRole(ctx, catalog.Role{ID: "R-A", Name: "A"}),
		st.SaveTier(ctx, catalog.Tier{ID: "T1", Kind: catalog.TierEntry}),
		st.SaveTier(ctx, catalog.Tier{ID: "T2", Kind: catalog.TierMiddle}),
		st.SaveSalaryRow(ctx, catalog.SalaryRow{
			ScaleGroupID: "G4", RoleID: "R-A", TierID: "T1",
			Amount: decimal.RequireFromString("2100"),
		}),
		st.SaveSalaryRow(ctx, catalog.SalaryRow{
			ScaleGroupID: "G4", RoleID: "R-A", TierID: "T2",
			Amount: decimal.RequireFromString("2400"),
		}),
		st.SaveCause(ctx, catalog.SeparationCause{ID: "C-REN", Description: "Renuncia"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
}

func seedSQLEmployee(t *testing.T, st *sqlite.Store, id personnel.EmployeeID) {
	t.Helper()
	err := st.PutEmployee(context.Background(), personnel.Employee{
		ID: id, FirstName: "Ana", FirstSurname: "Perez",
		Sex: personnel.SexFemale, Status: personnel.StatusCandidate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
}

func day(y int, m time.Month, d int) personnel.Date { return personnel.NewDate(y, m, d) }

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestSQLite_EmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	emp := personnel.Employee{
		ID:             "85010212345",
		FirstName:      "Ana",
		FirstSurname:   "Perez",
		SecondSurname:  "Lopez",
		Sex:            personnel.SexFemale,
		EducationLevel: personnel.EducHigher,
		SpecialtyID:    "SP-1",
		ProvinceID:     "PR-1",
		MunicipalityID: "MU-1",
		UnitID:         10,
		Status:         personnel.StatusCandidate,
		Mobile:         "555-0101",
		CreatedBy:      "rrhh",
		CreatedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := st.PutEmployee(ctx, emp); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := st.Employee(ctx, "85010212345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SecondSurname != "Lopez" || got.UnitID != 10 || got.Mobile != "555-0101" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !got.CreatedAt.Equal(emp.CreatedAt) {
		t.Errorf("created_at drifted: %v vs %v", got.CreatedAt, emp.CreatedAt)
	}

	// upsert keeps the key
	emp.FirstName = "Ana Maria"
	if err := st.PutEmployee(ctx, emp); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = st.Employee(ctx, "85010212345")
	if got.FirstName != "Ana Maria" {
		t.Errorf("upsert did not apply, got %q", got.FirstName)
	}

	if _, err := st.Employee(ctx, "unknown"); !errors.Is(err, personnel.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := st.SetEmployeeStatus(ctx, "unknown", personnel.StatusActive); !errors.Is(err, personnel.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestSQLite_DeleteEmployeeWithContractFails(t *testing.T) {
	// The foreign key from contracts backs the dependents guard.

	ctx := context.Background()
	st := newTestStore(t)
	seedSQLEmployee(t, st, "85010212345")

	if err := st.InsertContract(ctx, personnel.Contract{
		CaseFile: "CF-100", EmployeeID: "85010212345",
		Type: personnel.ContractIndefinite, SalaryKind: personnel.SalaryScale,
		HireDate: day(2024, time.March, 1), CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert contract: %v", err)
	}

	if err := st.DeleteEmployee(ctx, "85010212345"); !errors.Is(err, personnel.ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}

	if err := st.DeleteContract(ctx, "CF-100"); err != nil {
		t.Fatalf("delete contract: %v", err)
	}
	if err := st.DeleteEmployee(ctx, "85010212345"); err != nil {
		t.Fatalf("delete employee after contract removal: %v", err)
	}
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestSQLite_ContractRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSQLEmployee(t, st, "85010212345")

	c := personnel.Contract{
		CaseFile:         "CF-100",
		EmployeeID:       "85010212345",
		PositionID:       "P-1",
		Type:             personnel.ContractFixedTerm,
		TierID:           "T1",
		SalaryKind:       personnel.SalaryScale,
		HireDate:         day(2024, time.March, 1),
		DurationDays:     90,
		MilitaryRegistry: personnel.MilitaryReserve,
		LicenseExpiry:    day(2025, time.January, 1),
		CreatedBy:        "rrhh",
		CreatedAt:        time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := st.InsertContract(ctx, c); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Contract(ctx, "CF-100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.HireDate.Equal(c.HireDate) || got.DurationDays != 90 {
		t.Errorf("dates lost: %+v", got)
	}
	if !got.LicenseExpiry.Equal(c.LicenseExpiry) {
		t.Errorf("license expiry lost: %v", got.LicenseExpiry)
	}
	// unset optional dates come back zero, not 0001-01-01 artifacts
	if !got.InsuranceExpiry.IsZero() || !got.RequalificationExpiry.IsZero() {
		t.Errorf("expected zero optional dates, got %+v", got)
	}
	if got.MilitaryRegistry != personnel.MilitaryReserve {
		t.Errorf("military registry lost: %q", got.MilitaryRegistry)
	}

	if err := st.InsertContract(ctx, c); !errors.Is(err, personnel.ErrDuplicateCaseFile) {
		t.Fatalf("expected ErrDuplicateCaseFile, got %v", err)
	}

	got.TierID = "T2"
	got.PendingMovement = true
	if err := st.UpdateContract(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err := st.PendingMovements(ctx)
	if err != nil || len(pending) != 1 || pending[0].CaseFile != "CF-100" {
		t.Fatalf("pending filter: %v (%d)", err, len(pending))
	}

	open, err := st.OpenContractsFor(ctx, "85010212345")
	if err != nil || len(open) != 1 {
		t.Fatalf("open contracts: %v (%d)", err, len(open))
	}

	if err := st.UpdateContract(ctx, personnel.Contract{CaseFile: "CF-404", EmployeeID: "85010212345", Type: personnel.ContractIndefinite, SalaryKind: personnel.SalaryScale, HireDate: day(2024, time.March, 1)}); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("update unknown: expected ErrContractNotFound, got %v", err)
	}
	if err := st.DeleteContract(ctx, "CF-404"); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("delete unknown: expected ErrContractNotFound, got %v", err)
	}
}

// =============================================================================
// MOVEMENTS
// =============================================================================

func TestSQLite_MovementLedgerOrdering(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	ref := personnel.CaseFile("CF-100")
	requested := day(2024, time.May, 20)
	append1 := personnel.MovementEvent{
		ID: "ev-late", EmployeeID: "85010212345", CaseFile: "CF-100",
		ContractRef: &ref, EffectiveDate: day(2024, time.June, 1),
		RequestedDate: &requested, Kind: personnel.KindMovement,
		Before: personnel.Snapshot{UnitName: "Planta Norte", PositionTitle: "Operador", Salary: decimal.RequireFromString("2100")},
		After:  personnel.Snapshot{UnitName: "Planta Norte", PositionTitle: "Operador", Salary: decimal.RequireFromString("2400")},
		Notes:  "tier bump", CreatedAt: time.Now().UTC(),
	}
	append2 := personnel.MovementEvent{
		ID: "ev-early", EmployeeID: "85010212345", CaseFile: "CF-100",
		ContractRef: &ref, EffectiveDate: day(2024, time.March, 1),
		Kind:      personnel.KindMovement,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.AppendMovement(ctx, append1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := st.AppendMovement(ctx, append2); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := st.MovementsForCase(ctx, "CF-100")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "ev-early" || events[1].ID != "ev-late" {
		t.Errorf("expected effective-date order, got %s then %s", events[0].ID, events[1].ID)
	}

	late := events[1]
	if late.ContractRef == nil || *late.ContractRef != "CF-100" {
		t.Error("back-reference lost")
	}
	if late.RequestedDate == nil || !late.RequestedDate.Equal(requested) {
		t.Errorf("requested date lost: %v", late.RequestedDate)
	}
	if !late.Before.Salary.Equal(decimal.RequireFromString("2100")) ||
		!late.After.Salary.Equal(decimal.RequireFromString("2400")) {
		t.Errorf("snapshot salaries drifted: %+v", late)
	}
	if late.Notes != "tier bump" {
		t.Errorf("notes lost: %q", late.Notes)
	}

	if err := st.DetachContract(ctx, "CF-100"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	events, _ = st.MovementsForCase(ctx, "CF-100")
	for _, ev := range events {
		if ev.ContractRef != nil {
			t.Error("expected all back-references cleared")
		}
	}
}

func TestSQLite_MovementSameDayTieBreaksByInsertion(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	dayOne := day(2024, time.June, 1)
	for _, id := range []string{"first", "second", "third"} {
		if err := st.AppendMovement(ctx, personnel.MovementEvent{
			ID: id, EmployeeID: "85010212345", CaseFile: "CF-100",
			EffectiveDate: dayOne, Kind: personnel.KindMovement,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	events, err := st.MovementsFor(ctx, "85010212345")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if events[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, events[i].ID)
		}
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLite_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSQLEmployee(t, st, "85010212345")

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(s personnel.Store) error {
		if err := s.InsertContract(ctx, personnel.Contract{
			CaseFile: "CF-100", EmployeeID: "85010212345",
			Type: personnel.ContractIndefinite, SalaryKind: personnel.SalaryScale,
			HireDate: day(2024, time.March, 1), CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := s.SetEmployeeStatus(ctx, "85010212345", personnel.StatusActive); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the inner error back, got %v", err)
	}

	if _, err := st.Contract(ctx, "CF-100"); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("contract should be rolled back, got %v", err)
	}
	emp, _ := st.Employee(ctx, "85010212345")
	if emp.Status != personnel.StatusCandidate {
		t.Errorf("status should be rolled back, got %q", emp.Status)
	}
}

func TestSQLite_CatalogRidesTransaction(t *testing.T) {
	// GIVEN: the pool holds a single connection
	// WHEN: catalog lookups happen inside an open transaction
	// THEN: they are served by the transaction itself instead of waiting
	//       on a second connection that never comes

	ctx := context.Background()
	st := newTestStore(t)
	seedCatalog(t, st)

	err := st.WithTx(ctx, func(s personnel.Store) error {
		reg, ok := s.(catalog.Registry)
		if !ok {
			t.Fatal("transactional store must serve catalog lookups")
		}
		tier, err := reg.EntryTier(ctx)
		if err != nil {
			return err
		}
		if tier.ID != "T1" {
			t.Errorf("expected entry tier T1, got %q", tier.ID)
		}

		sched, ok := s.(catalog.SalarySchedule)
		if !ok {
			t.Fatal("transactional store must serve the salary schedule")
		}
		amount, err := sched.Lookup(ctx, "G4", "R-A", "T1")
		if err != nil {
			return err
		}
		if !amount.Equal(decimal.RequireFromString("2100")) {
			t.Errorf("expected 2100, got %v", amount)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

// =============================================================================
// CATALOG
// =============================================================================

func TestSQLite_CatalogLookups(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCatalog(t, st)

	job, err := st.Job(ctx, "J-OP")
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if job.Title != "Operador de Caldera" || !job.BaseSalary.Equal(decimal.RequireFromString("2500")) {
		t.Errorf("job round trip: %+v", job)
	}

	if _, err := st.Job(ctx, "J-NONE"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected catalog.ErrNotFound, got %v", err)
	}

	tier, err := st.EntryTier(ctx)
	if err != nil || tier.ID != "T1" {
		t.Errorf("entry tier: %v %+v", err, tier)
	}

	amount, err := st.Lookup(ctx, "G4", "R-A", "T2")
	if err != nil || !amount.Equal(decimal.RequireFromString("2400")) {
		t.Errorf("schedule lookup: %v %v", err, amount)
	}
	if _, err := st.Lookup(ctx, "G4", "R-A", "T9"); !errors.Is(err, catalog.ErrNoScheduleRow) {
		t.Errorf("expected ErrNoScheduleRow, got %v", err)
	}
}

// =============================================================================
// FULL LIFECYCLE THROUGH THE ENGINE
// =============================================================================

func TestSQLite_EngineLifecycle(t *testing.T) {
	// GIVEN: the SQLite store backing engine, registry and schedule at once
	// WHEN: hire -> move -> terminate
	// THEN: every table agrees at the end

	ctx := context.Background()
	st := newTestStore(t)
	seedCatalog(t, st)
	seedSQLEmployee(t, st, "85010212345")

	if err := st.PutPosition(ctx, personnel.StaffingPosition{
		ID: "P-1", DepartmentID: "D-01", JobID: "J-OP", RoleID: "R-A",
		Approved: 1, Active: true,
	}); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	engine := personnel.NewEngine(st, st, personnel.NewSalaryResolver(st, st))

	if _, err := engine.Hire(ctx, personnel.HireInput{
		Actor: "rrhh", EmployeeID: "85010212345", CaseFile: "CF-100",
		PositionID: "P-1", Type: personnel.ContractIndefinite,
		HireDate: day(2024, time.March, 1),
	}); err != nil {
		t.Fatalf("hire: %v", err)
	}

	pos, _ := st.Position(ctx, "P-1")
	if pos.Filled != 1 {
		t.Errorf("expected slot reserved, filled=%d", pos.Filled)
	}

	tier := catalog.TierID("T2")
	event, err := engine.Move(ctx, personnel.MoveInput{
		Actor: "rrhh", CaseFile: "CF-100", NewTierID: &tier,
		EffectiveDate: day(2024, time.June, 1),
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !event.Before.Salary.Equal(decimal.RequireFromString("2100")) ||
		!event.After.Salary.Equal(decimal.RequireFromString("2400")) {
		t.Errorf("snapshots: %+v", event)
	}

	if _, err := engine.Terminate(ctx, personnel.TerminateInput{
		Actor: "rrhh", CaseFile: "CF-100",
		TerminationDate: day(2024, time.December, 31), CauseID: "C-REN",
	}); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	if _, err := st.Contract(ctx, "CF-100"); !errors.Is(err, personnel.ErrContractNotFound) {
		t.Errorf("contract row should be gone, got %v", err)
	}
	closed, _ := st.ClosedContractsFor(ctx, "85010212345")
	if len(closed) != 1 || closed[0].CauseID != "C-REN" {
		t.Errorf("archive: %+v", closed)
	}
	pos, _ = st.Position(ctx, "P-1")
	if pos.Filled != 0 {
		t.Errorf("expected slot released, filled=%d", pos.Filled)
	}
	events, _ := st.MovementsForCase(ctx, "CF-100")
	if len(events) != 2 {
		t.Fatalf("expected move + separation, got %d", len(events))
	}
	if events[1].Kind != personnel.KindSeparation {
		t.Errorf("expected separation last, got %q", events[1].Kind)
	}
	emp, _ := st.Employee(ctx, "85010212345")
	if emp.Status != personnel.StatusTerminated {
		t.Errorf("expected terminated, got %q", emp.Status)
	}
}
