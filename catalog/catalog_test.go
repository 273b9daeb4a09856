package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
)

func TestScaleGroup_NumericLevel(t *testing.T) {
	cases := []struct {
		level string
		want  int
	}{
		{"I", 1},
		{"IV", 4},
		{"ix", 9},
		{"XIV", 14},
		{"MCMXCIV", 1994},
		{"", 0},
		{"IIIB", 999}, // malformed rows sort last
	}
	for _, tc := range cases {
		g := catalog.ScaleGroup{Level: tc.level}
		if got := g.NumericLevel(); got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.level, tc.want, got)
		}
	}
}

func TestJob_IsLeadership(t *testing.T) {
	if !(catalog.Job{Category: catalog.CategoryDirective}).IsLeadership() {
		t.Error("directive is leadership")
	}
	if !(catalog.Job{Category: catalog.CategoryExecutive}).IsLeadership() {
		t.Error("executive is leadership")
	}
	if (catalog.Job{Category: catalog.CategoryOperator}).IsLeadership() {
		t.Error("operator is not leadership")
	}
}

func TestAbbreviateTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Operador de Caldera", "OP. DE CALDERA"},
		{"Especialista General", "ESP. GRAL."},
		{"Tornero", "TORNERO"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := catalog.AbbreviateTitle(tc.in); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestMemory_LookupsAndNotFound(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	m.PutUnit(catalog.Unit{ID: 10, Name: "Planta Norte"})
	m.PutCause(catalog.SeparationCause{ID: "C-REN", Description: "Renuncia"})

	u, err := m.Unit(ctx, 10)
	if err != nil || u.Name != "Planta Norte" {
		t.Errorf("unit: %v %+v", err, u)
	}
	if _, err := m.Unit(ctx, 99); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Cause(ctx, "C-NOPE"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_EntryTierIsDeterministic(t *testing.T) {
	// The lowest-ID entry-kind tier wins, whatever the insertion order.

	ctx := context.Background()
	m := catalog.NewMemory()
	m.PutTier(catalog.Tier{ID: "T5", Kind: catalog.TierEntry})
	m.PutTier(catalog.Tier{ID: "T2", Kind: catalog.TierMiddle})
	m.PutTier(catalog.Tier{ID: "T1", Kind: catalog.TierEntry})

	tier, err := m.EntryTier(ctx)
	if err != nil {
		t.Fatalf("entry tier: %v", err)
	}
	if tier.ID != "T1" {
		t.Errorf("expected T1, got %q", tier.ID)
	}

	if _, err := catalog.NewMemory().EntryTier(ctx); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("no entry tiers: expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ScheduleLookup(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	m.PutSalaryRow(catalog.SalaryRow{
		ScaleGroupID: "G4", RoleID: "R-A", TierID: "T1",
		Amount: decimal.RequireFromString("2100"),
	})

	amount, err := m.Lookup(ctx, "G4", "R-A", "T1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("2100")) {
		t.Errorf("expected 2100, got %v", amount)
	}

	if _, err := m.Lookup(ctx, "G4", "R-A", "T9"); !errors.Is(err, catalog.ErrNoScheduleRow) {
		t.Errorf("expected ErrNoScheduleRow, got %v", err)
	}
}
