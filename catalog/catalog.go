/*
Package catalog holds the organizational and pay reference data.

PURPOSE:
  Everything the contract engine resolves by key lives here: organizational
  units, departments, the job nomenclature, salary scale groups, roles, pay
  tiers, separation causes, provinces/municipalities, and the salary
  schedule. The engine references these rows by ID and tolerates renames -
  movement history keeps denormalized copies of the labels it saw.

KEY CONCEPTS:
  - Job: a catalog entry for a kind of post (title, occupational category,
    scale group, base salary). Staffing positions point at a Job.
  - ScaleGroup: a salary-scale level written as a roman numeral ("IV").
  - Tier: the pay multiplier dimension ("tridente"); hires default to the
    first entry-kind tier.
  - SalarySchedule: (scale group, role, tier) -> monetary amount. A missing
    row is a recoverable miss, never a crash.

SEE ALSO:
  - registry.go: Registry interface and in-memory implementation
  - personnel: the engine that consumes these catalogs
*/
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UnitID is the payroll group number identifying an organizational unit.
type UnitID int

type (
	DepartmentID   string
	JobID          string
	ScaleGroupID   string
	RoleID         string
	TierID         string
	CauseID        string
	ProvinceID     string
	MunicipalityID string
	SpecialtyID    string
)

// =============================================================================
// ORGANIZATIONAL STRUCTURE
// =============================================================================

type UnitKind string

const (
	UnitBase        UnitKind = "base_unit"
	UnitFunctional  UnitKind = "functional_directorate"
	UnitHeadquarter UnitKind = "general_directorate"
)

type Unit struct {
	ID   UnitID
	Name string
	Kind UnitKind
}

type Department struct {
	ID     DepartmentID
	Name   string
	UnitID UnitID
}

// =============================================================================
// JOB NOMENCLATURE AND PAY SCALE
// =============================================================================

type OccupationalCategory string

const (
	CategoryTechnician     OccupationalCategory = "technician"
	CategoryAdministrative OccupationalCategory = "administrative"
	CategoryService        OccupationalCategory = "service"
	CategoryOperator       OccupationalCategory = "operator"
	CategoryDirective      OccupationalCategory = "directive"
	CategoryExecutive      OccupationalCategory = "executive"
)

// Job is a nomenclature entry for a kind of post.
type Job struct {
	ID           JobID
	Title        string
	Category     OccupationalCategory
	ScaleGroupID ScaleGroupID
	BaseSalary   decimal.Decimal
	Active       bool
}

// IsLeadership reports whether the category belongs to the directive chain,
// which is paid outside the role/tier grid.
func (j Job) IsLeadership() bool {
	return j.Category == CategoryDirective || j.Category == CategoryExecutive
}

// ScaleGroup is one level of the salary scale, named by a roman numeral.
type ScaleGroup struct {
	ID        ScaleGroupID
	Level     string
	Executive bool
}

// NumericLevel converts the roman-numeral level to an integer for ordering.
// Non-roman characters yield 999 so malformed rows sort last.
func (g ScaleGroup) NumericLevel() int {
	values := map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	result, prev := 0, 0
	level := strings.ToUpper(g.Level)
	for i := len(level) - 1; i >= 0; i-- {
		v, ok := values[rune(level[i])]
		if !ok {
			return 999
		}
		if v >= prev {
			result += v
		} else {
			result -= v
		}
		prev = v
	}
	return result
}

type Role struct {
	ID   RoleID
	Name string
}

type TierKind string

const (
	TierEntry  TierKind = "I"
	TierMiddle TierKind = "II"
	TierSenior TierKind = "III"
)

// Tier is the pay multiplier dimension combined with scale group and role
// to look up an amount in the salary schedule.
type Tier struct {
	ID   TierID
	Kind TierKind
}

// SalaryRow is one cell of the salary schedule.
type SalaryRow struct {
	ScaleGroupID ScaleGroupID
	RoleID       RoleID
	TierID       TierID
	Amount       decimal.Decimal
}

// =============================================================================
// GENERAL REGISTRIES
// =============================================================================

// SeparationCause names why a contract was opened or closed.
// Hire causes and separation causes share one registry, split by the flag.
type SeparationCause struct {
	ID          CauseID
	Description string
	Hire        bool
}

type Province struct {
	ID   ProvinceID
	Name string
}

type Municipality struct {
	ID         MunicipalityID
	Name       string
	ProvinceID ProvinceID
}

type Specialty struct {
	ID             SpecialtyID
	Name           string
	HigherEducOnly bool
}

// =============================================================================
// TITLE ABBREVIATION
// =============================================================================

var titleAbbreviations = map[string]string{
	"OPERADOR":       "OP.",
	"MANTENIMIENTO":  "MANT.",
	"FABRICACION":    "FAB.",
	"FABRICACIÓN":    "FAB.",
	"DEPARTAMENTO":   "DPTO.",
	"ESPECIALISTA":   "ESP.",
	"GENERAL":        "GRAL.",
	"AUXILIAR":       "AUX.",
	"TECNICO":        "TEC.",
	"TÉCNICO":        "TÉC.",
	"SERVICIOS":      "SERVS.",
	"ADMINISTRATIVO": "ADMIN.",
}

// AbbreviateTitle shortens a position title word-by-word for narrow layouts
// such as the movement notice. Unknown words pass through uppercased.
func AbbreviateTitle(title string) string {
	words := strings.Fields(strings.ToUpper(title))
	for i, w := range words {
		if abbr, ok := titleAbbreviations[w]; ok {
			words[i] = abbr
		}
	}
	return strings.Join(words, " ")
}
