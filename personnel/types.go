/*
Package personnel provides the personnel movement ledger and career
timeline engine.

PURPOSE:
  This package owns employment state: candidate intake, the single mutable
  contract each employee may hold, the append-only movement ledger recording
  every assignment or salary change, headcount counters per staffing
  position, and the reconstruction of a gap-free career timeline from the
  three historical sources (open contracts, closed contracts, movements).

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: identity record keyed by national ID; status driven only by
    contract lifecycle transitions
  - Contract: the one OPEN contract of an employee, keyed by its case-file
    number (an external business key, never a surrogate ID)
  - ClosedContract: immutable archive snapshot created at termination
  - MovementEvent: immutable ledger entry with denormalized before/after
    snapshots
  - Snapshot: a tagged value copy of (unit, position title, salary) - a copy
    on purpose, so history survives catalog renames and deletions

DESIGN PRINCIPLES:
  1. Business keys: contracts are addressed by case-file number end to end
  2. Immutability: movement events are never rewritten; the only permitted
     mutation is clearing the open-contract back-reference at termination
  3. Precision: salary amounts use decimal.Decimal
  4. Explicit actors: every mutation records who performed it

SEE ALSO:
  - lifecycle.go: hire / move / terminate state machine
  - ledger.go: movement ledger queries
  - timeline.go: career timeline reconstruction
  - capacity.go: position headcount ledger
*/
package personnel

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID is the national identity document number.
type EmployeeID string

// CaseFile is the external business key of one employment contract. It is
// stable across the contract's life and reused to chain history after
// closure.
type CaseFile string

// PositionID identifies a staffing position (a budgeted slot, not a job
// nomenclature entry).
type PositionID string

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmployeeStatus string

const (
	StatusCandidate  EmployeeStatus = "candidate"
	StatusActive     EmployeeStatus = "active"
	StatusTerminated EmployeeStatus = "terminated"
)

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

type EducationLevel string

const (
	EducNone            EducationLevel = "unaccredited"
	EducPrimary         EducationLevel = "primary"
	EducSecondary       EducationLevel = "secondary"
	EducSkilledWorker   EducationLevel = "skilled_worker"
	EducTechnicalMiddle EducationLevel = "technical_middle"
	EducUpperSecondary  EducationLevel = "upper_secondary"
	EducHigher          EducationLevel = "higher"
)

// Employee is the identity record. Status is ACTIVE iff an open contract
// exists and TERMINATED iff the most recent contract was closed without
// rehire; only contract lifecycle transitions mutate it.
type Employee struct {
	ID             EmployeeID
	FirstName      string
	FirstSurname   string
	SecondSurname  string
	Sex            Sex
	EducationLevel EducationLevel
	SpecialtyID    catalog.SpecialtyID // empty unless education level allows one
	ProvinceID     catalog.ProvinceID
	MunicipalityID catalog.MunicipalityID
	UnitID         catalog.UnitID // 0 = unassigned
	Status         EmployeeStatus
	Mobile         string
	Address        string
	Notes          string

	CreatedBy string
	CreatedAt time.Time
}

func (e Employee) FullName() string {
	return strings.TrimSpace(strings.Join([]string{e.FirstName, e.FirstSurname, e.SecondSurname}, " "))
}

// BirthDate derives the birth date from the first six digits of the
// national ID (YYMMDD). The century is inferred the way the issuing
// registry does: two-digit years up to the current year mean 2000s,
// later ones mean 1900s. Returns false when the ID does not encode a
// valid date.
func (e Employee) BirthDate() (Date, bool) {
	id := strings.TrimSpace(string(e.ID))
	if len(id) < 6 {
		return Date{}, false
	}
	digits := id[:6]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Date{}, false
		}
	}
	yy := int(digits[0]-'0')*10 + int(digits[1]-'0')
	mm := time.Month(int(digits[2]-'0')*10 + int(digits[3]-'0'))
	dd := int(digits[4]-'0')*10 + int(digits[5]-'0')

	century := 1900
	if yy <= time.Now().Year()%100 {
		century = 2000
	}
	if mm < time.January || mm > time.December || dd < 1 || dd > 31 {
		return Date{}, false
	}
	d := NewDate(century+yy, mm, dd)
	if d.Month() != mm || d.Day() != dd {
		return Date{}, false // e.g. February 30 rolled over
	}
	return d, true
}

// Age in whole years on the given date; false if the ID encodes no birth date.
func (e Employee) Age(on Date) (int, bool) {
	born, ok := e.BirthDate()
	if !ok {
		return 0, false
	}
	years := on.Year() - born.Year()
	if on.Month() < born.Month() || (on.Month() == born.Month() && on.Day() < born.Day()) {
		years--
	}
	return years, true
}

// =============================================================================
// STAFFING POSITION
// =============================================================================

// StaffingPosition is a budgeted slot inside a department. Filled is
// incremented on open-ended contract creation and decremented on its
// termination; filled <= approved is the target invariant, checked
// advisory-style before assignment.
type StaffingPosition struct {
	ID           PositionID
	DepartmentID catalog.DepartmentID
	JobID        catalog.JobID
	RoleID       catalog.RoleID // empty for leadership posts
	Approved     int
	Filled       int
	Active       bool
}

// Vacancies never reports negative even if Filled overshot Approved.
func (p StaffingPosition) Vacancies() int {
	if v := p.Approved - p.Filled; v > 0 {
		return v
	}
	return 0
}

// =============================================================================
// CONTRACT
// =============================================================================

type ContractType string

const (
	ContractIndefinite   ContractType = "indefinite"
	ContractFixedTerm    ContractType = "fixed_term"
	ContractTraining     ContractType = "training"
	ContractTempMovement ContractType = "temp_movement"
)

type SalaryKind string

const (
	SalaryScale SalaryKind = "scale" // resolved through the salary schedule
	SalaryFixed SalaryKind = "fixed" // job catalog base salary
)

type MilitaryRegistry string

const (
	MilitaryMTT         MilitaryRegistry = "MTT"
	MilitaryEssential   MilitaryRegistry = "essential"
	MilitaryReserve     MilitaryRegistry = "reserve"
	MilitaryNotEnrolled MilitaryRegistry = "not_enrolled"
)

// Contract is the single OPEN contract of an employee. It is mutated in
// place by movements; every mutation appends a MovementEvent. The original
// hire date is never rewritten - it carries seniority.
type Contract struct {
	CaseFile   CaseFile
	EmployeeID EmployeeID
	PositionID PositionID // empty = no staffing position assigned
	Type       ContractType
	TierID     catalog.TierID
	SalaryKind SalaryKind

	HireDate     Date
	DurationDays int // fixed-term and training contracts only

	MilitaryRegistry   MilitaryRegistry
	ProfessionalDriver bool
	RetireeRehired     bool
	PendingMovement    bool

	LicenseExpiry         Date
	RequalificationExpiry Date
	InsuranceExpiry       Date

	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt time.Time
}

// ExpiryDate is hire date + duration, defined only for duration-bearing
// contracts.
func (c Contract) ExpiryDate() (Date, bool) {
	if c.HireDate.IsZero() || c.DurationDays <= 0 {
		return Date{}, false
	}
	return c.HireDate.AddDays(c.DurationDays), true
}

// RemainingDays until expiry, floored at zero.
func (c Contract) RemainingDays(today Date) (int, bool) {
	expiry, ok := c.ExpiryDate()
	if !ok {
		return 0, false
	}
	if d := DaysBetween(today, expiry); d > 0 {
		return d, true
	}
	return 0, true
}

// =============================================================================
// CLOSED CONTRACT - immutable archive created at termination
// =============================================================================

type ClosedContract struct {
	CaseFile   CaseFile
	EmployeeID EmployeeID
	PositionID PositionID
	Type       ContractType
	TierID     catalog.TierID
	SalaryKind SalaryKind

	HireDate        Date // carried over from the open contract for continuity
	TerminationDate Date
	CauseID         catalog.CauseID

	ClosedBy string
	ClosedAt time.Time
}

// =============================================================================
// MOVEMENT EVENT - immutable, append-only
// =============================================================================

type MovementKind string

const (
	// KindMovement covers assignment and salary changes alike; the precise
	// kind is derived at read time by diffing the snapshots.
	KindMovement   MovementKind = "movement"
	KindSeparation MovementKind = "separation"
)

// Snapshot is a tagged value copy of the assignment state at a transition.
// Strings and a decimal, never references: a later catalog rename or
// deletion must not change what history says.
type Snapshot struct {
	UnitName      string
	PositionTitle string
	Salary        decimal.Decimal
}

func (s Snapshot) IsZero() bool {
	return s.UnitName == "" && s.PositionTitle == "" && s.Salary.IsZero()
}

// MovementEvent records one state transition of a contract. Created exactly
// once per mutation or termination; never updated afterwards except to
// clear ContractRef when the contract is closed, so history survives the
// contract row's deletion.
type MovementEvent struct {
	ID         string
	EmployeeID EmployeeID
	CaseFile   CaseFile

	// ContractRef points at the still-open contract, nil once it closes.
	// CaseFile above is retained forever for lookups.
	ContractRef *CaseFile

	EffectiveDate Date
	RequestedDate *Date
	Kind          MovementKind
	Before        Snapshot
	After         Snapshot
	Notes         string

	CreatedBy string
	CreatedAt time.Time
}
