/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Structural validation (required fields, enums, date formats) lives in
  the validate struct tags, checked by go-playground/validator in the
  handlers. Semantic validation (catalog references, chronology, capacity)
  belongs to the engine and surfaces as domain errors.

MONEY:
  Salary amounts travel as decimal strings, never floats. The ledger's
  whole point is exact history.

SEE ALSO:
  - handlers.go: uses these types
  - personnel/types.go: the domain model behind them
*/
package api

import (
	"time"

	"github.com/orbith/personnel-engine/personnel"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// CandidateRequest is the request to register a candidate.
type CandidateRequest struct {
	ID             string `json:"id" validate:"required"`
	FirstName      string `json:"first_name" validate:"required"`
	FirstSurname   string `json:"first_surname" validate:"required"`
	SecondSurname  string `json:"second_surname,omitempty"`
	Sex            string `json:"sex" validate:"required,oneof=M F"`
	EducationLevel string `json:"education_level,omitempty"`
	SpecialtyID    string `json:"specialty_id,omitempty"`
	ProvinceID     string `json:"province_id,omitempty"`
	MunicipalityID string `json:"municipality_id,omitempty"`
	UnitID         int    `json:"unit_id,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	Address        string `json:"address,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Actor          string `json:"actor,omitempty"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	FirstName      string `json:"first_name"`
	FirstSurname   string `json:"first_surname"`
	SecondSurname  string `json:"second_surname,omitempty"`
	Sex            string `json:"sex"`
	Status         string `json:"status"`
	EducationLevel string `json:"education_level,omitempty"`
	SpecialtyID    string `json:"specialty_id,omitempty"`
	ProvinceID     string `json:"province_id,omitempty"`
	MunicipalityID string `json:"municipality_id,omitempty"`
	UnitID         int    `json:"unit_id,omitempty"`
	BirthDate      string `json:"birth_date,omitempty"`
	Age            *int   `json:"age,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	Address        string `json:"address,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// =============================================================================
// CONTRACTS
// =============================================================================

// HireRequest is the request to open a contract.
type HireRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	CaseFile   string `json:"case_file" validate:"required"`
	PositionID string `json:"position_id,omitempty"`
	Type       string `json:"type" validate:"required,oneof=indefinite fixed_term training temp_movement"`
	TierID     string `json:"tier_id,omitempty"`
	SalaryKind string `json:"salary_kind,omitempty" validate:"omitempty,oneof=scale fixed"`
	HireDate   string `json:"hire_date" validate:"required,datetime=2006-01-02"`

	DurationDays       int    `json:"duration_days,omitempty"`
	MilitaryRegistry   string `json:"military_registry,omitempty"`
	ProfessionalDriver bool   `json:"professional_driver,omitempty"`
	RetireeRehired     bool   `json:"retiree_rehired,omitempty"`

	LicenseExpiry         string `json:"license_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RequalificationExpiry string `json:"requalification_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	InsuranceExpiry       string `json:"insurance_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Actor string `json:"actor,omitempty"`
}

// ContractDTO represents an open contract.
type ContractDTO struct {
	CaseFile   string `json:"case_file"`
	EmployeeID string `json:"employee_id"`
	PositionID string `json:"position_id,omitempty"`
	Type       string `json:"type"`
	TierID     string `json:"tier_id,omitempty"`
	SalaryKind string `json:"salary_kind"`
	HireDate   string `json:"hire_date"`

	DurationDays  int    `json:"duration_days,omitempty"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	RemainingDays *int   `json:"remaining_days,omitempty"`

	MilitaryRegistry   string `json:"military_registry,omitempty"`
	ProfessionalDriver bool   `json:"professional_driver,omitempty"`
	RetireeRehired     bool   `json:"retiree_rehired,omitempty"`
	PendingMovement    bool   `json:"pending_movement"`

	LicenseExpiry         string `json:"license_expiry,omitempty"`
	RequalificationExpiry string `json:"requalification_expiry,omitempty"`
	InsuranceExpiry       string `json:"insurance_expiry,omitempty"`

	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// MoveRequest is the request to apply a movement to a contract.
type MoveRequest struct {
	NewPositionID *string `json:"new_position_id,omitempty"`
	NewTierID     *string `json:"new_tier_id,omitempty"`
	EffectiveDate string  `json:"effective_date" validate:"required,datetime=2006-01-02"`
	RequestedDate string  `json:"requested_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes         string  `json:"notes,omitempty"`
	Actor         string  `json:"actor,omitempty"`
}

// TerminateRequest is the request to close a contract.
type TerminateRequest struct {
	TerminationDate string `json:"termination_date" validate:"required,datetime=2006-01-02"`
	CauseID         string `json:"cause_id" validate:"required"`
	Force           bool   `json:"force,omitempty"` // skip the chronology guard
	Actor           string `json:"actor,omitempty"`
}

// ClosedContractDTO represents an archived termination.
type ClosedContractDTO struct {
	CaseFile        string `json:"case_file"`
	EmployeeID      string `json:"employee_id"`
	PositionID      string `json:"position_id,omitempty"`
	Type            string `json:"type"`
	HireDate        string `json:"hire_date"`
	TerminationDate string `json:"termination_date"`
	CauseID         string `json:"cause_id"`
	ClosedBy        string `json:"closed_by,omitempty"`
	ClosedAt        string `json:"closed_at,omitempty"`
}

// =============================================================================
// MOVEMENTS AND TIMELINE
// =============================================================================

// SnapshotDTO is a denormalized assignment snapshot.
type SnapshotDTO struct {
	Unit          string `json:"unit,omitempty"`
	PositionTitle string `json:"position_title,omitempty"`
	Salary        string `json:"salary"`
}

// MovementDTO represents one ledger event.
type MovementDTO struct {
	ID            string      `json:"id"`
	EmployeeID    string      `json:"employee_id"`
	CaseFile      string      `json:"case_file"`
	Open          bool        `json:"open"` // still backed by an open contract
	EffectiveDate string      `json:"effective_date"`
	RequestedDate string      `json:"requested_date,omitempty"`
	Kind          string      `json:"kind"` // derived from the snapshots
	Before        SnapshotDTO `json:"before"`
	After         SnapshotDTO `json:"after"`
	Notes         string      `json:"notes,omitempty"`
	CreatedBy     string      `json:"created_by,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
}

// SegmentDTO is one reconstructed career segment.
type SegmentDTO struct {
	Kind          string  `json:"kind"`
	CaseFile      string  `json:"case_file"`
	Unit          string  `json:"unit,omitempty"`
	PositionTitle string  `json:"position_title,omitempty"`
	Salary        string  `json:"salary"`
	Start         string  `json:"start"`
	End           *string `json:"end,omitempty"`
	Display       string  `json:"display"`
}

// NoticeDTO carries the data printed on a movement notice.
type NoticeDTO struct {
	CaseFile           string `json:"case_file"`
	EmployeeID         string `json:"employee_id"`
	EmployeeName       string `json:"employee_name"`
	Unit               string `json:"unit,omitempty"`
	PositionTitle      string `json:"position_title,omitempty"`
	AbbreviatedTitle   string `json:"abbreviated_title,omitempty"`
	Salary             string `json:"salary"`
	HourlyRate         string `json:"hourly_rate"`
	OvertimeRate       string `json:"overtime_rate"`
	EffectiveDate      string `json:"effective_date,omitempty"`
	LatestMovementKind string `json:"latest_movement_kind,omitempty"`
}

// =============================================================================
// POSITIONS
// =============================================================================

// PositionRequest creates or replaces a staffing position.
type PositionRequest struct {
	ID           string `json:"id" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	JobID        string `json:"job_id" validate:"required"`
	RoleID       string `json:"role_id,omitempty"`
	Approved     int    `json:"approved" validate:"gte=0"`
	Active       *bool  `json:"active,omitempty"`
}

// PositionDTO represents a staffing position with its counters.
type PositionDTO struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	JobID        string `json:"job_id"`
	RoleID       string `json:"role_id,omitempty"`
	Approved     int    `json:"approved"`
	Filled       int    `json:"filled"`
	Vacancies    int    `json:"vacancies"`
	Active       bool   `json:"active"`
}

// VacancyDTO is one row of the vacancy dashboard.
type VacancyDTO struct {
	PositionID string `json:"position_id"`
	Department string `json:"department"`
	Title      string `json:"title"`
	Approved   int    `json:"approved"`
	Filled     int    `json:"filled"`
	Vacancies  int    `json:"vacancies"`
}

// =============================================================================
// CATALOG SEEDING
// =============================================================================

// CatalogBundle seeds the reference tables in one request. Order matters
// only across kinds; the handler inserts parents before children.
type CatalogBundle struct {
	Units          []UnitDTO         `json:"units,omitempty"`
	Departments    []DepartmentDTO   `json:"departments,omitempty"`
	ScaleGroups    []ScaleGroupDTO   `json:"scale_groups,omitempty"`
	Jobs           []JobDTO          `json:"jobs,omitempty"`
	Roles          []RoleDTO         `json:"roles,omitempty"`
	Tiers          []TierDTO         `json:"tiers,omitempty"`
	Causes         []CauseDTO        `json:"causes,omitempty"`
	Provinces      []ProvinceDTO     `json:"provinces,omitempty"`
	Municipalities []MunicipalityDTO `json:"municipalities,omitempty"`
	Specialties    []SpecialtyDTO    `json:"specialties,omitempty"`
	SalaryRows     []SalaryRowDTO    `json:"salary_rows,omitempty"`
}

type UnitDTO struct {
	ID   int    `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind,omitempty"`
}

type DepartmentDTO struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	UnitID int    `json:"unit_id" validate:"required"`
}

type ScaleGroupDTO struct {
	ID        string `json:"id" validate:"required"`
	Level     string `json:"level" validate:"required"`
	Executive bool   `json:"executive,omitempty"`
}

type JobDTO struct {
	ID           string `json:"id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Category     string `json:"category" validate:"required"`
	ScaleGroupID string `json:"scale_group_id,omitempty"`
	BaseSalary   string `json:"base_salary,omitempty"`
	Active       *bool  `json:"active,omitempty"`
}

type RoleDTO struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type TierDTO struct {
	ID   string `json:"id" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=I II III"`
}

type CauseDTO struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"required"`
	Hire        bool   `json:"hire,omitempty"`
}

type ProvinceDTO struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type MunicipalityDTO struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	ProvinceID string `json:"province_id" validate:"required"`
}

type SpecialtyDTO struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	HigherEducOnly bool   `json:"higher_educ_only,omitempty"`
}

type SalaryRowDTO struct {
	ScaleGroupID string `json:"scale_group_id" validate:"required"`
	RoleID       string `json:"role_id" validate:"required"`
	TierID       string `json:"tier_id" validate:"required"`
	Amount       string `json:"amount" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e personnel.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:             string(e.ID),
		FullName:       e.FullName(),
		FirstName:      e.FirstName,
		FirstSurname:   e.FirstSurname,
		SecondSurname:  e.SecondSurname,
		Sex:            string(e.Sex),
		Status:         string(e.Status),
		EducationLevel: string(e.EducationLevel),
		SpecialtyID:    string(e.SpecialtyID),
		ProvinceID:     string(e.ProvinceID),
		MunicipalityID: string(e.MunicipalityID),
		UnitID:         int(e.UnitID),
		Mobile:         e.Mobile,
		Address:        e.Address,
		CreatedAt:      formatTime(e.CreatedAt),
	}
	if born, ok := e.BirthDate(); ok {
		dto.BirthDate = born.String()
		if age, ok := e.Age(personnel.Today()); ok {
			dto.Age = &age
		}
	}
	return dto
}

func toContractDTO(c personnel.Contract) ContractDTO {
	dto := ContractDTO{
		CaseFile:           string(c.CaseFile),
		EmployeeID:         string(c.EmployeeID),
		PositionID:         string(c.PositionID),
		Type:               string(c.Type),
		TierID:             string(c.TierID),
		SalaryKind:         string(c.SalaryKind),
		HireDate:           c.HireDate.String(),
		DurationDays:       c.DurationDays,
		MilitaryRegistry:   string(c.MilitaryRegistry),
		ProfessionalDriver: c.ProfessionalDriver,
		RetireeRehired:     c.RetireeRehired,
		PendingMovement:    c.PendingMovement,
		CreatedBy:          c.CreatedBy,
		CreatedAt:          formatTime(c.CreatedAt),
		UpdatedBy:          c.UpdatedBy,
		UpdatedAt:          formatTime(c.UpdatedAt),
	}
	if !c.LicenseExpiry.IsZero() {
		dto.LicenseExpiry = c.LicenseExpiry.String()
	}
	if !c.RequalificationExpiry.IsZero() {
		dto.RequalificationExpiry = c.RequalificationExpiry.String()
	}
	if !c.InsuranceExpiry.IsZero() {
		dto.InsuranceExpiry = c.InsuranceExpiry.String()
	}
	if expiry, ok := c.ExpiryDate(); ok {
		dto.ExpiryDate = expiry.String()
		if remaining, ok := c.RemainingDays(personnel.Today()); ok {
			dto.RemainingDays = &remaining
		}
	}
	return dto
}

func toClosedContractDTO(c personnel.ClosedContract) ClosedContractDTO {
	return ClosedContractDTO{
		CaseFile:        string(c.CaseFile),
		EmployeeID:      string(c.EmployeeID),
		PositionID:      string(c.PositionID),
		Type:            string(c.Type),
		HireDate:        c.HireDate.String(),
		TerminationDate: c.TerminationDate.String(),
		CauseID:         string(c.CauseID),
		ClosedBy:        c.ClosedBy,
		ClosedAt:        formatTime(c.ClosedAt),
	}
}

func toSnapshotDTO(s personnel.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		Unit:          s.UnitName,
		PositionTitle: s.PositionTitle,
		Salary:        s.Salary.String(),
	}
}

func toMovementDTO(ev personnel.MovementEvent) MovementDTO {
	dto := MovementDTO{
		ID:            ev.ID,
		EmployeeID:    string(ev.EmployeeID),
		CaseFile:      string(ev.CaseFile),
		Open:          ev.ContractRef != nil,
		EffectiveDate: ev.EffectiveDate.String(),
		Kind:          string(personnel.DeriveKind(ev)),
		Before:        toSnapshotDTO(ev.Before),
		After:         toSnapshotDTO(ev.After),
		Notes:         ev.Notes,
		CreatedBy:     ev.CreatedBy,
		CreatedAt:     formatTime(ev.CreatedAt),
	}
	if ev.RequestedDate != nil {
		dto.RequestedDate = ev.RequestedDate.String()
	}
	return dto
}

func toSegmentDTO(s personnel.Segment) SegmentDTO {
	dto := SegmentDTO{
		Kind:          string(s.Kind),
		CaseFile:      string(s.CaseFile),
		Unit:          s.UnitName,
		PositionTitle: s.PositionTitle,
		Salary:        s.Salary.String(),
		Start:         s.Start.String(),
		Display:       string(s.Display),
	}
	if s.End != nil {
		end := s.End.String()
		dto.End = &end
	}
	return dto
}

func toPositionDTO(p personnel.StaffingPosition) PositionDTO {
	return PositionDTO{
		ID:           string(p.ID),
		DepartmentID: string(p.DepartmentID),
		JobID:        string(p.JobID),
		RoleID:       string(p.RoleID),
		Approved:     p.Approved,
		Filled:       p.Filled,
		Vacancies:    p.Vacancies(),
		Active:       p.Active,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
