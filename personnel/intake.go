/*
intake.go - Candidate registration and identity validation

PURPOSE:
  Employees enter the system as candidates long before any contract
  exists. Intake validates the identity record the way the registry
  demands: the municipality must belong to the selected province, a
  specialty is only meaningful for technical or higher education levels,
  and the national ID must look like one.

DELETION:
  An employee referenced by any contract - open or closed - is never hard
  deleted; the attempt fails with ErrHasDependents.

SEE ALSO:
  - types.go: Employee and the birth-date derivation from the national ID
  - lifecycle.go: the transitions that later mutate the status flag
*/
package personnel

import (
	"context"
	"errors"
	"time"

	"github.com/orbith/personnel-engine/catalog"
)

// specialty is only allowed for these education levels
var specialtyLevels = map[EducationLevel]bool{
	EducTechnicalMiddle: true,
	EducUpperSecondary:  true,
	EducHigher:          true,
}

// RegisterCandidate validates and stores a new employee in candidate
// status. Status and audit fields are assigned here, whatever the caller
// set.
func (e *Engine) RegisterCandidate(ctx context.Context, actor string, emp Employee) (Employee, error) {
	if err := e.validateEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	emp.Status = StatusCandidate
	emp.CreatedBy = actor
	emp.CreatedAt = time.Now().UTC()
	if err := e.store.PutEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (e *Engine) validateEmployee(ctx context.Context, emp Employee) error {
	fe := FieldErrors{}

	if emp.ID == "" {
		fe["id"] = "national ID is required"
	} else if _, ok := emp.BirthDate(); !ok {
		fe["id"] = "national ID does not encode a valid birth date"
	}
	if emp.FirstName == "" {
		fe["first_name"] = "name is required"
	}
	if emp.FirstSurname == "" {
		fe["first_surname"] = "surname is required"
	}
	if emp.Sex != SexMale && emp.Sex != SexFemale {
		fe["sex"] = "sex must be M or F"
	}

	if emp.MunicipalityID != "" {
		mun, err := e.registry.Municipality(ctx, emp.MunicipalityID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			fe["municipality_id"] = "unknown municipality"
		case err != nil:
			return err
		case emp.ProvinceID != "" && mun.ProvinceID != emp.ProvinceID:
			fe["municipality_id"] = "municipality does not belong to the selected province"
		}
	}

	if emp.SpecialtyID != "" {
		if !specialtyLevels[emp.EducationLevel] {
			fe["specialty_id"] = "specialty requires a technical or higher education level"
		} else if _, err := e.registry.Specialty(ctx, emp.SpecialtyID); errors.Is(err, catalog.ErrNotFound) {
			fe["specialty_id"] = "unknown specialty"
		} else if err != nil {
			return err
		}
	}

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// DeleteEmployee removes a candidate record. Fails with ErrHasDependents
// while any contract, open or archived, references the employee.
func (e *Engine) DeleteEmployee(ctx context.Context, id EmployeeID) error {
	return e.store.WithTx(ctx, func(s Store) error {
		if _, err := s.Employee(ctx, id); err != nil {
			return err
		}
		open, err := s.OpenContractsFor(ctx, id)
		if err != nil {
			return err
		}
		closed, err := s.ClosedContractsFor(ctx, id)
		if err != nil {
			return err
		}
		if len(open) > 0 || len(closed) > 0 {
			return ErrHasDependents
		}
		return s.DeleteEmployee(ctx, id)
	})
}
