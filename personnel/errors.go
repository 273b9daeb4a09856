/*
errors.go - Centralized error types for the personnel engine

PURPOSE:
  All engine error types in one place. The API layer maps them to HTTP
  statuses via the helpers at the bottom; nothing upstream inspects error
  strings.

ERROR CATEGORIES:
  1. Validation errors - user-correctable, field-attributed, no partial state
  2. Referential errors - a row still has dependents, operation aborted
  3. Lookup misses - salary schedule gaps, soft failures carried as zero
  4. System errors - anything else inside a transaction; rolled back in full

USAGE:
  Wrapping follows the standard chain:

    if errors.Is(err, personnel.ErrChronologyViolation) {
        // reject, nothing was written
    }

SEE ALSO:
  - lifecycle.go: where most of these originate
  - api: status mapping via IsClientError / IsNotFound
*/
package personnel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCapacityExceeded is returned when a position has no free slots for
	// a new open-ended contract.
	ErrCapacityExceeded = errors.New("position capacity exceeded")

	// ErrChronologyViolation is returned when an effective or termination
	// date precedes the contract's chronology floor (hire date or latest
	// movement). The mutation is rejected whole.
	ErrChronologyViolation = errors.New("date precedes latest recorded event")

	// ErrDuplicateCaseFile is returned when a contract with the same
	// case-file number already exists.
	ErrDuplicateCaseFile = errors.New("duplicate case-file number")

	// ErrOpenContractExists is returned when hiring an employee who already
	// holds an open contract.
	ErrOpenContractExists = errors.New("employee already has an open contract")

	// ErrSalaryLookupMiss marks a salary schedule gap. Soft: the operation
	// proceeds with zero salary fields.
	ErrSalaryLookupMiss = errors.New("no matching salary schedule row")

	// ErrHasDependents is returned when deleting a row still referenced by
	// contracts or positions.
	ErrHasDependents = errors.New("cannot delete: row has dependents")

	// Not-found sentinels.
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrPositionNotFound = errors.New("staffing position not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapacityError reports an exhausted position.
type CapacityError struct {
	PositionID PositionID
	Title      string
	Approved   int
	Filled     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("position %q has no vacancies (%d/%d filled)", e.Title, e.Filled, e.Approved)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// ChronologyError reports an out-of-order date and where the floor came from.
type ChronologyError struct {
	CaseFile  CaseFile
	Attempted Date
	Floor     Date
	FloorFrom string // "hire date" or "latest movement"
}

func (e *ChronologyError) Error() string {
	return fmt.Sprintf("contract %s: date %s precedes %s %s",
		e.CaseFile, e.Attempted, e.FloorFrom, e.Floor)
}

func (e *ChronologyError) Unwrap() error { return ErrChronologyViolation }

// LookupMissError identifies the salary schedule cell that was absent.
type LookupMissError struct {
	ScaleGroup string
	Role       string
	Tier       string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no salary schedule row for (%s, %s, %s)", e.ScaleGroup, e.Role, e.Tier)
}

func (e *LookupMissError) Unwrap() error { return ErrSalaryLookupMiss }

// FieldErrors attributes validation failures to input fields, the way the
// presentation layer renders them.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is user-correctable input, as
// opposed to an internal failure.
func IsClientError(err error) bool {
	var fe FieldErrors
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrChronologyViolation) ||
		errors.Is(err, ErrDuplicateCaseFile) ||
		errors.Is(err, ErrOpenContractExists) ||
		errors.Is(err, ErrHasDependents) ||
		errors.As(err, &fe)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrPositionNotFound)
}
