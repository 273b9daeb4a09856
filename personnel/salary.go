/*
salary.go - Salary resolution through the schedule

PURPOSE:
  Computes what a contract pays. Scale ("dynamic") contracts resolve
  through the salary schedule keyed by (scale group, role, tier), where
  group and role are reached transitively: position -> job -> scale group.
  Fixed contracts, and leadership posts outside the role/tier grid, fall
  back to the job catalog's base salary.

SOFT MISSES:
  A missing schedule row is a LookupMissError wrapping ErrSalaryLookupMiss.
  Callers record zero salary fields and keep going - pay gets reconciled
  later, aborting the whole movement over it would lose the event.

DERIVED RATES:
  The resolver also derives the hourly rate (amount / time fund, 5 dp) and
  the overtime rate (hourly * 1.25, 5 dp) used by the movement notice.

SEE ALSO:
  - catalog/registry.go: SalarySchedule interface
  - lifecycle.go: snapshot construction during Move
*/
package personnel

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
)

// DefaultTimeFund is the monthly hour fund used to derive hourly rates when
// configuration provides none.
var DefaultTimeFund = decimal.RequireFromString("190.6")

var overtimeFactor = decimal.RequireFromString("1.25")

// SalaryDetail is a fully derived pay figure.
type SalaryDetail struct {
	Amount       decimal.Decimal
	HourlyRate   decimal.Decimal
	OvertimeRate decimal.Decimal
}

// SalaryResolver resolves contract pay against the catalogs.
type SalaryResolver struct {
	Registry catalog.Registry
	Schedule catalog.SalarySchedule
	TimeFund decimal.Decimal // zero means DefaultTimeFund
}

func NewSalaryResolver(reg catalog.Registry, sched catalog.SalarySchedule) *SalaryResolver {
	return &SalaryResolver{Registry: reg, Schedule: sched, TimeFund: DefaultTimeFund}
}

// Resolve computes the salary for a contract occupying pos. With no
// position there is nothing to price: zero detail and a miss.
func (r *SalaryResolver) Resolve(ctx context.Context, c Contract, pos *StaffingPosition) (SalaryDetail, error) {
	return r.resolve(ctx, r.Registry, r.Schedule, c, pos)
}

func (r *SalaryResolver) resolve(ctx context.Context, reg catalog.Registry, sched catalog.SalarySchedule, c Contract, pos *StaffingPosition) (SalaryDetail, error) {
	if pos == nil {
		return SalaryDetail{}, &LookupMissError{Tier: string(c.TierID)}
	}

	job, err := reg.Job(ctx, pos.JobID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return SalaryDetail{}, &LookupMissError{Tier: string(c.TierID)}
		}
		return SalaryDetail{}, err
	}

	// Fixed pay, leadership posts and tierless contracts all price at the
	// job's base salary.
	if c.SalaryKind == SalaryFixed || job.IsLeadership() || c.TierID == "" || pos.RoleID == "" {
		return r.detail(job.BaseSalary), nil
	}

	amount, err := sched.Lookup(ctx, job.ScaleGroupID, pos.RoleID, c.TierID)
	if errors.Is(err, catalog.ErrNoScheduleRow) {
		return SalaryDetail{}, &LookupMissError{
			ScaleGroup: string(job.ScaleGroupID),
			Role:       string(pos.RoleID),
			Tier:       string(c.TierID),
		}
	}
	if err != nil {
		return SalaryDetail{}, err
	}
	return r.detail(amount), nil
}

// SnapshotOf captures a contract's assignment state as a denormalized
// value copy. Unresolvable references produce blank labels and a schedule
// gap produces zero salary; both are logged, neither aborts - the snapshot
// is historical record, not validation.
func (r *SalaryResolver) SnapshotOf(ctx context.Context, positions PositionStore, c Contract) Snapshot {
	var snap Snapshot
	if c.PositionID == "" {
		return snap
	}

	pos, err := positions.Position(ctx, c.PositionID)
	if err != nil {
		log.Printf("snapshot: contract %s references missing position %s", c.CaseFile, c.PositionID)
		return snap
	}

	// Prefer the caller's view of the catalog: when positions is a
	// transaction, lookups must ride that transaction's connection.
	reg, sched := r.Registry, r.Schedule
	if txReg, ok := positions.(catalog.Registry); ok {
		reg = txReg
	}
	if txSched, ok := positions.(catalog.SalarySchedule); ok {
		sched = txSched
	}

	if job, err := reg.Job(ctx, pos.JobID); err == nil {
		snap.PositionTitle = job.Title
	}
	if dept, err := reg.Department(ctx, pos.DepartmentID); err == nil {
		if unit, err := reg.Unit(ctx, dept.UnitID); err == nil {
			snap.UnitName = unit.Name
		}
	}

	detail, err := r.resolve(ctx, reg, sched, c, &pos)
	if err != nil {
		if errors.Is(err, ErrSalaryLookupMiss) {
			log.Printf("snapshot: %v, recording zero salary", err)
		} else {
			log.Printf("snapshot: salary resolution failed for %s: %v", c.CaseFile, err)
		}
		return snap
	}
	snap.Salary = detail.Amount
	return snap
}

func (r *SalaryResolver) detail(amount decimal.Decimal) SalaryDetail {
	fund := r.TimeFund
	if fund.IsZero() {
		fund = DefaultTimeFund
	}
	hourly := amount.Div(fund).Round(5)
	return SalaryDetail{
		Amount:       amount.Round(2),
		HourlyRate:   hourly,
		OvertimeRate: hourly.Mul(overtimeFactor).Round(5),
	}
}
