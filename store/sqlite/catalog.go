/*
catalog.go - Catalog tables: Registry and SalarySchedule over SQLite

PURPOSE:
  Implements catalog.Registry and catalog.SalarySchedule against the
  catalog tables created by migrate(). Save* upserts exist for seeding
  and administration; lookups map sql.ErrNoRows to the catalog sentinels
  so the engine never sees driver errors for plain misses.

  The methods live on queries, not Store, so the view handed out by
  WithTx serves catalog lookups over the transaction's own connection.
  The pool holds a single connection; a lookup routed around an open
  transaction would wait on it forever.

SEE ALSO:
  - catalog/registry.go: interface definitions and in-memory twin
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
)

// =============================================================================
// SEEDING / ADMINISTRATION
// =============================================================================

func (q *queries) SaveUnit(ctx context.Context, u catalog.Unit) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO units (id, name, kind) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind`,
		int(u.ID), u.Name, u.Kind)
	return err
}

func (q *queries) SaveDepartment(ctx context.Context, d catalog.Department) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, unit_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, unit_id = excluded.unit_id`,
		d.ID, d.Name, int(d.UnitID))
	return err
}

func (q *queries) SaveJob(ctx context.Context, j catalog.Job) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, category, scale_group_id, base_salary, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			scale_group_id = excluded.scale_group_id,
			base_salary = excluded.base_salary,
			active = excluded.active`,
		j.ID, j.Title, j.Category, nullString(string(j.ScaleGroupID)),
		j.BaseSalary.String(), j.Active)
	return err
}

func (q *queries) SaveScaleGroup(ctx context.Context, g catalog.ScaleGroup) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO scale_groups (id, level, executive) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET level = excluded.level, executive = excluded.executive`,
		g.ID, g.Level, g.Executive)
	return err
}

func (q *queries) SaveRole(ctx context.Context, r catalog.Role) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO roles (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		r.ID, r.Name)
	return err
}

func (q *queries) SaveTier(ctx context.Context, t catalog.Tier) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO tiers (id, kind) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET kind = excluded.kind`,
		t.ID, t.Kind)
	return err
}

func (q *queries) SaveCause(ctx context.Context, c catalog.SeparationCause) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO causes (id, description, hire) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET description = excluded.description, hire = excluded.hire`,
		c.ID, c.Description, c.Hire)
	return err
}

func (q *queries) SaveProvince(ctx context.Context, p catalog.Province) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO provinces (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		p.ID, p.Name)
	return err
}

func (q *queries) SaveMunicipality(ctx context.Context, m catalog.Municipality) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO municipalities (id, name, province_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, province_id = excluded.province_id`,
		m.ID, m.Name, m.ProvinceID)
	return err
}

func (q *queries) SaveSpecialty(ctx context.Context, sp catalog.Specialty) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO specialties (id, name, higher_educ_only) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			higher_educ_only = excluded.higher_educ_only`,
		sp.ID, sp.Name, sp.HigherEducOnly)
	return err
}

func (q *queries) SaveSalaryRow(ctx context.Context, row catalog.SalaryRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO salary_schedule (scale_group_id, role_id, tier_id, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scale_group_id, role_id, tier_id) DO UPDATE SET
			amount = excluded.amount`,
		row.ScaleGroupID, row.RoleID, row.TierID, row.Amount.String())
	return err
}

// =============================================================================
// REGISTRY
// =============================================================================

func (q *queries) Unit(ctx context.Context, id catalog.UnitID) (catalog.Unit, error) {
	var u catalog.Unit
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, kind FROM units WHERE id = ?", int(id)).
		Scan(&u.ID, &u.Name, &u.Kind)
	return u, catalogErr(err, "unit")
}

func (q *queries) Department(ctx context.Context, id catalog.DepartmentID) (catalog.Department, error) {
	var d catalog.Department
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, unit_id FROM departments WHERE id = ?", id).
		Scan(&d.ID, &d.Name, &d.UnitID)
	return d, catalogErr(err, "department")
}

func (q *queries) Job(ctx context.Context, id catalog.JobID) (catalog.Job, error) {
	var j catalog.Job
	var scaleGroup sql.NullString
	var baseSalary string
	err := q.db.QueryRowContext(ctx,
		"SELECT id, title, category, scale_group_id, base_salary, active FROM jobs WHERE id = ?", id).
		Scan(&j.ID, &j.Title, &j.Category, &scaleGroup, &baseSalary, &j.Active)
	if err != nil {
		return catalog.Job{}, catalogErr(err, "job")
	}
	j.ScaleGroupID = catalog.ScaleGroupID(scaleGroup.String)
	j.BaseSalary = parseDecimal(baseSalary)
	return j, nil
}

func (q *queries) ScaleGroup(ctx context.Context, id catalog.ScaleGroupID) (catalog.ScaleGroup, error) {
	var g catalog.ScaleGroup
	err := q.db.QueryRowContext(ctx,
		"SELECT id, level, executive FROM scale_groups WHERE id = ?", id).
		Scan(&g.ID, &g.Level, &g.Executive)
	return g, catalogErr(err, "scale group")
}

func (q *queries) Role(ctx context.Context, id catalog.RoleID) (catalog.Role, error) {
	var r catalog.Role
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE id = ?", id).
		Scan(&r.ID, &r.Name)
	return r, catalogErr(err, "role")
}

func (q *queries) Tier(ctx context.Context, id catalog.TierID) (catalog.Tier, error) {
	var t catalog.Tier
	err := q.db.QueryRowContext(ctx,
		"SELECT id, kind FROM tiers WHERE id = ?", id).
		Scan(&t.ID, &t.Kind)
	return t, catalogErr(err, "tier")
}

func (q *queries) Cause(ctx context.Context, id catalog.CauseID) (catalog.SeparationCause, error) {
	var c catalog.SeparationCause
	err := q.db.QueryRowContext(ctx,
		"SELECT id, description, hire FROM causes WHERE id = ?", id).
		Scan(&c.ID, &c.Description, &c.Hire)
	return c, catalogErr(err, "cause")
}

func (q *queries) Province(ctx context.Context, id catalog.ProvinceID) (catalog.Province, error) {
	var p catalog.Province
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name FROM provinces WHERE id = ?", id).
		Scan(&p.ID, &p.Name)
	return p, catalogErr(err, "province")
}

func (q *queries) Municipality(ctx context.Context, id catalog.MunicipalityID) (catalog.Municipality, error) {
	var m catalog.Municipality
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, province_id FROM municipalities WHERE id = ?", id).
		Scan(&m.ID, &m.Name, &m.ProvinceID)
	return m, catalogErr(err, "municipality")
}

func (q *queries) Specialty(ctx context.Context, id catalog.SpecialtyID) (catalog.Specialty, error) {
	var sp catalog.Specialty
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, higher_educ_only FROM specialties WHERE id = ?", id).
		Scan(&sp.ID, &sp.Name, &sp.HigherEducOnly)
	return sp, catalogErr(err, "specialty")
}

// EntryTier returns the entry-kind tier with the lowest ID, matching the
// in-memory registry's deterministic choice.
func (q *queries) EntryTier(ctx context.Context) (catalog.Tier, error) {
	var t catalog.Tier
	err := q.db.QueryRowContext(ctx,
		"SELECT id, kind FROM tiers WHERE kind = ? ORDER BY id LIMIT 1",
		catalog.TierEntry).
		Scan(&t.ID, &t.Kind)
	return t, catalogErr(err, "entry tier")
}

// =============================================================================
// SALARY SCHEDULE
// =============================================================================

func (q *queries) Lookup(ctx context.Context, group catalog.ScaleGroupID, role catalog.RoleID, tier catalog.TierID) (decimal.Decimal, error) {
	var amount string
	err := q.db.QueryRowContext(ctx, `
		SELECT amount FROM salary_schedule
		WHERE scale_group_id = ? AND role_id = ? AND tier_id = ?`,
		group, role, tier).Scan(&amount)
	if err == sql.ErrNoRows {
		return decimal.Zero, catalog.ErrNoScheduleRow
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to look up salary schedule: %w", err)
	}
	return parseDecimal(amount), nil
}

var (
	_ catalog.Registry       = (*Store)(nil)
	_ catalog.SalarySchedule = (*Store)(nil)
	_ catalog.Registry       = (*queries)(nil)
	_ catalog.SalarySchedule = (*queries)(nil)
)

func catalogErr(err error, kind string) error {
	if err == sql.ErrNoRows {
		return catalog.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return nil
}
