/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements personnel.TxStore plus the catalog Registry and SalarySchedule
  against a single SQLite file. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  personnel.TxStore:      employees, positions, contracts, archive, ledger
  catalog.Registry:       keyed catalog lookups
  catalog.SalarySchedule: (scale group, role, tier) -> amount

APPEND-ONLY ENFORCEMENT:
  The movements table is a ledger:
  - No DELETE statements on movements
  - The ONLY UPDATE clears contract_ref at termination (DetachContract)
  - Effective dates are never rewritten

KEY TABLES:
  employees:        identity records keyed by national ID
  positions:        budgeted staffing slots with approved/filled counters
  contracts:        the single open contract per employee, keyed by case file
  closed_contracts: immutable termination archive
  movements:        immutable before/after ledger of every transition

CONSTRAINTS:
  contracts.case_file PRIMARY KEY backs ErrDuplicateCaseFile. Foreign keys
  on contracts and closed_contracts back ErrHasDependents for employee
  deletion. Movements carry no FK: history must outlive the contract row.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.
  A single connection serializes writers; WithTx gets real transactions.

USAGE:
  store, err := sqlite.New("./data/personnel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := personnel.NewEngine(store, store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - personnel/store.go: interface definitions
  - personnel/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
	"github.com/orbith/personnel-engine/personnel"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements personnel.Store against either the database or an open
// transaction.
type queries struct {
	db DBTX
}

// Store is the SQLite-backed store.
type Store struct {
	*queries
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite allows a single writer anyway, and this keeps
	// ":memory:" databases from silently splitting per connection.
	db.SetMaxOpenConns(1)

	store := &Store{queries: &queries{db: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Catalog: organizational structure
	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit_id INTEGER NOT NULL REFERENCES units(id)
	);

	-- Catalog: job nomenclature and pay scale
	CREATE TABLE IF NOT EXISTS scale_groups (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		executive BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		scale_group_id TEXT REFERENCES scale_groups(id),
		base_salary TEXT NOT NULL DEFAULT '0',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiers (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS salary_schedule (
		scale_group_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		tier_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (scale_group_id, role_id, tier_id)
	);

	-- Catalog: general registries
	CREATE TABLE IF NOT EXISTS causes (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		hire BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS provinces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS municipalities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		province_id TEXT NOT NULL REFERENCES provinces(id)
	);

	CREATE TABLE IF NOT EXISTS specialties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		higher_educ_only BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Employees (identity records, keyed by national ID)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		first_surname TEXT NOT NULL,
		second_surname TEXT,
		sex TEXT NOT NULL,
		education_level TEXT,
		specialty_id TEXT,
		province_id TEXT,
		municipality_id TEXT,
		unit_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		mobile TEXT,
		address TEXT,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status);

	-- Staffing positions (budgeted slots)
	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		department_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		role_id TEXT,
		approved INTEGER NOT NULL DEFAULT 0,
		filled INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_positions_department ON positions(department_id);

	-- Open contracts (one per employee, keyed by case file)
	CREATE TABLE IF NOT EXISTS contracts (
		case_file TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		position_id TEXT,
		type TEXT NOT NULL,
		tier_id TEXT,
		salary_kind TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		duration_days INTEGER NOT NULL DEFAULT 0,
		military_registry TEXT,
		professional_driver BOOLEAN NOT NULL DEFAULT FALSE,
		retiree_rehired BOOLEAN NOT NULL DEFAULT FALSE,
		pending_movement BOOLEAN NOT NULL DEFAULT FALSE,
		license_expiry TEXT,
		requalification_expiry TEXT,
		insurance_expiry TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_by TEXT,
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee ON contracts(employee_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_pending
		ON contracts(pending_movement) WHERE pending_movement = TRUE;

	-- Closed contracts (immutable termination archive)
	CREATE TABLE IF NOT EXISTS closed_contracts (
		case_file TEXT NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		position_id TEXT,
		type TEXT NOT NULL,
		tier_id TEXT,
		salary_kind TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		termination_date TEXT NOT NULL,
		cause_id TEXT NOT NULL,
		closed_by TEXT,
		closed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_closed_contracts_employee
		ON closed_contracts(employee_id);

	-- Movements (append-only ledger)
	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		case_file TEXT NOT NULL,
		contract_ref TEXT,
		effective_date TEXT NOT NULL,
		requested_date TEXT,
		kind TEXT NOT NULL,
		before_unit TEXT,
		before_title TEXT,
		before_salary TEXT NOT NULL DEFAULT '0',
		after_unit TEXT,
		after_title TEXT,
		after_salary TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_case
		ON movements(case_file, effective_date);
	CREATE INDEX IF NOT EXISTS idx_movements_employee
		ON movements(employee_id, effective_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (q *queries) PutEmployee(ctx context.Context, e personnel.Employee) error {
	query := `
		INSERT INTO employees
		(id, first_name, first_surname, second_surname, sex, education_level,
		 specialty_id, province_id, municipality_id, unit_id, status, mobile,
		 address, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			first_surname = excluded.first_surname,
			second_surname = excluded.second_surname,
			sex = excluded.sex,
			education_level = excluded.education_level,
			specialty_id = excluded.specialty_id,
			province_id = excluded.province_id,
			municipality_id = excluded.municipality_id,
			unit_id = excluded.unit_id,
			status = excluded.status,
			mobile = excluded.mobile,
			address = excluded.address,
			notes = excluded.notes
	`

	_, err := q.db.ExecContext(ctx, query,
		e.ID, e.FirstName, e.FirstSurname, e.SecondSurname, e.Sex,
		e.EducationLevel, e.SpecialtyID, e.ProvinceID, e.MunicipalityID,
		int(e.UnitID), e.Status, e.Mobile, e.Address, e.Notes,
		e.CreatedBy, e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (q *queries) Employee(ctx context.Context, id personnel.EmployeeID) (personnel.Employee, error) {
	query := `
		SELECT id, first_name, first_surname, second_surname, sex, education_level,
		       specialty_id, province_id, municipality_id, unit_id, status, mobile,
		       address, notes, created_by, created_at
		FROM employees WHERE id = ?
	`

	var e personnel.Employee
	var secondSurname, educ, spec, prov, mun sql.NullString
	var mobile, address, notes, createdBy, createdAt sql.NullString
	var unitID int
	err := q.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.FirstName, &e.FirstSurname, &secondSurname, &e.Sex, &educ,
		&spec, &prov, &mun, &unitID, &e.Status, &mobile, &address, &notes,
		&createdBy, &createdAt,
	)
	if err == sql.ErrNoRows {
		return personnel.Employee{}, personnel.ErrEmployeeNotFound
	}
	if err != nil {
		return personnel.Employee{}, fmt.Errorf("failed to load employee: %w", err)
	}

	e.SecondSurname = secondSurname.String
	e.EducationLevel = personnel.EducationLevel(educ.String)
	e.SpecialtyID = catalog.SpecialtyID(spec.String)
	e.ProvinceID = catalog.ProvinceID(prov.String)
	e.MunicipalityID = catalog.MunicipalityID(mun.String)
	e.UnitID = catalog.UnitID(unitID)
	e.Mobile = mobile.String
	e.Address = address.String
	e.Notes = notes.String
	e.CreatedBy = createdBy.String
	e.CreatedAt = parseTime(createdAt.String)
	return e, nil
}

func (q *queries) SetEmployeeStatus(ctx context.Context, id personnel.EmployeeID, status personnel.EmployeeStatus) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE employees SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return personnel.ErrEmployeeNotFound
	}
	return nil
}

func (q *queries) DeleteEmployee(ctx context.Context, id personnel.EmployeeID) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		if isForeignKeyError(err) {
			return personnel.ErrHasDependents
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return personnel.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// POSITION STORE
// =============================================================================

const positionColumns = "id, department_id, job_id, role_id, approved, filled, active"

func (q *queries) Position(ctx context.Context, id personnel.PositionID) (personnel.StaffingPosition, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE id = ?", id)
	p, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return personnel.StaffingPosition{}, personnel.ErrPositionNotFound
	}
	if err != nil {
		return personnel.StaffingPosition{}, fmt.Errorf("failed to load position: %w", err)
	}
	return p, nil
}

func (q *queries) PutPosition(ctx context.Context, p personnel.StaffingPosition) error {
	query := `
		INSERT INTO positions (id, department_id, job_id, role_id, approved, filled, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			department_id = excluded.department_id,
			job_id = excluded.job_id,
			role_id = excluded.role_id,
			approved = excluded.approved,
			filled = excluded.filled,
			active = excluded.active
	`
	_, err := q.db.ExecContext(ctx, query,
		p.ID, p.DepartmentID, p.JobID, p.RoleID, p.Approved, p.Filled, p.Active)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

func (q *queries) Positions(ctx context.Context) ([]personnel.StaffingPosition, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+positionColumns+" FROM positions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []personnel.StaffingPosition
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (personnel.StaffingPosition, error) {
	var p personnel.StaffingPosition
	var roleID sql.NullString
	err := row.Scan(&p.ID, &p.DepartmentID, &p.JobID, &roleID, &p.Approved, &p.Filled, &p.Active)
	if err != nil {
		return p, err
	}
	p.RoleID = catalog.RoleID(roleID.String)
	return p, nil
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

const contractColumns = `case_file, employee_id, position_id, type, tier_id, salary_kind,
	hire_date, duration_days, military_registry, professional_driver,
	retiree_rehired, pending_movement, license_expiry, requalification_expiry,
	insurance_expiry, created_by, created_at, updated_by, updated_at`

func (q *queries) InsertContract(ctx context.Context, c personnel.Contract) error {
	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query, contractArgs(c)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return personnel.ErrDuplicateCaseFile
		}
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (q *queries) UpdateContract(ctx context.Context, c personnel.Contract) error {
	query := `
		UPDATE contracts SET
			employee_id = ?, position_id = ?, type = ?, tier_id = ?,
			salary_kind = ?, hire_date = ?, duration_days = ?,
			military_registry = ?, professional_driver = ?, retiree_rehired = ?,
			pending_movement = ?, license_expiry = ?, requalification_expiry = ?,
			insurance_expiry = ?, created_by = ?, created_at = ?,
			updated_by = ?, updated_at = ?
		WHERE case_file = ?
	`
	args := append(contractArgs(c)[1:], c.CaseFile)
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return personnel.ErrContractNotFound
	}
	return nil
}

func (q *queries) DeleteContract(ctx context.Context, cf personnel.CaseFile) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM contracts WHERE case_file = ?", cf)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return personnel.ErrContractNotFound
	}
	return nil
}

func (q *queries) Contract(ctx context.Context, cf personnel.CaseFile) (personnel.Contract, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE case_file = ?", cf)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return personnel.Contract{}, personnel.ErrContractNotFound
	}
	if err != nil {
		return personnel.Contract{}, fmt.Errorf("failed to load contract: %w", err)
	}
	return c, nil
}

func (q *queries) OpenContractsFor(ctx context.Context, id personnel.EmployeeID) ([]personnel.Contract, error) {
	return q.queryContracts(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE employee_id = ? ORDER BY case_file", id)
}

func (q *queries) PendingMovements(ctx context.Context) ([]personnel.Contract, error) {
	return q.queryContracts(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE pending_movement = TRUE ORDER BY case_file")
}

func (q *queries) queryContracts(ctx context.Context, query string, args ...any) ([]personnel.Contract, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []personnel.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func contractArgs(c personnel.Contract) []any {
	return []any{
		c.CaseFile, c.EmployeeID, nullString(string(c.PositionID)), c.Type,
		nullString(string(c.TierID)), c.SalaryKind,
		c.HireDate.String(), c.DurationDays,
		nullString(string(c.MilitaryRegistry)), c.ProfessionalDriver,
		c.RetireeRehired, c.PendingMovement,
		nullDate(c.LicenseExpiry), nullDate(c.RequalificationExpiry),
		nullDate(c.InsuranceExpiry),
		nullString(c.CreatedBy), c.CreatedAt.UTC().Format(time.RFC3339),
		nullString(c.UpdatedBy), nullTime(c.UpdatedAt),
	}
}

func scanContract(row rowScanner) (personnel.Contract, error) {
	var c personnel.Contract
	var positionID, tierID, military sql.NullString
	var hireDate string
	var license, requal, insurance sql.NullString
	var createdBy, createdAt, updBy, updAt sql.NullString
	err := row.Scan(
		&c.CaseFile, &c.EmployeeID, &positionID, &c.Type, &tierID, &c.SalaryKind,
		&hireDate, &c.DurationDays, &military, &c.ProfessionalDriver,
		&c.RetireeRehired, &c.PendingMovement, &license, &requal, &insurance,
		&createdBy, &createdAt, &updBy, &updAt,
	)
	if err != nil {
		return c, err
	}

	c.PositionID = personnel.PositionID(positionID.String)
	c.TierID = catalog.TierID(tierID.String)
	c.MilitaryRegistry = personnel.MilitaryRegistry(military.String)
	c.HireDate = parseDate(hireDate)
	c.LicenseExpiry = parseDate(license.String)
	c.RequalificationExpiry = parseDate(requal.String)
	c.InsuranceExpiry = parseDate(insurance.String)
	c.CreatedBy = createdBy.String
	c.CreatedAt = parseTime(createdAt.String)
	c.UpdatedBy = updBy.String
	c.UpdatedAt = parseTime(updAt.String)
	return c, nil
}

// =============================================================================
// CLOSED CONTRACT STORE
// =============================================================================

func (q *queries) InsertClosedContract(ctx context.Context, c personnel.ClosedContract) error {
	query := `
		INSERT INTO closed_contracts
		(case_file, employee_id, position_id, type, tier_id, salary_kind,
		 hire_date, termination_date, cause_id, closed_by, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		c.CaseFile, c.EmployeeID, nullString(string(c.PositionID)), c.Type,
		nullString(string(c.TierID)), c.SalaryKind,
		c.HireDate.String(), c.TerminationDate.String(), c.CauseID,
		nullString(c.ClosedBy), c.ClosedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to archive contract: %w", err)
	}
	return nil
}

func (q *queries) ClosedContractsFor(ctx context.Context, id personnel.EmployeeID) ([]personnel.ClosedContract, error) {
	query := `
		SELECT case_file, employee_id, position_id, type, tier_id, salary_kind,
		       hire_date, termination_date, cause_id, closed_by, closed_at
		FROM closed_contracts
		WHERE employee_id = ?
		ORDER BY termination_date ASC, rowid ASC
	`
	rows, err := q.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed contracts: %w", err)
	}
	defer rows.Close()

	var closed []personnel.ClosedContract
	for rows.Next() {
		var c personnel.ClosedContract
		var positionID, tierID sql.NullString
		var hire, term string
		var closedBy, closedAt sql.NullString
		if err := rows.Scan(
			&c.CaseFile, &c.EmployeeID, &positionID, &c.Type, &tierID,
			&c.SalaryKind, &hire, &term, &c.CauseID, &closedBy, &closedAt,
		); err != nil {
			return nil, err
		}
		c.PositionID = personnel.PositionID(positionID.String)
		c.TierID = catalog.TierID(tierID.String)
		c.HireDate = parseDate(hire)
		c.TerminationDate = parseDate(term)
		c.ClosedBy = closedBy.String
		c.ClosedAt = parseTime(closedAt.String)
		closed = append(closed, c)
	}
	return closed, rows.Err()
}

// =============================================================================
// MOVEMENT STORE (append-only ledger)
// =============================================================================

const movementColumns = `id, employee_id, case_file, contract_ref, effective_date,
	requested_date, kind, before_unit, before_title, before_salary,
	after_unit, after_title, after_salary, notes, created_by, created_at`

func (q *queries) AppendMovement(ctx context.Context, ev personnel.MovementEvent) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var contractRef any
	if ev.ContractRef != nil {
		contractRef = string(*ev.ContractRef)
	}
	var requested any
	if ev.RequestedDate != nil {
		requested = ev.RequestedDate.String()
	}

	_, err := q.db.ExecContext(ctx, query,
		ev.ID, ev.EmployeeID, ev.CaseFile, contractRef,
		ev.EffectiveDate.String(), requested, ev.Kind,
		nullString(ev.Before.UnitName), nullString(ev.Before.PositionTitle),
		ev.Before.Salary.String(),
		nullString(ev.After.UnitName), nullString(ev.After.PositionTitle),
		ev.After.Salary.String(),
		nullString(ev.Notes), nullString(ev.CreatedBy),
		ev.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func (q *queries) MovementsForCase(ctx context.Context, cf personnel.CaseFile) ([]personnel.MovementEvent, error) {
	return q.queryMovements(ctx,
		"SELECT "+movementColumns+` FROM movements
		 WHERE case_file = ? ORDER BY effective_date ASC, rowid ASC`, cf)
}

func (q *queries) MovementsFor(ctx context.Context, id personnel.EmployeeID) ([]personnel.MovementEvent, error) {
	return q.queryMovements(ctx,
		"SELECT "+movementColumns+` FROM movements
		 WHERE employee_id = ? ORDER BY effective_date ASC, rowid ASC`, id)
}

func (q *queries) DetachContract(ctx context.Context, cf personnel.CaseFile) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE movements SET contract_ref = NULL WHERE case_file = ?", cf)
	if err != nil {
		return fmt.Errorf("failed to detach contract from ledger: %w", err)
	}
	return nil
}

func (q *queries) queryMovements(ctx context.Context, query string, args ...any) ([]personnel.MovementEvent, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var events []personnel.MovementEvent
	for rows.Next() {
		var ev personnel.MovementEvent
		var contractRef, requested sql.NullString
		var effective string
		var beforeUnit, beforeTitle sql.NullString
		var beforeSalary, afterSalary string
		var afterUnit, afterTitle sql.NullString
		var notes, createdBy, createdAt sql.NullString
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.CaseFile, &contractRef, &effective,
			&requested, &ev.Kind, &beforeUnit, &beforeTitle, &beforeSalary,
			&afterUnit, &afterTitle, &afterSalary, &notes, &createdBy, &createdAt,
		); err != nil {
			return nil, err
		}

		if contractRef.Valid {
			ref := personnel.CaseFile(contractRef.String)
			ev.ContractRef = &ref
		}
		ev.EffectiveDate = parseDate(effective)
		if requested.Valid {
			d := parseDate(requested.String)
			ev.RequestedDate = &d
		}
		ev.Before = personnel.Snapshot{
			UnitName:      beforeUnit.String,
			PositionTitle: beforeTitle.String,
			Salary:        parseDecimal(beforeSalary),
		}
		ev.After = personnel.Snapshot{
			UnitName:      afterUnit.String,
			PositionTitle: afterTitle.String,
			Salary:        parseDecimal(afterSalary),
		}
		ev.Notes = notes.String
		ev.CreatedBy = createdBy.String
		ev.CreatedAt = parseTime(createdAt.String)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (personnel.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The store
// handed to fn also serves catalog.Registry and catalog.SalarySchedule
// over the same transaction, so in-tx catalog lookups never wait on the
// pool's single connection.
func (s *Store) WithTx(ctx context.Context, fn func(store personnel.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

var _ personnel.TxStore = (*Store)(nil)

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d personnel.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDate(s string) personnel.Date {
	if s == "" {
		return personnel.Date{}
	}
	d, err := personnel.ParseDate(s)
	if err != nil {
		return personnel.Date{}
	}
	return d
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
