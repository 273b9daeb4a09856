/*
handlers.go - HTTP API handlers for the personnel engine

PURPOSE:
  Exposes the personnel lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    POST   /api/candidates                   Register a candidate
    GET    /api/employees/{id}               Get employee details
    DELETE /api/employees/{id}               Delete a dependency-free record
    GET    /api/employees/{id}/timeline      Reconstructed career timeline
    GET    /api/employees/{id}/movements     Full movement history
    GET    /api/employees/{id}/closed        Archived contracts

  Contracts:
    POST   /api/contracts                    Hire (open a contract)
    GET    /api/contracts/pending            Contracts staged for movement
    GET    /api/contracts/{caseFile}         Get contract
    POST   /api/contracts/{caseFile}/move    Apply a movement
    POST   /api/contracts/{caseFile}/flag    Stage for the movement workflow
    POST   /api/contracts/{caseFile}/terminate  Close the contract
    GET    /api/contracts/{caseFile}/movements  Ledger events of the case file
    GET    /api/contracts/{caseFile}/notice  Movement notice data

  Positions:
    GET    /api/positions                    List staffing positions
    POST   /api/positions                    Create/replace a position
    GET    /api/positions/vacancies          Vacancy dashboard

  Catalog:
    POST   /api/catalog/seed                 Bulk-load reference tables

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate case file, open contract, capacity,
         chronology, dependents)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. The actor recorded on
  mutations comes from the request body and defaults to "api".

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - personnel/lifecycle.go: the engine behind all of this
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/orbith/personnel-engine/catalog"
	"github.com/orbith/personnel-engine/personnel"
	"github.com/orbith/personnel-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Engine   *personnel.Engine
	Timeline *personnel.Reconstructor
	Ledger   *personnel.MovementLedger
	Salary   *personnel.SalaryResolver

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store. The store doubles
// as catalog registry and salary schedule.
func NewHandler(store *sqlite.Store, timeFund decimal.Decimal) *Handler {
	salary := personnel.NewSalaryResolver(store, store)
	if !timeFund.IsZero() {
		salary.TimeFund = timeFund
	}
	engine := personnel.NewEngine(store, store, salary)
	return &Handler{
		Store:    store,
		Engine:   engine,
		Timeline: personnel.NewReconstructor(store, salary),
		Ledger:   personnel.NewMovementLedger(store),
		Salary:   salary,
		validate: validator.New(),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return "api"
	}
	return actor
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// RegisterCandidate registers a new employee in candidate status.
func (h *Handler) RegisterCandidate(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp := personnel.Employee{
		ID:             personnel.EmployeeID(req.ID),
		FirstName:      req.FirstName,
		FirstSurname:   req.FirstSurname,
		SecondSurname:  req.SecondSurname,
		Sex:            personnel.Sex(req.Sex),
		EducationLevel: personnel.EducationLevel(req.EducationLevel),
		SpecialtyID:    catalog.SpecialtyID(req.SpecialtyID),
		ProvinceID:     catalog.ProvinceID(req.ProvinceID),
		MunicipalityID: catalog.MunicipalityID(req.MunicipalityID),
		UnitID:         catalog.UnitID(req.UnitID),
		Mobile:         req.Mobile,
		Address:        req.Address,
		Notes:          req.Notes,
	}

	created, err := h.Engine.RegisterCandidate(r.Context(), actorOrDefault(req.Actor), emp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := personnel.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.Employee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes a record with no contract history.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := personnel.EmployeeID(chi.URLParam(r, "id"))

	if err := h.Engine.DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTimeline returns the reconstructed career timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := personnel.EmployeeID(chi.URLParam(r, "id"))

	segments, err := h.Timeline.Timeline(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]SegmentDTO, len(segments))
	for i, s := range segments {
		dtos[i] = toSegmentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployeeMovements returns every ledger event of an employee.
func (h *Handler) GetEmployeeMovements(w http.ResponseWriter, r *http.Request) {
	id := personnel.EmployeeID(chi.URLParam(r, "id"))

	events, err := h.Ledger.AllFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]MovementDTO, len(events))
	for i, ev := range events {
		dtos[i] = toMovementDTO(ev)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClosedContracts returns the termination archive of an employee.
func (h *Handler) GetClosedContracts(w http.ResponseWriter, r *http.Request) {
	id := personnel.EmployeeID(chi.URLParam(r, "id"))

	closed, err := h.Store.ClosedContractsFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ClosedContractDTO, len(closed))
	for i, c := range closed {
		dtos[i] = toClosedContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// Hire opens a contract for an employee.
func (h *Handler) Hire(w http.ResponseWriter, r *http.Request) {
	var req HireRequest
	if !h.decode(w, r, &req) {
		return
	}

	hireDate, err := personnel.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	in := personnel.HireInput{
		Actor:              actorOrDefault(req.Actor),
		EmployeeID:         personnel.EmployeeID(req.EmployeeID),
		CaseFile:           personnel.CaseFile(req.CaseFile),
		PositionID:         personnel.PositionID(req.PositionID),
		Type:               personnel.ContractType(req.Type),
		TierID:             catalog.TierID(req.TierID),
		SalaryKind:         personnel.SalaryKind(req.SalaryKind),
		HireDate:           hireDate,
		DurationDays:       req.DurationDays,
		MilitaryRegistry:   personnel.MilitaryRegistry(req.MilitaryRegistry),
		ProfessionalDriver: req.ProfessionalDriver,
		RetireeRehired:     req.RetireeRehired,
		LicenseExpiry:      parseOptionalDate(req.LicenseExpiry),
		InsuranceExpiry:    parseOptionalDate(req.InsuranceExpiry),

		RequalificationExpiry: parseOptionalDate(req.RequalificationExpiry),
	}

	contract, err := h.Engine.Hire(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(contract))
}

// GetContract returns one open contract by case file.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	contract, err := h.Store.Contract(r.Context(), cf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

// ListPendingMovements returns contracts staged for the movement workflow.
func (h *Handler) ListPendingMovements(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.PendingMovements(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Move applies an assignment or tier change to a contract.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	effective, err := personnel.ParseDate(req.EffectiveDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_date format (use YYYY-MM-DD)", err)
		return
	}

	in := personnel.MoveInput{
		Actor:         actorOrDefault(req.Actor),
		CaseFile:      cf,
		EffectiveDate: effective,
		Notes:         req.Notes,
	}
	if req.NewPositionID != nil {
		pid := personnel.PositionID(*req.NewPositionID)
		in.NewPositionID = &pid
	}
	if req.NewTierID != nil {
		tid := catalog.TierID(*req.NewTierID)
		in.NewTierID = &tid
	}
	if req.RequestedDate != "" {
		d := parseOptionalDate(req.RequestedDate)
		in.RequestedDate = &d
	}

	event, err := h.Engine.Move(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementDTO(event))
}

// FlagForMovement stages a contract for the movement workflow. Idempotent.
func (h *Handler) FlagForMovement(w http.ResponseWriter, r *http.Request) {
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	if err := h.Engine.FlagForMovement(r.Context(), "api", cf); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Terminate closes a contract and archives it.
func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	var req TerminateRequest
	if !h.decode(w, r, &req) {
		return
	}

	termination, err := personnel.ParseDate(req.TerminationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid termination_date format (use YYYY-MM-DD)", err)
		return
	}

	closed, err := h.Engine.Terminate(r.Context(), personnel.TerminateInput{
		Actor:                  actorOrDefault(req.Actor),
		CaseFile:               cf,
		TerminationDate:        termination,
		CauseID:                catalog.CauseID(req.CauseID),
		DisableChronologyGuard: req.Force,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClosedContractDTO(closed))
}

// GetCaseMovements returns the ledger events of one case file.
func (h *Handler) GetCaseMovements(w http.ResponseWriter, r *http.Request) {
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	events, err := h.Ledger.ByCase(r.Context(), cf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]MovementDTO, len(events))
	for i, ev := range events {
		dtos[i] = toMovementDTO(ev)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetNotice returns the data printed on a movement notice: the current
// assignment with derived hourly and overtime rates, and the latest
// movement's kind.
func (h *Handler) GetNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cf := personnel.CaseFile(chi.URLParam(r, "caseFile"))

	contract, err := h.Store.Contract(ctx, cf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	emp, err := h.Store.Employee(ctx, contract.EmployeeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	notice := NoticeDTO{
		CaseFile:     string(cf),
		EmployeeID:   string(emp.ID),
		EmployeeName: emp.FullName(),
		Salary:       "0",
		HourlyRate:   "0",
		OvertimeRate: "0",
	}

	snap := h.Salary.SnapshotOf(ctx, h.Store, contract)
	notice.Unit = snap.UnitName
	notice.PositionTitle = snap.PositionTitle
	notice.AbbreviatedTitle = catalog.AbbreviateTitle(snap.PositionTitle)

	if contract.PositionID != "" {
		if pos, err := h.Store.Position(ctx, contract.PositionID); err == nil {
			if detail, err := h.Salary.Resolve(ctx, contract, &pos); err == nil {
				notice.Salary = detail.Amount.String()
				notice.HourlyRate = detail.HourlyRate.String()
				notice.OvertimeRate = detail.OvertimeRate.String()
			}
		}
	}

	if latest, ok, err := h.Ledger.LatestFor(ctx, cf); err == nil && ok {
		notice.EffectiveDate = latest.EffectiveDate.String()
		notice.LatestMovementKind = string(personnel.DeriveKind(latest))
	}

	writeJSON(w, http.StatusOK, notice)
}

// =============================================================================
// POSITION HANDLERS
// =============================================================================

// ListPositions returns all staffing positions.
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Store.Positions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PositionDTO, len(positions))
	for i, p := range positions {
		dtos[i] = toPositionDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePosition creates or replaces a staffing position. The filled
// counter is preserved on replace; only the engine moves it.
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos := personnel.StaffingPosition{
		ID:           personnel.PositionID(req.ID),
		DepartmentID: catalog.DepartmentID(req.DepartmentID),
		JobID:        catalog.JobID(req.JobID),
		RoleID:       catalog.RoleID(req.RoleID),
		Approved:     req.Approved,
		Active:       true,
	}
	if req.Active != nil {
		pos.Active = *req.Active
	}
	if existing, err := h.Store.Position(r.Context(), pos.ID); err == nil {
		pos.Filled = existing.Filled
	}

	if err := h.Store.PutPosition(r.Context(), pos); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPositionDTO(pos))
}

// VacancyReport returns the vacancy dashboard: every active position with
// open slots, labeled from the catalog.
func (h *Handler) VacancyReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	positions, err := h.Store.Positions(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report := []VacancyDTO{}
	for _, p := range positions {
		if !p.Active || p.Vacancies() == 0 {
			continue
		}
		row := VacancyDTO{
			PositionID: string(p.ID),
			Approved:   p.Approved,
			Filled:     p.Filled,
			Vacancies:  p.Vacancies(),
		}
		if dept, err := h.Store.Department(ctx, p.DepartmentID); err == nil {
			row.Department = dept.Name
		}
		if job, err := h.Store.Job(ctx, p.JobID); err == nil {
			row.Title = job.Title
		}
		report = append(report, row)
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// CATALOG SEEDING
// =============================================================================

// SeedCatalog bulk-loads reference tables. Parents before children so the
// foreign keys hold.
func (h *Handler) SeedCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var bundle CatalogBundle
	if !h.decode(w, r, &bundle) {
		return
	}

	for _, u := range bundle.Units {
		kind := catalog.UnitKind(u.Kind)
		if kind == "" {
			kind = catalog.UnitBase
		}
		if err := h.Store.SaveUnit(ctx, catalog.Unit{
			ID: catalog.UnitID(u.ID), Name: u.Name, Kind: kind,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save unit", err)
			return
		}
	}
	for _, d := range bundle.Departments {
		if err := h.Store.SaveDepartment(ctx, catalog.Department{
			ID: catalog.DepartmentID(d.ID), Name: d.Name, UnitID: catalog.UnitID(d.UnitID),
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save department", err)
			return
		}
	}
	for _, g := range bundle.ScaleGroups {
		if err := h.Store.SaveScaleGroup(ctx, catalog.ScaleGroup{
			ID: catalog.ScaleGroupID(g.ID), Level: g.Level, Executive: g.Executive,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save scale group", err)
			return
		}
	}
	for _, j := range bundle.Jobs {
		base := decimal.Zero
		if j.BaseSalary != "" {
			parsed, err := decimal.NewFromString(j.BaseSalary)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid base_salary for job "+j.ID, err)
				return
			}
			base = parsed
		}
		active := true
		if j.Active != nil {
			active = *j.Active
		}
		if err := h.Store.SaveJob(ctx, catalog.Job{
			ID:           catalog.JobID(j.ID),
			Title:        j.Title,
			Category:     catalog.OccupationalCategory(j.Category),
			ScaleGroupID: catalog.ScaleGroupID(j.ScaleGroupID),
			BaseSalary:   base,
			Active:       active,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save job", err)
			return
		}
	}
	for _, ro := range bundle.Roles {
		if err := h.Store.SaveRole(ctx, catalog.Role{
			ID: catalog.RoleID(ro.ID), Name: ro.Name,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save role", err)
			return
		}
	}
	for _, t := range bundle.Tiers {
		if err := h.Store.SaveTier(ctx, catalog.Tier{
			ID: catalog.TierID(t.ID), Kind: catalog.TierKind(t.Kind),
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save tier", err)
			return
		}
	}
	for _, c := range bundle.Causes {
		if err := h.Store.SaveCause(ctx, catalog.SeparationCause{
			ID: catalog.CauseID(c.ID), Description: c.Description, Hire: c.Hire,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save cause", err)
			return
		}
	}
	for _, p := range bundle.Provinces {
		if err := h.Store.SaveProvince(ctx, catalog.Province{
			ID: catalog.ProvinceID(p.ID), Name: p.Name,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save province", err)
			return
		}
	}
	for _, m := range bundle.Municipalities {
		if err := h.Store.SaveMunicipality(ctx, catalog.Municipality{
			ID: catalog.MunicipalityID(m.ID), Name: m.Name, ProvinceID: catalog.ProvinceID(m.ProvinceID),
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save municipality", err)
			return
		}
	}
	for _, sp := range bundle.Specialties {
		if err := h.Store.SaveSpecialty(ctx, catalog.Specialty{
			ID: catalog.SpecialtyID(sp.ID), Name: sp.Name, HigherEducOnly: sp.HigherEducOnly,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save specialty", err)
			return
		}
	}
	for _, row := range bundle.SalaryRows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid salary row amount", err)
			return
		}
		if err := h.Store.SaveSalaryRow(ctx, catalog.SalaryRow{
			ScaleGroupID: catalog.ScaleGroupID(row.ScaleGroupID),
			RoleID:       catalog.RoleID(row.RoleID),
			TierID:       catalog.TierID(row.TierID),
			Amount:       amount,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save salary row", err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ERROR MAPPING AND RESPONSE HELPERS
// =============================================================================

func writeDomainError(w http.ResponseWriter, err error) {
	var fields personnel.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: fields,
		})
	case personnel.IsNotFound(err), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case personnel.IsClientError(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func parseOptionalDate(s string) personnel.Date {
	if s == "" {
		return personnel.Date{}
	}
	d, err := personnel.ParseDate(s)
	if err != nil {
		return personnel.Date{}
	}
	return d
}
