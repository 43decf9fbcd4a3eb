/*
handlers.go - HTTP API handlers for the acknowledgement portal

PURPOSE:
  Exposes the acknowledgement engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Documents (mounted once per kind, at /api/policies and /api/surveys):
    GET    /                       List documents with progress
    POST   /                       Publish a document
    GET    /{id}                   Get one document with progress
    PUT    /{id}                   Patch a document (resets acknowledgements)
    DELETE /{id}                   Retire a document
    POST   /{id}/acknowledge       Record an acknowledgement
    GET    /{id}/unacknowledged    Employees still owing a read
    GET    /employees/{id}         Documents outstanding/acknowledged per employee

  Employees:
    GET    /api/employees              List directory
    POST   /api/employees              Register employee (seeds ledger entries)
    GET    /api/employees/{id}         Get employee
    PUT    /api/employees/{id}         Update contact details
    POST   /api/employees/{id}/activate     Reactivate (restores ledger slice)
    POST   /api/employees/{id}/deactivate   Deactivate (retires ledger slice)
    PUT    /api/employees/{id}/department   Move departments (rebuilds slice)

ARCHITECTURE:
  Handler holds all dependencies:
  - Store: transaction scoping over the ledger, catalog, and directory
  - One engine per document kind; both share the store
  - Config: the department universe requests are validated against

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Open a transaction and call engine operations
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine/engine.go: The operations these handlers drive
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/garnet/ack-portal/config"
	"github.com/garnet/ack-portal/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	store    engine.Store
	cfg      *config.Config
	log      zerolog.Logger
	policies *engine.Engine
	surveys  *engine.Engine
}

// NewHandler creates the handler with one engine per document kind.
func NewHandler(store engine.Store, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		cfg:      cfg,
		log:      logger,
		policies: engine.MustNew(engine.KindPolicy),
		surveys:  engine.MustNew(engine.KindSurvey),
	}
}

// engineFor returns the engine handling the kind, for the per-kind routes.
func (h *Handler) engineFor(kind engine.Kind) *engine.Engine {
	if kind == engine.KindSurvey {
		return h.surveys
	}
	return h.policies
}

// =============================================================================
// DOCUMENT ENDPOINTS (kind-scoped)
// =============================================================================

// documentRoutes binds the shared document handlers to one kind.
type documentRoutes struct {
	h   *Handler
	eng *engine.Engine
}

// List returns the active documents of the kind with progress, optionally
// filtered to one department.
// GET /api/{kind}?department=
func (d documentRoutes) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	department := engine.DepartmentID(r.URL.Query().Get("department"))

	var dtos []DocumentDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		docs, err := tx.Documents().ListActive(ctx, d.eng.Kind())
		if err != nil {
			return err
		}
		dtos = make([]DocumentDTO, 0, len(docs))
		for _, doc := range docs {
			if department != "" && !doc.Relevance.Has(department) {
				continue
			}
			agg, err := d.eng.Aggregate(ctx, tx, doc.ID)
			if err != nil {
				return err
			}
			dtos = append(dtos, toDocumentDTO(doc, agg))
		}
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Create publishes a new document and seeds its ledger entries.
// POST /api/{kind}
func (d documentRoutes) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	relevance, ok := d.h.relevanceFrom(w, req.Departments)
	if !ok {
		return
	}

	doc := &engine.Document{
		ID:          engine.DocumentID(uuid.NewString()),
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Relevance:   relevance,
	}

	var dto DocumentDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		if err := d.eng.CreateDocument(ctx, tx, doc); err != nil {
			return err
		}
		agg, err := d.eng.Aggregate(ctx, tx, doc.ID)
		if err != nil {
			return err
		}
		dto = toDocumentDTO(doc, agg)
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// Get returns one document with progress.
// GET /api/{kind}/{id}
func (d documentRoutes) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.DocumentID(chi.URLParam(r, "id"))

	var dto DocumentDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		doc, err := tx.Documents().Get(ctx, d.eng.Kind(), id)
		if err != nil {
			return err
		}
		agg, err := d.eng.Aggregate(ctx, tx, id)
		if err != nil {
			return err
		}
		dto = toDocumentDTO(doc, agg)
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to load document", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Update patches a document. Any change resets acknowledgements; relevance
// changes reconcile the ledger against the new department set.
// PUT /api/{kind}/{id}
func (d documentRoutes) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.DocumentID(chi.URLParam(r, "id"))

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	patch := engine.DocumentPatch{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
	}
	if req.Departments != nil {
		relevance, ok := d.h.relevanceFrom(w, *req.Departments)
		if !ok {
			return
		}
		patch.Relevance = relevance
	}

	var dto DocumentDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		if err := d.eng.UpdateDocument(ctx, tx, id, patch); err != nil {
			return err
		}
		doc, err := tx.Documents().Get(ctx, d.eng.Kind(), id)
		if err != nil {
			return err
		}
		agg, err := d.eng.Aggregate(ctx, tx, id)
		if err != nil {
			return err
		}
		dto = toDocumentDTO(doc, agg)
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to update document", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Delete retires a document and its ledger entries.
// DELETE /api/{kind}/{id}
func (d documentRoutes) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.DocumentID(chi.URLParam(r, "id"))

	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		return d.eng.DeleteDocument(ctx, tx, id)
	})
	if err != nil {
		d.h.respondError(w, "failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Acknowledge records that an employee has read the document.
// POST /api/{kind}/{id}/acknowledge
func (d documentRoutes) Acknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.DocumentID(chi.URLParam(r, "id"))

	var req AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		return d.eng.Acknowledge(ctx, tx, engine.EmployeeID(req.EmployeeID), id)
	})
	if err != nil {
		d.h.respondError(w, "failed to record acknowledgement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Unacknowledged lists the employees still owing a read for the document.
// GET /api/{kind}/{id}/unacknowledged
func (d documentRoutes) Unacknowledged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.DocumentID(chi.URLParam(r, "id"))

	var dtos []EmployeeDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		ids, err := d.eng.UnacknowledgedEmployees(ctx, tx, id)
		if err != nil {
			return err
		}
		emps, err := tx.Employees().ByIDs(ctx, ids)
		if err != nil {
			return err
		}
		dtos = make([]EmployeeDTO, 0, len(emps))
		for _, emp := range emps {
			dtos = append(dtos, toEmployeeDTO(emp))
		}
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to list unacknowledged employees", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EmployeeDocuments lists the documents of the kind an employee has an
// active entry for, outstanding by default.
// GET /api/{kind}/employees/{employeeID}?acknowledged=true
func (d documentRoutes) EmployeeDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employee := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	acknowledged := r.URL.Query().Get("acknowledged") == "true"

	var dtos []DocumentDTO
	err := d.h.store.WithTx(ctx, func(tx engine.Tx) error {
		if _, err := tx.Employees().Get(ctx, employee); err != nil {
			return err
		}
		var ids []engine.DocumentID
		var err error
		if acknowledged {
			ids, err = d.eng.AcknowledgedDocuments(ctx, tx, employee)
		} else {
			ids, err = d.eng.OutstandingDocuments(ctx, tx, employee)
		}
		if err != nil {
			return err
		}
		dtos = make([]DocumentDTO, 0, len(ids))
		for _, id := range ids {
			doc, err := tx.Documents().Get(ctx, d.eng.Kind(), id)
			if err != nil {
				return err
			}
			agg, err := d.eng.Aggregate(ctx, tx, id)
			if err != nil {
				return err
			}
			dtos = append(dtos, toDocumentDTO(doc, agg))
		}
		return nil
	})
	if err != nil {
		d.h.respondError(w, "failed to list employee documents", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns the directory.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dtos []EmployeeDTO
	err := h.store.WithTx(ctx, func(tx engine.Tx) error {
		emps, err := tx.Employees().List(ctx)
		if err != nil {
			return err
		}
		dtos = make([]EmployeeDTO, 0, len(emps))
		for _, emp := range emps {
			dtos = append(dtos, toEmployeeDTO(emp))
		}
		return nil
	})
	if err != nil {
		h.respondError(w, "failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterEmployee creates a directory record and seeds ledger entries for
// every document relevant to the employee's department, both kinds.
// POST /api/employees
func (h *Handler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "first_name and last_name are required", nil)
		return
	}
	department := engine.DepartmentID(req.Department)
	if !h.cfg.KnownDepartment(department) {
		writeError(w, http.StatusBadRequest, "unknown department", nil)
		return
	}

	emp := &engine.Employee{
		ID:         engine.EmployeeID(uuid.NewString()),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: department,
		Active:     true,
	}

	err := h.store.WithTx(ctx, func(tx engine.Tx) error {
		if err := tx.Employees().Insert(ctx, emp); err != nil {
			return err
		}
		if err := h.policies.EmployeeRegistered(ctx, tx, emp.ID, department); err != nil {
			return err
		}
		return h.surveys.EmployeeRegistered(ctx, tx, emp.ID, department)
	})
	if err != nil {
		h.respondError(w, "failed to register employee", err)
		return
	}

	h.log.Info().Str("employee", string(emp.ID)).Str("department", req.Department).Msg("employee registered")
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns one directory record.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var dto EmployeeDTO
	err := h.store.WithTx(ctx, func(tx engine.Tx) error {
		emp, err := tx.Employees().Get(ctx, id)
		if err != nil {
			return err
		}
		dto = toEmployeeDTO(emp)
		return nil
	})
	if err != nil {
		h.respondError(w, "failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpdateEmployee patches contact details. Contact changes never touch the
// ledger.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	patch := engine.EmployeePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if patch.IsZero() {
		writeError(w, http.StatusBadRequest, "no fields to update", nil)
		return
	}

	dto, err := h.mutateEmployee(ctx, id, func(tx engine.Tx) error {
		return tx.Employees().UpdateContact(ctx, id, patch)
	})
	if err != nil {
		h.respondError(w, "failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ActivateEmployee reactivates an employee and restores their ledger slice,
// backfilling entries for documents published since deactivation.
// POST /api/employees/{id}/activate
func (h *Handler) ActivateEmployee(w http.ResponseWriter, r *http.Request) {
	h.setEmployeeStatus(w, r, true)
}

// DeactivateEmployee deactivates an employee and retires their ledger slice.
// POST /api/employees/{id}/deactivate
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	h.setEmployeeStatus(w, r, false)
}

func (h *Handler) setEmployeeStatus(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	dto, err := h.mutateEmployee(ctx, id, func(tx engine.Tx) error {
		emp, err := tx.Employees().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Employees().SetActive(ctx, id, active); err != nil {
			return err
		}
		for _, eng := range []*engine.Engine{h.policies, h.surveys} {
			if active {
				err = eng.EmployeeActivated(ctx, tx, id, emp.Department)
			} else {
				err = eng.EmployeeDeactivated(ctx, tx, id)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.respondError(w, "failed to change employee status", err)
		return
	}

	h.log.Info().Str("employee", string(id)).Bool("active", active).Msg("employee status changed")
	writeJSON(w, http.StatusOK, dto)
}

// ChangeDepartment moves an employee and rebuilds their ledger slice for the
// new department's documents.
// PUT /api/employees/{id}/department
func (h *Handler) ChangeDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req ChangeDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	department := engine.DepartmentID(req.Department)
	if !h.cfg.KnownDepartment(department) {
		writeError(w, http.StatusBadRequest, "unknown department", nil)
		return
	}

	dto, err := h.mutateEmployee(ctx, id, func(tx engine.Tx) error {
		if err := tx.Employees().SetDepartment(ctx, id, department); err != nil {
			return err
		}
		if err := h.policies.EmployeeDepartmentChanged(ctx, tx, id, department); err != nil {
			return err
		}
		return h.surveys.EmployeeDepartmentChanged(ctx, tx, id, department)
	})
	if err != nil {
		h.respondError(w, "failed to change department", err)
		return
	}

	h.log.Info().Str("employee", string(id)).Str("department", req.Department).Msg("employee moved")
	writeJSON(w, http.StatusOK, dto)
}

// mutateEmployee runs fn in a transaction and returns the fresh record.
func (h *Handler) mutateEmployee(ctx context.Context, id engine.EmployeeID, fn func(tx engine.Tx) error) (EmployeeDTO, error) {
	var dto EmployeeDTO
	err := h.store.WithTx(ctx, func(tx engine.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		emp, err := tx.Employees().Get(ctx, id)
		if err != nil {
			return err
		}
		dto = toEmployeeDTO(emp)
		return nil
	})
	return dto, err
}

// =============================================================================
// HELPERS
// =============================================================================

// relevanceFrom validates department names against the configured universe
// and converts them to a set. Writes the error response itself on failure.
func (h *Handler) relevanceFrom(w http.ResponseWriter, departments []string) (engine.RelevanceSet, bool) {
	set := engine.NewRelevanceSet()
	for _, d := range departments {
		id := engine.DepartmentID(d)
		if !h.cfg.KnownDepartment(id) {
			writeError(w, http.StatusBadRequest, "unknown department: "+d, nil)
			return nil, false
		}
		set[id] = struct{}{}
	}
	return set, true
}

// respondError maps domain errors to HTTP statuses.
func (h *Handler) respondError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
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
