package engine

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// ENGINE - Kind-scoped reconciliation operations
// =============================================================================

// Engine applies acknowledgement reconciliation for one document kind. It is
// stateless; every operation runs against the collaborators of the Tx it is
// handed, so two instances (policy and survey) can share one store.
type Engine struct {
	kind Kind
	now  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine for the given document kind.
func New(kind Kind, opts ...Option) (*Engine, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	e := &Engine{kind: kind, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MustNew is New for statically known kinds.
func MustNew(kind Kind, opts ...Option) *Engine {
	e, err := New(kind, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Kind returns the document kind this engine manages.
func (e *Engine) Kind() Kind {
	return e.kind
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

// CreateDocument stores a new document and seeds an unacknowledged ledger
// entry for every active employee in its relevance set. Employees whose
// departments are not in the set get no entry.
func (e *Engine) CreateDocument(ctx context.Context, tx Tx, doc *Document) error {
	if doc.ID == "" {
		return &ValidationError{Field: "document id", Reason: "must not be empty"}
	}
	if doc.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	doc.Kind = e.kind
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = e.now()
	}
	if err := tx.Documents().Insert(ctx, doc); err != nil {
		return storagef("insert document", err)
	}
	return e.seedEntries(ctx, tx, doc.ID, doc.Relevance.IDs())
}

// UpdateDocument applies a patch to a document and reconciles the ledger.
// Every update, whatever fields it touches, resets the acknowledgement flag
// on every entry, retired ones included: a changed document must be read
// again, even by an employee whose entry is restored later. When the
// relevance set changed, entries are seeded for employees of newly added
// departments and soft-deleted for employees of removed ones.
func (e *Engine) UpdateDocument(ctx context.Context, tx Tx, id DocumentID, patch DocumentPatch) error {
	if patch.IsZero() {
		return &ValidationError{Field: "patch", Reason: "must change at least one field"}
	}
	oldRelevance, err := tx.Documents().Update(ctx, e.kind, id, patch)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return err
		}
		return storagef("update document", err)
	}
	if err := tx.Ledger().ResetAcknowledgement(ctx, e.kind, id); err != nil {
		return storagef("reset acknowledgement", err)
	}
	if patch.Relevance == nil {
		return nil
	}

	added, removed := oldRelevance.Diff(patch.Relevance)

	if len(removed) > 0 {
		members, err := tx.Membership().ResolveEmployees(ctx, removed, false)
		if err != nil {
			return storagef("resolve removed departments", err)
		}
		var errs []error
		for _, m := range members {
			if err := tx.Ledger().SoftDelete(ctx, e.kind, ForPair(m.EmployeeID, id)); err != nil {
				errs = append(errs, storagef("retire entry", err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	if len(added) > 0 {
		if err := e.seedEntries(ctx, tx, id, added); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument soft-deletes a document and every ledger entry pointing at
// it. Acknowledgement flags on the retired entries are preserved.
func (e *Engine) DeleteDocument(ctx context.Context, tx Tx, id DocumentID) error {
	if err := tx.Documents().SoftDelete(ctx, e.kind, id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return err
		}
		return storagef("delete document", err)
	}
	if err := tx.Ledger().SoftDelete(ctx, e.kind, ForDocument(id)); err != nil {
		return storagef("retire entries", err)
	}
	return nil
}

// Acknowledge records that an employee has read a document. The operation is
// idempotent; acknowledging twice is not an error.
func (e *Engine) Acknowledge(ctx context.Context, tx Tx, employee EmployeeID, document DocumentID) error {
	err := tx.Ledger().Acknowledge(ctx, e.kind, employee, document)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return err
		}
		return storagef("acknowledge", err)
	}
	return nil
}

// =============================================================================
// EMPLOYEE LIFECYCLE
// =============================================================================

// EmployeeRegistered seeds unacknowledged entries for every document of the
// engine's kind relevant to the employee's department.
func (e *Engine) EmployeeRegistered(ctx context.Context, tx Tx, employee EmployeeID, department DepartmentID) error {
	return e.seedForEmployee(ctx, tx, employee, department)
}

// EmployeeDeactivated soft-deletes every entry for the employee, preserving
// acknowledgement flags so reactivation restores them intact.
func (e *Engine) EmployeeDeactivated(ctx context.Context, tx Tx, employee EmployeeID) error {
	if err := tx.Ledger().SoftDelete(ctx, e.kind, ForEmployee(employee)); err != nil {
		return storagef("retire employee entries", err)
	}
	return nil
}

// EmployeeActivated restores the employee's retired entries with their
// acknowledgement flags intact, then seeds entries for documents of the
// employee's current department that gained relevance while the employee
// was inactive.
func (e *Engine) EmployeeActivated(ctx context.Context, tx Tx, employee EmployeeID, department DepartmentID) error {
	if err := tx.Ledger().Restore(ctx, e.kind, ForEmployee(employee)); err != nil {
		return storagef("restore employee entries", err)
	}
	return e.seedForEmployee(ctx, tx, employee, department)
}

// EmployeeDepartmentChanged rebuilds the employee's slice of the ledger for
// the new department: every existing entry is retired and fresh
// unacknowledged entries are seeded for the new department's documents.
// Moving back to a former department owes fresh acknowledgements; nothing
// carries over.
func (e *Engine) EmployeeDepartmentChanged(ctx context.Context, tx Tx, employee EmployeeID, newDepartment DepartmentID) error {
	if err := tx.Ledger().SoftDelete(ctx, e.kind, ForEmployee(employee)); err != nil {
		return storagef("retire employee entries", err)
	}
	return e.seedForEmployee(ctx, tx, employee, newDepartment)
}

// =============================================================================
// QUERIES
// =============================================================================

// OutstandingDocuments lists the documents the employee has an active,
// unacknowledged entry for.
func (e *Engine) OutstandingDocuments(ctx context.Context, tx Tx, employee EmployeeID) ([]DocumentID, error) {
	ids, err := tx.Ledger().DocumentIDs(ctx, e.kind, employee, false)
	if err != nil {
		return nil, storagef("list outstanding documents", err)
	}
	return ids, nil
}

// AcknowledgedDocuments lists the documents the employee has an active,
// acknowledged entry for.
func (e *Engine) AcknowledgedDocuments(ctx context.Context, tx Tx, employee EmployeeID) ([]DocumentID, error) {
	ids, err := tx.Ledger().DocumentIDs(ctx, e.kind, employee, true)
	if err != nil {
		return nil, storagef("list acknowledged documents", err)
	}
	return ids, nil
}

// UnacknowledgedEmployees lists the employees who still owe an
// acknowledgement for the document.
func (e *Engine) UnacknowledgedEmployees(ctx context.Context, tx Tx, document DocumentID) ([]EmployeeID, error) {
	if _, err := tx.Documents().Get(ctx, e.kind, document); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, storagef("load document", err)
	}
	ids, err := tx.Ledger().UnacknowledgedEmployeeIDs(ctx, e.kind, document)
	if err != nil {
		return nil, storagef("list unacknowledged employees", err)
	}
	return ids, nil
}

// =============================================================================
// SEEDING
// =============================================================================

// seedEntries upserts an active entry for every active employee of the given
// departments against one document. Each member runs to completion; failures
// are collected and returned joined so one bad row does not silently skip
// the rest.
func (e *Engine) seedEntries(ctx context.Context, tx Tx, document DocumentID, departments []DepartmentID) error {
	if len(departments) == 0 {
		return nil
	}
	members, err := tx.Membership().ResolveEmployees(ctx, departments, true)
	if err != nil {
		return storagef("resolve departments", err)
	}
	var errs []error
	for _, m := range members {
		if err := tx.Ledger().UpsertActive(ctx, e.kind, m.EmployeeID, document); err != nil {
			errs = append(errs, storagef("seed entry", err))
		}
	}
	return errors.Join(errs...)
}

// seedForEmployee upserts an active entry for every document of the engine's
// kind relevant to the department.
func (e *Engine) seedForEmployee(ctx context.Context, tx Tx, employee EmployeeID, department DepartmentID) error {
	docs, err := tx.Documents().IDsByDepartment(ctx, e.kind, department)
	if err != nil {
		return storagef("list department documents", err)
	}
	var errs []error
	for _, id := range docs {
		if err := tx.Ledger().UpsertActive(ctx, e.kind, employee, id); err != nil {
			errs = append(errs, storagef("seed entry", err))
		}
	}
	return errors.Join(errs...)
}
