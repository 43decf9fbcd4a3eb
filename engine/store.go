package engine

import "context"

// =============================================================================
// STORE COLLABORATOR INTERFACES
// =============================================================================
//
// The engine never talks to a database directly. Each reconciliation
// operation receives a Tx whose collaborators are all scoped to the same
// underlying transaction, so a failed reconciliation leaves no partial
// ledger state behind.

// Ledger is the acknowledgement ledger. Identity of a row is the
// (kind, employee, document) triple and every mutation is idempotent.
type Ledger interface {
	// UpsertActive ensures an active entry exists for the triple. A missing
	// row is created unacknowledged. An existing active row is left exactly
	// as it is, acknowledged or not. An existing soft-deleted row is
	// reactivated with its acknowledgement reset, because a deleted entry
	// coming back into scope owes a fresh acknowledgement.
	UpsertActive(ctx context.Context, kind Kind, employee EmployeeID, document DocumentID) error

	// SoftDelete flags every entry of the kind matching the filter as
	// deleted. Acknowledgement flags are preserved. Matching zero entries
	// is not an error.
	SoftDelete(ctx context.Context, kind Kind, filter EntryFilter) error

	// Restore clears the deleted flag on every entry of the kind matching
	// the filter, preserving acknowledgement flags.
	Restore(ctx context.Context, kind Kind, filter EntryFilter) error

	// ResetAcknowledgement clears the acknowledged flag on every entry for
	// the document, deleted entries included, so a retired row restored
	// later cannot carry an acknowledgement that predates the last change.
	ResetAcknowledgement(ctx context.Context, kind Kind, document DocumentID) error

	// Acknowledge marks the active entry for the triple as acknowledged.
	// Returns ErrEntryNotFound when no active entry exists. Acknowledging
	// an already-acknowledged entry succeeds without effect.
	Acknowledge(ctx context.Context, kind Kind, employee EmployeeID, document DocumentID) error

	// DocumentIDs lists the documents with an active entry for the employee,
	// filtered by acknowledgement state.
	DocumentIDs(ctx context.Context, kind Kind, employee EmployeeID, acknowledged bool) ([]DocumentID, error)

	// UnacknowledgedEmployeeIDs lists the employees with an active,
	// unacknowledged entry for the document.
	UnacknowledgedEmployeeIDs(ctx context.Context, kind Kind, document DocumentID) ([]EmployeeID, error)

	// CountActive counts the active entries for the document.
	CountActive(ctx context.Context, kind Kind, document DocumentID) (int, error)

	// CountActiveAcknowledged counts the active, acknowledged entries for
	// the document.
	CountActiveAcknowledged(ctx context.Context, kind Kind, document DocumentID) (int, error)
}

// Documents is the document catalog for one or more kinds.
type Documents interface {
	// Insert stores a new document. CreatedAt is assigned by the store if
	// the caller left it zero.
	Insert(ctx context.Context, doc *Document) error

	// Update applies a patch to an active document and returns the
	// relevance set the document had before the patch, which the engine
	// diffs against the new set. Returns ErrDocumentNotFound when the
	// document does not exist or is soft-deleted.
	Update(ctx context.Context, kind Kind, id DocumentID, patch DocumentPatch) (RelevanceSet, error)

	// SoftDelete flags a document as deleted. Returns ErrDocumentNotFound
	// when there is no active document with the ID.
	SoftDelete(ctx context.Context, kind Kind, id DocumentID) error

	// Get returns the active document with the ID.
	Get(ctx context.Context, kind Kind, id DocumentID) (*Document, error)

	// ListActive lists active documents of the kind, oldest first.
	ListActive(ctx context.Context, kind Kind) ([]*Document, error)

	// IDsByDepartment lists the active documents of the kind whose
	// relevance set contains the department.
	IDsByDepartment(ctx context.Context, kind Kind, department DepartmentID) ([]DocumentID, error)
}

// Employees is the employee directory. The engine reacts to lifecycle
// changes recorded here; the portal's user-management handlers own the
// records.
type Employees interface {
	// Insert stores a new employee record.
	Insert(ctx context.Context, emp *Employee) error

	// Get returns the employee with the ID, active or not.
	Get(ctx context.Context, id EmployeeID) (*Employee, error)

	// List lists every employee, oldest first.
	List(ctx context.Context) ([]*Employee, error)

	// ByIDs returns the employees with the given IDs, preserving order.
	// Unknown IDs are skipped.
	ByIDs(ctx context.Context, ids []EmployeeID) ([]*Employee, error)

	// SetActive flips the employee's active flag. Returns
	// ErrEmployeeNotFound for unknown IDs.
	SetActive(ctx context.Context, id EmployeeID, active bool) error

	// SetDepartment moves the employee to another department.
	SetDepartment(ctx context.Context, id EmployeeID, department DepartmentID) error

	// UpdateContact applies a contact-detail patch.
	UpdateContact(ctx context.Context, id EmployeeID, patch EmployeePatch) error
}

// MembershipResolver resolves department sets to employees. When activeOnly
// is true only active employees are returned; otherwise every employee whose
// department is in the set is returned regardless of status.
type MembershipResolver interface {
	ResolveEmployees(ctx context.Context, departments []DepartmentID, activeOnly bool) ([]Member, error)
}

// Tx bundles the collaborators over one transaction. Implementations scope
// all of them to the same underlying unit of work.
type Tx interface {
	Ledger() Ledger
	Documents() Documents
	Employees() Employees
	Membership() MembershipResolver
}

// Store opens transactions. fn runs inside one transaction; returning an
// error rolls every mutation back.
type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
}
