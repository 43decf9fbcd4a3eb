/*
Package engine provides the acknowledgement reconciliation engine.

PURPOSE:
  This package contains the domain-agnostic types and algorithms that keep a
  per-employee, per-document acknowledgement ledger consistent as documents
  are published, relevance sets change, and employees move between
  departments or in and out of active status. Whether the document is a
  company policy or a survey, the same engine computes and applies the
  ledger mutations.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: the document kind tag (policy, survey) that scopes every operation
  - Document: a published item with a relevance set of departments
  - RelevanceSet: which departments owe an acknowledgement for a document
  - Employee/Member: the people side of the ledger
  - EntryFilter: the predicate used for bulk soft-delete/restore

DESIGN PRINCIPLES:
  1. One engine, many kinds: the kind tag is the only per-kind detail
  2. Type safety: strong typing for IDs prevents mixing employee/document IDs
  3. Soft delete: ledger rows are flagged, never removed, preserving history
  4. Transaction scoping: every operation runs inside a caller-supplied Tx

SEE ALSO:
  - store.go: collaborator interfaces (Ledger, Documents, MembershipResolver)
  - engine.go: reconciliation operations
  - aggregate.go: dashboard aggregation
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// DOCUMENT KIND - The single per-kind detail of the generic engine
// =============================================================================

// Kind identifies which class of document an engine instance manages.
// Two engine instances exist in the portal, one per kind; everything else
// about them is shared.
type Kind string

const (
	KindPolicy Kind = "policy"
	KindSurvey Kind = "survey"
)

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	return k == KindPolicy || k == KindSurvey
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DocumentID string
type DepartmentID string

// =============================================================================
// RELEVANCE SET - Departments that owe an acknowledgement for a document
// =============================================================================

// RelevanceSet is the set of departments a document is relevant to. The
// department universe is arbitrary; membership is what matters.
type RelevanceSet map[DepartmentID]struct{}

// NewRelevanceSet builds a set from department identifiers.
func NewRelevanceSet(ids ...DepartmentID) RelevanceSet {
	s := make(RelevanceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s RelevanceSet) Has(id DepartmentID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the member departments in a stable order.
func (s RelevanceSet) IDs() []DepartmentID {
	ids := make([]DepartmentID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Diff computes the departments added and removed going from s to next.
// Departments present in both sets appear in neither result.
func (s RelevanceSet) Diff(next RelevanceSet) (added, removed []DepartmentID) {
	for _, id := range next.IDs() {
		if !s.Has(id) {
			added = append(added, id)
		}
	}
	for _, id := range s.IDs() {
		if !next.Has(id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// Clone returns an independent copy of the set.
func (s RelevanceSet) Clone() RelevanceSet {
	c := make(RelevanceSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// =============================================================================
// DOCUMENT - A policy or survey requiring acknowledgement
// =============================================================================

// Document is a published item that employees in its relevance set must
// acknowledge. The catalog side (title, url, soft delete) is owned by the
// document store; the engine reads the relevance set when it changes.
type Document struct {
	ID          DocumentID
	Kind        Kind
	Title       string
	Description string
	URL         string
	CreatedAt   time.Time
	Relevance   RelevanceSet
	Deleted     bool
}

// DocumentPatch describes a partial update to a document. Nil fields are
// left unchanged; a nil Relevance means the relevance set did not change.
type DocumentPatch struct {
	Title       *string
	Description *string
	URL         *string
	Relevance   RelevanceSet
}

// IsZero reports whether the patch changes nothing.
func (p DocumentPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.URL == nil && p.Relevance == nil
}

// =============================================================================
// EMPLOYEE - Lifecycle owned by the user-management side
// =============================================================================

// Employee is the engine's view of an employee record. The engine reacts to
// activation, deactivation, and department changes; it does not own the record.
type Employee struct {
	ID         EmployeeID
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Department DepartmentID
	Active     bool
	CreatedAt  time.Time
}

// EmployeePatch describes a non-critical update (contact details only).
type EmployeePatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

func (p EmployeePatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil
}

// Member is one employee resolved from a department set.
type Member struct {
	EmployeeID   EmployeeID
	DepartmentID DepartmentID
}

// =============================================================================
// LEDGER ENTRY - The core entity
// =============================================================================

// Entry is one acknowledgement ledger row. Identity is the
// (kind, employee, document) triple; at most one row exists per triple.
type Entry struct {
	Kind         Kind
	EmployeeID   EmployeeID
	DocumentID   DocumentID
	Acknowledged bool
	Deleted      bool
}

// EntryFilter scopes a bulk soft-delete or restore. At least one of the
// fields must be set; a nil field matches every value.
type EntryFilter struct {
	Employee *EmployeeID
	Document *DocumentID
}

// Matches reports whether an entry falls under the filter.
func (f EntryFilter) Matches(e Entry) bool {
	if f.Employee != nil && e.EmployeeID != *f.Employee {
		return false
	}
	if f.Document != nil && e.DocumentID != *f.Document {
		return false
	}
	return true
}

// Empty reports whether the filter would match every entry of a kind.
func (f EntryFilter) Empty() bool {
	return f.Employee == nil && f.Document == nil
}

// ForEmployee returns a filter scoped to one employee across all documents.
func ForEmployee(id EmployeeID) EntryFilter {
	return EntryFilter{Employee: &id}
}

// ForDocument returns a filter scoped to one document across all employees.
func ForDocument(id DocumentID) EntryFilter {
	return EntryFilter{Document: &id}
}

// ForPair returns a filter scoped to a single ledger entry.
func ForPair(employee EmployeeID, document DocumentID) EntryFilter {
	return EntryFilter{Employee: &employee, Document: &document}
}
