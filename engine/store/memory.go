// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/garnet/ack-portal/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the whole portal state in maps. All access goes through
// WithTx; transactions are simulated with a snapshot restored on error.
type Memory struct {
	mu        sync.Mutex
	entries   map[entryKey]engine.Entry
	documents map[docKey]*engine.Document
	employees map[engine.EmployeeID]*engine.Employee
}

type entryKey struct {
	Kind     engine.Kind
	Employee engine.EmployeeID
	Document engine.DocumentID
}

type docKey struct {
	Kind engine.Kind
	ID   engine.DocumentID
}

func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[entryKey]engine.Entry),
		documents: make(map[docKey]*engine.Document),
		employees: make(map[engine.EmployeeID]*engine.Employee),
	}
}

// WithTx executes fn under the store lock. On error the pre-transaction
// snapshot is restored, so fn sees commit-or-rollback semantics.
func (m *Memory) WithTx(_ context.Context, fn func(engine.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	entries   map[entryKey]engine.Entry
	documents map[docKey]*engine.Document
	employees map[engine.EmployeeID]*engine.Employee
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		entries:   make(map[entryKey]engine.Entry, len(m.entries)),
		documents: make(map[docKey]*engine.Document, len(m.documents)),
		employees: make(map[engine.EmployeeID]*engine.Employee, len(m.employees)),
	}
	for k, v := range m.entries {
		s.entries[k] = v
	}
	for k, v := range m.documents {
		cp := *v
		cp.Relevance = v.Relevance.Clone()
		s.documents[k] = &cp
	}
	for k, v := range m.employees {
		cp := *v
		s.employees[k] = &cp
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.entries = s.entries
	m.documents = s.documents
	m.employees = s.employees
}

// =============================================================================
// TRANSACTION VIEW
// =============================================================================

// memTx is the transactional view handed to engine operations. The store
// lock is already held; the collaborator views mutate the parent maps
// directly.
type memTx struct {
	m *Memory
}

func (t *memTx) Ledger() engine.Ledger                 { return memLedger{t.m} }
func (t *memTx) Documents() engine.Documents           { return memDocuments{t.m} }
func (t *memTx) Employees() engine.Employees           { return memEmployees{t.m} }
func (t *memTx) Membership() engine.MembershipResolver { return memMembership{t.m} }

// =============================================================================
// LEDGER VIEW
// =============================================================================

type memLedger struct {
	m *Memory
}

func (l memLedger) UpsertActive(_ context.Context, kind engine.Kind, employee engine.EmployeeID, document engine.DocumentID) error {
	k := entryKey{Kind: kind, Employee: employee, Document: document}
	e, ok := l.m.entries[k]
	if !ok {
		l.m.entries[k] = engine.Entry{Kind: kind, EmployeeID: employee, DocumentID: document}
		return nil
	}
	if e.Deleted {
		// A retired entry coming back into scope owes a fresh read.
		e.Deleted = false
		e.Acknowledged = false
		l.m.entries[k] = e
	}
	return nil
}

func (l memLedger) SoftDelete(_ context.Context, kind engine.Kind, filter engine.EntryFilter) error {
	if filter.Empty() {
		return engine.ErrEmptyFilter
	}
	for k, e := range l.m.entries {
		if k.Kind == kind && filter.Matches(e) {
			e.Deleted = true
			l.m.entries[k] = e
		}
	}
	return nil
}

func (l memLedger) Restore(_ context.Context, kind engine.Kind, filter engine.EntryFilter) error {
	if filter.Empty() {
		return engine.ErrEmptyFilter
	}
	for k, e := range l.m.entries {
		if k.Kind == kind && filter.Matches(e) {
			e.Deleted = false
			l.m.entries[k] = e
		}
	}
	return nil
}

func (l memLedger) ResetAcknowledgement(_ context.Context, kind engine.Kind, document engine.DocumentID) error {
	for k, e := range l.m.entries {
		if k.Kind == kind && k.Document == document {
			e.Acknowledged = false
			l.m.entries[k] = e
		}
	}
	return nil
}

func (l memLedger) Acknowledge(_ context.Context, kind engine.Kind, employee engine.EmployeeID, document engine.DocumentID) error {
	k := entryKey{Kind: kind, Employee: employee, Document: document}
	e, ok := l.m.entries[k]
	if !ok || e.Deleted {
		return engine.ErrEntryNotFound
	}
	e.Acknowledged = true
	l.m.entries[k] = e
	return nil
}

func (l memLedger) DocumentIDs(_ context.Context, kind engine.Kind, employee engine.EmployeeID, acknowledged bool) ([]engine.DocumentID, error) {
	var ids []engine.DocumentID
	for k, e := range l.m.entries {
		if k.Kind == kind && k.Employee == employee && !e.Deleted && e.Acknowledged == acknowledged {
			ids = append(ids, k.Document)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (l memLedger) UnacknowledgedEmployeeIDs(_ context.Context, kind engine.Kind, document engine.DocumentID) ([]engine.EmployeeID, error) {
	var ids []engine.EmployeeID
	for k, e := range l.m.entries {
		if k.Kind == kind && k.Document == document && !e.Deleted && !e.Acknowledged {
			ids = append(ids, k.Employee)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (l memLedger) CountActive(_ context.Context, kind engine.Kind, document engine.DocumentID) (int, error) {
	n := 0
	for k, e := range l.m.entries {
		if k.Kind == kind && k.Document == document && !e.Deleted {
			n++
		}
	}
	return n, nil
}

func (l memLedger) CountActiveAcknowledged(_ context.Context, kind engine.Kind, document engine.DocumentID) (int, error) {
	n := 0
	for k, e := range l.m.entries {
		if k.Kind == kind && k.Document == document && !e.Deleted && e.Acknowledged {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// DOCUMENT VIEW
// =============================================================================

type memDocuments struct {
	m *Memory
}

func (d memDocuments) Insert(_ context.Context, doc *engine.Document) error {
	cp := *doc
	cp.Relevance = doc.Relevance.Clone()
	d.m.documents[docKey{Kind: doc.Kind, ID: doc.ID}] = &cp
	return nil
}

func (d memDocuments) Update(_ context.Context, kind engine.Kind, id engine.DocumentID, patch engine.DocumentPatch) (engine.RelevanceSet, error) {
	doc, ok := d.m.documents[docKey{Kind: kind, ID: id}]
	if !ok || doc.Deleted {
		return nil, engine.ErrDocumentNotFound
	}
	old := doc.Relevance.Clone()
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	if patch.URL != nil {
		doc.URL = *patch.URL
	}
	if patch.Relevance != nil {
		doc.Relevance = patch.Relevance.Clone()
	}
	return old, nil
}

func (d memDocuments) SoftDelete(_ context.Context, kind engine.Kind, id engine.DocumentID) error {
	doc, ok := d.m.documents[docKey{Kind: kind, ID: id}]
	if !ok || doc.Deleted {
		return engine.ErrDocumentNotFound
	}
	doc.Deleted = true
	return nil
}

func (d memDocuments) Get(_ context.Context, kind engine.Kind, id engine.DocumentID) (*engine.Document, error) {
	doc, ok := d.m.documents[docKey{Kind: kind, ID: id}]
	if !ok || doc.Deleted {
		return nil, engine.ErrDocumentNotFound
	}
	cp := *doc
	cp.Relevance = doc.Relevance.Clone()
	return &cp, nil
}

func (d memDocuments) ListActive(_ context.Context, kind engine.Kind) ([]*engine.Document, error) {
	var docs []*engine.Document
	for k, doc := range d.m.documents {
		if k.Kind == kind && !doc.Deleted {
			cp := *doc
			cp.Relevance = doc.Relevance.Clone()
			docs = append(docs, &cp)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (d memDocuments) IDsByDepartment(_ context.Context, kind engine.Kind, department engine.DepartmentID) ([]engine.DocumentID, error) {
	var ids []engine.DocumentID
	for k, doc := range d.m.documents {
		if k.Kind == kind && !doc.Deleted && doc.Relevance.Has(department) {
			ids = append(ids, k.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// =============================================================================
// EMPLOYEE VIEW
// =============================================================================

type memEmployees struct {
	m *Memory
}

func (s memEmployees) Insert(_ context.Context, emp *engine.Employee) error {
	cp := *emp
	s.m.employees[emp.ID] = &cp
	return nil
}

func (s memEmployees) Get(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	e, ok := s.m.employees[id]
	if !ok {
		return nil, engine.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (s memEmployees) List(_ context.Context) ([]*engine.Employee, error) {
	var emps []*engine.Employee
	for _, e := range s.m.employees {
		cp := *e
		emps = append(emps, &cp)
	}
	sort.Slice(emps, func(i, j int) bool {
		if !emps[i].CreatedAt.Equal(emps[j].CreatedAt) {
			return emps[i].CreatedAt.Before(emps[j].CreatedAt)
		}
		return emps[i].ID < emps[j].ID
	})
	return emps, nil
}

func (s memEmployees) ByIDs(_ context.Context, ids []engine.EmployeeID) ([]*engine.Employee, error) {
	var emps []*engine.Employee
	for _, id := range ids {
		if e, ok := s.m.employees[id]; ok {
			cp := *e
			emps = append(emps, &cp)
		}
	}
	return emps, nil
}

func (s memEmployees) SetActive(_ context.Context, id engine.EmployeeID, active bool) error {
	e, ok := s.m.employees[id]
	if !ok {
		return engine.ErrEmployeeNotFound
	}
	e.Active = active
	return nil
}

func (s memEmployees) SetDepartment(_ context.Context, id engine.EmployeeID, department engine.DepartmentID) error {
	e, ok := s.m.employees[id]
	if !ok {
		return engine.ErrEmployeeNotFound
	}
	e.Department = department
	return nil
}

func (s memEmployees) UpdateContact(_ context.Context, id engine.EmployeeID, patch engine.EmployeePatch) error {
	e, ok := s.m.employees[id]
	if !ok {
		return engine.ErrEmployeeNotFound
	}
	if patch.FirstName != nil {
		e.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		e.LastName = *patch.LastName
	}
	if patch.Email != nil {
		e.Email = *patch.Email
	}
	if patch.Phone != nil {
		e.Phone = *patch.Phone
	}
	return nil
}

// =============================================================================
// MEMBERSHIP VIEW
// =============================================================================

type memMembership struct {
	m *Memory
}

func (r memMembership) ResolveEmployees(_ context.Context, departments []engine.DepartmentID, activeOnly bool) ([]engine.Member, error) {
	want := engine.NewRelevanceSet(departments...)
	var members []engine.Member
	for _, e := range r.m.employees {
		if !want.Has(e.Department) {
			continue
		}
		if activeOnly && !e.Active {
			continue
		}
		members = append(members, engine.Member{EmployeeID: e.ID, DepartmentID: e.Department})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].EmployeeID < members[j].EmployeeID })
	return members, nil
}
