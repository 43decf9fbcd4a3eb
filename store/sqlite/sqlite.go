/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (engine.Store and its transaction
  collaborators) using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  engine.Store:              Transaction scoping (WithTx)
  engine.Ledger:             The acknowledgement ledger
  engine.Documents:          The document catalog (policies and surveys)
  engine.Employees:          The employee directory
  engine.MembershipResolver: Department-to-employee resolution

SOFT DELETE ENFORCEMENT:
  Ledger rows and documents are never removed:
  - No DELETE statements on acknowledgements or documents
  - Retirement flips the deleted flag; history stays queryable
  - Reads filter on deleted = 0

KEY TABLES:
  documents:            Document catalog, kind-scoped, soft-deleted
  document_departments: Relevance sets (which departments owe a read)
  employees:            Directory records with department and active flag
  acknowledgements:     The ledger; one row per (kind, employee, document)

INDEXES:
  - idx_acknowledgements_document: per-document counts and rosters (hot path)
  - idx_document_departments_dept: relevance lookups on employee events
  - idx_employees_department:      membership resolution

CONCURRENCY:
  Uses sync.Mutex around transactions. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/portal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.WithTx(ctx, func(tx engine.Tx) error {
      return policies.CreateDocument(ctx, tx, doc)
  })

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/engine.go: Reconciliation operations using these interfaces
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/garnet/ack-portal/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
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
	-- Document catalog (policies and surveys share the table, kind-scoped)
	CREATE TABLE IF NOT EXISTS documents (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (kind, id)
	);

	-- Relevance sets: which departments owe an acknowledgement
	CREATE TABLE IF NOT EXISTS document_departments (
		kind TEXT NOT NULL,
		document_id TEXT NOT NULL,
		department_id TEXT NOT NULL,
		PRIMARY KEY (kind, document_id, department_id)
	);

	CREATE INDEX IF NOT EXISTS idx_document_departments_dept
		ON document_departments(kind, department_id);

	-- Employee directory
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_department
		ON employees(department_id);

	-- The acknowledgement ledger. One row per (kind, employee, document);
	-- rows are retired via the deleted flag, never removed.
	CREATE TABLE IF NOT EXISTS acknowledgements (
		kind TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		acknowledged INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (kind, employee_id, document_id)
	);

	-- Per-document counts and rosters (hot path for the dashboard)
	CREATE INDEX IF NOT EXISTS idx_acknowledgements_document
		ON acknowledgements(kind, document_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION SCOPING (engine.Store interface)
// =============================================================================

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the statement helpers
// below work inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(engine.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&storeTx{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type storeTx struct {
	db dbtx
}

func (t *storeTx) Ledger() engine.Ledger                 { return ledgerView{t.db} }
func (t *storeTx) Documents() engine.Documents           { return documentView{t.db} }
func (t *storeTx) Employees() engine.Employees           { return employeeView{t.db} }
func (t *storeTx) Membership() engine.MembershipResolver { return membershipView{t.db} }

// =============================================================================
// LEDGER (engine.Ledger interface)
// =============================================================================

type ledgerView struct {
	db dbtx
}

// UpsertActive resurrects a retired row with its acknowledgement cleared; an
// already-active row keeps whatever acknowledgement it has.
func (v ledgerView) UpsertActive(ctx context.Context, kind engine.Kind, employee engine.EmployeeID, document engine.DocumentID) error {
	query := `
		INSERT INTO acknowledgements (kind, employee_id, document_id, acknowledged, deleted)
		VALUES (?, ?, ?, 0, 0)
		ON CONFLICT(kind, employee_id, document_id) DO UPDATE SET
			acknowledged = CASE WHEN acknowledgements.deleted = 1 THEN 0 ELSE acknowledgements.acknowledged END,
			deleted = 0
	`
	_, err := v.db.ExecContext(ctx, query, kind, employee, document)
	if err != nil {
		return fmt.Errorf("failed to upsert acknowledgement: %w", err)
	}
	return nil
}

func (v ledgerView) SoftDelete(ctx context.Context, kind engine.Kind, filter engine.EntryFilter) error {
	return v.setDeleted(ctx, kind, filter, 1)
}

func (v ledgerView) Restore(ctx context.Context, kind engine.Kind, filter engine.EntryFilter) error {
	return v.setDeleted(ctx, kind, filter, 0)
}

func (v ledgerView) setDeleted(ctx context.Context, kind engine.Kind, filter engine.EntryFilter, deleted int) error {
	if filter.Empty() {
		return engine.ErrEmptyFilter
	}
	where, args := filterClause(kind, filter)
	query := fmt.Sprintf("UPDATE acknowledgements SET deleted = %d WHERE %s", deleted, where)
	if _, err := v.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to flag acknowledgements: %w", err)
	}
	return nil
}

func (v ledgerView) ResetAcknowledgement(ctx context.Context, kind engine.Kind, document engine.DocumentID) error {
	query := `
		UPDATE acknowledgements SET acknowledged = 0
		WHERE kind = ? AND document_id = ?
	`
	_, err := v.db.ExecContext(ctx, query, kind, document)
	if err != nil {
		return fmt.Errorf("failed to reset acknowledgements: %w", err)
	}
	return nil
}

func (v ledgerView) Acknowledge(ctx context.Context, kind engine.Kind, employee engine.EmployeeID, document engine.DocumentID) error {
	query := `
		UPDATE acknowledgements SET acknowledged = 1
		WHERE kind = ? AND employee_id = ? AND document_id = ? AND deleted = 0
	`
	res, err := v.db.ExecContext(ctx, query, kind, employee, document)
	if err != nil {
		return fmt.Errorf("failed to record acknowledgement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrEntryNotFound
	}
	return nil
}

func (v ledgerView) DocumentIDs(ctx context.Context, kind engine.Kind, employee engine.EmployeeID, acknowledged bool) ([]engine.DocumentID, error) {
	query := `
		SELECT document_id FROM acknowledgements
		WHERE kind = ? AND employee_id = ? AND deleted = 0 AND acknowledged = ?
		ORDER BY document_id
	`
	rows, err := v.db.QueryContext(ctx, query, kind, employee, acknowledged)
	if err != nil {
		return nil, fmt.Errorf("failed to query acknowledgements: %w", err)
	}
	defer rows.Close()

	var ids []engine.DocumentID
	for rows.Next() {
		var id engine.DocumentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (v ledgerView) UnacknowledgedEmployeeIDs(ctx context.Context, kind engine.Kind, document engine.DocumentID) ([]engine.EmployeeID, error) {
	query := `
		SELECT employee_id FROM acknowledgements
		WHERE kind = ? AND document_id = ? AND deleted = 0 AND acknowledged = 0
		ORDER BY employee_id
	`
	rows, err := v.db.QueryContext(ctx, query, kind, document)
	if err != nil {
		return nil, fmt.Errorf("failed to query acknowledgements: %w", err)
	}
	defer rows.Close()

	var ids []engine.EmployeeID
	for rows.Next() {
		var id engine.EmployeeID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (v ledgerView) CountActive(ctx context.Context, kind engine.Kind, document engine.DocumentID) (int, error) {
	return v.count(ctx,
		"SELECT COUNT(*) FROM acknowledgements WHERE kind = ? AND document_id = ? AND deleted = 0",
		kind, document)
}

func (v ledgerView) CountActiveAcknowledged(ctx context.Context, kind engine.Kind, document engine.DocumentID) (int, error) {
	return v.count(ctx,
		"SELECT COUNT(*) FROM acknowledgements WHERE kind = ? AND document_id = ? AND deleted = 0 AND acknowledged = 1",
		kind, document)
}

func (v ledgerView) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := v.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count acknowledgements: %w", err)
	}
	return n, nil
}

func filterClause(kind engine.Kind, filter engine.EntryFilter) (string, []any) {
	clauses := []string{"kind = ?"}
	args := []any{kind}
	if filter.Employee != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, *filter.Employee)
	}
	if filter.Document != nil {
		clauses = append(clauses, "document_id = ?")
		args = append(args, *filter.Document)
	}
	return strings.Join(clauses, " AND "), args
}

// =============================================================================
// DOCUMENT CATALOG (engine.Documents interface)
// =============================================================================

type documentView struct {
	db dbtx
}

func (v documentView) Insert(ctx context.Context, doc *engine.Document) error {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO documents (kind, id, title, description, url, created_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`
	_, err := v.db.ExecContext(ctx, query,
		doc.Kind, doc.ID, doc.Title, doc.Description, doc.URL,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return v.replaceRelevance(ctx, doc.Kind, doc.ID, doc.Relevance)
}

// Update builds the SET clause from whichever patch fields are present and
// returns the relevance set the document had before.
func (v documentView) Update(ctx context.Context, kind engine.Kind, id engine.DocumentID, patch engine.DocumentPatch) (engine.RelevanceSet, error) {
	doc, err := v.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	old := doc.Relevance

	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *patch.URL)
	}
	if len(sets) > 0 {
		args = append(args, kind, id)
		query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE kind = ? AND id = ?"
		if _, err := v.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to update document: %w", err)
		}
	}
	if patch.Relevance != nil {
		if err := v.replaceRelevance(ctx, kind, id, patch.Relevance); err != nil {
			return nil, err
		}
	}
	return old, nil
}

func (v documentView) SoftDelete(ctx context.Context, kind engine.Kind, id engine.DocumentID) error {
	res, err := v.db.ExecContext(ctx,
		"UPDATE documents SET deleted = 1 WHERE kind = ? AND id = ? AND deleted = 0",
		kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrDocumentNotFound
	}
	return nil
}

func (v documentView) Get(ctx context.Context, kind engine.Kind, id engine.DocumentID) (*engine.Document, error) {
	var doc engine.Document
	var createdAt string
	err := v.db.QueryRowContext(ctx,
		"SELECT kind, id, title, description, url, created_at FROM documents WHERE kind = ? AND id = ? AND deleted = 0",
		kind, id,
	).Scan(&doc.Kind, &doc.ID, &doc.Title, &doc.Description, &doc.URL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, engine.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.Relevance, err = v.relevance(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (v documentView) ListActive(ctx context.Context, kind engine.Kind) ([]*engine.Document, error) {
	query := `
		SELECT kind, id, title, description, url, created_at
		FROM documents
		WHERE kind = ? AND deleted = 0
		ORDER BY created_at ASC, id ASC
	`
	rows, err := v.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*engine.Document
	for rows.Next() {
		var doc engine.Document
		var createdAt string
		if err := rows.Scan(&doc.Kind, &doc.ID, &doc.Title, &doc.Description, &doc.URL, &createdAt); err != nil {
			return nil, err
		}
		doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, doc := range docs {
		doc.Relevance, err = v.relevance(ctx, kind, doc.ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (v documentView) IDsByDepartment(ctx context.Context, kind engine.Kind, department engine.DepartmentID) ([]engine.DocumentID, error) {
	query := `
		SELECT dd.document_id
		FROM document_departments dd
		JOIN documents d ON d.kind = dd.kind AND d.id = dd.document_id
		WHERE dd.kind = ? AND dd.department_id = ? AND d.deleted = 0
		ORDER BY dd.document_id
	`
	rows, err := v.db.QueryContext(ctx, query, kind, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query relevance: %w", err)
	}
	defer rows.Close()

	var ids []engine.DocumentID
	for rows.Next() {
		var id engine.DocumentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (v documentView) relevance(ctx context.Context, kind engine.Kind, id engine.DocumentID) (engine.RelevanceSet, error) {
	rows, err := v.db.QueryContext(ctx,
		"SELECT department_id FROM document_departments WHERE kind = ? AND document_id = ?",
		kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load relevance: %w", err)
	}
	defer rows.Close()

	set := engine.NewRelevanceSet()
	for rows.Next() {
		var dept engine.DepartmentID
		if err := rows.Scan(&dept); err != nil {
			return nil, err
		}
		set[dept] = struct{}{}
	}
	return set, rows.Err()
}

func (v documentView) replaceRelevance(ctx context.Context, kind engine.Kind, id engine.DocumentID, set engine.RelevanceSet) error {
	if _, err := v.db.ExecContext(ctx,
		"DELETE FROM document_departments WHERE kind = ? AND document_id = ?", kind, id); err != nil {
		return fmt.Errorf("failed to clear relevance: %w", err)
	}
	for _, dept := range set.IDs() {
		if _, err := v.db.ExecContext(ctx,
			"INSERT INTO document_departments (kind, document_id, department_id) VALUES (?, ?, ?)",
			kind, id, dept); err != nil {
			return fmt.Errorf("failed to store relevance: %w", err)
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEE DIRECTORY (engine.Employees interface)
// =============================================================================

type employeeView struct {
	db dbtx
}

func (v employeeView) Insert(ctx context.Context, emp *engine.Employee) error {
	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO employees (id, first_name, last_name, email, phone, department_id, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := v.db.ExecContext(ctx, query,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.Department, emp.Active, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

func (v employeeView) Get(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	row := v.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, email, phone, department_id, active, created_at FROM employees WHERE id = ?",
		id)
	return scanEmployee(row)
}

func (v employeeView) List(ctx context.Context) ([]*engine.Employee, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, department_id, active, created_at
		FROM employees
		ORDER BY created_at ASC, id ASC
	`
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var emps []*engine.Employee
	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, emp)
	}
	return emps, rows.Err()
}

func (v employeeView) ByIDs(ctx context.Context, ids []engine.EmployeeID) ([]*engine.Employee, error) {
	var emps []*engine.Employee
	for _, id := range ids {
		emp, err := v.Get(ctx, id)
		if err == engine.ErrEmployeeNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		emps = append(emps, emp)
	}
	return emps, nil
}

func (v employeeView) SetActive(ctx context.Context, id engine.EmployeeID, active bool) error {
	return v.exec(ctx, "UPDATE employees SET active = ? WHERE id = ?", active, id)
}

func (v employeeView) SetDepartment(ctx context.Context, id engine.EmployeeID, department engine.DepartmentID) error {
	return v.exec(ctx, "UPDATE employees SET department_id = ? WHERE id = ?", department, id)
}

func (v employeeView) UpdateContact(ctx context.Context, id engine.EmployeeID, patch engine.EmployeePatch) error {
	var sets []string
	var args []any
	if patch.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *patch.FirstName)
	}
	if patch.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *patch.LastName)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	return v.exec(ctx, "UPDATE employees SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
}

func (v employeeView) exec(ctx context.Context, query string, args ...any) error {
	res, err := v.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrEmployeeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row *sql.Row) (*engine.Employee, error) {
	emp, err := scanEmployeeRow(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrEmployeeNotFound
	}
	return emp, err
}

func scanEmployeeRow(r rowScanner) (*engine.Employee, error) {
	var emp engine.Employee
	var createdAt string
	err := r.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Department, &emp.Active, &createdAt)
	if err != nil {
		return nil, err
	}
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// =============================================================================
// MEMBERSHIP RESOLUTION (engine.MembershipResolver interface)
// =============================================================================

type membershipView struct {
	db dbtx
}

func (v membershipView) ResolveEmployees(ctx context.Context, departments []engine.DepartmentID, activeOnly bool) ([]engine.Member, error) {
	if len(departments) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(departments)), ", ")
	query := "SELECT id, department_id FROM employees WHERE department_id IN (" + placeholders + ")"
	args := make([]any, 0, len(departments))
	for _, d := range departments {
		args = append(args, d)
	}
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY id"

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve departments: %w", err)
	}
	defer rows.Close()

	var members []engine.Member
	for rows.Next() {
		var m engine.Member
		if err := rows.Scan(&m.EmployeeID, &m.DepartmentID); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
