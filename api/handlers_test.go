/*
handlers_test.go - HTTP-level tests for the portal API

Tests for:
- The full publish/acknowledge/update/delete document flow
- Employee lifecycle endpoints driving ledger reconciliation
- Validation of department names against the configured universe
- Kind separation between the policy and survey mounts
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnet/ack-portal/config"
	"github.com/garnet/ack-portal/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	handler := NewHandler(store, cfg, zerolog.Nop())
	return NewRouter(handler)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func register(t *testing.T, router http.Handler, first, last, department string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/employees", RegisterEmployeeRequest{
		FirstName: first, LastName: last, Department: department,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[EmployeeDTO](t, rec).ID
}

// =============================================================================
// DOCUMENT FLOW
// =============================================================================

func TestPolicyFlow_PublishAcknowledgeUpdateDelete(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN: two engineers and a salesperson
	alice := register(t, router, "Alice", "Ang", "engineering")
	bob := register(t, router, "Bob", "Bell", "engineering")
	register(t, router, "Carol", "Cruz", "sales")

	// WHEN: a policy for engineering is published
	rec := do(t, router, http.MethodPost, "/api/policies", CreateDocumentRequest{
		Title:       "Code of Conduct",
		Departments: []string{"engineering"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[DocumentDTO](t, rec)
	assert.Equal(t, "policy", doc.Kind)
	assert.Equal(t, 2, doc.Progress.Total)
	assert.Equal(t, 0, doc.Progress.Acknowledged)

	// THEN: both engineers appear on the unacknowledged roster
	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID+"/unacknowledged", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode[[]EmployeeDTO](t, rec)
	assert.Len(t, roster, 2)

	// Alice acknowledges; progress moves to 1/2
	rec = do(t, router, http.MethodPost, "/api/policies/"+doc.ID+"/acknowledge", AcknowledgeRequest{EmployeeID: alice})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID, nil)
	got := decode[DocumentDTO](t, rec)
	assert.Equal(t, 1, got.Progress.Acknowledged)
	assert.Equal(t, "0.5", got.Progress.Completion)

	// An out-of-scope employee cannot acknowledge
	rec = do(t, router, http.MethodPost, "/api/policies/"+doc.ID+"/acknowledge", AcknowledgeRequest{EmployeeID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Updating the title resets every acknowledgement
	title := "Code of Conduct v2"
	rec = do(t, router, http.MethodPut, "/api/policies/"+doc.ID, UpdateDocumentRequest{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[DocumentDTO](t, rec)
	assert.Equal(t, "Code of Conduct v2", updated.Title)
	assert.Equal(t, 0, updated.Progress.Acknowledged)

	// Alice sees the policy as outstanding again
	rec = do(t, router, http.MethodGet, "/api/policies/employees/"+alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[[]DocumentDTO](t, rec)
	require.Len(t, open, 1)
	assert.Equal(t, doc.ID, open[0].ID)

	// Bob's view matches
	rec = do(t, router, http.MethodGet, "/api/policies/employees/"+bob+"?acknowledged=true", nil)
	assert.Empty(t, decode[[]DocumentDTO](t, rec))

	// Deleting the policy hides it and its roster
	rec = do(t, router, http.MethodDelete, "/api/policies/"+doc.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDocument_UnknownDepartmentRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/policies", CreateDocumentRequest{
		Title:       "Doc",
		Departments: []string{"warehouse"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentList_DepartmentFilter(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "Alice", "Ang", "engineering")

	for i, depts := range [][]string{{"engineering"}, {"sales"}, {"engineering", "sales"}} {
		rec := do(t, router, http.MethodPost, "/api/policies", CreateDocumentRequest{
			Title:       fmt.Sprintf("Doc %d", i),
			Departments: depts,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/api/policies?department=sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]DocumentDTO](t, rec), 2)

	rec = do(t, router, http.MethodGet, "/api/policies", nil)
	assert.Len(t, decode[[]DocumentDTO](t, rec), 3)
}

// =============================================================================
// KIND SEPARATION
// =============================================================================

func TestSurveyAndPolicyMountsAreIndependent(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "Ang", "hr")

	rec := do(t, router, http.MethodPost, "/api/surveys", CreateDocumentRequest{
		Title:       "Engagement Survey",
		Departments: []string{"hr"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	survey := decode[DocumentDTO](t, rec)
	assert.Equal(t, "survey", survey.Kind)

	// The survey is not visible on the policy mount
	rec = do(t, router, http.MethodGet, "/api/policies/"+survey.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Acknowledging the survey leaves the policy ledger empty
	rec = do(t, router, http.MethodPost, "/api/surveys/"+survey.ID+"/acknowledge", AcknowledgeRequest{EmployeeID: alice})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/policies/employees/"+alice, nil)
	assert.Empty(t, decode[[]DocumentDTO](t, rec))
	rec = do(t, router, http.MethodGet, "/api/surveys/employees/"+alice+"?acknowledged=true", nil)
	assert.Len(t, decode[[]DocumentDTO](t, rec), 1)
}

// =============================================================================
// EMPLOYEE LIFECYCLE
// =============================================================================

func TestEmployeeLifecycle_DrivesLedger(t *testing.T) {
	router := newTestRouter(t)

	// Publish before anyone exists
	rec := do(t, router, http.MethodPost, "/api/policies", CreateDocumentRequest{
		Title:       "Handbook",
		Departments: []string{"engineering", "sales"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	doc := decode[DocumentDTO](t, rec)
	assert.Equal(t, 0, doc.Progress.Total)

	// Registration seeds the ledger
	alice := register(t, router, "Alice", "Ang", "engineering")
	rec = do(t, router, http.MethodGet, "/api/policies/employees/"+alice, nil)
	require.Len(t, decode[[]DocumentDTO](t, rec), 1)

	// Acknowledge, then deactivate: entry drops out of the counts
	rec = do(t, router, http.MethodPost, "/api/policies/"+doc.ID+"/acknowledge", AcknowledgeRequest{EmployeeID: alice})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/employees/"+alice+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[EmployeeDTO](t, rec).Active)

	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID, nil)
	assert.Equal(t, 0, decode[DocumentDTO](t, rec).Progress.Total)

	// Reactivation restores the acknowledged entry intact
	rec = do(t, router, http.MethodPost, "/api/employees/"+alice+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID, nil)
	got := decode[DocumentDTO](t, rec)
	assert.Equal(t, 1, got.Progress.Total)
	assert.Equal(t, 1, got.Progress.Acknowledged)

	// Moving to sales keeps the document in scope through a fresh entry,
	// so the acknowledgement is owed again
	rec = do(t, router, http.MethodPut, "/api/employees/"+alice+"/department", ChangeDepartmentRequest{Department: "sales"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sales", decode[EmployeeDTO](t, rec).Department)

	rec = do(t, router, http.MethodGet, "/api/policies/"+doc.ID, nil)
	got = decode[DocumentDTO](t, rec)
	assert.Equal(t, 1, got.Progress.Total)
	assert.Equal(t, 0, got.Progress.Acknowledged)

	// Moving to an unknown department is rejected
	rec = do(t, router, http.MethodPut, "/api/employees/"+alice+"/department", ChangeDepartmentRequest{Department: "warehouse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEmployee_ContactOnly(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "Ang", "engineering")

	email := "alice@example.com"
	rec := do(t, router, http.MethodPut, "/api/employees/"+alice, UpdateEmployeeRequest{Email: &email})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decode[EmployeeDTO](t, rec).Email)

	rec = do(t, router, http.MethodPut, "/api/employees/"+alice, UpdateEmployeeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
