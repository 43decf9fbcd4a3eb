/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Documents:
    DocumentDTO, CreateDocumentRequest, UpdateDocumentRequest

  Progress:
    ProgressDTO (per-document acknowledgement aggregate)

  Employees:
    EmployeeDTO, RegisterEmployeeRequest, UpdateEmployeeRequest,
    ChangeDepartmentRequest

  Acknowledgements:
    AcknowledgeRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain model these map to
*/
package api

import (
	"time"

	"github.com/garnet/ack-portal/engine"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentDTO represents a policy or survey in API responses, including its
// acknowledgement progress.
type DocumentDTO struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Departments []string    `json:"departments"`
	CreatedAt   time.Time   `json:"created_at"`
	Progress    ProgressDTO `json:"progress"`
}

// ProgressDTO is the acknowledgement aggregate of one document.
type ProgressDTO struct {
	Total        int    `json:"total"`
	Acknowledged int    `json:"acknowledged"`
	Completion   string `json:"completion"`
	Complete     bool   `json:"complete"`
}

// CreateDocumentRequest is the body for publishing a document.
type CreateDocumentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Departments []string `json:"departments"`
}

// UpdateDocumentRequest is the body for patching a document. Absent fields
// are left unchanged; a present departments list replaces the relevance set.
type UpdateDocumentRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	Departments *[]string `json:"departments"`
}

// AcknowledgeRequest is the body for recording an acknowledgement.
type AcknowledgeRequest struct {
	EmployeeID string `json:"employee_id"`
}

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegisterEmployeeRequest is the body for registering an employee.
type RegisterEmployeeRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// UpdateEmployeeRequest is the body for updating contact details.
type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// ChangeDepartmentRequest is the body for moving an employee.
type ChangeDepartmentRequest struct {
	Department string `json:"department"`
}

// =============================================================================
// SHARED TYPES
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toDocumentDTO(doc *engine.Document, agg engine.Aggregate) DocumentDTO {
	departments := make([]string, 0, len(doc.Relevance))
	for _, d := range doc.Relevance.IDs() {
		departments = append(departments, string(d))
	}
	return DocumentDTO{
		ID:          string(doc.ID),
		Kind:        string(doc.Kind),
		Title:       doc.Title,
		Description: doc.Description,
		URL:         doc.URL,
		Departments: departments,
		CreatedAt:   doc.CreatedAt,
		Progress: ProgressDTO{
			Total:        agg.Total,
			Acknowledged: agg.Acknowledged,
			Completion:   agg.Completion().String(),
			Complete:     agg.Complete(),
		},
	}
}

func toEmployeeDTO(emp *engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(emp.ID),
		FirstName:  emp.FirstName,
		LastName:   emp.LastName,
		Email:      emp.Email,
		Phone:      emp.Phone,
		Department: string(emp.Department),
		Active:     emp.Active,
		CreatedAt:  emp.CreatedAt,
	}
}
