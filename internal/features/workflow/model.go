package workflow

import (
	"errors"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkflowStep is one approval stage inside a workflow definition.
// Approvers may be named users, roles, or both. A non-required step is
// advisory: it never blocks completion of the process.
type WorkflowStep struct {
	ID                string               `json:"id" bson:"id"`
	Name              string               `json:"name" bson:"name"`
	Order             int                  `json:"order" bson:"order"`
	RequiredApprovers []primitive.ObjectID `json:"requiredApprovers" bson:"required_approvers"`
	ApproverRoles     []primitive.ObjectID `json:"approverRoles" bson:"approver_roles"`
	Required          bool                 `json:"required" bson:"required"`
}

// WorkflowDefinition binds an ordered list of approval steps to one or
// more document types, optionally scoped to a single department. A
// definition with no department applies to every department that has no
// closer match.
type WorkflowDefinition struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	TenantID        primitive.ObjectID   `json:"tenantId" bson:"tenant_id"`
	Name            string               `json:"name" bson:"name"`
	Description     string               `json:"description" bson:"description"`
	DocumentTypeIDs []primitive.ObjectID `json:"documentTypeIds" bson:"document_type_ids"`
	DepartmentID    primitive.ObjectID   `json:"departmentId" bson:"department_id,omitempty"`
	Steps           []WorkflowStep       `json:"steps" bson:"steps"`
	Active          bool                 `json:"active" bson:"active"`
	CreatedAt       time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updated_at"`
}

func (w *WorkflowDefinition) Validate() error {
	if err := validation.ValidateStruct(w,
		validation.Field(&w.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&w.DocumentTypeIDs, validation.Required),
		validation.Field(&w.Steps, validation.Required),
	); err != nil {
		return err
	}

	seen := make(map[int]bool, len(w.Steps))
	for i := range w.Steps {
		step := &w.Steps[i]
		if step.Name == "" {
			return errors.New("every workflow step needs a name")
		}
		if len(step.RequiredApprovers) == 0 && len(step.ApproverRoles) == 0 {
			return errors.New("step " + step.Name + " has no approvers")
		}
		if step.Order < 1 {
			return errors.New("step orders start at 1")
		}
		if seen[step.Order] {
			return errors.New("duplicate step order in workflow")
		}
		seen[step.Order] = true
	}
	return nil
}

// SortedSteps returns the steps ordered by their Order field.
func (w *WorkflowDefinition) SortedSteps() []WorkflowStep {
	steps := make([]WorkflowStep, len(w.Steps))
	copy(steps, w.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps
}

// AppliesTo reports whether this definition covers the given document type.
func (w *WorkflowDefinition) AppliesTo(typeID primitive.ObjectID) bool {
	for _, id := range w.DocumentTypeIDs {
		if id == typeID {
			return true
		}
	}
	return false
}
