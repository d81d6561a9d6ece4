package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/doctype"
)

// ErrNoWorkflowConfigured is returned when a document needs approval but
// no workflow covers its type and the type has no owner to fall back to.
var ErrNoWorkflowConfigured = errors.New("no workflow configured for this document type")

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, wf *WorkflowDefinition) (*WorkflowDefinition, error)
	GetWorkflow(ctx context.Context, id string) (*WorkflowDefinition, error)
	ListWorkflows(ctx context.Context) ([]WorkflowDefinition, error)
	UpdateWorkflow(ctx context.Context, id string, wf *WorkflowDefinition) error
	SetActive(ctx context.Context, id string, active bool) error
	DeleteWorkflow(ctx context.Context, id string) error

	// ResolveWorkflow picks the workflow governing a document of the
	// given type created in the given department.
	ResolveWorkflow(ctx context.Context, typeID, departmentID primitive.ObjectID) (*WorkflowDefinition, error)
}

type WorkflowServiceImpl struct {
	Repo         WorkflowRepository
	TypeRepo     doctype.DocumentTypeRepository
	AuditService audit.AuditService
}

func NewWorkflowService(repo WorkflowRepository, typeRepo doctype.DocumentTypeRepository, auditService audit.AuditService) WorkflowService {
	return &WorkflowServiceImpl{
		Repo:         repo,
		TypeRepo:     typeRepo,
		AuditService: auditService,
	}
}

func assignStepIDs(steps []WorkflowStep) {
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.NewString()
		}
	}
}

func (s *WorkflowServiceImpl) CreateWorkflow(ctx context.Context, wf *WorkflowDefinition) (*WorkflowDefinition, error) {
	assignStepIDs(wf.Steps)
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	wf.ID = primitive.NewObjectID()
	wf.Active = true
	wf.CreatedAt = time.Now()
	wf.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, wf); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "workflow", wf.ID.Hex(), map[string]common_models.Change{
		"name": {New: wf.Name},
	})
	return wf, nil
}

func (s *WorkflowServiceImpl) GetWorkflow(ctx context.Context, id string) (*WorkflowDefinition, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *WorkflowServiceImpl) ListWorkflows(ctx context.Context) ([]WorkflowDefinition, error) {
	return s.Repo.List(ctx)
}

func (s *WorkflowServiceImpl) UpdateWorkflow(ctx context.Context, id string, wf *WorkflowDefinition) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	assignStepIDs(wf.Steps)
	if err := wf.Validate(); err != nil {
		return err
	}

	// Running approval processes keep the step snapshot they were
	// started with, so editing a definition never rewrites history.
	updates := map[string]interface{}{
		"name":              wf.Name,
		"description":       wf.Description,
		"document_type_ids": wf.DocumentTypeIDs,
		"steps":             wf.Steps,
		"updated_at":        time.Now(),
	}
	if !wf.DepartmentID.IsZero() {
		updates["department_id"] = wf.DepartmentID
	}
	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "workflow", id, map[string]common_models.Change{
		"name": {Old: old.Name, New: wf.Name},
	})
	return nil
}

func (s *WorkflowServiceImpl) SetActive(ctx context.Context, id string, active bool) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, map[string]interface{}{
		"active":     active,
		"updated_at": time.Now(),
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "workflow", id, map[string]common_models.Change{
		"active": {Old: old.Active, New: active},
	})
	return nil
}

func (s *WorkflowServiceImpl) DeleteWorkflow(ctx context.Context, id string) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "workflow", id, map[string]common_models.Change{
		"name": {Old: old.Name},
	})
	return nil
}

// ResolveWorkflow applies the precedence rules: a definition scoped to
// the document's department beats a department-agnostic one, and within
// the same scope the oldest definition wins. When nothing matches, a
// single-step workflow approved by the document type's owner is
// synthesized; a type with no owner yields ErrNoWorkflowConfigured.
func (s *WorkflowServiceImpl) ResolveWorkflow(ctx context.Context, typeID, departmentID primitive.ObjectID) (*WorkflowDefinition, error) {
	candidates, err := s.Repo.FindActiveByType(ctx, typeID)
	if err != nil {
		return nil, err
	}

	// candidates arrive sorted oldest first, so the first hit in each
	// scope is the winner
	var agnostic *WorkflowDefinition
	for i := range candidates {
		wf := &candidates[i]
		if wf.DepartmentID == departmentID && !departmentID.IsZero() {
			return wf, nil
		}
		if wf.DepartmentID.IsZero() && agnostic == nil {
			agnostic = wf
		}
	}
	if agnostic != nil {
		return agnostic, nil
	}

	dt, err := s.TypeRepo.FindByID(ctx, typeID.Hex())
	if err != nil {
		return nil, err
	}
	if dt.OwnerID.IsZero() {
		return nil, ErrNoWorkflowConfigured
	}

	return &WorkflowDefinition{
		Name: "Owner approval",
		Steps: []WorkflowStep{{
			ID:                uuid.NewString(),
			Name:              "Owner review",
			Order:             1,
			RequiredApprovers: []primitive.ObjectID{dt.OwnerID},
			Required:          true,
		}},
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		Active:          true,
	}, nil
}
