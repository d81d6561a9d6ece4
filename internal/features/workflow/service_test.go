package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/doctype"
)

type mockWorkflowRepo struct {
	workflows []WorkflowDefinition
}

func (m *mockWorkflowRepo) Create(ctx context.Context, wf *WorkflowDefinition) error {
	m.workflows = append(m.workflows, *wf)
	return nil
}

func (m *mockWorkflowRepo) FindByID(ctx context.Context, id string) (*WorkflowDefinition, error) {
	for i := range m.workflows {
		if m.workflows[i].ID.Hex() == id {
			return &m.workflows[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockWorkflowRepo) FindActiveByType(ctx context.Context, typeID primitive.ObjectID) ([]WorkflowDefinition, error) {
	var out []WorkflowDefinition
	for _, wf := range m.workflows {
		if wf.Active && wf.AppliesTo(typeID) {
			out = append(out, wf)
		}
	}
	// oldest first, mirroring the repository sort
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *mockWorkflowRepo) List(ctx context.Context) ([]WorkflowDefinition, error) {
	return m.workflows, nil
}

func (m *mockWorkflowRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *mockWorkflowRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type mockTypeRepo struct {
	types map[string]*doctype.DocumentType
}

func (m *mockTypeRepo) Create(ctx context.Context, dt *doctype.DocumentType) error { return nil }

func (m *mockTypeRepo) FindByID(ctx context.Context, id string) (*doctype.DocumentType, error) {
	if dt, ok := m.types[id]; ok {
		return dt, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockTypeRepo) FindByPrefix(ctx context.Context, prefix string) (*doctype.DocumentType, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *mockTypeRepo) List(ctx context.Context, includeInactive bool) ([]doctype.DocumentType, error) {
	return nil, nil
}

func (m *mockTypeRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *mockTypeRepo) Delete(ctx context.Context, id string) error { return nil }

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService(repo *mockWorkflowRepo, typeRepo *mockTypeRepo) WorkflowService {
	if typeRepo == nil {
		typeRepo = &mockTypeRepo{types: map[string]*doctype.DocumentType{}}
	}
	return NewWorkflowService(repo, typeRepo, noopAudit{})
}

func step(order int) WorkflowStep {
	return WorkflowStep{
		ID:                primitive.NewObjectID().Hex(),
		Name:              "Review",
		Order:             order,
		RequiredApprovers: []primitive.ObjectID{primitive.NewObjectID()},
		Required:          true,
	}
}

func TestResolveWorkflowPrefersDepartmentScoped(t *testing.T) {
	typeID := primitive.NewObjectID()
	deptID := primitive.NewObjectID()

	agnostic := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Anyone",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-2 * time.Hour),
	}
	scoped := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Dept only",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		DepartmentID:    deptID,
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-1 * time.Hour),
	}

	svc := newTestService(&mockWorkflowRepo{workflows: []WorkflowDefinition{agnostic, scoped}}, nil)

	got, err := svc.ResolveWorkflow(context.Background(), typeID, deptID)
	if err != nil {
		t.Fatalf("ResolveWorkflow: %v", err)
	}
	if got.ID != scoped.ID {
		t.Errorf("expected department-scoped workflow %s, got %s", scoped.Name, got.Name)
	}
}

func TestResolveWorkflowTieBreaksOnOldest(t *testing.T) {
	typeID := primitive.NewObjectID()
	deptID := primitive.NewObjectID()

	older := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Older",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		DepartmentID:    deptID,
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-3 * time.Hour),
	}
	newer := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Newer",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		DepartmentID:    deptID,
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-1 * time.Hour),
	}

	svc := newTestService(&mockWorkflowRepo{workflows: []WorkflowDefinition{newer, older}}, nil)

	got, err := svc.ResolveWorkflow(context.Background(), typeID, deptID)
	if err != nil {
		t.Fatalf("ResolveWorkflow: %v", err)
	}
	if got.ID != older.ID {
		t.Errorf("expected oldest workflow to win, got %s", got.Name)
	}
}

func TestResolveWorkflowFallsBackToAgnostic(t *testing.T) {
	typeID := primitive.NewObjectID()
	otherDept := primitive.NewObjectID()

	scopedElsewhere := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Other dept",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		DepartmentID:    otherDept,
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-2 * time.Hour),
	}
	agnostic := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Everyone",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		Steps:           []WorkflowStep{step(1)},
		Active:          true,
		CreatedAt:       time.Now().Add(-1 * time.Hour),
	}

	svc := newTestService(&mockWorkflowRepo{workflows: []WorkflowDefinition{scopedElsewhere, agnostic}}, nil)

	got, err := svc.ResolveWorkflow(context.Background(), typeID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ResolveWorkflow: %v", err)
	}
	if got.ID != agnostic.ID {
		t.Errorf("expected department-agnostic workflow, got %s", got.Name)
	}
}

func TestResolveWorkflowSynthesizesOwnerStep(t *testing.T) {
	typeID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()

	typeRepo := &mockTypeRepo{types: map[string]*doctype.DocumentType{
		typeID.Hex(): {ID: typeID, Name: "Policy", Prefix: "POL", OwnerID: ownerID},
	}}
	svc := newTestService(&mockWorkflowRepo{}, typeRepo)

	got, err := svc.ResolveWorkflow(context.Background(), typeID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ResolveWorkflow: %v", err)
	}
	if len(got.Steps) != 1 {
		t.Fatalf("expected single synthesized step, got %d", len(got.Steps))
	}
	if len(got.Steps[0].RequiredApprovers) != 1 || got.Steps[0].RequiredApprovers[0] != ownerID {
		t.Errorf("synthesized step should be approved by the type owner")
	}
	if !got.Steps[0].Required {
		t.Errorf("synthesized owner step must be required")
	}
}

func TestResolveWorkflowNoOwnerFails(t *testing.T) {
	typeID := primitive.NewObjectID()

	typeRepo := &mockTypeRepo{types: map[string]*doctype.DocumentType{
		typeID.Hex(): {ID: typeID, Name: "Policy", Prefix: "POL"},
	}}
	svc := newTestService(&mockWorkflowRepo{}, typeRepo)

	_, err := svc.ResolveWorkflow(context.Background(), typeID, primitive.NewObjectID())
	if !errors.Is(err, ErrNoWorkflowConfigured) {
		t.Errorf("expected ErrNoWorkflowConfigured, got %v", err)
	}
}

func TestResolveWorkflowIgnoresInactive(t *testing.T) {
	typeID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()

	inactive := WorkflowDefinition{
		ID:              primitive.NewObjectID(),
		Name:            "Disabled",
		DocumentTypeIDs: []primitive.ObjectID{typeID},
		Steps:           []WorkflowStep{step(1)},
		Active:          false,
		CreatedAt:       time.Now().Add(-1 * time.Hour),
	}
	typeRepo := &mockTypeRepo{types: map[string]*doctype.DocumentType{
		typeID.Hex(): {ID: typeID, Name: "Policy", Prefix: "POL", OwnerID: ownerID},
	}}
	svc := newTestService(&mockWorkflowRepo{workflows: []WorkflowDefinition{inactive}}, typeRepo)

	got, err := svc.ResolveWorkflow(context.Background(), typeID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ResolveWorkflow: %v", err)
	}
	if got.Name != "Owner approval" {
		t.Errorf("inactive workflows must not resolve, got %s", got.Name)
	}
}

func TestWorkflowValidateRejectsStepWithoutApprovers(t *testing.T) {
	wf := WorkflowDefinition{
		Name:            "Broken",
		DocumentTypeIDs: []primitive.ObjectID{primitive.NewObjectID()},
		Steps: []WorkflowStep{{
			ID:    "s1",
			Name:  "Empty",
			Order: 1,
		}},
	}
	if err := wf.Validate(); err == nil {
		t.Errorf("expected validation error for step without approvers")
	}
}

func TestWorkflowValidateRejectsDuplicateOrders(t *testing.T) {
	wf := WorkflowDefinition{
		Name:            "Broken",
		DocumentTypeIDs: []primitive.ObjectID{primitive.NewObjectID()},
		Steps:           []WorkflowStep{step(1), step(1)},
	}
	if err := wf.Validate(); err == nil {
		t.Errorf("expected validation error for duplicate step orders")
	}
}

func TestSortedStepsOrders(t *testing.T) {
	wf := WorkflowDefinition{Steps: []WorkflowStep{step(3), step(1), step(2)}}
	sorted := wf.SortedSteps()
	for i, s := range sorted {
		if s.Order != i+1 {
			t.Fatalf("expected order %d at position %d, got %d", i+1, i, s.Order)
		}
	}
}
