package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/workflow"
	"trackdoc/pkg/utils"
)

type mockApprovalRepo struct {
	processes map[primitive.ObjectID]*ApprovalProcess
	// forceConflict makes the next ApplyDecision report a lost race
	forceConflict bool
}

func newMockApprovalRepo() *mockApprovalRepo {
	return &mockApprovalRepo{processes: map[primitive.ObjectID]*ApprovalProcess{}}
}

func (m *mockApprovalRepo) Create(ctx context.Context, process *ApprovalProcess) error {
	cp := *process
	m.processes[process.ID] = &cp
	return nil
}

func (m *mockApprovalRepo) FindByID(ctx context.Context, id string) (*ApprovalProcess, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	if p, ok := m.processes[oid]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockApprovalRepo) FindActiveByDocument(ctx context.Context, documentID primitive.ObjectID) (*ApprovalProcess, error) {
	for _, p := range m.processes {
		if p.DocumentID == documentID && p.Status == ProcessInProgress {
			cp := *p
			cp.Steps = make([]ProcessStep, len(p.Steps))
			copy(cp.Steps, p.Steps)
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockApprovalRepo) FindByDocument(ctx context.Context, documentID primitive.ObjectID) ([]ApprovalProcess, error) {
	var out []ApprovalProcess
	for _, p := range m.processes {
		if p.DocumentID == documentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockApprovalRepo) FindInProgress(ctx context.Context) ([]ApprovalProcess, error) {
	var out []ApprovalProcess
	for _, p := range m.processes {
		if p.Status == ProcessInProgress {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockApprovalRepo) ApplyDecision(ctx context.Context, processID primitive.ObjectID, stepID string, expectedOrder int, update *ApprovalProcess) (bool, error) {
	if m.forceConflict {
		m.forceConflict = false
		return false, nil
	}
	stored, ok := m.processes[processID]
	if !ok || stored.Status != ProcessInProgress || stored.CurrentOrder != expectedOrder {
		return false, nil
	}
	step := stored.StepByID(stepID)
	if step == nil || step.Status != StepPending {
		return false, nil
	}
	cp := *update
	cp.Steps = make([]ProcessStep, len(update.Steps))
	copy(cp.Steps, update.Steps)
	m.processes[processID] = &cp
	return true, nil
}

type stubDocRepo struct {
	statuses map[primitive.ObjectID]document.DocumentStatus
	authors  map[primitive.ObjectID]primitive.ObjectID
}

func newStubDocRepo() *stubDocRepo {
	return &stubDocRepo{
		statuses: map[primitive.ObjectID]document.DocumentStatus{},
		authors:  map[primitive.ObjectID]primitive.ObjectID{},
	}
}

func (m *stubDocRepo) Create(ctx context.Context, doc *document.DocumentRecord) error { return nil }

func (m *stubDocRepo) FindByID(ctx context.Context, id string) (*document.DocumentRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	status, ok := m.statuses[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &document.DocumentRecord{ID: oid, Status: status, AuthorID: m.authors[oid]}, nil
}

func (m *stubDocRepo) FindVersions(ctx context.Context, number string) ([]document.DocumentRecord, error) {
	return nil, nil
}

func (m *stubDocRepo) List(ctx context.Context, filter document.ListFilter, page, limit int64) ([]document.DocumentRecord, int64, error) {
	return nil, 0, nil
}

func (m *stubDocRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *stubDocRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to document.DocumentStatus, extra map[string]interface{}) (bool, error) {
	if m.statuses[id] != from {
		return false, nil
	}
	m.statuses[id] = to
	return true, nil
}

func (m *stubDocRepo) HasDocumentsOfType(ctx context.Context, typeID string) (bool, error) {
	return false, nil
}

func (m *stubDocRepo) HasSuccessor(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return false, nil
}

func (m *stubDocRepo) FindExpired(ctx context.Context, typeID primitive.ObjectID, decidedBefore time.Time) ([]document.DocumentRecord, error) {
	return nil, nil
}

func (m *stubDocRepo) Archive(ctx context.Context, id primitive.ObjectID) error { return nil }

func (m *stubDocRepo) EnsureIndexes(ctx context.Context) error { return nil }

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type recordingNotifier struct {
	sent [][]primitive.ObjectID
}

func (m *recordingNotifier) NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error {
	m.sent = append(m.sent, userIDs)
	return nil
}

func ctxFor(userID primitive.ObjectID, roleIDs ...primitive.ObjectID) context.Context {
	roles := make([]string, 0, len(roleIDs))
	for _, r := range roleIDs {
		roles = append(roles, r.Hex())
	}
	claims := &utils.UserClaims{UserID: userID.Hex(), Roles: roles}
	return context.WithValue(context.Background(), utils.UserClaimsKey, claims)
}

type approvalFixture struct {
	repo     *mockApprovalRepo
	docRepo  *stubDocRepo
	notifier *recordingNotifier
	svc      ApprovalService
	docID    primitive.ObjectID
}

func newApprovalFixture(t *testing.T, steps []workflow.WorkflowStep) *approvalFixture {
	t.Helper()
	f := &approvalFixture{
		repo:     newMockApprovalRepo(),
		docRepo:  newStubDocRepo(),
		notifier: &recordingNotifier{},
		docID:    primitive.NewObjectID(),
	}
	f.svc = NewApprovalService(f.repo, f.docRepo, noopAudit{}, f.notifier, nil)
	f.docRepo.statuses[f.docID] = document.StatusPending
	f.docRepo.authors[f.docID] = primitive.NewObjectID()

	doc := &document.DocumentRecord{ID: f.docID, Number: "POL-IT-2026-001", Status: document.StatusPending}
	wf := &workflow.WorkflowDefinition{
		ID:    primitive.NewObjectID(),
		Name:  "Two step",
		Steps: steps,
	}
	if err := f.svc.StartProcess(context.Background(), doc, wf); err != nil {
		t.Fatalf("StartProcess: %v", err)
	}
	return f
}

func requiredStep(order int, approvers ...primitive.ObjectID) workflow.WorkflowStep {
	return workflow.WorkflowStep{
		ID:                primitive.NewObjectID().Hex(),
		Name:              "Step",
		Order:             order,
		RequiredApprovers: approvers,
		Required:          true,
	}
}

func TestStartProcessSnapshotsSteps(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1), requiredStep(2, a2)})

	process, err := f.svc.GetActiveProcess(context.Background(), f.docID.Hex())
	if err != nil {
		t.Fatalf("GetActiveProcess: %v", err)
	}
	if process.CurrentOrder != 1 {
		t.Errorf("expected process to wait on step 1, got %d", process.CurrentOrder)
	}
	if len(process.Steps) != 2 {
		t.Errorf("expected 2 snapshot steps, got %d", len(process.Steps))
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("first step approvers should be notified once, got %d", len(f.notifier.sent))
	}
}

func TestDecideSequentialGating(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1), requiredStep(2, a2)})

	// Step two's approver cannot act while step one is pending.
	_, err := f.svc.Decide(ctxFor(a2), f.docID.Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible for later step approver, got %v", err)
	}

	process, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, "looks good")
	if err != nil {
		t.Fatalf("step one approval: %v", err)
	}
	if process.CurrentOrder != 2 {
		t.Errorf("expected advance to step 2, got order %d", process.CurrentOrder)
	}
	if process.Status != ProcessInProgress {
		t.Errorf("process should still be in progress, got %s", process.Status)
	}

	process, err = f.svc.Decide(ctxFor(a2), f.docID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("step two approval: %v", err)
	}
	if process.Status != ProcessApproved {
		t.Errorf("expected approved process, got %s", process.Status)
	}
	if f.docRepo.statuses[f.docID] != document.StatusApproved {
		t.Errorf("document should be approved, got %s", f.docRepo.statuses[f.docID])
	}
}

func TestDecideRejectionIsTerminal(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1), requiredStep(2, a2)})

	process, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionReject, "not acceptable")
	if err != nil {
		t.Fatalf("rejection: %v", err)
	}
	if process.Status != ProcessRejected {
		t.Errorf("expected rejected process, got %s", process.Status)
	}
	if process.Steps[1].Status != StepSkipped {
		t.Errorf("later steps should be skipped, got %s", process.Steps[1].Status)
	}
	if f.docRepo.statuses[f.docID] != document.StatusRejected {
		t.Errorf("document should be rejected, got %s", f.docRepo.statuses[f.docID])
	}

	// The process is closed, so nothing on it is actionable anymore.
	_, err = f.svc.Decide(ctxFor(a2), f.docID.Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrStepNotActionable) {
		t.Errorf("expected ErrStepNotActionable after closure, got %v", err)
	}
}

func TestDecideWithoutProcessFails(t *testing.T) {
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, primitive.NewObjectID())})

	_, err := f.svc.Decide(ctxFor(primitive.NewObjectID()), primitive.NewObjectID().Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrNoActiveProcess) {
		t.Errorf("expected ErrNoActiveProcess for unknown document, got %v", err)
	}
}

func TestDecideStepNeedsAllNamedApprovers(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1, a2)})

	process, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("first approver: %v", err)
	}
	if process.Status != ProcessInProgress {
		t.Fatalf("step should wait for the second approver, got %s", process.Status)
	}

	process, err = f.svc.Decide(ctxFor(a2), f.docID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("second approver: %v", err)
	}
	if process.Status != ProcessApproved {
		t.Errorf("expected approved after both named approvers, got %s", process.Status)
	}
}

func TestDecideRoleHolderApproves(t *testing.T) {
	roleID := primitive.NewObjectID()
	steps := []workflow.WorkflowStep{{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Role review",
		Order:         1,
		ApproverRoles: []primitive.ObjectID{roleID},
		Required:      true,
	}}
	f := newApprovalFixture(t, steps)

	holder := primitive.NewObjectID()
	process, err := f.svc.Decide(ctxFor(holder, roleID), f.docID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("role holder approval: %v", err)
	}
	if process.Status != ProcessApproved {
		t.Errorf("a single role holder approval should satisfy the step, got %s", process.Status)
	}

	outsider := primitive.NewObjectID()
	f2 := newApprovalFixture(t, steps)
	_, err = f2.svc.Decide(ctxFor(outsider), f2.docID.Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrNotEligible) {
		t.Errorf("expected ErrNotEligible for outsider, got %v", err)
	}
}

func TestDecideTwiceFails(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1, a2)})

	if _, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	_, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestDecideLostRace(t *testing.T) {
	a1 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1)})

	f.repo.forceConflict = true
	_, err := f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, "")
	if !errors.Is(err, ErrStepNotActionable) {
		t.Errorf("expected ErrStepNotActionable on lost race, got %v", err)
	}
}

func TestAdvisoryStepNeverBlocks(t *testing.T) {
	a1 := primitive.NewObjectID()
	advisory := primitive.NewObjectID()
	steps := []workflow.WorkflowStep{
		requiredStep(1, a1),
		{
			ID:                primitive.NewObjectID().Hex(),
			Name:              "FYI review",
			Order:             2,
			RequiredApprovers: []primitive.ObjectID{advisory},
			Required:          false,
		},
	}
	f := newApprovalFixture(t, steps)

	// The advisory approver can reject without stalling anything.
	process, err := f.svc.Decide(ctxFor(advisory), f.docID.Hex(), DecisionReject, "concerns")
	if err != nil {
		t.Fatalf("advisory rejection: %v", err)
	}
	if process.Status != ProcessInProgress {
		t.Fatalf("advisory rejection must not close the process, got %s", process.Status)
	}

	process, err = f.svc.Decide(ctxFor(a1), f.docID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("required approval: %v", err)
	}
	if process.Status != ProcessApproved {
		t.Errorf("process should complete on the required step alone, got %s", process.Status)
	}
	if f.docRepo.statuses[f.docID] != document.StatusApproved {
		t.Errorf("document should be approved, got %s", f.docRepo.statuses[f.docID])
	}
}

func TestAdvisoryOnlyWorkflowApprovesImmediately(t *testing.T) {
	advisory := primitive.NewObjectID()
	steps := []workflow.WorkflowStep{{
		ID:                primitive.NewObjectID().Hex(),
		Name:              "FYI",
		Order:             1,
		RequiredApprovers: []primitive.ObjectID{advisory},
		Required:          false,
	}}
	f := newApprovalFixture(t, steps)

	if f.docRepo.statuses[f.docID] != document.StatusApproved {
		t.Errorf("a workflow with no required steps should approve on start, got %s", f.docRepo.statuses[f.docID])
	}
}

func TestCanApprove(t *testing.T) {
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	f := newApprovalFixture(t, []workflow.WorkflowStep{requiredStep(1, a1), requiredStep(2, a2)})

	can, err := f.svc.CanApprove(ctxFor(a1), f.docID.Hex())
	if err != nil || !can {
		t.Errorf("current step approver should be able to approve (can=%v err=%v)", can, err)
	}
	can, err = f.svc.CanApprove(ctxFor(a2), f.docID.Hex())
	if err != nil || can {
		t.Errorf("later step approver must wait (can=%v err=%v)", can, err)
	}
}
