package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/department"
	"trackdoc/internal/features/doctype"
	"trackdoc/internal/features/workflow"
)

type mockDocRepo struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*DocumentRecord
	// dupFailures makes the next N status updates that set a number fail
	// as if the unique index rejected them
	dupFailures int
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{docs: map[primitive.ObjectID]*DocumentRecord{}}
}

func (m *mockDocRepo) Create(ctx context.Context, doc *DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockDocRepo) FindByID(ctx context.Context, id string) (*DocumentRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[oid]; ok {
		cp := *doc
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockDocRepo) FindVersions(ctx context.Context, number string) ([]DocumentRecord, error) {
	var out []DocumentRecord
	for _, doc := range m.docs {
		if doc.Number == number {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *mockDocRepo) List(ctx context.Context, filter ListFilter, page, limit int64) ([]DocumentRecord, int64, error) {
	var out []DocumentRecord
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, int64(len(out)), nil
}

func (m *mockDocRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *mockDocRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to DocumentStatus, extra map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.Status != from {
		return false, nil
	}
	if _, settingNumber := extra["number"]; settingNumber && m.dupFailures > 0 {
		m.dupFailures--
		return false, ErrDuplicateNumber
	}
	doc.Status = to
	if v, ok := extra["number"].(string); ok {
		doc.Number = v
	}
	if v, ok := extra["submitted_at"]; ok {
		if ts, ok := v.(time.Time); ok {
			doc.SubmittedAt = &ts
		} else {
			doc.SubmittedAt = nil
		}
	}
	if v, ok := extra["decided_at"].(time.Time); ok {
		doc.DecidedAt = &v
	}
	return true, nil
}

func (m *mockDocRepo) HasDocumentsOfType(ctx context.Context, typeID string) (bool, error) {
	return false, nil
}

func (m *mockDocRepo) HasSuccessor(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for _, doc := range m.docs {
		if doc.PreviousVersionID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDocRepo) FindExpired(ctx context.Context, typeID primitive.ObjectID, decidedBefore time.Time) ([]DocumentRecord, error) {
	var out []DocumentRecord
	for _, doc := range m.docs {
		if doc.TypeID == typeID && !doc.Archived && doc.IsTerminal() && doc.DecidedAt != nil && doc.DecidedAt.Before(decidedBefore) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *mockDocRepo) Archive(ctx context.Context, id primitive.ObjectID) error {
	if doc, ok := m.docs[id]; ok {
		now := time.Now()
		doc.Archived = true
		doc.ArchivedAt = &now
	}
	return nil
}

func (m *mockDocRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockCounter struct {
	mu    sync.Mutex
	seqs  map[string]int64
	calls int
}

func newMockCounter() *mockCounter {
	return &mockCounter{seqs: map[string]int64{}}
}

func (m *mockCounter) Next(ctx context.Context, prefix, deptShortName string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	key := fmt.Sprintf("%s|%s|%d", prefix, deptShortName, year)
	m.seqs[key]++
	return m.seqs[key], nil
}

type stubTypeRepo struct {
	types map[string]*doctype.DocumentType
}

func (m *stubTypeRepo) Create(ctx context.Context, dt *doctype.DocumentType) error { return nil }

func (m *stubTypeRepo) FindByID(ctx context.Context, id string) (*doctype.DocumentType, error) {
	if dt, ok := m.types[id]; ok {
		return dt, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *stubTypeRepo) FindByPrefix(ctx context.Context, prefix string) (*doctype.DocumentType, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *stubTypeRepo) List(ctx context.Context, includeInactive bool) ([]doctype.DocumentType, error) {
	var out []doctype.DocumentType
	for _, dt := range m.types {
		out = append(out, *dt)
	}
	return out, nil
}

func (m *stubTypeRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *stubTypeRepo) Delete(ctx context.Context, id string) error { return nil }

type stubDeptRepo struct {
	depts map[string]*department.Department
}

func (m *stubDeptRepo) Create(ctx context.Context, dept *department.Department) error { return nil }

func (m *stubDeptRepo) FindByID(ctx context.Context, id string) (*department.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *stubDeptRepo) FindByShortName(ctx context.Context, shortName string) (*department.Department, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *stubDeptRepo) List(ctx context.Context, includeInactive bool) ([]department.Department, error) {
	return nil, nil
}

func (m *stubDeptRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (m *stubDeptRepo) Delete(ctx context.Context, id string) error { return nil }

type stubWorkflowService struct {
	resolved   *workflow.WorkflowDefinition
	resolveErr error
}

func (m *stubWorkflowService) CreateWorkflow(ctx context.Context, wf *workflow.WorkflowDefinition) (*workflow.WorkflowDefinition, error) {
	return wf, nil
}

func (m *stubWorkflowService) GetWorkflow(ctx context.Context, id string) (*workflow.WorkflowDefinition, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *stubWorkflowService) ListWorkflows(ctx context.Context) ([]workflow.WorkflowDefinition, error) {
	return nil, nil
}

func (m *stubWorkflowService) UpdateWorkflow(ctx context.Context, id string, wf *workflow.WorkflowDefinition) error {
	return nil
}

func (m *stubWorkflowService) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

func (m *stubWorkflowService) DeleteWorkflow(ctx context.Context, id string) error { return nil }

func (m *stubWorkflowService) ResolveWorkflow(ctx context.Context, typeID, departmentID primitive.ObjectID) (*workflow.WorkflowDefinition, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.resolved, nil
}

type recordingStarter struct {
	mu      sync.Mutex
	started []*DocumentRecord
	err     error
}

func (m *recordingStarter) StartProcess(ctx context.Context, doc *DocumentRecord, wf *workflow.WorkflowDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.started = append(m.started, doc)
	return nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	repo     *mockDocRepo
	counter  *mockCounter
	starter  *recordingStarter
	wf       *stubWorkflowService
	svc      DocumentService
	typeID   primitive.ObjectID
	deptID   primitive.ObjectID
	docType  *doctype.DocumentType
	deptRepo *stubDeptRepo
}

func newFixture() *fixture {
	typeID := primitive.NewObjectID()
	deptID := primitive.NewObjectID()

	dt := &doctype.DocumentType{
		ID:               typeID,
		Name:             "Policy",
		Prefix:           "POL",
		ApprovalRequired: true,
		Status:           common_models.StatusActive,
	}
	dept := &department.Department{
		ID:        deptID,
		Name:      "Information Technology",
		ShortName: "IT",
		Status:    common_models.StatusActive,
	}

	f := &fixture{
		repo:    newMockDocRepo(),
		counter: newMockCounter(),
		starter: &recordingStarter{},
		wf: &stubWorkflowService{resolved: &workflow.WorkflowDefinition{
			Name: "Default",
			Steps: []workflow.WorkflowStep{{
				ID:                "s1",
				Name:              "Review",
				Order:             1,
				RequiredApprovers: []primitive.ObjectID{primitive.NewObjectID()},
				Required:          true,
			}},
		}},
		typeID:  typeID,
		deptID:  deptID,
		docType: dt,
		deptRepo: &stubDeptRepo{depts: map[string]*department.Department{
			deptID.Hex(): dept,
		}},
	}
	f.svc = NewDocumentService(
		f.repo,
		f.counter,
		&stubTypeRepo{types: map[string]*doctype.DocumentType{typeID.Hex(): dt}},
		f.deptRepo,
		f.wf,
		f.starter,
		noopAudit{},
		nil,
	)
	return f
}

func (f *fixture) draft(t *testing.T) *DocumentRecord {
	t.Helper()
	doc, err := f.svc.CreateDraft(context.Background(), &DocumentRecord{
		Title:        "Information Security Policy",
		TypeID:       f.typeID,
		DepartmentID: f.deptID,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return doc
}

func TestCreateDraft(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)

	if doc.Status != StatusDraft {
		t.Errorf("expected draft status, got %s", doc.Status)
	}
	if doc.Version != "1.0" {
		t.Errorf("expected version 1.0, got %s", doc.Version)
	}
	if doc.Number != "" {
		t.Errorf("drafts must not carry a number, got %s", doc.Number)
	}
}

func TestCreateDraftRequiresActiveReferences(t *testing.T) {
	f := newFixture()
	f.docType.Status = common_models.StatusInactive

	_, err := f.svc.CreateDraft(context.Background(), &DocumentRecord{
		Title:        "Orphan",
		TypeID:       f.typeID,
		DepartmentID: f.deptID,
	})
	if !errors.Is(err, ErrInvalidTypeOrDepartment) {
		t.Errorf("expected ErrInvalidTypeOrDepartment, got %v", err)
	}
}

func TestSubmitAllocatesNumberAndStartsProcess(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)

	submitted, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}

	want := FormatNumber("POL", "IT", time.Now().Year(), 1)
	if submitted.Number != want {
		t.Errorf("expected number %s, got %s", want, submitted.Number)
	}
	if submitted.Status != StatusPending {
		t.Errorf("expected pending status, got %s", submitted.Status)
	}
	if len(f.starter.started) != 1 {
		t.Errorf("expected one approval process, got %d", len(f.starter.started))
	}
}

func TestSubmitSequenceIncrements(t *testing.T) {
	f := newFixture()
	first := f.draft(t)
	second := f.draft(t)

	d1, err := f.svc.SubmitForApproval(context.Background(), first.ID.Hex())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	d2, err := f.svc.SubmitForApproval(context.Background(), second.ID.Hex())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	year := time.Now().Year()
	if d1.Number != FormatNumber("POL", "IT", year, 1) || d2.Number != FormatNumber("POL", "IT", year, 2) {
		t.Errorf("sequence did not increment: %s then %s", d1.Number, d2.Number)
	}
}

func TestSubmitMissingRequiredFieldConsumesNoNumber(t *testing.T) {
	f := newFixture()
	f.docType.RequiredFields = []string{"effective_date"}
	doc := f.draft(t)

	_, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err == nil {
		t.Fatal("expected missing field error")
	}
	if f.counter.calls != 0 {
		t.Errorf("failed submission must not consume a sequence value, consumed %d", f.counter.calls)
	}
}

func TestSubmitNoWorkflowConsumesNoNumber(t *testing.T) {
	f := newFixture()
	f.wf.resolveErr = workflow.ErrNoWorkflowConfigured
	doc := f.draft(t)

	_, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if !errors.Is(err, workflow.ErrNoWorkflowConfigured) {
		t.Fatalf("expected ErrNoWorkflowConfigured, got %v", err)
	}
	if f.counter.calls != 0 {
		t.Errorf("failed submission must not consume a sequence value, consumed %d", f.counter.calls)
	}
}

func TestSubmitNonDraftFails(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)
	if _, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.From != StatusPending {
		t.Errorf("expected transition error from pending, got %s", transition.From)
	}
}

func TestSubmitRetriesOnDuplicateNumber(t *testing.T) {
	f := newFixture()
	f.repo.dupFailures = 1
	doc := f.draft(t)

	submitted, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}

	want := FormatNumber("POL", "IT", time.Now().Year(), 2)
	if submitted.Number != want {
		t.Errorf("expected retried number %s, got %s", want, submitted.Number)
	}
}

func TestSubmitGivesUpAfterRetries(t *testing.T) {
	f := newFixture()
	f.repo.dupFailures = maxNumberRetries
	doc := f.draft(t)

	_, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Errorf("expected ErrDuplicateNumber after exhausted retries, got %v", err)
	}
}

func TestSubmitRevertsToDraftWhenProcessStartFails(t *testing.T) {
	f := newFixture()
	f.starter.err = errors.New("workflow store unavailable")
	doc := f.draft(t)

	_, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err == nil {
		t.Fatal("expected submit to fail when the process cannot start")
	}

	stored, err := f.repo.FindByID(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != StatusDraft {
		t.Errorf("document should revert to draft, got %s", stored.Status)
	}
	if stored.SubmittedAt != nil {
		t.Error("submitted_at should be cleared on revert")
	}
	if stored.Number == "" {
		t.Error("reserved number should survive the revert")
	}

	// The reverted draft is resubmittable and keeps its number.
	f.starter.err = nil
	resubmitted, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("resubmit after revert: %v", err)
	}
	if resubmitted.Number != stored.Number {
		t.Errorf("resubmission should reuse %s, got %s", stored.Number, resubmitted.Number)
	}
}

func TestConcurrentSubmissionsAllocateDistinctNumbers(t *testing.T) {
	f := newFixture()

	const n = 32
	drafts := make([]*DocumentRecord, n)
	for i := range drafts {
		drafts[i] = f.draft(t)
	}

	numbers := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range drafts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := f.svc.SubmitForApproval(context.Background(), drafts[i].ID.Hex())
			if err != nil {
				errs[i] = err
				return
			}
			numbers[i] = doc.Number
		}(i)
	}
	wg.Wait()

	seen := map[string]int{}
	for i := range drafts {
		if errs[i] != nil {
			t.Fatalf("submit %d: %v", i, errs[i])
		}
		if prev, dup := seen[numbers[i]]; dup {
			t.Fatalf("submissions %d and %d both got %s", prev, i, numbers[i])
		}
		seen[numbers[i]] = i
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct numbers, got %d", n, len(seen))
	}
}

func TestSubmitWithoutApprovalPublishesDirectly(t *testing.T) {
	f := newFixture()
	f.docType.ApprovalRequired = false
	doc := f.draft(t)

	submitted, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}
	if submitted.Status != StatusApproved {
		t.Errorf("expected approved status, got %s", submitted.Status)
	}
	if len(f.starter.started) != 0 {
		t.Errorf("no approval process expected, got %d", len(f.starter.started))
	}
}

func TestCreateNewVersion(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)
	if _, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	now := time.Now()
	f.repo.docs[doc.ID].Status = StatusApproved
	f.repo.docs[doc.ID].DecidedAt = &now

	next, err := f.svc.CreateNewVersion(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("CreateNewVersion: %v", err)
	}
	if next.Version != "2.0" {
		t.Errorf("expected version 2.0, got %s", next.Version)
	}
	if next.Number != f.repo.docs[doc.ID].Number {
		t.Errorf("new version must keep the number, got %s", next.Number)
	}
	if next.Status != StatusDraft {
		t.Errorf("new version must start as draft, got %s", next.Status)
	}
	if next.PreviousVersionID != doc.ID {
		t.Errorf("new version must link its predecessor")
	}
}

func TestCreateNewVersionRequiresTerminal(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)

	_, err := f.svc.CreateNewVersion(context.Background(), doc.ID.Hex())
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Errorf("expected InvalidTransitionError from draft, got %v", err)
	}
}

func TestCreateNewVersionRejectsStaleBase(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)
	if _, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.repo.docs[doc.ID].Status = StatusApproved

	if _, err := f.svc.CreateNewVersion(context.Background(), doc.ID.Hex()); err != nil {
		t.Fatalf("first new version: %v", err)
	}

	_, err := f.svc.CreateNewVersion(context.Background(), doc.ID.Hex())
	if !errors.Is(err, ErrNotLatestVersion) {
		t.Errorf("expected ErrNotLatestVersion, got %v", err)
	}
}

func TestResubmissionKeepsNumber(t *testing.T) {
	f := newFixture()
	doc := f.draft(t)
	if _, err := f.svc.SubmitForApproval(context.Background(), doc.ID.Hex()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.repo.docs[doc.ID].Status = StatusRejected
	number := f.repo.docs[doc.ID].Number

	next, err := f.svc.CreateNewVersion(context.Background(), doc.ID.Hex())
	if err != nil {
		t.Fatalf("CreateNewVersion: %v", err)
	}
	callsBefore := f.counter.calls

	submitted, err := f.svc.SubmitForApproval(context.Background(), next.ID.Hex())
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if submitted.Number != number {
		t.Errorf("resubmission must keep number %s, got %s", number, submitted.Number)
	}
	if f.counter.calls != callsBefore {
		t.Errorf("resubmission must not allocate a new sequence value")
	}
}

func TestArchiveExpired(t *testing.T) {
	f := newFixture()
	f.docType.RetentionPeriodMonths = 12
	doc := f.draft(t)
	old := time.Now().AddDate(0, -24, 0)
	f.repo.docs[doc.ID].Status = StatusApproved
	f.repo.docs[doc.ID].DecidedAt = &old

	archived, err := f.svc.ArchiveExpired(context.Background())
	if err != nil {
		t.Fatalf("ArchiveExpired: %v", err)
	}
	if archived != 1 {
		t.Errorf("expected 1 archived document, got %d", archived)
	}
	if !f.repo.docs[doc.ID].Archived {
		t.Errorf("document should be flagged archived")
	}
}
