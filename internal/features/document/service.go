package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/department"
	"trackdoc/internal/features/doctype"
	"trackdoc/internal/features/workflow"
	"trackdoc/pkg/utils"
)

// maxNumberRetries bounds how many times a submission retries a
// colliding document number before giving up.
const maxNumberRetries = 3

// ApprovalStarter opens an approval process for a freshly submitted
// document. Implemented by the approval feature; wired as an interface
// to keep the dependency one-directional.
type ApprovalStarter interface {
	StartProcess(ctx context.Context, doc *DocumentRecord, wf *workflow.WorkflowDefinition) error
}

// Document lifecycle events delivered to an EventSink.
const (
	EventSubmitted  = "submitted"
	EventApproved   = "approved"
	EventRejected   = "rejected"
	EventNewVersion = "new_version"
)

// EventSink receives lifecycle events after they are committed. The
// automation feature implements it; a nil sink disables delivery.
type EventSink interface {
	DocumentEvent(ctx context.Context, event string, doc *DocumentRecord)
}

type DocumentService interface {
	CreateDraft(ctx context.Context, doc *DocumentRecord) (*DocumentRecord, error)
	UpdateDraft(ctx context.Context, id string, doc *DocumentRecord) error
	GetDocument(ctx context.Context, id string) (*DocumentRecord, error)
	GetVersions(ctx context.Context, number string) ([]DocumentRecord, error)
	ListDocuments(ctx context.Context, filter ListFilter, page, limit int64) ([]DocumentRecord, int64, error)
	SubmitForApproval(ctx context.Context, id string) (*DocumentRecord, error)
	CreateNewVersion(ctx context.Context, id string) (*DocumentRecord, error)
	DeleteDraft(ctx context.Context, id string) error

	// ArchiveExpired flags terminal documents whose type retention
	// period has lapsed. Returns how many documents were archived.
	ArchiveExpired(ctx context.Context) (int, error)
}

type DocumentServiceImpl struct {
	Repo            DocumentRepository
	Counters        CounterRepository
	TypeRepo        doctype.DocumentTypeRepository
	DeptRepo        department.DepartmentRepository
	WorkflowService workflow.WorkflowService
	Starter         ApprovalStarter
	AuditService    audit.AuditService
	Events          EventSink
}

func NewDocumentService(
	repo DocumentRepository,
	counters CounterRepository,
	typeRepo doctype.DocumentTypeRepository,
	deptRepo department.DepartmentRepository,
	workflowService workflow.WorkflowService,
	starter ApprovalStarter,
	auditService audit.AuditService,
	events EventSink,
) DocumentService {
	return &DocumentServiceImpl{
		Repo:            repo,
		Counters:        counters,
		TypeRepo:        typeRepo,
		DeptRepo:        deptRepo,
		WorkflowService: workflowService,
		Starter:         starter,
		AuditService:    auditService,
		Events:          events,
	}
}

func (s *DocumentServiceImpl) fireEvent(ctx context.Context, event string, doc *DocumentRecord) {
	if s.Events != nil {
		s.Events.DocumentEvent(ctx, event, doc)
	}
}

func actorID(ctx context.Context) primitive.ObjectID {
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			return oid
		}
	}
	return primitive.NilObjectID
}

// references loads and checks the document's type and department. Both
// must exist and be active.
func (s *DocumentServiceImpl) references(ctx context.Context, doc *DocumentRecord) (*doctype.DocumentType, *department.Department, error) {
	dt, err := s.TypeRepo.FindByID(ctx, doc.TypeID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidTypeOrDepartment
		}
		return nil, nil, err
	}
	dept, err := s.DeptRepo.FindByID(ctx, doc.DepartmentID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidTypeOrDepartment
		}
		return nil, nil, err
	}
	if !dt.IsActive() || !dept.IsActive() {
		return nil, nil, ErrInvalidTypeOrDepartment
	}
	return dt, dept, nil
}

func (s *DocumentServiceImpl) CreateDraft(ctx context.Context, doc *DocumentRecord) (*DocumentRecord, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := s.references(ctx, doc); err != nil {
		return nil, err
	}

	doc.ID = primitive.NewObjectID()
	doc.Number = ""
	doc.Version = "1.0"
	doc.Status = StatusDraft
	doc.Archived = false
	if doc.Fields == nil {
		doc.Fields = map[string]interface{}{}
	}
	if doc.AuthorID.IsZero() {
		doc.AuthorID = actorID(ctx)
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "document", doc.ID.Hex(), map[string]common_models.Change{
		"title":   {New: doc.Title},
		"version": {New: doc.Version},
	})
	return doc, nil
}

func (s *DocumentServiceImpl) UpdateDraft(ctx context.Context, id string, doc *DocumentRecord) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if old.Status != StatusDraft {
		return &InvalidTransitionError{From: old.Status, To: StatusDraft}
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if _, _, err := s.references(ctx, doc); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":         doc.Title,
		"description":   doc.Description,
		"type_id":       doc.TypeID,
		"department_id": doc.DepartmentID,
		"category_ids":  doc.CategoryIDs,
		"fields":        doc.Fields,
		"file_ids":      doc.FileIDs,
		"updated_at":    time.Now(),
	}
	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "document", id, map[string]common_models.Change{
		"title": {Old: old.Title, New: doc.Title},
	})
	return nil
}

func (s *DocumentServiceImpl) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *DocumentServiceImpl) GetVersions(ctx context.Context, number string) ([]DocumentRecord, error) {
	return s.Repo.FindVersions(ctx, number)
}

func (s *DocumentServiceImpl) ListDocuments(ctx context.Context, filter ListFilter, page, limit int64) ([]DocumentRecord, int64, error) {
	return s.Repo.List(ctx, filter, page, limit)
}

// SubmitForApproval moves a draft into the pending state. The document
// number is allocated here, not at creation, so abandoned drafts never
// consume a sequence value. Everything that can fail is checked before
// the counter is touched.
func (s *DocumentServiceImpl) SubmitForApproval(ctx context.Context, id string) (*DocumentRecord, error) {
	doc, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(doc.Status, StatusPending); err != nil {
		return nil, err
	}

	dt, dept, err := s.references(ctx, doc)
	if err != nil {
		return nil, err
	}
	for _, field := range dt.RequiredFields {
		v, ok := doc.Fields[field]
		if !ok || v == nil || v == "" {
			return nil, fmt.Errorf("required field %s is missing", field)
		}
	}

	var wf *workflow.WorkflowDefinition
	if dt.ApprovalRequired {
		wf, err = s.WorkflowService.ResolveWorkflow(ctx, doc.TypeID, doc.DepartmentID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	extra := map[string]interface{}{"submitted_at": now}

	if doc.Number == "" {
		// First submission of this document line: reserve a number.
		// A duplicate means a concurrent writer landed on the same
		// value through an out-of-band insert, so take the next one.
		year := now.Year()
		var lastErr error
		for attempt := 0; attempt < maxNumberRetries; attempt++ {
			seq, err := s.Counters.Next(ctx, dt.Prefix, dept.ShortName, year)
			if err != nil {
				return nil, err
			}
			number := FormatNumber(dt.Prefix, dept.ShortName, year, seq)
			extra["number"] = number
			ok, err := s.Repo.UpdateStatus(ctx, doc.ID, StatusDraft, StatusPending, extra)
			if err != nil {
				if errors.Is(err, ErrDuplicateNumber) {
					lastErr = err
					continue
				}
				return nil, err
			}
			if !ok {
				current, ferr := s.Repo.FindByID(ctx, id)
				if ferr != nil {
					return nil, ferr
				}
				return nil, &InvalidTransitionError{From: current.Status, To: StatusPending}
			}
			doc.Number = number
			lastErr = nil
			break
		}
		if lastErr != nil {
			return nil, lastErr
		}
	} else {
		ok, err := s.Repo.UpdateStatus(ctx, doc.ID, StatusDraft, StatusPending, extra)
		if err != nil {
			return nil, err
		}
		if !ok {
			current, ferr := s.Repo.FindByID(ctx, id)
			if ferr != nil {
				return nil, ferr
			}
			return nil, &InvalidTransitionError{From: current.Status, To: StatusPending}
		}
	}
	doc.Status = StatusPending
	doc.SubmittedAt = &now

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionSubmit, "document", doc.ID.Hex(), map[string]common_models.Change{
		"number": {New: doc.Number},
		"status": {Old: StatusDraft, New: StatusPending},
	})

	s.fireEvent(ctx, EventSubmitted, doc)

	if dt.ApprovalRequired {
		if err := s.Starter.StartProcess(ctx, doc, wf); err != nil {
			// Undo the status change so the document stays decidable:
			// a pending document without a process is unreachable by
			// any approver. The reserved number stays and is reused on
			// the next submission.
			if _, rerr := s.Repo.UpdateStatus(ctx, doc.ID, StatusPending, StatusDraft, map[string]interface{}{
				"submitted_at": nil,
			}); rerr != nil {
				return nil, fmt.Errorf("start approval process: %w (rollback to draft also failed: %v)", err, rerr)
			}
			doc.Status = StatusDraft
			doc.SubmittedAt = nil
			return nil, err
		}
	} else {
		// Types without approval publish on submission.
		decided := time.Now()
		if _, err := s.Repo.UpdateStatus(ctx, doc.ID, StatusPending, StatusApproved, map[string]interface{}{
			"decided_at": decided,
		}); err != nil {
			return nil, err
		}
		doc.Status = StatusApproved
		doc.DecidedAt = &decided
		s.fireEvent(ctx, EventApproved, doc)
	}
	return doc, nil
}

// CreateNewVersion opens a fresh draft continuing a terminal document.
// The number carries over; the major version increments.
func (s *DocumentServiceImpl) CreateNewVersion(ctx context.Context, id string) (*DocumentRecord, error) {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !old.IsTerminal() {
		return nil, &InvalidTransitionError{From: old.Status, To: StatusDraft}
	}
	hasSuccessor, err := s.Repo.HasSuccessor(ctx, old.ID)
	if err != nil {
		return nil, err
	}
	if hasSuccessor {
		return nil, ErrNotLatestVersion
	}

	next := &DocumentRecord{
		ID:                primitive.NewObjectID(),
		TenantID:          old.TenantID,
		Number:            old.Number,
		Title:             old.Title,
		Description:       old.Description,
		TypeID:            old.TypeID,
		DepartmentID:      old.DepartmentID,
		CategoryIDs:       old.CategoryIDs,
		AuthorID:          actorID(ctx),
		Version:           NextVersion(old.Version),
		Status:            StatusDraft,
		Fields:            old.Fields,
		FileIDs:           old.FileIDs,
		PreviousVersionID: old.ID,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if next.AuthorID.IsZero() {
		next.AuthorID = old.AuthorID
	}

	if err := s.Repo.Create(ctx, next); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionVersion, "document", next.ID.Hex(), map[string]common_models.Change{
		"number":  {New: next.Number},
		"version": {Old: old.Version, New: next.Version},
	})
	s.fireEvent(ctx, EventNewVersion, next)
	return next, nil
}

func (s *DocumentServiceImpl) DeleteDraft(ctx context.Context, id string) error {
	doc, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status != StatusDraft {
		return errors.New("only drafts can be deleted")
	}

	if err := s.Repo.Update(ctx, id, map[string]interface{}{
		"archived":    true,
		"archived_at": time.Now(),
		"updated_at":  time.Now(),
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "document", id, map[string]common_models.Change{
		"title": {Old: doc.Title},
	})
	return nil
}

func (s *DocumentServiceImpl) ArchiveExpired(ctx context.Context) (int, error) {
	types, err := s.TypeRepo.List(ctx, true)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, dt := range types {
		if dt.RetentionPeriodMonths <= 0 {
			continue
		}
		cutoff := time.Now().AddDate(0, -dt.RetentionPeriodMonths, 0)
		docs, err := s.Repo.FindExpired(ctx, dt.ID, cutoff)
		if err != nil {
			return archived, err
		}
		for _, doc := range docs {
			if err := s.Repo.Archive(ctx, doc.ID); err != nil {
				return archived, err
			}
			archived++
			_ = s.AuditService.LogChange(ctx, common_models.AuditActionRetention, "document", doc.ID.Hex(), map[string]common_models.Change{
				"archived": {Old: false, New: true},
			})
		}
	}
	return archived, nil
}
