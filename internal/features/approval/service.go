package approval

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/workflow"
	"trackdoc/pkg/utils"
)

// ErrStepNotActionable is returned when a decision no longer applies,
// usually because another approver decided the step first.
var ErrStepNotActionable = errors.New("approval step is not actionable")

// ErrNotEligible is returned when the actor is not among the step's
// approvers.
var ErrNotEligible = errors.New("user is not an approver for this step")

// ErrAlreadyDecided is returned when the actor has already recorded a
// decision on the step.
var ErrAlreadyDecided = errors.New("user has already decided on this step")

// ErrNoActiveProcess is returned when the document has no approval
// process in progress.
var ErrNoActiveProcess = errors.New("document has no active approval process")

// Notifier pushes approval events to the users concerned. Implemented
// by the notification feature.
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error
}

type ApprovalService interface {
	// StartProcess snapshots the workflow and opens a process for a
	// freshly submitted document.
	StartProcess(ctx context.Context, doc *document.DocumentRecord, wf *workflow.WorkflowDefinition) error

	// Decide records the calling user's verdict on the document's
	// active process and closes the document when the process ends.
	Decide(ctx context.Context, documentID string, decision string, comment string) (*ApprovalProcess, error)

	GetActiveProcess(ctx context.Context, documentID string) (*ApprovalProcess, error)
	GetProcessHistory(ctx context.Context, documentID string) ([]ApprovalProcess, error)
	ListInProgress(ctx context.Context) ([]ApprovalProcess, error)
	CanApprove(ctx context.Context, documentID string) (bool, error)
}

type ApprovalServiceImpl struct {
	Repo         ApprovalRepository
	DocRepo      document.DocumentRepository
	AuditService audit.AuditService
	Notifier     Notifier
	Events       document.EventSink
}

func NewApprovalService(
	repo ApprovalRepository,
	docRepo document.DocumentRepository,
	auditService audit.AuditService,
	notifier Notifier,
	events document.EventSink,
) ApprovalService {
	return &ApprovalServiceImpl{
		Repo:         repo,
		DocRepo:      docRepo,
		AuditService: auditService,
		Notifier:     notifier,
		Events:       events,
	}
}

func actor(ctx context.Context) (primitive.ObjectID, []primitive.ObjectID, error) {
	claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return primitive.NilObjectID, nil, errors.New("no authenticated user in context")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, errors.New("invalid user id in claims")
	}
	roles := make([]primitive.ObjectID, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		if oid, err := primitive.ObjectIDFromHex(r); err == nil {
			roles = append(roles, oid)
		}
	}
	return userID, roles, nil
}

func (s *ApprovalServiceImpl) StartProcess(ctx context.Context, doc *document.DocumentRecord, wf *workflow.WorkflowDefinition) error {
	sorted := wf.SortedSteps()
	steps := make([]ProcessStep, 0, len(sorted))
	firstOrder := 0
	for _, ws := range sorted {
		steps = append(steps, ProcessStep{
			ID:                ws.ID,
			Name:              ws.Name,
			Order:             ws.Order,
			RequiredApprovers: ws.RequiredApprovers,
			ApproverRoles:     ws.ApproverRoles,
			Required:          ws.Required,
			Status:            StepPending,
			Decisions:         []StepDecision{},
		})
		if ws.Required && firstOrder == 0 {
			firstOrder = ws.Order
		}
	}

	process := &ApprovalProcess{
		ID:             primitive.NewObjectID(),
		DocumentID:     doc.ID,
		WorkflowID:     wf.ID,
		WorkflowName:   wf.Name,
		DocumentNumber: doc.Number,
		Status:         ProcessInProgress,
		CurrentOrder:   firstOrder,
		Steps:          steps,
		StartedAt:      time.Now(),
	}

	// A workflow of purely advisory steps has nothing to wait on.
	if firstOrder == 0 {
		now := time.Now()
		process.Status = ProcessApproved
		process.CompletedAt = &now
		for i := range process.Steps {
			process.Steps[i].Status = StepSkipped
		}
	}

	if err := s.Repo.Create(ctx, process); err != nil {
		return err
	}

	if process.Status == ProcessApproved {
		return s.closeDocument(ctx, process, true)
	}

	if current := process.CurrentStep(); current != nil {
		s.notifyStep(ctx, process, current, "Approval requested",
			"Document "+doc.Number+" is waiting for your approval")
	}
	return nil
}

func (s *ApprovalServiceImpl) Decide(ctx context.Context, documentID string, decision string, comment string) (*ApprovalProcess, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, errors.New("decision must be approved or rejected")
	}
	docOID, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return nil, err
	}
	userID, roleIDs, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	process, err := s.Repo.FindActiveByDocument(ctx, docOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.closedProcessError(ctx, docOID)
		}
		return nil, err
	}

	step := s.actionableStep(process, userID, roleIDs)
	if step == nil {
		return nil, ErrNotEligible
	}
	if step.DecidedBy(userID) != nil {
		return nil, ErrAlreadyDecided
	}

	expectedOrder := process.CurrentOrder
	stepID := step.ID

	step.Decisions = append(step.Decisions, StepDecision{
		ApproverID: userID,
		Decision:   decision,
		Comment:    comment,
		DecidedAt:  time.Now(),
	})

	var closed bool
	var approved bool
	if step.Required {
		closed, approved = s.settleRequiredStep(process, step, decision)
	} else {
		s.settleAdvisoryStep(step, decision)
	}

	ok, err := s.Repo.ApplyDecision(ctx, process.ID, stepID, expectedOrder, process)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race: another approver moved the process first.
		return nil, ErrStepNotActionable
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "document", documentID, map[string]common_models.Change{
		"step":     {New: step.Name},
		"decision": {New: decision},
	})

	if closed {
		if err := s.closeDocument(ctx, process, approved); err != nil {
			return nil, err
		}
	} else if step.Required && step.Status == StepApproved {
		if next := process.CurrentStep(); next != nil {
			s.notifyStep(ctx, process, next, "Approval requested",
				"Document "+process.DocumentNumber+" is waiting for your approval")
		}
	}
	return process, nil
}

// closedProcessError distinguishes a document whose process already ran
// to completion from one that never had a process at all.
func (s *ApprovalServiceImpl) closedProcessError(ctx context.Context, docOID primitive.ObjectID) error {
	processes, err := s.Repo.FindByDocument(ctx, docOID)
	if err != nil {
		return err
	}
	if len(processes) > 0 {
		return ErrStepNotActionable
	}
	return ErrNoActiveProcess
}

// actionableStep picks the step the user may act on: the gating required
// step first, otherwise any pending advisory step the user is eligible
// for.
func (s *ApprovalServiceImpl) actionableStep(process *ApprovalProcess, userID primitive.ObjectID, roleIDs []primitive.ObjectID) *ProcessStep {
	if current := process.CurrentStep(); current != nil && current.Eligible(userID, roleIDs) {
		return current
	}
	for i := range process.Steps {
		step := &process.Steps[i]
		if !step.Required && step.Status == StepPending && step.Eligible(userID, roleIDs) {
			return step
		}
	}
	return nil
}

// settleRequiredStep applies a decision to the gating step and works out
// the process-level consequence. Returns whether the process closed and,
// if so, with which outcome.
func (s *ApprovalServiceImpl) settleRequiredStep(process *ApprovalProcess, step *ProcessStep, decision string) (closed, approved bool) {
	now := time.Now()

	if decision == DecisionReject {
		step.Status = StepRejected
		process.Status = ProcessRejected
		process.CompletedAt = &now
		s.skipPending(process)
		return true, false
	}

	if !step.Satisfied() {
		// More named approvers still to go on this step.
		return false, false
	}
	step.Status = StepApproved

	for i := range process.Steps {
		next := &process.Steps[i]
		if next.Required && next.Status == StepPending && next.Order > step.Order {
			process.CurrentOrder = next.Order
			return false, false
		}
	}

	process.Status = ProcessApproved
	process.CompletedAt = &now
	s.skipPending(process)
	return true, true
}

func (s *ApprovalServiceImpl) settleAdvisoryStep(step *ProcessStep, decision string) {
	if decision == DecisionReject {
		step.Status = StepRejected
		return
	}
	if step.Satisfied() {
		step.Status = StepApproved
	}
}

func (s *ApprovalServiceImpl) skipPending(process *ApprovalProcess) {
	for i := range process.Steps {
		if process.Steps[i].Status == StepPending {
			process.Steps[i].Status = StepSkipped
		}
	}
}

func (s *ApprovalServiceImpl) closeDocument(ctx context.Context, process *ApprovalProcess, approved bool) error {
	to := document.StatusApproved
	if !approved {
		to = document.StatusRejected
	}
	now := time.Now()
	ok, err := s.DocRepo.UpdateStatus(ctx, process.DocumentID, document.StatusPending, to, map[string]interface{}{
		"decided_at": now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return &document.InvalidTransitionError{From: document.StatusPending, To: to}
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "document", process.DocumentID.Hex(), map[string]common_models.Change{
		"status": {Old: document.StatusPending, New: to},
	})

	doc, err := s.DocRepo.FindByID(ctx, process.DocumentID.Hex())
	if err == nil {
		if s.Notifier != nil {
			title := "Document approved"
			message := "Document " + process.DocumentNumber + " was approved"
			if !approved {
				title = "Document rejected"
				message = "Document " + process.DocumentNumber + " was rejected"
			}
			_ = s.Notifier.NotifyUsers(ctx, []primitive.ObjectID{doc.AuthorID}, title, message, "document", doc.ID.Hex())
		}
		if s.Events != nil {
			event := document.EventApproved
			if !approved {
				event = document.EventRejected
			}
			s.Events.DocumentEvent(ctx, event, doc)
		}
	}
	return nil
}

func (s *ApprovalServiceImpl) notifyStep(ctx context.Context, process *ApprovalProcess, step *ProcessStep, title, message string) {
	if s.Notifier == nil {
		return
	}
	_ = s.Notifier.NotifyUsers(ctx, step.RequiredApprovers, title, message, "document", process.DocumentID.Hex())
}

func (s *ApprovalServiceImpl) GetActiveProcess(ctx context.Context, documentID string) (*ApprovalProcess, error) {
	docOID, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return nil, err
	}
	process, err := s.Repo.FindActiveByDocument(ctx, docOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoActiveProcess
		}
		return nil, err
	}
	return process, nil
}

func (s *ApprovalServiceImpl) GetProcessHistory(ctx context.Context, documentID string) ([]ApprovalProcess, error) {
	docOID, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByDocument(ctx, docOID)
}

func (s *ApprovalServiceImpl) ListInProgress(ctx context.Context) ([]ApprovalProcess, error) {
	return s.Repo.FindInProgress(ctx)
}

func (s *ApprovalServiceImpl) CanApprove(ctx context.Context, documentID string) (bool, error) {
	docOID, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return false, err
	}
	userID, roleIDs, err := actor(ctx)
	if err != nil {
		return false, err
	}
	process, err := s.Repo.FindActiveByDocument(ctx, docOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	step := s.actionableStep(process, userID, roleIDs)
	return step != nil && step.DecidedBy(userID) == nil, nil
}
