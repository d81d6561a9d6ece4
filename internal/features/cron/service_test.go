package cron_feature

import (
	"context"
	"testing"
	"time"

	"trackdoc/internal/features/approval"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubApprovalService struct {
	processes []approval.ApprovalProcess
}

func (s *stubApprovalService) StartProcess(ctx context.Context, doc *document.DocumentRecord, wf *workflow.WorkflowDefinition) error {
	return nil
}

func (s *stubApprovalService) Decide(ctx context.Context, documentID, decision, comment string) (*approval.ApprovalProcess, error) {
	return nil, nil
}

func (s *stubApprovalService) GetActiveProcess(ctx context.Context, documentID string) (*approval.ApprovalProcess, error) {
	return nil, nil
}

func (s *stubApprovalService) GetProcessHistory(ctx context.Context, documentID string) ([]approval.ApprovalProcess, error) {
	return nil, nil
}

func (s *stubApprovalService) ListInProgress(ctx context.Context) ([]approval.ApprovalProcess, error) {
	return s.processes, nil
}

func (s *stubApprovalService) CanApprove(ctx context.Context, documentID string) (bool, error) {
	return false, nil
}

type recordingNotifier struct {
	calls [][]primitive.ObjectID
}

func (n *recordingNotifier) NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error {
	n.calls = append(n.calls, userIDs)
	return nil
}

func pendingProcess(startedAt time.Time, approvers ...primitive.ObjectID) approval.ApprovalProcess {
	return approval.ApprovalProcess{
		ID:             primitive.NewObjectID(),
		DocumentID:     primitive.NewObjectID(),
		DocumentNumber: "POL-IT-2026-001",
		Status:         approval.ProcessInProgress,
		CurrentOrder:   1,
		StartedAt:      startedAt,
		Steps: []approval.ProcessStep{
			{
				ID:                "step-1",
				Name:              "Department review",
				Order:             1,
				Required:          true,
				Status:            approval.StepPending,
				RequiredApprovers: approvers,
			},
		},
	}
}

func TestRemindStaleApprovals(t *testing.T) {
	approver := primitive.NewObjectID()

	stale := pendingProcess(time.Now().Add(-72*time.Hour), approver)
	fresh := pendingProcess(time.Now().Add(-1*time.Hour), approver)

	svc := &CronServiceImpl{
		approvalService: &stubApprovalService{processes: []approval.ApprovalProcess{stale, fresh}},
		logger:          zap.NewNop(),
	}
	notifier := &recordingNotifier{}
	svc.notifier = notifier

	count, err := svc.remindStaleApprovals(context.Background(), &CronJob{JobType: JobApprovalReminder})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder, got %d", count)
	}
	if len(notifier.calls) != 1 || notifier.calls[0][0] != approver {
		t.Fatalf("expected reminder for the pending approver, got %v", notifier.calls)
	}
}

func TestRemindStaleApprovalsRespectsDecisionActivity(t *testing.T) {
	approver := primitive.NewObjectID()

	// Started long ago but decided on recently, so not stale.
	process := pendingProcess(time.Now().Add(-200*time.Hour), approver)
	process.Steps[0].Decisions = []approval.StepDecision{
		{ApproverID: primitive.NewObjectID(), Decision: approval.DecisionApprove, DecidedAt: time.Now().Add(-2 * time.Hour)},
	}

	svc := &CronServiceImpl{
		approvalService: &stubApprovalService{processes: []approval.ApprovalProcess{process}},
		logger:          zap.NewNop(),
	}
	notifier := &recordingNotifier{}
	svc.notifier = notifier

	count, err := svc.remindStaleApprovals(context.Background(), &CronJob{JobType: JobApprovalReminder})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no reminders, got %d", count)
	}
}

func TestStaleThreshold(t *testing.T) {
	if got := staleThreshold(nil); got != 48*time.Hour {
		t.Fatalf("expected default 48h, got %v", got)
	}
	if got := staleThreshold(map[string]interface{}{"stale_hours": 12.0}); got != 12*time.Hour {
		t.Fatalf("expected 12h, got %v", got)
	}
	if got := staleThreshold(map[string]interface{}{"stale_hours": -5.0}); got != 48*time.Hour {
		t.Fatalf("negative hours should fall back to default, got %v", got)
	}
}

func TestValidateJobType(t *testing.T) {
	for _, valid := range []JobType{JobRetentionSweep, JobWarehouseExport, JobApprovalReminder} {
		if err := validateJobType(valid); err != nil {
			t.Fatalf("expected %s to be valid: %v", valid, err)
		}
	}
	if err := validateJobType("nightly_backup"); err == nil {
		t.Fatal("expected unknown job type to be rejected")
	}
}
