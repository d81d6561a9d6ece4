package approval

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProcessStatus string

const (
	ProcessInProgress ProcessStatus = "in_progress"
	ProcessApproved   ProcessStatus = "approved"
	ProcessRejected   ProcessStatus = "rejected"
)

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepSkipped  StepStatus = "skipped"
)

const (
	DecisionApprove = "approved"
	DecisionReject  = "rejected"
)

// StepDecision is one approver's verdict on one step.
type StepDecision struct {
	ApproverID primitive.ObjectID `bson:"approver_id" json:"approverId"`
	Decision   string             `bson:"decision" json:"decision"`
	Comment    string             `bson:"comment" json:"comment"`
	DecidedAt  time.Time          `bson:"decided_at" json:"decidedAt"`
}

// ProcessStep is a snapshot of a workflow step taken when the process
// started. Editing the workflow definition afterwards does not touch
// running processes.
type ProcessStep struct {
	ID                string               `bson:"id" json:"id"`
	Name              string               `bson:"name" json:"name"`
	Order             int                  `bson:"order" json:"order"`
	RequiredApprovers []primitive.ObjectID `bson:"required_approvers" json:"requiredApprovers"`
	ApproverRoles     []primitive.ObjectID `bson:"approver_roles" json:"approverRoles"`
	Required          bool                 `bson:"required" json:"required"`
	Status            StepStatus           `bson:"status" json:"status"`
	Decisions         []StepDecision       `bson:"decisions" json:"decisions"`
}

// ApprovalProcess tracks one document version through its workflow.
// Required steps gate sequentially via CurrentOrder; non-required steps
// collect decisions for the record but never block completion.
type ApprovalProcess struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID       primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	DocumentID     primitive.ObjectID `bson:"document_id" json:"documentId"`
	WorkflowID     primitive.ObjectID `bson:"workflow_id,omitempty" json:"workflowId"`
	WorkflowName   string             `bson:"workflow_name" json:"workflowName"`
	DocumentNumber string             `bson:"document_number" json:"documentNumber"`
	Status         ProcessStatus      `bson:"status" json:"status"`
	CurrentOrder   int                `bson:"current_order" json:"currentOrder"`
	Steps          []ProcessStep      `bson:"steps" json:"steps"`
	StartedAt      time.Time          `bson:"started_at" json:"startedAt"`
	CompletedAt    *time.Time         `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// CurrentStep returns the required step the process is waiting on, or
// nil when the process is closed.
func (p *ApprovalProcess) CurrentStep() *ProcessStep {
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Required && s.Order == p.CurrentOrder && s.Status == StepPending {
			return s
		}
	}
	return nil
}

// StepByID finds a step in the snapshot.
func (p *ApprovalProcess) StepByID(id string) *ProcessStep {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// Eligible reports whether the given user, holding the given roles, may
// decide on the step.
func (s *ProcessStep) Eligible(userID primitive.ObjectID, roleIDs []primitive.ObjectID) bool {
	for _, id := range s.RequiredApprovers {
		if id == userID {
			return true
		}
	}
	for _, role := range s.ApproverRoles {
		for _, held := range roleIDs {
			if role == held {
				return true
			}
		}
	}
	return false
}

// DecidedBy returns the decision the user already recorded on the step,
// if any.
func (s *ProcessStep) DecidedBy(userID primitive.ObjectID) *StepDecision {
	for i := range s.Decisions {
		if s.Decisions[i].ApproverID == userID {
			return &s.Decisions[i]
		}
	}
	return nil
}

// Satisfied reports whether the step has collected the approvals it
// needs: every named approver when the list is non-empty, otherwise any
// single approval from a role holder.
func (s *ProcessStep) Satisfied() bool {
	if len(s.RequiredApprovers) == 0 {
		for _, d := range s.Decisions {
			if d.Decision == DecisionApprove {
				return true
			}
		}
		return false
	}
	for _, want := range s.RequiredApprovers {
		found := false
		for _, d := range s.Decisions {
			if d.ApproverID == want && d.Decision == DecisionApprove {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
