package report

import (
	"math"
	"testing"
	"time"

	"trackdoc/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func hoursEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestApprovalTimeRowsComputesDurations(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	firstDecided := start.Add(4 * time.Hour)
	secondDecided := firstDecided.Add(20 * time.Hour)

	processes := []approval.ApprovalProcess{{
		DocumentNumber: "POL-IT-2026-001",
		WorkflowName:   "Policy review",
		Status:         approval.ProcessApproved,
		StartedAt:      start,
		CompletedAt:    &secondDecided,
		Steps: []approval.ProcessStep{
			{
				Name: "Department review", Order: 1, Required: true,
				Status: approval.StepApproved,
				Decisions: []approval.StepDecision{{
					ApproverID: primitive.NewObjectID(),
					Decision:   approval.DecisionApprove,
					DecidedAt:  firstDecided,
				}},
			},
			{
				Name: "Quality sign-off", Order: 2, Required: true,
				Status: approval.StepApproved,
				Decisions: []approval.StepDecision{{
					ApproverID: primitive.NewObjectID(),
					Decision:   approval.DecisionApprove,
					DecidedAt:  secondDecided,
				}},
			},
		},
	}}

	rows := ApprovalTimeRows(processes)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if !hoursEqual(row.TotalHours, 24) {
		t.Errorf("total hours = %.2f, want 24", row.TotalHours)
	}
	if len(row.Steps) != 2 {
		t.Fatalf("step durations = %d, want 2", len(row.Steps))
	}
	if !hoursEqual(row.Steps[0].Hours, 4) {
		t.Errorf("first step hours = %.2f, want 4", row.Steps[0].Hours)
	}
	if !hoursEqual(row.Steps[1].Hours, 20) {
		t.Errorf("second step hours = %.2f, want 20", row.Steps[1].Hours)
	}
	if row.Outcome != "approved" {
		t.Errorf("outcome = %q, want approved", row.Outcome)
	}
}

func TestApprovalTimeRowsSkipsUndecidedSteps(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rejected := start.Add(2 * time.Hour)

	processes := []approval.ApprovalProcess{{
		DocumentNumber: "PRO-HR-2026-004",
		Status:         approval.ProcessRejected,
		StartedAt:      start,
		CompletedAt:    &rejected,
		Steps: []approval.ProcessStep{
			{
				Name: "First review", Order: 1, Required: true,
				Status: approval.StepRejected,
				Decisions: []approval.StepDecision{{
					Decision:  approval.DecisionReject,
					DecidedAt: rejected,
				}},
			},
			{Name: "Final review", Order: 2, Required: true, Status: approval.StepSkipped},
		},
	}}

	rows := ApprovalTimeRows(processes)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if len(rows[0].Steps) != 1 {
		t.Fatalf("step durations = %d, want 1 (skipped step has no decision)", len(rows[0].Steps))
	}
	if !hoursEqual(rows[0].Steps[0].Hours, 2) {
		t.Errorf("step hours = %.2f, want 2", rows[0].Steps[0].Hours)
	}
}

func TestApprovalTimeRowsIgnoresOpenProcesses(t *testing.T) {
	processes := []approval.ApprovalProcess{{
		DocumentNumber: "INS-FIN-2026-010",
		Status:         approval.ProcessInProgress,
		StartedAt:      time.Now(),
	}}
	if rows := ApprovalTimeRows(processes); len(rows) != 0 {
		t.Fatalf("rows = %d, want 0 for processes without completion", len(rows))
	}
}

func TestTabulateRegister(t *testing.T) {
	created := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	headers, rows := tabulate(ReportTypeRegister, []RegisterRow{{
		Number: "POL-IT-2026-001", Title: "Backup policy", Version: "1.0",
		Status: "approved", TypeName: "Policy", DepartmentName: "IT",
		AuthorName: "avasquez", CreatedAt: created,
	}})
	if len(headers) != 10 {
		t.Fatalf("headers = %d, want 10", len(headers))
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0][0] != "POL-IT-2026-001" {
		t.Errorf("first cell = %v, want document number", rows[0][0])
	}
	if rows[0][8] != "" {
		t.Errorf("submitted cell = %v, want empty for nil time", rows[0][8])
	}
}

func TestReportValidate(t *testing.T) {
	r := &Report{Name: "Monthly register", ReportType: ReportTypeRegister}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
	r = &Report{Name: "Bad", ReportType: "pivot"}
	if err := r.Validate(); err == nil {
		t.Fatal("unknown report type accepted")
	}
	r = &Report{ReportType: ReportTypeProductivity}
	if err := r.Validate(); err == nil {
		t.Fatal("missing name accepted")
	}
}
