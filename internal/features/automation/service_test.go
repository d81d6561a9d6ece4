package automation

import (
	"context"
	"testing"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/document"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockRuleRepo struct {
	rules []AutomationRule
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *AutomationRule) error {
	rule.ID = primitive.NewObjectID()
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *mockRuleRepo) GetByID(ctx context.Context, id string) (*AutomationRule, error) {
	for i := range m.rules {
		if m.rules[i].ID.Hex() == id {
			return &m.rules[i], nil
		}
	}
	return nil, nil
}

func (m *mockRuleRepo) FindByTrigger(ctx context.Context, trigger string) ([]AutomationRule, error) {
	var out []AutomationRule
	for _, r := range m.rules {
		if r.Active && r.TriggerType == trigger {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleRepo) List(ctx context.Context) ([]AutomationRule, error) { return m.rules, nil }
func (m *mockRuleRepo) Update(ctx context.Context, rule *AutomationRule) error {
	return nil
}
func (m *mockRuleRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockRuleRepo) Enable(ctx context.Context, id string, active bool) error {
	return nil
}

type recordingExecutor struct {
	executed []RuleAction
}

func (r *recordingExecutor) ExecuteActions(ctx context.Context, actions []RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error {
	r.executed = append(r.executed, actions...)
	return nil
}

func (r *recordingExecutor) ExecuteAction(ctx context.Context, action RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error {
	r.executed = append(r.executed, action)
	return nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func sampleDoc() *document.DocumentRecord {
	return &document.DocumentRecord{
		ID:     primitive.NewObjectID(),
		Number: "POL-IT-2026-007",
		Title:  "Access control policy",
		Status: document.StatusApproved,
		TypeID: primitive.NewObjectID(),
		Fields: map[string]interface{}{"classification": "internal", "pages": 12},
	}
}

func TestDocumentEventRunsMatchingRules(t *testing.T) {
	repo := &mockRuleRepo{rules: []AutomationRule{
		{
			ID: primitive.NewObjectID(), Name: "notify on approval",
			TriggerType: "approved", Active: true,
			Actions: []RuleAction{{Type: ActionSendNotification, Config: map[string]interface{}{"title": "done"}}},
		},
		{
			ID: primitive.NewObjectID(), Name: "wrong trigger",
			TriggerType: "submitted", Active: true,
			Actions: []RuleAction{{Type: ActionSendEmail}},
		},
		{
			ID: primitive.NewObjectID(), Name: "inactive",
			TriggerType: "approved", Active: false,
			Actions: []RuleAction{{Type: ActionSendEmail}},
		},
	}}
	exec := &recordingExecutor{}
	svc := NewAutomationService(repo, exec, noopAudit{}, zap.NewNop())

	svc.DocumentEvent(context.Background(), "approved", sampleDoc())

	if len(exec.executed) != 1 {
		t.Fatalf("executed = %d actions, want 1", len(exec.executed))
	}
	if exec.executed[0].Type != ActionSendNotification {
		t.Errorf("executed action = %s, want send_notification", exec.executed[0].Type)
	}
}

func TestDocumentEventFiltersByType(t *testing.T) {
	doc := sampleDoc()
	otherType := primitive.NewObjectID()
	repo := &mockRuleRepo{rules: []AutomationRule{{
		ID: primitive.NewObjectID(), Name: "scoped to another type",
		TriggerType: "approved", Active: true, DocumentTypeID: otherType,
		Actions: []RuleAction{{Type: ActionSendEmail}},
	}}}
	exec := &recordingExecutor{}
	svc := NewAutomationService(repo, exec, noopAudit{}, zap.NewNop())

	svc.DocumentEvent(context.Background(), "approved", doc)

	if len(exec.executed) != 0 {
		t.Fatalf("executed = %d actions, want 0 for type-scoped rule", len(exec.executed))
	}
}

func TestEvaluateConditions(t *testing.T) {
	record := flattenDocument(sampleDoc())

	cases := []struct {
		name string
		cond RuleCondition
		want bool
	}{
		{"equals match", RuleCondition{Field: "status", Operator: OperatorEquals, Value: "approved"}, true},
		{"equals miss", RuleCondition{Field: "status", Operator: OperatorEquals, Value: "draft"}, false},
		{"not equals", RuleCondition{Field: "classification", Operator: OperatorNotEquals, Value: "public"}, true},
		{"contains", RuleCondition{Field: "number", Operator: OperatorContains, Value: "POL-IT"}, true},
		{"gt numeric", RuleCondition{Field: "pages", Operator: OperatorGreaterThan, Value: 10}, true},
		{"lt numeric miss", RuleCondition{Field: "pages", Operator: OperatorLessThan, Value: 10}, false},
		{"missing field", RuleCondition{Field: "owner", Operator: OperatorEquals, Value: "x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evaluateConditions([]RuleCondition{tc.cond}, record); got != tc.want {
				t.Errorf("evaluateConditions = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReplacePlaceholders(t *testing.T) {
	record := map[string]interface{}{"number": "POL-IT-2026-007", "title": "Access control policy"}
	got := replacePlaceholders("Document {{number}}: {{title}}", record)
	want := "Document POL-IT-2026-007: Access control policy"
	if got != want {
		t.Errorf("replacePlaceholders = %q, want %q", got, want)
	}
}

func TestRuleValidate(t *testing.T) {
	rule := &AutomationRule{
		Name:        "escalate",
		TriggerType: "rejected",
		Actions:     []RuleAction{{Type: ActionSendEmail}},
	}
	if err := rule.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	rule.TriggerType = "archived"
	if err := rule.Validate(); err == nil {
		t.Fatal("unknown trigger accepted")
	}

	rule.TriggerType = "rejected"
	rule.Actions = []RuleAction{{Type: "generate_pdf"}}
	if err := rule.Validate(); err == nil {
		t.Fatal("unknown action type accepted")
	}
}
