package automation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/document"

	"go.uber.org/zap"
)

type AutomationService interface {
	CreateRule(ctx context.Context, rule *AutomationRule) error
	GetRule(ctx context.Context, id string) (*AutomationRule, error)
	ListRules(ctx context.Context) ([]AutomationRule, error)
	UpdateRule(ctx context.Context, rule *AutomationRule) error
	DeleteRule(ctx context.Context, id string) error
	EnableRule(ctx context.Context, id string, active bool) error

	// DocumentEvent satisfies document.EventSink: it runs every active
	// rule whose trigger and conditions match the document.
	DocumentEvent(ctx context.Context, event string, doc *document.DocumentRecord)
}

type AutomationServiceImpl struct {
	Repo           AutomationRepository
	ActionExecutor ActionExecutor
	AuditService   audit.AuditService
	Logger         *zap.Logger
}

func NewAutomationService(repo AutomationRepository, actionExecutor ActionExecutor, auditService audit.AuditService, logger *zap.Logger) AutomationService {
	return &AutomationServiceImpl{
		Repo:           repo,
		ActionExecutor: actionExecutor,
		AuditService:   auditService,
		Logger:         logger,
	}
}

func (s *AutomationServiceImpl) CreateRule(ctx context.Context, rule *AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	err := s.Repo.Create(ctx, rule)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionAutomation, "automation", rule.ID.Hex(), map[string]common_models.Change{
			"rule": {New: rule},
		})
	}
	return err
}

func (s *AutomationServiceImpl) GetRule(ctx context.Context, id string) (*AutomationRule, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *AutomationServiceImpl) ListRules(ctx context.Context) ([]AutomationRule, error) {
	return s.Repo.List(ctx)
}

func (s *AutomationServiceImpl) UpdateRule(ctx context.Context, rule *AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	oldRule, _ := s.GetRule(ctx, rule.ID.Hex())

	err := s.Repo.Update(ctx, rule)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionAutomation, "automation", rule.ID.Hex(), map[string]common_models.Change{
			"rule": {Old: oldRule, New: rule},
		})
	}
	return err
}

func (s *AutomationServiceImpl) DeleteRule(ctx context.Context, id string) error {
	oldRule, _ := s.GetRule(ctx, id)

	err := s.Repo.Delete(ctx, id)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionAutomation, "automation", id, map[string]common_models.Change{
			"rule": {Old: oldRule, New: "DELETED"},
		})
	}
	return err
}

func (s *AutomationServiceImpl) EnableRule(ctx context.Context, id string, active bool) error {
	return s.Repo.Enable(ctx, id, active)
}

func (s *AutomationServiceImpl) DocumentEvent(ctx context.Context, event string, doc *document.DocumentRecord) {
	rules, err := s.Repo.FindByTrigger(ctx, event)
	if err != nil {
		s.Logger.Warn("automation rule lookup failed", zap.String("trigger", event), zap.Error(err))
		return
	}
	if len(rules) == 0 {
		return
	}

	record := flattenDocument(doc)
	for _, rule := range rules {
		if !rule.DocumentTypeID.IsZero() && rule.DocumentTypeID != doc.TypeID {
			continue
		}
		if !evaluateConditions(rule.Conditions, record) {
			continue
		}
		if err := s.ActionExecutor.ExecuteActions(ctx, rule.Actions, doc, record); err != nil {
			s.Logger.Warn("automation rule execution failed",
				zap.String("rule", rule.Name), zap.String("trigger", event), zap.Error(err))
		}
	}
}

// flattenDocument exposes document attributes and custom fields under a
// single namespace for condition matching and placeholder substitution.
func flattenDocument(doc *document.DocumentRecord) map[string]interface{} {
	record := map[string]interface{}{
		"_id":           doc.ID,
		"number":        doc.Number,
		"title":         doc.Title,
		"description":   doc.Description,
		"version":       doc.Version,
		"status":        string(doc.Status),
		"type_id":       doc.TypeID.Hex(),
		"department_id": doc.DepartmentID.Hex(),
		"author_id":     doc.AuthorID.Hex(),
	}
	for k, v := range doc.Fields {
		record[k] = v
	}
	return record
}

func evaluateConditions(conditions []RuleCondition, record map[string]interface{}) bool {
	for _, cond := range conditions {
		val, exists := record[cond.Field]
		if !exists {
			return false
		}

		match := false
		switch cond.Operator {
		case OperatorEquals:
			match = fmt.Sprintf("%v", val) == fmt.Sprintf("%v", cond.Value)
		case OperatorNotEquals:
			match = fmt.Sprintf("%v", val) != fmt.Sprintf("%v", cond.Value)
		case OperatorContains:
			match = strings.Contains(fmt.Sprintf("%v", val), fmt.Sprintf("%v", cond.Value))
		case OperatorGreaterThan:
			a, aok := toFloat(val)
			b, bok := toFloat(cond.Value)
			match = aok && bok && a > b
		case OperatorLessThan:
			a, aok := toFloat(val)
			b, bok := toFloat(cond.Value)
			match = aok && bok && a < b
		}

		if !match {
			return false
		}
	}
	return true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
