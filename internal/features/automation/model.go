package automation

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "gt"
	OperatorLessThan    ConditionOperator = "lt"
)

type ActionType string

const (
	ActionSendEmail        ActionType = "send_email"
	ActionUpdateField      ActionType = "update_field"
	ActionWebhook          ActionType = "call_webhook"
	ActionRunScript        ActionType = "run_script"
	ActionSendNotification ActionType = "send_notification"
)

// RuleCondition matches against the triggering document's flattened
// representation (top-level attributes plus custom fields).
type RuleCondition struct {
	Field    string            `json:"field" bson:"field"`
	Operator ConditionOperator `json:"operator" bson:"operator"`
	Value    interface{}       `json:"value" bson:"value"`
}

type RuleAction struct {
	Type   ActionType             `json:"type" bson:"type"`
	Config map[string]interface{} `json:"config" bson:"config"`
}

// AutomationRule runs its actions when a document event matching the
// trigger fires and all conditions hold. An empty DocumentTypeID means
// the rule applies to every document type.
type AutomationRule struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID       primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	Name           string             `json:"name" bson:"name"`
	TriggerType    string             `json:"trigger_type" bson:"trigger_type"`
	DocumentTypeID primitive.ObjectID `json:"document_type_id,omitempty" bson:"document_type_id,omitempty"`
	Active         bool               `json:"active" bson:"active"`
	Conditions     []RuleCondition    `json:"conditions" bson:"conditions"`
	Actions        []RuleAction       `json:"actions" bson:"actions"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (r *AutomationRule) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.TriggerType, validation.Required, validation.In(
			"submitted", "approved", "rejected", "new_version")),
		validation.Field(&r.Actions, validation.Required),
	); err != nil {
		return err
	}
	for _, action := range r.Actions {
		if err := validation.Validate(string(action.Type), validation.Required, validation.In(
			string(ActionSendEmail), string(ActionUpdateField), string(ActionWebhook),
			string(ActionRunScript), string(ActionSendNotification))); err != nil {
			return validation.Errors{"actions": err}
		}
	}
	return nil
}
