package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trackdoc/internal/features/document"
	"trackdoc/internal/features/email"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier matches the notification service's push API. Declared here
// so the executor does not depend on the notification feature directly.
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error
}

type ActionExecutor interface {
	ExecuteActions(ctx context.Context, actions []RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error
	ExecuteAction(ctx context.Context, action RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error
}

type ActionExecutorImpl struct {
	docRepo      document.DocumentRepository
	emailService email.EmailService
	notifier     Notifier
	logger       *zap.Logger
	httpClient   *http.Client
}

func NewActionExecutor(
	docRepo document.DocumentRepository,
	emailService email.EmailService,
	notifier Notifier,
	logger *zap.Logger,
) ActionExecutor {
	return &ActionExecutorImpl{
		docRepo:      docRepo,
		emailService: emailService,
		notifier:     notifier,
		logger:       logger,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *ActionExecutorImpl) ExecuteActions(ctx context.Context, actions []RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error {
	for i, action := range actions {
		if err := e.ExecuteAction(ctx, action, doc, record); err != nil {
			e.logger.Warn("automation action failed",
				zap.Int("index", i), zap.String("type", string(action.Type)), zap.Error(err))
		}
	}
	return nil
}

func (e *ActionExecutorImpl) ExecuteAction(ctx context.Context, action RuleAction, doc *document.DocumentRecord, record map[string]interface{}) error {
	switch action.Type {
	case ActionSendEmail:
		return e.executeSendEmail(ctx, action.Config, record)
	case ActionUpdateField:
		return e.executeUpdateField(ctx, action.Config, doc)
	case ActionWebhook:
		return e.executeWebhook(action.Config, record)
	case ActionRunScript:
		return e.executeRunScript(action.Config, record)
	case ActionSendNotification:
		return e.executeSendNotification(ctx, action.Config, doc, record)
	default:
		return fmt.Errorf("unsupported action type: %s", action.Type)
	}
}

func (e *ActionExecutorImpl) executeSendEmail(ctx context.Context, config map[string]interface{}, record map[string]interface{}) error {
	to, _ := config["to"].(string)
	subject, _ := config["subject"].(string)
	body, _ := config["body"].(string)

	if to == "" {
		return fmt.Errorf("email recipient (to) is required")
	}

	subject = replacePlaceholders(subject, record)
	body = replacePlaceholders(body, record)

	if err := e.emailService.SendEmail(ctx, []string{to}, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *ActionExecutorImpl) executeUpdateField(ctx context.Context, config map[string]interface{}, doc *document.DocumentRecord) error {
	field, _ := config["field"].(string)
	value := config["value"]

	if field == "" {
		return fmt.Errorf("field name is required for update_field action")
	}

	// Only custom fields may be rewritten; numbering and lifecycle
	// state stay under service control.
	updates := map[string]interface{}{
		"fields." + field: value,
		"updated_at":      time.Now(),
	}
	if err := e.docRepo.Update(ctx, doc.ID.Hex(), updates); err != nil {
		return fmt.Errorf("failed to update field: %w", err)
	}
	return nil
}

func (e *ActionExecutorImpl) executeWebhook(config map[string]interface{}, record map[string]interface{}) error {
	url, _ := config["url"].(string)
	method, _ := config["method"].(string)

	if url == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if method == "" {
		method = http.MethodPost
	}

	payload := map[string]interface{}{
		"document":  record,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if headers, ok := config["headers"].(map[string]interface{}); ok {
		for key, value := range headers {
			req.Header.Set(key, fmt.Sprintf("%v", value))
		}
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}

func (e *ActionExecutorImpl) executeRunScript(config map[string]interface{}, record map[string]interface{}) error {
	scriptContent, _ := config["script"].(string)
	if scriptContent == "" {
		return fmt.Errorf("script content is required")
	}

	script := tengo.NewScript([]byte(scriptContent))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times", "fmt"))

	doc := make(map[string]interface{}, len(record))
	for k, v := range record {
		if oid, ok := v.(primitive.ObjectID); ok {
			doc[k] = oid.Hex()
			continue
		}
		doc[k] = v
	}
	if err := script.Add("document", doc); err != nil {
		return fmt.Errorf("failed to bind document: %w", err)
	}

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}
	return nil
}

func (e *ActionExecutorImpl) executeSendNotification(ctx context.Context, config map[string]interface{}, doc *document.DocumentRecord, record map[string]interface{}) error {
	title, _ := config["title"].(string)
	message, _ := config["message"].(string)
	if title == "" {
		return fmt.Errorf("notification title is required")
	}

	title = replacePlaceholders(title, record)
	message = replacePlaceholders(message, record)

	recipients := []primitive.ObjectID{doc.AuthorID}
	if userID, _ := config["user_id"].(string); userID != "" {
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return fmt.Errorf("invalid user_id: %w", err)
		}
		recipients = []primitive.ObjectID{oid}
	}

	return e.notifier.NotifyUsers(ctx, recipients, title, message, "document", doc.ID.Hex())
}

func replacePlaceholders(text string, record map[string]interface{}) string {
	for key, value := range record {
		placeholder := fmt.Sprintf("{{%s}}", key)
		if !strings.Contains(text, placeholder) {
			continue
		}
		text = strings.ReplaceAll(text, placeholder, fmt.Sprintf("%v", value))
	}
	return text
}
