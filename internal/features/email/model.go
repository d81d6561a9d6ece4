package email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// Email is a log entry for every outbound message, kept for troubleshooting
// delivery problems.
type Email struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	From      string             `bson:"from" json:"from"`
	To        []string           `bson:"to" json:"to"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"body,omitempty" json:"body,omitempty"`
	Status    EmailStatus        `bson:"status" json:"status"`
	ErrorMsg  string             `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	SentAt    *time.Time         `bson:"sent_at,omitempty" json:"sentAt,omitempty"`
}
