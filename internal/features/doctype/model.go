package doctype

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	common_models "trackdoc/internal/common/models"
)

var prefixRx = regexp.MustCompile(`^[A-Z]{2,5}$`)

// DocumentType classifies documents and carries the prefix used in
// issued document numbers. The prefix is immutable once any document
// of this type exists.
type DocumentType struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID              primitive.ObjectID `json:"tenantId" bson:"tenant_id"`
	Name                  string             `json:"name" bson:"name"`
	Prefix                string             `json:"prefix" bson:"prefix"`
	Description           string             `json:"description" bson:"description"`
	OwnerID               primitive.ObjectID `json:"ownerId" bson:"owner_id,omitempty"`
	RetentionPeriodMonths int                `json:"retentionPeriodMonths" bson:"retention_period_months"`
	ApprovalRequired      bool               `json:"approvalRequired" bson:"approval_required"`
	RequiredFields        []string           `json:"requiredFields" bson:"required_fields"`
	Status                string             `json:"status" bson:"status"`
	CreatedAt             time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (dt *DocumentType) Validate() error {
	return validation.ValidateStruct(dt,
		validation.Field(&dt.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&dt.Prefix, validation.Required, validation.Match(prefixRx)),
		validation.Field(&dt.RetentionPeriodMonths, validation.Min(0)),
	)
}

func (dt *DocumentType) IsActive() bool {
	return dt.Status == common_models.StatusActive
}
