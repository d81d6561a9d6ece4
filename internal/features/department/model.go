package department

import (
	"regexp"
	"time"

	common_models "trackdoc/internal/common/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var shortNameRx = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

// Department is an organizational unit and a component of document numbers
type Department struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	ShortName string             `bson:"short_name" json:"short_name"` // Uppercase code used in document numbers
	Status    string             `bson:"status" json:"status"`         // active, inactive
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (d Department) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&d.ShortName, validation.Required, validation.Match(shortNameRx).Error("must be 2-5 uppercase letters or digits")),
		validation.Field(&d.Status, validation.In(common_models.StatusActive, common_models.StatusInactive)),
	)
}

func (d *Department) IsActive() bool {
	return d.Status == common_models.StatusActive
}
