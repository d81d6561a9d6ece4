package document

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusPending  DocumentStatus = "pending"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

// DocumentRecord is one version of a controlled document. The document
// number is allocated on first submission and shared by all versions;
// the (number, version) pair is unique.
type DocumentRecord struct {
	ID                primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TenantID          primitive.ObjectID     `json:"tenantId" bson:"tenant_id"`
	Number            string                 `json:"number" bson:"number,omitempty"`
	Title             string                 `json:"title" bson:"title"`
	Description       string                 `json:"description" bson:"description"`
	TypeID            primitive.ObjectID     `json:"typeId" bson:"type_id"`
	DepartmentID      primitive.ObjectID     `json:"departmentId" bson:"department_id"`
	CategoryIDs       []primitive.ObjectID   `json:"categoryIds" bson:"category_ids"`
	AuthorID          primitive.ObjectID     `json:"authorId" bson:"author_id"`
	Version           string                 `json:"version" bson:"version"`
	Status            DocumentStatus         `json:"status" bson:"status"`
	Fields            map[string]interface{} `json:"fields" bson:"fields"`
	FileIDs           []primitive.ObjectID   `json:"fileIds" bson:"file_ids"`
	PreviousVersionID primitive.ObjectID     `json:"previousVersionId" bson:"previous_version_id,omitempty"`
	Archived          bool                   `json:"archived" bson:"archived"`
	ArchivedAt        *time.Time             `json:"archivedAt,omitempty" bson:"archived_at,omitempty"`
	SubmittedAt       *time.Time             `json:"submittedAt,omitempty" bson:"submitted_at,omitempty"`
	DecidedAt         *time.Time             `json:"decidedAt,omitempty" bson:"decided_at,omitempty"`
	CreatedAt         time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time              `json:"updatedAt" bson:"updated_at"`
}

func (d *DocumentRecord) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&d.TypeID, validation.Required),
		validation.Field(&d.DepartmentID, validation.Required),
	)
}

// IsTerminal reports whether this version can no longer change status.
func (d *DocumentRecord) IsTerminal() bool {
	return d.Status == StatusApproved || d.Status == StatusRejected
}
