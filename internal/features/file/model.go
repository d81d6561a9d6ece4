package file

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is the stored metadata for an uploaded document content file. The
// bytes themselves live on disk under the configured storage path.
type File struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID         primitive.ObjectID `json:"tenantId" bson:"tenant_id"`
	DocumentID       primitive.ObjectID `json:"documentId,omitempty" bson:"document_id,omitempty"`
	OriginalFilename string             `json:"original_filename" bson:"original_filename"`
	Path             string             `json:"path" bson:"path"`
	Size             int64              `json:"size" bson:"size"`
	MimeType         string             `json:"mime_type" bson:"mime_type"`
	UploadedBy       primitive.ObjectID `json:"uploaded_by" bson:"uploaded_by"`
	StorageType      string             `json:"storage_type" bson:"storage_type"` // local only for now
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}
