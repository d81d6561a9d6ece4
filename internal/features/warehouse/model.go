package warehouse

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExportStatus string

const (
	ExportInProgress ExportStatus = "in_progress"
	ExportSuccess    ExportStatus = "success"
	ExportFailed     ExportStatus = "failed"
)

// ExportLog records one push of the document register into the warehouse.
type ExportLog struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID       primitive.ObjectID `json:"tenantId" bson:"tenant_id"`
	StartTime      time.Time          `json:"startTime" bson:"start_time"`
	EndTime        time.Time          `json:"endTime" bson:"end_time"`
	Status         ExportStatus       `json:"status" bson:"status"`
	ProcessedCount int                `json:"processedCount" bson:"processed_count"`
	Error          string             `json:"error,omitempty" bson:"error,omitempty"`
}
