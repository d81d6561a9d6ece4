package cron_feature

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobType string

const (
	// JobRetentionSweep archives approved and rejected documents whose
	// retention period has elapsed.
	JobRetentionSweep JobType = "retention_sweep"
	// JobWarehouseExport pushes the approved register into the
	// configured Postgres warehouse.
	JobWarehouseExport JobType = "warehouse_export"
	// JobApprovalReminder notifies approvers about processes that have
	// seen no activity for a configurable number of hours.
	JobApprovalReminder JobType = "approval_reminder"
)

// CronJob is a scheduled maintenance job owned by one tenant.
type CronJob struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID     `json:"tenantId" bson:"tenant_id"`
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	Schedule    string                 `json:"schedule" bson:"schedule"`
	JobType     JobType                `json:"jobType" bson:"job_type"`
	Config      map[string]interface{} `json:"config,omitempty" bson:"config,omitempty"`
	Active      bool                   `json:"active" bson:"active"`
	LastRun     *time.Time             `json:"lastRun,omitempty" bson:"last_run,omitempty"`
	NextRun     *time.Time             `json:"nextRun,omitempty" bson:"next_run,omitempty"`
	CreatedBy   primitive.ObjectID     `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updatedAt" bson:"updated_at"`
}

// CronJobLog records a single execution of a cron job.
type CronJobLog struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CronJobID     primitive.ObjectID `json:"cronJobId" bson:"cron_job_id"`
	CronJobName   string             `json:"cronJobName" bson:"cron_job_name"`
	StartTime     time.Time          `json:"startTime" bson:"start_time"`
	EndTime       *time.Time         `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Status        string             `json:"status" bson:"status"` // "success", "failed", "running"
	ItemsAffected int                `json:"itemsAffected" bson:"items_affected"`
	Error         string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
}
