package dashboard

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardWidget struct {
	ID       string                 `json:"id" bson:"id"`
	Type     string                 `json:"type" bson:"type"`
	Title    string                 `json:"title" bson:"title"`
	Metric   string                 `json:"metric" bson:"metric"`
	Position WidgetPosition         `json:"position" bson:"position"`
	Config   map[string]interface{} `json:"config" bson:"config"`
}

type WidgetPosition struct {
	X      int `json:"x" bson:"x"`
	Y      int `json:"y" bson:"y"`
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

type DashboardConfig struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID `json:"tenantId" bson:"tenant_id"`
	UserID      primitive.ObjectID `json:"userId" bson:"user_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	IsDefault   bool               `json:"isDefault" bson:"is_default"`
	IsShared    bool               `json:"isShared" bson:"is_shared"`
	Widgets     []DashboardWidget  `json:"widgets" bson:"widgets"`
	Layout      string             `json:"layout" bson:"layout"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// StatusCount is one bucket of a grouped document count.
type StatusCount struct {
	Key   string `json:"key" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// DocumentStats is the aggregate snapshot the overview endpoint serves.
type DocumentStats struct {
	ByStatus      []StatusCount `json:"byStatus"`
	ByType        []StatusCount `json:"byType"`
	ByDepartment  []StatusCount `json:"byDepartment"`
	PendingTotal  int64         `json:"pendingTotal"`
	ArchivedTotal int64         `json:"archivedTotal"`
}
