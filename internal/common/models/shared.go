package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
)

type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionDelete     AuditAction = "DELETE"
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionSubmit     AuditAction = "SUBMIT"
	AuditActionApproval   AuditAction = "APPROVAL"
	AuditActionVersion    AuditAction = "VERSION"
	AuditActionAutomation AuditAction = "AUTOMATION"
	AuditActionScheduler  AuditAction = "SCHEDULER"
	AuditActionSettings   AuditAction = "SETTINGS"
	AuditActionExport     AuditAction = "EXPORT"
	AuditActionRetention  AuditAction = "RETENTION"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`          // The feature/collection name
	RecordID  string             `bson:"record_id" json:"record_id"`    // The ID of the record being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`      // User ID who performed the action
	ActorName string             `bson:"-" json:"actor_name,omitempty"` // Populated name of the actor
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Entity status shared by configuration entities (departments, document types,
// categories, workflow definitions)
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	Plan      string             `bson:"plan" json:"plan"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID   `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Username     string               `bson:"username" json:"username"`
	Password     string               `bson:"password" json:"-"`
	Email        string               `bson:"email" json:"email"`
	FirstName    string               `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName     string               `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Position     string               `bson:"position,omitempty" json:"position,omitempty"`
	DepartmentID primitive.ObjectID   `bson:"department_id,omitempty" json:"department_id,omitempty"`
	Status       string               `bson:"status" json:"status"` // active, inactive, suspended
	Roles        []primitive.ObjectID `bson:"roles" json:"roles"`   // References to Role IDs
	LastLogin    *time.Time           `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// Log is the shape of entries shipped to the logs collection by the zap DB core
type Log struct {
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
