package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents a user role with resource-level permissions
type Role struct {
	ID          primitive.ObjectID         `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID         `json:"tenant_id" bson:"tenant_id,omitempty"`
	Name        string                     `json:"name" bson:"name"`
	Description string                     `json:"description" bson:"description"`
	Permissions map[string]map[string]bool `json:"permissions" bson:"permissions"` // Resource -> Action -> allowed
	IsSystem    bool                       `json:"is_system" bson:"is_system"`     // Prevent deletion of system roles
	CreatedAt   time.Time                  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at" bson:"updated_at"`
}

// HasPermission reports whether the role allows the action on the resource.
// A wildcard "*" resource grants everything (admin role).
func (r *Role) HasPermission(resource, action string) bool {
	if actions, ok := r.Permissions["*"]; ok {
		if actions["*"] || actions[action] {
			return true
		}
	}
	actions, ok := r.Permissions[resource]
	if !ok {
		return false
	}
	return actions["*"] || actions[action]
}
