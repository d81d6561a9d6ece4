package role

import (
	"context"
	"errors"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleService interface {
	CreateRole(ctx context.Context, role *Role) (*Role, error)
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id string, role *Role) error
	DeleteRole(ctx context.Context, id string) error
	CheckPermission(ctx context.Context, roleIDs []string, resource string, action string) (bool, error)
}

type RoleServiceImpl struct {
	Repo         RoleRepository
	AuditService audit.AuditService
}

func NewRoleService(repo RoleRepository, auditService audit.AuditService) RoleService {
	return &RoleServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, role *Role) (*Role, error) {
	if role.Name == "" {
		return nil, errors.New("role name is required")
	}
	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	if role.Permissions == nil {
		role.Permissions = make(map[string]map[string]bool)
	}
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, role); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{
		"name": {New: role.Name},
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "role", role.ID.Hex(), changes)

	return role, nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *RoleServiceImpl) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	return s.Repo.FindByName(ctx, name)
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.Repo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, role *Role) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return errors.New("system roles cannot be modified")
	}

	role.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, role); err != nil {
		return err
	}

	changes := map[string]common_models.Change{
		"name":        {Old: existing.Name, New: role.Name},
		"permissions": {Old: existing.Permissions, New: role.Permissions},
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "role", id, changes)

	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return errors.New("system roles cannot be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "role", id, map[string]common_models.Change{
		"name": {Old: existing.Name},
	})
	return nil
}

func (s *RoleServiceImpl) CheckPermission(ctx context.Context, roleIDs []string, resource string, action string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	roles, err := s.Repo.FindByIDs(ctx, roleIDs)
	if err != nil {
		return false, err
	}

	for _, r := range roles {
		if r.HasPermission(resource, action) {
			return true, nil
		}
	}
	return false, nil
}
