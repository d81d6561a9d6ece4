package user

import (
	"context"
	"errors"
	"time"

	"trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) error
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	UpdateUserRoles(ctx context.Context, id string, roleIDs []string) error
	UpdateUserStatus(ctx context.Context, id string, status string) error
	DeleteUser(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error) {
	if filter == nil {
		filter = make(map[string]interface{})
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	offset := (page - 1) * limit
	return s.UserRepo.List(ctx, filter, limit, offset)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, user *models.User, password string) error {
	if user.Username == "" || user.Email == "" {
		return errors.New("username and email are required")
	}
	if password == "" {
		return errors.New("password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()

	if user.Status == "" {
		user.Status = "active"
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return err
	}

	changes := map[string]models.Change{
		"username": {New: user.Username},
		"email":    {New: user.Email},
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", user.ID.Hex(), changes)

	return nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	// Fields managed by dedicated operations
	delete(updates, "password")
	delete(updates, "roles")
	delete(updates, "status")

	old, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	if err := s.UserRepo.Update(ctx, id, updates); err != nil {
		return err
	}

	changes := make(map[string]models.Change)
	for k, v := range updates {
		changes[k] = models.Change{New: v}
	}
	changes["username"] = models.Change{Old: old.Username, New: old.Username}
	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, changes)

	return nil
}

func (s *UserServiceImpl) UpdateUserRoles(ctx context.Context, id string, roleIDs []string) error {
	old, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	oids := make([]primitive.ObjectID, 0, len(roleIDs))
	for _, rid := range roleIDs {
		oid, err := primitive.ObjectIDFromHex(rid)
		if err != nil {
			return errors.New("invalid role id: " + rid)
		}
		oids = append(oids, oid)
	}

	updates := map[string]interface{}{
		"roles":      oids,
		"updated_at": time.Now(),
	}
	if err := s.UserRepo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, map[string]models.Change{
		"roles": {Old: old.Roles, New: oids},
	})
	return nil
}

func (s *UserServiceImpl) UpdateUserStatus(ctx context.Context, id string, status string) error {
	if status != "active" && status != "inactive" && status != "suspended" {
		return errors.New("invalid status: " + status)
	}

	old, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if err := s.UserRepo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, map[string]models.Change{
		"status": {Old: old.Status, New: status},
	})
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	old, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "user", id, map[string]models.Change{
		"username": {Old: old.Username},
	})
	return nil
}
