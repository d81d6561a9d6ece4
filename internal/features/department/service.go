package department

import (
	"context"
	"errors"
	"strings"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentService interface {
	CreateDepartment(ctx context.Context, dept *Department) (*Department, error)
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context, includeInactive bool) ([]Department, error)
	UpdateDepartment(ctx context.Context, id string, dept *Department) error
	SetStatus(ctx context.Context, id string, status string) error
}

type DepartmentServiceImpl struct {
	Repo         DepartmentRepository
	AuditService audit.AuditService
}

func NewDepartmentService(repo DepartmentRepository, auditService audit.AuditService) DepartmentService {
	return &DepartmentServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *DepartmentServiceImpl) CreateDepartment(ctx context.Context, dept *Department) (*Department, error) {
	dept.ShortName = strings.ToUpper(dept.ShortName)
	if dept.Status == "" {
		dept.Status = common_models.StatusActive
	}
	if err := dept.Validate(); err != nil {
		return nil, err
	}

	// Short names are number components and must be unique within the tenant
	if existing, err := s.Repo.FindByShortName(ctx, dept.ShortName); err == nil && existing != nil {
		return nil, errors.New("a department with this short name already exists")
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	dept.ID = primitive.NewObjectID()
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, dept); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "department", dept.ID.Hex(), map[string]common_models.Change{
		"name":       {New: dept.Name},
		"short_name": {New: dept.ShortName},
	})

	return dept, nil
}

func (s *DepartmentServiceImpl) GetDepartment(ctx context.Context, id string) (*Department, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *DepartmentServiceImpl) ListDepartments(ctx context.Context, includeInactive bool) ([]Department, error) {
	return s.Repo.List(ctx, includeInactive)
}

func (s *DepartmentServiceImpl) UpdateDepartment(ctx context.Context, id string, dept *Department) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	dept.ShortName = strings.ToUpper(dept.ShortName)
	if dept.Status == "" {
		dept.Status = old.Status
	}
	if err := dept.Validate(); err != nil {
		return err
	}

	// Short name is embedded in issued document numbers; once set it stays
	if dept.ShortName != old.ShortName {
		return errors.New("department short name cannot be changed")
	}

	updates := map[string]interface{}{
		"name":       dept.Name,
		"status":     dept.Status,
		"updated_at": time.Now(),
	}
	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "department", id, map[string]common_models.Change{
		"name":   {Old: old.Name, New: dept.Name},
		"status": {Old: old.Status, New: dept.Status},
	})
	return nil
}

func (s *DepartmentServiceImpl) SetStatus(ctx context.Context, id string, status string) error {
	if status != common_models.StatusActive && status != common_models.StatusInactive {
		return errors.New("invalid status: " + status)
	}

	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "department", id, map[string]common_models.Change{
		"status": {Old: old.Status, New: status},
	})
	return nil
}
