package category

import (
	"context"
	"errors"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, cat *Category) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]Category, error)
	UpdateCategory(ctx context.Context, id string, cat *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryServiceImpl struct {
	Repo         CategoryRepository
	AuditService audit.AuditService
}

func NewCategoryService(repo CategoryRepository, auditService audit.AuditService) CategoryService {
	return &CategoryServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, cat *Category) (*Category, error) {
	if cat.Status == "" {
		cat.Status = common_models.StatusActive
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.FindByName(ctx, cat.Name); err == nil && existing != nil {
		return nil, errors.New("a category with this name already exists")
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	cat.ID = primitive.NewObjectID()
	cat.CreatedAt = time.Now()
	cat.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "category", cat.ID.Hex(), map[string]common_models.Change{
		"name": {New: cat.Name},
	})

	return cat, nil
}

func (s *CategoryServiceImpl) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *CategoryServiceImpl) ListCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	return s.Repo.List(ctx, includeInactive)
}

func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, id string, cat *Category) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if cat.Status == "" {
		cat.Status = old.Status
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, map[string]interface{}{
		"name":        cat.Name,
		"description": cat.Description,
		"status":      cat.Status,
		"updated_at":  time.Now(),
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "category", id, map[string]common_models.Change{
		"name":   {Old: old.Name, New: cat.Name},
		"status": {Old: old.Status, New: cat.Status},
	})
	return nil
}

func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id string) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "category", id, map[string]common_models.Change{
		"name": {Old: old.Name},
	})
	return nil
}
