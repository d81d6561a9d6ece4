package doctype

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentUsageChecker reports whether any document of a given type has
// been created. Used to protect the number prefix from changing after
// numbers carrying it have been issued.
type DocumentUsageChecker interface {
	HasDocumentsOfType(ctx context.Context, typeID string) (bool, error)
}

type DocumentTypeService interface {
	CreateDocumentType(ctx context.Context, dt *DocumentType) (*DocumentType, error)
	GetDocumentType(ctx context.Context, id string) (*DocumentType, error)
	ListDocumentTypes(ctx context.Context, includeInactive bool) ([]DocumentType, error)
	UpdateDocumentType(ctx context.Context, id string, dt *DocumentType) error
	SetStatus(ctx context.Context, id string, status string) error
	DeleteDocumentType(ctx context.Context, id string) error
}

type DocumentTypeServiceImpl struct {
	Repo         DocumentTypeRepository
	UsageChecker DocumentUsageChecker
	AuditService audit.AuditService
}

func NewDocumentTypeService(repo DocumentTypeRepository, usageChecker DocumentUsageChecker, auditService audit.AuditService) DocumentTypeService {
	return &DocumentTypeServiceImpl{
		Repo:         repo,
		UsageChecker: usageChecker,
		AuditService: auditService,
	}
}

func (s *DocumentTypeServiceImpl) CreateDocumentType(ctx context.Context, dt *DocumentType) (*DocumentType, error) {
	dt.Prefix = strings.ToUpper(dt.Prefix)
	if dt.Status == "" {
		dt.Status = common_models.StatusActive
	}
	if dt.RequiredFields == nil {
		dt.RequiredFields = []string{}
	}
	if err := dt.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.FindByPrefix(ctx, dt.Prefix); err == nil && existing != nil {
		return nil, fmt.Errorf("a document type with prefix %s already exists", dt.Prefix)
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	dt.ID = primitive.NewObjectID()
	dt.CreatedAt = time.Now()
	dt.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, dt); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "document_type", dt.ID.Hex(), map[string]common_models.Change{
		"name":   {New: dt.Name},
		"prefix": {New: dt.Prefix},
	})

	return dt, nil
}

func (s *DocumentTypeServiceImpl) GetDocumentType(ctx context.Context, id string) (*DocumentType, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *DocumentTypeServiceImpl) ListDocumentTypes(ctx context.Context, includeInactive bool) ([]DocumentType, error) {
	return s.Repo.List(ctx, includeInactive)
}

func (s *DocumentTypeServiceImpl) UpdateDocumentType(ctx context.Context, id string, dt *DocumentType) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	dt.Prefix = strings.ToUpper(dt.Prefix)
	if dt.Status == "" {
		dt.Status = old.Status
	}
	if err := dt.Validate(); err != nil {
		return err
	}

	// The prefix is part of every issued document number. Once a number
	// has been allocated against this type the prefix is frozen.
	if dt.Prefix != old.Prefix {
		inUse, err := s.UsageChecker.HasDocumentsOfType(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return errors.New("prefix cannot be changed: documents of this type already exist")
		}
		if existing, err := s.Repo.FindByPrefix(ctx, dt.Prefix); err == nil && existing != nil && existing.ID.Hex() != id {
			return fmt.Errorf("a document type with prefix %s already exists", dt.Prefix)
		} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
	}

	updates := map[string]interface{}{
		"name":                    dt.Name,
		"prefix":                  dt.Prefix,
		"description":             dt.Description,
		"retention_period_months": dt.RetentionPeriodMonths,
		"approval_required":       dt.ApprovalRequired,
		"required_fields":         dt.RequiredFields,
		"status":                  dt.Status,
		"updated_at":              time.Now(),
	}
	if !dt.OwnerID.IsZero() {
		updates["owner_id"] = dt.OwnerID
	}
	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "document_type", id, map[string]common_models.Change{
		"name":   {Old: old.Name, New: dt.Name},
		"prefix": {Old: old.Prefix, New: dt.Prefix},
		"status": {Old: old.Status, New: dt.Status},
	})
	return nil
}

func (s *DocumentTypeServiceImpl) SetStatus(ctx context.Context, id string, status string) error {
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

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "document_type", id, map[string]common_models.Change{
		"status": {Old: old.Status, New: status},
	})
	return nil
}

func (s *DocumentTypeServiceImpl) DeleteDocumentType(ctx context.Context, id string) error {
	old, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.UsageChecker.HasDocumentsOfType(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return errors.New("document type has documents and cannot be deleted; deactivate it instead")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "document_type", id, map[string]common_models.Change{
		"name": {Old: old.Name},
	})
	return nil
}
