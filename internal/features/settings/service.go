package settings

import (
	"context"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
)

type SettingsService interface {
	GetEmailConfig(ctx context.Context) (*EmailConfig, error)
	UpdateEmailConfig(ctx context.Context, config EmailConfig) error
	GetGeneralConfig(ctx context.Context) (*GeneralConfig, error)
	UpdateGeneralConfig(ctx context.Context, config GeneralConfig) error
	GetWarehouseConfig(ctx context.Context) (*WarehouseConfig, error)
	UpdateWarehouseConfig(ctx context.Context, config WarehouseConfig) error
}

type SettingsServiceImpl struct {
	Repo         SettingsRepository
	AuditService audit.AuditService
}

func NewSettingsService(repo SettingsRepository, auditService audit.AuditService) SettingsService {
	return &SettingsServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *SettingsServiceImpl) GetEmailConfig(ctx context.Context) (*EmailConfig, error) {
	settings, err := s.Repo.GetByType(ctx, SettingsTypeEmail)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Email == nil {
		return nil, nil
	}
	return settings.Email, nil
}

func (s *SettingsServiceImpl) UpdateEmailConfig(ctx context.Context, config EmailConfig) error {
	oldConfig, _ := s.GetEmailConfig(ctx)

	settings := &Settings{
		Type:      SettingsTypeEmail,
		Email:     &config,
		UpdatedAt: time.Now(),
	}
	err := s.Repo.Upsert(ctx, settings)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "email_config", map[string]common_models.Change{
			"email_config": {Old: oldConfig, New: config},
		})
	}
	return err
}

func (s *SettingsServiceImpl) GetGeneralConfig(ctx context.Context) (*GeneralConfig, error) {
	settings, err := s.Repo.GetByType(ctx, SettingsTypeGeneral)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.General == nil {
		return &GeneralConfig{
			AppName: "TrackDoc",
		}, nil
	}
	return settings.General, nil
}

func (s *SettingsServiceImpl) UpdateGeneralConfig(ctx context.Context, config GeneralConfig) error {
	oldConfig, _ := s.GetGeneralConfig(ctx)

	settings := &Settings{
		Type:      SettingsTypeGeneral,
		General:   &config,
		UpdatedAt: time.Now(),
	}
	err := s.Repo.Upsert(ctx, settings)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "general_config", map[string]common_models.Change{
			"general_config": {Old: oldConfig, New: config},
		})
	}
	return err
}

func (s *SettingsServiceImpl) GetWarehouseConfig(ctx context.Context) (*WarehouseConfig, error) {
	settings, err := s.Repo.GetByType(ctx, SettingsTypeWarehouse)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Warehouse == nil {
		return &WarehouseConfig{Table: "document_register"}, nil
	}
	return settings.Warehouse, nil
}

func (s *SettingsServiceImpl) UpdateWarehouseConfig(ctx context.Context, config WarehouseConfig) error {
	oldConfig, _ := s.GetWarehouseConfig(ctx)

	if config.Table == "" {
		config.Table = "document_register"
	}
	settings := &Settings{
		Type:      SettingsTypeWarehouse,
		Warehouse: &config,
		UpdatedAt: time.Now(),
	}
	err := s.Repo.Upsert(ctx, settings)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "warehouse_config", map[string]common_models.Change{
			"warehouse_config": {Old: oldConfig, New: config},
		})
	}
	return err
}
