package dashboard

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardService interface {
	CreateDashboard(ctx context.Context, dashboard *DashboardConfig, userID primitive.ObjectID) error
	GetDashboard(ctx context.Context, id string, userID primitive.ObjectID) (*DashboardConfig, error)
	ListUserDashboards(ctx context.Context, userID primitive.ObjectID) ([]DashboardConfig, error)
	UpdateDashboard(ctx context.Context, id string, dashboard *DashboardConfig, userID primitive.ObjectID) error
	DeleteDashboard(ctx context.Context, id string, userID primitive.ObjectID) error
	SetDefaultDashboard(ctx context.Context, dashboardID string, userID primitive.ObjectID) error

	// GetOverview aggregates the document counts the default dashboard
	// widgets render.
	GetOverview(ctx context.Context, userID primitive.ObjectID) (*DocumentStats, int64, error)
}

type DashboardServiceImpl struct {
	DashboardRepo DashboardRepository
	StatsRepo     StatsRepository
}

func NewDashboardService(dashboardRepo DashboardRepository, statsRepo StatsRepository) DashboardService {
	return &DashboardServiceImpl{
		DashboardRepo: dashboardRepo,
		StatsRepo:     statsRepo,
	}
}

func (s *DashboardServiceImpl) CreateDashboard(ctx context.Context, dashboard *DashboardConfig, userID primitive.ObjectID) error {
	dashboard.UserID = userID
	return s.DashboardRepo.Create(ctx, dashboard)
}

func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, id string, userID primitive.ObjectID) (*DashboardConfig, error) {
	dashboard, err := s.DashboardRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if dashboard.UserID != userID && !dashboard.IsShared {
		return nil, errors.New("access denied")
	}

	return dashboard, nil
}

func (s *DashboardServiceImpl) ListUserDashboards(ctx context.Context, userID primitive.ObjectID) ([]DashboardConfig, error) {
	return s.DashboardRepo.FindByUserID(ctx, userID.Hex())
}

func (s *DashboardServiceImpl) UpdateDashboard(ctx context.Context, id string, dashboard *DashboardConfig, userID primitive.ObjectID) error {
	existing, err := s.DashboardRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.UserID != userID {
		return errors.New("access denied: you can only update your own dashboards")
	}

	return s.DashboardRepo.Update(ctx, id, dashboard)
}

func (s *DashboardServiceImpl) DeleteDashboard(ctx context.Context, id string, userID primitive.ObjectID) error {
	existing, err := s.DashboardRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.UserID != userID {
		return errors.New("access denied: you can only delete your own dashboards")
	}

	return s.DashboardRepo.Delete(ctx, id)
}

func (s *DashboardServiceImpl) SetDefaultDashboard(ctx context.Context, dashboardID string, userID primitive.ObjectID) error {
	return s.DashboardRepo.SetDefault(ctx, userID.Hex(), dashboardID)
}

func (s *DashboardServiceImpl) GetOverview(ctx context.Context, userID primitive.ObjectID) (*DocumentStats, int64, error) {
	byStatus, err := s.StatsRepo.CountDocumentsBy(ctx, "status")
	if err != nil {
		return nil, 0, err
	}
	byType, err := s.StatsRepo.CountDocumentsBy(ctx, "type_id")
	if err != nil {
		return nil, 0, err
	}
	byDept, err := s.StatsRepo.CountDocumentsBy(ctx, "department_id")
	if err != nil {
		return nil, 0, err
	}
	pending, err := s.StatsRepo.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}
	archived, err := s.StatsRepo.CountArchived(ctx)
	if err != nil {
		return nil, 0, err
	}
	awaiting, err := s.StatsRepo.CountAwaitingUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return &DocumentStats{
		ByStatus:      byStatus,
		ByType:        byType,
		ByDepartment:  byDept,
		PendingTotal:  pending,
		ArchivedTotal: archived,
	}, awaiting, nil
}
