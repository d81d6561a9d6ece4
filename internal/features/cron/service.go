package cron_feature

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/approval"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/warehouse"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultStaleHours = 48.0

type CronService interface {
	CreateCronJob(ctx context.Context, cronJob *CronJob) error
	GetCronJob(ctx context.Context, id string) (*CronJob, error)
	ListCronJobs(ctx context.Context, filter map[string]interface{}) ([]CronJob, error)
	UpdateCronJob(ctx context.Context, cronJob *CronJob) error
	DeleteCronJob(ctx context.Context, id string) error
	ExecuteCronJob(ctx context.Context, id string) error
	GetCronJobLogs(ctx context.Context, cronJobID string, limit int) ([]CronJobLog, error)
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RegisterJob(cronJob *CronJob) error
	UnregisterJob(id string) error
}

type CronServiceImpl struct {
	repo             CronRepository
	documentService  document.DocumentService
	approvalService  approval.ApprovalService
	warehouseService warehouse.WarehouseService
	notifier         approval.Notifier
	auditService     audit.AuditService
	logger           *zap.Logger

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	mu         sync.RWMutex
}

func NewCronService(
	repo CronRepository,
	documentService document.DocumentService,
	approvalService approval.ApprovalService,
	warehouseService warehouse.WarehouseService,
	notifier approval.Notifier,
	auditService audit.AuditService,
	logger *zap.Logger,
) CronService {
	return &CronServiceImpl{
		repo:             repo,
		documentService:  documentService,
		approvalService:  approvalService,
		warehouseService: warehouseService,
		notifier:         notifier,
		auditService:     auditService,
		logger:           logger,
		jobEntries:       make(map[string]cron.EntryID),
	}
}

func validateJobType(t JobType) error {
	switch t {
	case JobRetentionSweep, JobWarehouseExport, JobApprovalReminder:
		return nil
	}
	return fmt.Errorf("unknown job type: %s", t)
}

func (s *CronServiceImpl) CreateCronJob(ctx context.Context, cronJob *CronJob) error {
	schedule, err := cron.ParseStandard(cronJob.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	if err := validateJobType(cronJob.JobType); err != nil {
		return err
	}

	nextRun := schedule.Next(time.Now())
	cronJob.NextRun = &nextRun

	if err := s.repo.Create(ctx, cronJob); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionScheduler, "scheduler", cronJob.ID.Hex(), map[string]common_models.Change{
		"cron_job": {New: cronJob},
	})

	if cronJob.Active && s.scheduler != nil {
		if err := s.RegisterJob(cronJob); err != nil {
			s.logger.Warn("failed to register cron job", zap.String("id", cronJob.ID.Hex()), zap.Error(err))
		}
	}

	return nil
}

func (s *CronServiceImpl) GetCronJob(ctx context.Context, id string) (*CronJob, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CronServiceImpl) ListCronJobs(ctx context.Context, filter map[string]interface{}) ([]CronJob, error) {
	return s.repo.List(ctx, filter)
}

func (s *CronServiceImpl) UpdateCronJob(ctx context.Context, cronJob *CronJob) error {
	schedule, err := cron.ParseStandard(cronJob.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	if err := validateJobType(cronJob.JobType); err != nil {
		return err
	}

	nextRun := schedule.Next(time.Now())
	cronJob.NextRun = &nextRun

	oldJob, _ := s.GetCronJob(ctx, cronJob.ID.Hex())

	if err := s.repo.Update(ctx, cronJob); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionScheduler, "scheduler", cronJob.ID.Hex(), map[string]common_models.Change{
		"cron_job": {Old: oldJob, New: cronJob},
	})

	s.UnregisterJob(cronJob.ID.Hex())

	if cronJob.Active && s.scheduler != nil {
		if err := s.RegisterJob(cronJob); err != nil {
			s.logger.Warn("failed to register updated cron job", zap.String("id", cronJob.ID.Hex()), zap.Error(err))
		}
	}

	return nil
}

func (s *CronServiceImpl) DeleteCronJob(ctx context.Context, id string) error {
	oldJob, _ := s.GetCronJob(ctx, id)
	s.UnregisterJob(id)
	err := s.repo.Delete(ctx, id)
	if err == nil {
		_ = s.auditService.LogChange(ctx, common_models.AuditActionScheduler, "scheduler", id, map[string]common_models.Change{
			"cron_job": {Old: oldJob, New: "DELETED"},
		})
	}
	return err
}

func (s *CronServiceImpl) ExecuteCronJob(ctx context.Context, id string) error {
	cronJob, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cronJob == nil {
		return fmt.Errorf("cron job not found")
	}

	return s.executeCronJobInternal(ctx, cronJob)
}

func (s *CronServiceImpl) executeCronJobInternal(ctx context.Context, cronJob *CronJob) error {
	startTime := time.Now()

	logEntry := &CronJobLog{
		CronJobID:   cronJob.ID,
		CronJobName: cronJob.Name,
		StartTime:   startTime,
		Status:      "running",
	}

	if err := s.repo.CreateLog(ctx, logEntry); err != nil {
		s.logger.Warn("failed to create cron job log", zap.String("id", cronJob.ID.Hex()), zap.Error(err))
	}

	affected, execError := s.runJob(ctx, cronJob)

	endTime := time.Now()
	logEntry.EndTime = &endTime
	logEntry.ItemsAffected = affected

	if execError != nil {
		logEntry.Status = "failed"
		logEntry.Error = execError.Error()
	} else {
		logEntry.Status = "success"
	}

	if err := s.repo.UpdateLog(ctx, logEntry); err != nil {
		s.logger.Warn("failed to update cron job log", zap.String("id", cronJob.ID.Hex()), zap.Error(err))
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionScheduler, "scheduler", cronJob.ID.Hex(), map[string]common_models.Change{
		"status":   {New: logEntry.Status},
		"job_name": {New: cronJob.Name},
		"affected": {New: affected},
		"error":    {New: logEntry.Error},
	})

	schedule, _ := cron.ParseStandard(cronJob.Schedule)
	nextRun := schedule.Next(time.Now())
	if err := s.repo.UpdateLastRun(ctx, cronJob.ID.Hex(), startTime, &nextRun); err != nil {
		s.logger.Warn("failed to update last run", zap.String("id", cronJob.ID.Hex()), zap.Error(err))
	}

	return execError
}

func (s *CronServiceImpl) runJob(ctx context.Context, cronJob *CronJob) (int, error) {
	switch cronJob.JobType {
	case JobRetentionSweep:
		return s.documentService.ArchiveExpired(ctx)
	case JobWarehouseExport:
		return s.warehouseService.Export(ctx)
	case JobApprovalReminder:
		return s.remindStaleApprovals(ctx, cronJob)
	default:
		return 0, fmt.Errorf("unknown job type: %s", cronJob.JobType)
	}
}

// remindStaleApprovals pings the approvers of the step each stale
// process is waiting on. A process is stale when nothing has happened
// on it for the configured number of hours.
func (s *CronServiceImpl) remindStaleApprovals(ctx context.Context, cronJob *CronJob) (int, error) {
	processes, err := s.approvalService.ListInProgress(ctx)
	if err != nil {
		return 0, err
	}

	threshold := staleThreshold(cronJob.Config)
	now := time.Now()
	reminded := 0

	for i := range processes {
		process := &processes[i]
		if now.Sub(lastActivity(process)) < threshold {
			continue
		}

		step := process.CurrentStep()
		if step == nil || len(step.RequiredApprovers) == 0 {
			continue
		}

		if s.notifier != nil {
			title := "Approval reminder"
			message := fmt.Sprintf("Document %s is waiting on step %q", process.DocumentNumber, step.Name)
			if err := s.notifier.NotifyUsers(ctx, step.RequiredApprovers, title, message, "document", process.DocumentID.Hex()); err != nil {
				s.logger.Warn("failed to send approval reminder",
					zap.String("process", process.ID.Hex()),
					zap.Error(err))
				continue
			}
		}
		reminded++
	}

	return reminded, nil
}

func staleThreshold(config map[string]interface{}) time.Duration {
	hours := defaultStaleHours
	switch v := config["stale_hours"].(type) {
	case float64:
		if v > 0 {
			hours = v
		}
	case int:
		if v > 0 {
			hours = float64(v)
		}
	}
	return time.Duration(hours * float64(time.Hour))
}

// lastActivity is the time of the most recent decision on the process,
// or its start time when nobody has decided anything yet.
func lastActivity(process *approval.ApprovalProcess) time.Time {
	last := process.StartedAt
	for i := range process.Steps {
		for _, decision := range process.Steps[i].Decisions {
			if decision.DecidedAt.After(last) {
				last = decision.DecidedAt
			}
		}
	}
	return last
}

func (s *CronServiceImpl) GetCronJobLogs(ctx context.Context, cronJobID string, limit int) ([]CronJobLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetLogs(ctx, cronJobID, limit)
}

func (s *CronServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.logger.Info("initializing cron scheduler")
	s.scheduler = cron.New()
	cronJobs, err := s.repo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active cron jobs: %w", err)
	}

	for i := range cronJobs {
		if err := s.RegisterJob(&cronJobs[i]); err != nil {
			s.logger.Warn("failed to register cron job", zap.String("id", cronJobs[i].ID.Hex()), zap.Error(err))
		}
	}

	s.scheduler.Start()
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *CronServiceImpl) RegisterJob(cronJob *CronJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return fmt.Errorf("scheduler not initialized")
	}

	cronJobID := cronJob.ID.Hex()
	jobFunc := func() {
		ctx := context.Background()
		latestCronJob, err := s.repo.GetByID(ctx, cronJobID)
		if err != nil || latestCronJob == nil || !latestCronJob.Active {
			return
		}
		// Scheduled runs carry the owning tenant so repositories scope
		// correctly outside a request.
		ctx = context.WithValue(ctx, common_models.TenantIDKey, latestCronJob.TenantID.Hex())
		s.executeCronJobInternal(ctx, latestCronJob)
	}

	entryID, err := s.scheduler.AddFunc(cronJob.Schedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add cron job to scheduler: %w", err)
	}

	s.jobEntries[cronJobID] = entryID
	return nil
}

func (s *CronServiceImpl) UnregisterJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobEntries[id]; exists {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, id)
	}
	return nil
}
