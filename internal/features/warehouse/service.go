package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/report"
	"trackdoc/internal/features/settings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultTable = "document_register"

type WarehouseService interface {
	Export(ctx context.Context) (int, error)
	ListLogs(ctx context.Context, limit int64) ([]ExportLog, error)
}

type WarehouseServiceImpl struct {
	LogRepo         ExportLogRepository
	ReportRepo      report.ReportRepository
	SettingsService settings.SettingsService
	AuditService    audit.AuditService
	Logger          *zap.Logger
}

func NewWarehouseService(logRepo ExportLogRepository, reportRepo report.ReportRepository, settingsService settings.SettingsService, auditService audit.AuditService, logger *zap.Logger) WarehouseService {
	return &WarehouseServiceImpl{
		LogRepo:         logRepo,
		ReportRepo:      reportRepo,
		SettingsService: settingsService,
		AuditService:    auditService,
		Logger:          logger,
	}
}

func (s *WarehouseServiceImpl) ListLogs(ctx context.Context, limit int64) ([]ExportLog, error) {
	return s.LogRepo.List(ctx, limit)
}

// Export pushes the approved document register into the configured
// Postgres warehouse. Rows are upserted on (number, version) so the
// export can run repeatedly without duplicating entries.
func (s *WarehouseServiceImpl) Export(ctx context.Context) (int, error) {
	config, err := s.SettingsService.GetWarehouseConfig(ctx)
	if err != nil {
		return 0, err
	}
	if !config.Enabled {
		return 0, fmt.Errorf("warehouse export is disabled")
	}
	if config.DSN == "" {
		return 0, fmt.Errorf("warehouse DSN is not configured")
	}

	table := config.Table
	if table == "" {
		table = defaultTable
	}

	exportLog := &ExportLog{
		StartTime: time.Now(),
		Status:    ExportInProgress,
	}
	if err := s.LogRepo.Create(ctx, exportLog); err != nil {
		return 0, err
	}

	count, err := s.exportToPostgres(ctx, config.DSN, table)

	exportLog.EndTime = time.Now()
	exportLog.ProcessedCount = count
	if err != nil {
		exportLog.Status = ExportFailed
		exportLog.Error = err.Error()
	} else {
		exportLog.Status = ExportSuccess
	}
	if logErr := s.LogRepo.Update(ctx, exportLog); logErr != nil {
		s.Logger.Warn("failed to update warehouse export log", zap.Error(logErr))
	}

	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "warehouse", exportLog.ID.Hex(), map[string]common_models.Change{
			"export": {
				New: map[string]interface{}{"table": table, "rows": count},
			},
		})
	}

	return count, err
}

func (s *WarehouseServiceImpl) exportToPostgres(ctx context.Context, dsn, table string) (int, error) {
	rows, err := s.ReportRepo.RegisterRows(ctx, report.ReportFilter{Status: string(document.StatusApproved)})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping postgres: %v", err)
	}

	count := 0
	for _, row := range rows {
		query, values := upsertStatement(table, row)
		if _, err := db.ExecContext(ctx, query, values...); err != nil {
			s.Logger.Warn("warehouse upsert failed",
				zap.String("number", row.Number),
				zap.String("version", row.Version),
				zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

var registerColumns = []string{
	"number", "version", "title", "status",
	"type_name", "department_name", "author_name",
	"created_at", "submitted_at", "decided_at",
}

func upsertStatement(table string, row report.RegisterRow) (string, []interface{}) {
	values := []interface{}{
		row.Number, row.Version, row.Title, row.Status,
		row.TypeName, row.DepartmentName, row.AuthorName,
		row.CreatedAt, row.SubmittedAt, row.DecidedAt,
	}

	placeholders := make([]string, 0, len(registerColumns))
	updateExprs := make([]string, 0, len(registerColumns))
	for i, col := range registerColumns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		if col != "number" && col != "version" {
			updateExprs = append(updateExprs, fmt.Sprintf("%s = $%d", col, i+1))
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (number, version) DO UPDATE SET %s",
		table,
		strings.Join(registerColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updateExprs, ", "),
	)
	return query, values
}
