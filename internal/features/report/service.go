package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/features/approval"
	"trackdoc/internal/features/audit"
	"trackdoc/pkg/utils"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportService interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context) ([]Report, error)
	UpdateReport(ctx context.Context, id string, report *Report) error
	DeleteReport(ctx context.Context, id string) error
	RunReport(ctx context.Context, id string) (interface{}, error)
	RunAdHoc(ctx context.Context, reportType ReportType, filter ReportFilter) (interface{}, error)
	ExportReport(ctx context.Context, id string) ([]byte, string, error)
}

type ReportServiceImpl struct {
	ReportRepo   ReportRepository
	AuditService audit.AuditService
}

func NewReportService(reportRepo ReportRepository, auditService audit.AuditService) ReportService {
	return &ReportServiceImpl{
		ReportRepo:   reportRepo,
		AuditService: auditService,
	}
}

func reportActor(ctx context.Context) primitive.ObjectID {
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			return oid
		}
	}
	return primitive.NilObjectID
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, report *Report) error {
	if err := report.Validate(); err != nil {
		return err
	}
	report.CreatedBy = reportActor(ctx)
	if err := s.ReportRepo.Create(ctx, report); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "reports", report.ID.Hex(), map[string]common_models.Change{
		"report": {New: report},
	})
	return nil
}

func (s *ReportServiceImpl) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.ReportRepo.Get(ctx, id)
}

func (s *ReportServiceImpl) ListReports(ctx context.Context) ([]Report, error) {
	return s.ReportRepo.List(ctx)
}

func (s *ReportServiceImpl) UpdateReport(ctx context.Context, id string, report *Report) error {
	if err := report.Validate(); err != nil {
		return err
	}
	old, err := s.ReportRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	report.UpdatedBy = reportActor(ctx)
	if err := s.ReportRepo.Update(ctx, id, report); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "reports", id, map[string]common_models.Change{
		"report": {Old: old, New: report},
	})
	return nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, id string) error {
	old, _ := s.ReportRepo.Get(ctx, id)
	if err := s.ReportRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "reports", id, map[string]common_models.Change{
		"report": {Old: old, New: "DELETED"},
	})
	return nil
}

func (s *ReportServiceImpl) RunReport(ctx context.Context, id string) (interface{}, error) {
	report, err := s.ReportRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.RunAdHoc(ctx, report.ReportType, report.Filter)
}

func (s *ReportServiceImpl) RunAdHoc(ctx context.Context, reportType ReportType, filter ReportFilter) (interface{}, error) {
	switch reportType {
	case ReportTypeRegister:
		return s.ReportRepo.RegisterRows(ctx, filter)
	case ReportTypeProductivity:
		return s.ReportRepo.ProductivityRows(ctx, filter)
	case ReportTypeApprovalTime:
		processes, err := s.ReportRepo.CompletedProcesses(ctx, filter)
		if err != nil {
			return nil, err
		}
		return ApprovalTimeRows(processes), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}

// ApprovalTimeRows derives per-step and total durations from completed
// processes. A step's wait starts when the previous required step was decided
// (the process start for the first step) and ends at its own last decision.
func ApprovalTimeRows(processes []approval.ApprovalProcess) []ApprovalTimeRow {
	rows := make([]ApprovalTimeRow, 0, len(processes))
	for _, p := range processes {
		if p.CompletedAt == nil {
			continue
		}
		row := ApprovalTimeRow{
			DocumentNumber: p.DocumentNumber,
			WorkflowName:   p.WorkflowName,
			Outcome:        string(p.Status),
			TotalHours:     p.CompletedAt.Sub(p.StartedAt).Hours(),
		}
		prev := p.StartedAt
		for _, step := range p.Steps {
			decided := lastDecision(step)
			if decided == nil {
				continue
			}
			row.Steps = append(row.Steps, StepDuration{
				StepName: step.Name,
				Hours:    decided.Sub(prev).Hours(),
			})
			if step.Required {
				prev = *decided
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func lastDecision(step approval.ProcessStep) *time.Time {
	var last *time.Time
	for i := range step.Decisions {
		t := step.Decisions[i].DecidedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}

func (s *ReportServiceImpl) ExportReport(ctx context.Context, id string) ([]byte, string, error) {
	report, err := s.ReportRepo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := s.RunAdHoc(ctx, report.ReportType, report.Filter)
	if err != nil {
		return nil, "", err
	}

	headers, rows := tabulate(report.ReportType, data)
	content, err := writeWorkbook(headers, rows)
	if err != nil {
		return nil, "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "reports", id, map[string]common_models.Change{
		"export": {New: fmt.Sprintf("%s (%d rows)", report.ReportType, len(rows))},
	})

	filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(report.Name), time.Now().Format("20060102_150405"))
	return content, filename, nil
}

func tabulate(reportType ReportType, data interface{}) ([]string, [][]interface{}) {
	switch reportType {
	case ReportTypeRegister:
		headers := []string{"Number", "Title", "Version", "Status", "Type", "Department", "Author", "Created", "Submitted", "Decided"}
		var rows [][]interface{}
		for _, r := range data.([]RegisterRow) {
			rows = append(rows, []interface{}{
				r.Number, r.Title, r.Version, r.Status, r.TypeName, r.DepartmentName,
				r.AuthorName, formatTime(&r.CreatedAt), formatTime(r.SubmittedAt), formatTime(r.DecidedAt),
			})
		}
		return headers, rows
	case ReportTypeProductivity:
		headers := []string{"Author", "Department", "Created", "Approved", "Rejected"}
		var rows [][]interface{}
		for _, r := range data.([]ProductivityRow) {
			rows = append(rows, []interface{}{r.AuthorName, r.DepartmentName, r.Created, r.Approved, r.Rejected})
		}
		return headers, rows
	case ReportTypeApprovalTime:
		headers := []string{"Number", "Workflow", "Outcome", "Total Hours", "Steps"}
		var rows [][]interface{}
		for _, r := range data.([]ApprovalTimeRow) {
			var steps []string
			for _, sd := range r.Steps {
				steps = append(steps, fmt.Sprintf("%s: %.1fh", sd.StepName, sd.Hours))
			}
			rows = append(rows, []interface{}{
				r.DocumentNumber, r.WorkflowName, r.Outcome,
				fmt.Sprintf("%.1f", r.TotalHours), strings.Join(steps, "; "),
			})
		}
		return headers, rows
	}
	return nil, nil
}

func writeWorkbook(headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return replacer.Replace(strings.ToLower(name))
}
