package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type scheduleLister interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleWindow, error)
}

type applicationLister interface {
	My(ctx context.Context, userID int64) ([]models.Application, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// Labeler renders localized labels for CSV output.
type Labeler interface {
	ScheduleType(ctx context.Context, t models.ScheduleType) string
	Status(ctx context.Context, s models.ApplicationStatus) string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL time.Duration
}

// ExportResult describes one written export.
type ExportResult struct {
	Path   string
	Format string
	Rows   int
}

// ExportService writes schedule and application listings to files.
type ExportService struct {
	schedules    scheduleLister
	applications applicationLister
	storage      fileStorage
	csv          csvRenderer
	pdf          pdfRenderer
	labels       Labeler
	logger       *zap.Logger
	cfg          ExportConfig
	now          func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the default
// exporters; a nil labeler keeps canonical values.
func NewExportService(schedules scheduleLister, applications applicationLister, storage fileStorage, labels Labeler, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules:    schedules,
		applications: applications,
		storage:      storage,
		csv:          csv,
		pdf:          pdf,
		labels:       labels,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Schedules exports the windows matching filter.
func (s *ExportService) Schedules(ctx context.Context, filter models.ScheduleFilter, format string) (*ExportResult, error) {
	windows, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	localized := format == FormatCSV
	data := export.Dataset{
		Title:   "Schedules " + filter.Month,
		Headers: []string{"scheduleId", "semesterId", "scheduleType", "startDate", "endDate", "description"},
		Rows:    make([]map[string]string, 0, len(windows)),
	}
	for _, w := range windows {
		semester := ""
		if w.SemesterID.Valid {
			semester = fmt.Sprintf("%d", w.SemesterID.Int64)
		}
		data.Rows = append(data.Rows, map[string]string{
			"scheduleId":   w.ScheduleID,
			"semesterId":   semester,
			"scheduleType": s.typeLabel(ctx, w.ScheduleType, localized),
			"startDate":    w.StartDate.String,
			"endDate":      w.EndDate.String,
			"description":  w.Description,
		})
	}
	return s.write(ctx, "schedules_"+sanitizeFilename(filter.Month), format, data)
}

// Applications exports the user's applications.
func (s *ExportService) Applications(ctx context.Context, userID int64, format string) (*ExportResult, error) {
	apps, err := s.applications.My(ctx, userID)
	if err != nil {
		return nil, err
	}
	localized := format == FormatCSV
	data := export.Dataset{
		Title:   fmt.Sprintf("Applications of user %d", userID),
		Headers: []string{"appId", "scheduleType", "status", "submittedAt", "scheduleStart", "scheduleEnd", "reason"},
		Rows:    make([]map[string]string, 0, len(apps)),
	}
	for _, a := range apps {
		status := string(a.Status)
		if localized && s.labels != nil {
			status = s.labels.Status(ctx, a.Status)
		}
		data.Rows = append(data.Rows, map[string]string{
			"appId":         a.AppID,
			"scheduleType":  s.typeLabel(ctx, a.ScheduleType, localized),
			"status":        status,
			"submittedAt":   a.SubmittedAt.String,
			"scheduleStart": a.ScheduleStart.String,
			"scheduleEnd":   a.ScheduleEnd.String,
			"reason":        a.Reason,
		})
	}
	return s.write(ctx, fmt.Sprintf("applications_%d", userID), format, data)
}

// Cleanup removes exports older than ttl, defaulting to the configured TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) write(ctx context.Context, base, format string, data export.Dataset) (*ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(data)
	case FormatPDF:
		payload, err = s.pdf.Render(data)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s.%s", base, s.now().UTC().Format("20060102_150405"), format)
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export written", zap.String("path", path), zap.Int("rows", len(data.Rows)))
	return &ExportResult{Path: path, Format: format, Rows: len(data.Rows)}, nil
}

func (s *ExportService) typeLabel(ctx context.Context, t models.ScheduleType, localized bool) string {
	if localized && s.labels != nil {
		return s.labels.ScheduleType(ctx, t)
	}
	return string(t)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
