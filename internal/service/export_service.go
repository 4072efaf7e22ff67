package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/pkg/export"
	"github.com/exam-planner/backend/pkg/storage"
)

type exportExamLister interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportService builds exam timetable datasets and persists rendered files.
type ExportService struct {
	exams   exportExamLister
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	xlsx    xlsxRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(exams exportExamLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		exams:   exams,
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		xlsx:    export.NewXLSXExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

var timetableHeaders = []string{"Date", "Start", "Duration (min)", "Course", "Kind", "Group", "Room", "Building", "Professor", "Assistant", "Status"}

// Generate builds the timetable dataset for a job and stores the rendered
// export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}

	dataset, err := s.buildTimetable(ctx, job.Params.Status)
	if err != nil {
		return nil, err
	}

	payload, err := s.render(dataset, job.Params.Format)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenderTimetable produces the timetable export in-memory for synchronous
// downloads, without touching storage or the job queue.
func (s *ExportService) RenderTimetable(ctx context.Context, format models.ExportFormat, status models.ExamStatus) (string, []byte, error) {
	dataset, err := s.buildTimetable(ctx, status)
	if err != nil {
		return "", nil, err
	}
	payload, err := s.render(dataset, format)
	if err != nil {
		return "", nil, err
	}
	scope := "all"
	if status != "" {
		scope = strings.ToLower(string(status))
	}
	filename := fmt.Sprintf("timetable_%s.%s", scope, format)
	return filename, payload, nil
}

func (s *ExportService) render(dataset export.Dataset, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	case models.ExportFormatPDF:
		return s.pdf.Render(dataset, "Examination Timetable")
	case models.ExportFormatXLSX:
		return s.xlsx.Render(dataset, "Timetable")
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := "all"
	if job.Params.Status != "" {
		scope = strings.ToLower(string(job.Params.Status))
	}
	return fmt.Sprintf("timetable_%s_%s.%s", scope, timestamp, job.Params.Format)
}

func (s *ExportService) buildTimetable(ctx context.Context, status models.ExamStatus) (export.Dataset, error) {
	exams, err := s.exams.List(ctx, models.ExamFilter{Status: status})
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load exams for export: %w", err)
	}

	rows := make([]map[string]string, 0, len(exams))
	for _, exam := range exams {
		rows = append(rows, map[string]string{
			"Date":           exam.ExamDate.Format("2006-01-02"),
			"Start":          derefString(exam.StartTime),
			"Duration (min)": derefInt(exam.DurationMinutes),
			"Course":         exam.CourseName,
			"Kind":           string(exam.Kind),
			"Group":          exam.GroupName,
			"Room":           derefString(exam.RoomName),
			"Building":       derefString(exam.RoomBuilding),
			"Professor":      derefString(exam.ProfessorName),
			"Assistant":      derefString(exam.AssistantName),
			"Status":         string(exam.Status),
		})
	}
	return export.Dataset{Headers: timetableHeaders, Rows: rows}, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
