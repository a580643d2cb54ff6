package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
	"github.com/acadsys/registrar-api/pkg/export"
	"github.com/acadsys/registrar-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes rendered export handling.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders exports from consistent snapshots of the three
// collections. The snapshot is taken under the state lock; rendering and
// persistence happen outside it.
type ExportService struct {
	students    *repository.StudentRegistry
	courses     *repository.CourseCatalog
	enrollments *repository.EnrollmentStore
	audit       *repository.AuditLog
	mu          *sync.RWMutex
	storage     fileStorage
	signer      *storage.SignedURLSigner
	csv         csvRenderer
	pdf         pdfRenderer
	text        *export.TextExporter
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(students *repository.StudentRegistry, courses *repository.CourseCatalog, enrollments *repository.EnrollmentStore, audit *repository.AuditLog, mu *sync.RWMutex, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		audit:       audit,
		mu:          mu,
		storage:     store,
		signer:      signer,
		csv:         csv,
		pdf:         pdf,
		text:        export.NewTextExporter(),
		logger:      logger,
		cfg:         cfg,
	}
}

// Snapshot copies all three collections under the state lock and records
// the export in the audit log.
func (s *ExportService) Snapshot(ctx context.Context) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := models.Snapshot{
		Students:    s.students.Snapshot(),
		Courses:     s.courses.Snapshot(),
		Enrollments: s.enrollments.Snapshot(),
		TakenAt:     time.Now().UTC(),
	}
	s.audit.Append(models.AuditLevelInfo, models.AuditOpExport, fmt.Sprintf("Exported %d students, %d courses, %d enrollments", len(snapshot.Students), len(snapshot.Courses), len(snapshot.Enrollments)))
	return snapshot
}

// RenderDump produces the flat human-readable dump of the full system state.
func (s *ExportService) RenderDump(ctx context.Context) ([]byte, error) {
	snapshot := s.Snapshot(ctx)

	doc := export.Document{
		Title: fmt.Sprintf("SYSTEM EXPORT - %s", snapshot.TakenAt.Format("2006-01-02 15:04:05")),
	}

	studentLines := make([]string, 0, len(snapshot.Students))
	for _, student := range snapshot.Students {
		status := "active"
		if !student.Active {
			status = "inactive"
		}
		studentLines = append(studentLines, fmt.Sprintf("ID: %d | Name: %s | Email: %s | Major: %s | Status: %s", student.ID, student.Name, student.Email, student.Major, status))
	}
	doc.Sections = append(doc.Sections, export.Section{Heading: fmt.Sprintf("STUDENTS (%d)", len(snapshot.Students)), Lines: studentLines})

	courseLines := make([]string, 0, len(snapshot.Courses))
	for _, course := range snapshot.Courses {
		courseLines = append(courseLines, fmt.Sprintf("ID: %d | Code: %s | Name: %s | Credits: %d | Enrolled: %d/%d", course.ID, course.Code, course.Name, course.Credits, course.CurrentEnrollment, course.MaxCapacity))
	}
	doc.Sections = append(doc.Sections, export.Section{Heading: fmt.Sprintf("COURSES (%d)", len(snapshot.Courses)), Lines: courseLines})

	enrollmentLines := make([]string, 0, len(snapshot.Enrollments))
	for _, enrollment := range snapshot.Enrollments {
		grade := "-"
		if enrollment.LetterGrade != models.LetterGradeNone {
			grade = fmt.Sprintf("%.2f (%s)", enrollment.Grade, enrollment.LetterGrade)
		}
		enrollmentLines = append(enrollmentLines, fmt.Sprintf("ID: %d | Student: %d | Course: %d | Grade: %s | Status: %s", enrollment.ID, enrollment.StudentID, enrollment.CourseID, grade, enrollment.Status))
	}
	doc.Sections = append(doc.Sections, export.Section{Heading: fmt.Sprintf("ENROLLMENTS (%d)", len(snapshot.Enrollments)), Lines: enrollmentLines})

	return s.text.Render(doc)
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	snapshot := s.Snapshot(ctx)
	dataset, title, err := s.buildDataset(snapshot, job.Type)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
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

// Cleanup removes files older than ttl (defaults to configured ResultTTL
// when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Format)
}

func (s *ExportService) buildDataset(snapshot models.Snapshot, reportType models.ReportType) (export.Dataset, string, error) {
	switch reportType {
	case models.ReportTypeStudents:
		return buildStudentDataset(snapshot), "Student Registry Report", nil
	case models.ReportTypeCourses:
		return buildCourseDataset(snapshot), "Course Catalog Report", nil
	case models.ReportTypeEnrollments:
		return buildEnrollmentDataset(snapshot), "Enrollment Report", nil
	case models.ReportTypeSummary:
		return buildSummaryDataset(snapshot), "System Summary Report", nil
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report type %s", reportType))
	}
}

func buildStudentDataset(snapshot models.Snapshot) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"id", "name", "email", "major", "admission_year", "active"},
	}
	for _, student := range snapshot.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":             fmt.Sprintf("%d", student.ID),
			"name":           student.Name,
			"email":          student.Email,
			"major":          student.Major,
			"admission_year": fmt.Sprintf("%d", student.AdmissionYear),
			"active":         fmt.Sprintf("%t", student.Active),
		})
	}
	return dataset
}

func buildCourseDataset(snapshot models.Snapshot) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"id", "code", "name", "credits", "enrolled", "capacity"},
	}
	for _, course := range snapshot.Courses {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":       fmt.Sprintf("%d", course.ID),
			"code":     course.Code,
			"name":     course.Name,
			"credits":  fmt.Sprintf("%d", course.Credits),
			"enrolled": fmt.Sprintf("%d", course.CurrentEnrollment),
			"capacity": fmt.Sprintf("%d", course.MaxCapacity),
		})
	}
	return dataset
}

func buildEnrollmentDataset(snapshot models.Snapshot) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"id", "student_id", "course_id", "grade", "letter", "points", "status"},
	}
	for _, enrollment := range snapshot.Enrollments {
		grade := ""
		if enrollment.LetterGrade != models.LetterGradeNone {
			grade = fmt.Sprintf("%.2f", enrollment.Grade)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":         fmt.Sprintf("%d", enrollment.ID),
			"student_id": fmt.Sprintf("%d", enrollment.StudentID),
			"course_id":  fmt.Sprintf("%d", enrollment.CourseID),
			"grade":      grade,
			"letter":     string(enrollment.LetterGrade),
			"points":     fmt.Sprintf("%.1f", enrollment.CreditPoints),
			"status":     string(enrollment.Status),
		})
	}
	return dataset
}

func buildSummaryDataset(snapshot models.Snapshot) export.Dataset {
	activeStudents := 0
	for _, student := range snapshot.Students {
		if student.Active {
			activeStudents++
		}
	}
	completed := 0
	for _, enrollment := range snapshot.Enrollments {
		if enrollment.Status == models.EnrollmentStatusCompleted {
			completed++
		}
	}
	return export.Dataset{
		Headers: []string{"metric", "value"},
		Rows: []map[string]string{
			{"metric": "students_total", "value": fmt.Sprintf("%d", len(snapshot.Students))},
			{"metric": "students_active", "value": fmt.Sprintf("%d", activeStudents)},
			{"metric": "courses_total", "value": fmt.Sprintf("%d", len(snapshot.Courses))},
			{"metric": "enrollments_total", "value": fmt.Sprintf("%d", len(snapshot.Enrollments))},
			{"metric": "enrollments_completed", "value": fmt.Sprintf("%d", completed)},
			{"metric": "generated_at", "value": snapshot.TakenAt.Format(time.RFC3339)},
		},
	}
}
