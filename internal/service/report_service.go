package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
	"github.com/acadsys/registrar-api/pkg/jobs"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportRequest holds payload for requesting a report.
type ReportRequest struct {
	Type   models.ReportType   `json:"type"`
	Format models.ReportFormat `json:"format"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportServiceConfig governs retries and cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ReportService orchestrates the report job lifecycle. Jobs live in memory
// only; a restart forgets them together with the rest of the system state.
type ReportService struct {
	jobsMu   sync.RWMutex
	jobsByID map[string]*models.ReportJob

	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ReportService{
		jobsByID: make(map[string]*models.ReportJob),
		queue:    queue,
		exporter: exporter,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateJob validates the request, registers the job, and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req ReportRequest) (*models.ReportJob, error) {
	if !isValidReportType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	if !isValidFormat(req.Format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	job := &models.ReportJob{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Format:    req.Format,
		Status:    models.ReportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	s.jobsMu.Lock()
	s.jobsByID[job.ID] = job
	s.jobsMu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		msg := "failed to enqueue job"
		s.update(job.ID, func(j *models.ReportJob) {
			now := time.Now().UTC()
			j.Status = models.ReportStatusFailed
			j.ErrorMessage = &msg
			j.FinishedAt = &now
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	copied := *job
	return &copied, nil
}

// GetStatus returns job metadata.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*models.ReportJob, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, ok := s.jobsByID[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	copied := *job
	return &copied, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invalid or expired download token")
	}

	job, err := s.GetStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "token mismatch")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report not ready")
	}

	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ReportService) cleanupExpired() {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)

	s.jobsMu.Lock()
	for id, job := range s.jobsByID {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobsByID, id)
		}
	}
	s.jobsMu.Unlock()

	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ReportService) update(id string, mutate func(*models.ReportJob)) bool {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, ok := s.jobsByID[id]
	if !ok {
		return false
	}
	mutate(job)
	return true
}

func isValidReportType(t models.ReportType) bool {
	switch t {
	case models.ReportTypeStudents, models.ReportTypeCourses, models.ReportTypeEnrollments, models.ReportTypeSummary:
		return true
	default:
		return false
	}
}

func isValidFormat(f models.ReportFormat) bool {
	return f == models.ReportFormatCSV || f == models.ReportFormatPDF
}

// Handle processes one queue job. It is the handler wired into the report
// queue workers.
func (s *ReportService) Handle(ctx context.Context, job jobs.Job) error {
	record, err := s.GetStatus(ctx, job.ID)
	if err != nil {
		return err
	}

	s.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusProcessing
	})

	result, err := s.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= s.cfg.MaxRetries {
			now := time.Now().UTC()
			s.update(job.ID, func(j *models.ReportJob) {
				j.Status = models.ReportStatusFailed
				j.ErrorMessage = &msg
				j.FinishedAt = &now
			})
		} else {
			s.update(job.ID, func(j *models.ReportJob) {
				j.Status = models.ReportStatusQueued
				j.ErrorMessage = &msg
			})
		}
		return err
	}

	now := time.Now().UTC()
	s.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusFinished
		j.ResultURL = &result.URL
		j.ErrorMessage = nil
		j.FinishedAt = &now
	})
	return nil
}
