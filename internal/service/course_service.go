package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Code            string  `json:"code" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	Credits         int     `json:"credits" validate:"required,gt=0"`
	MaxCapacity     int     `json:"max_capacity" validate:"required,gt=0"`
	DifficultyLevel float64 `json:"difficulty_level" validate:"gte=0"`
}

// CourseService handles course catalog use-cases.
type CourseService struct {
	catalog   *repository.CourseCatalog
	audit     *repository.AuditLog
	metrics   *MetricsService
	mu        *sync.RWMutex
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(catalog *repository.CourseCatalog, audit *repository.AuditLog, metrics *MetricsService, mu *sync.RWMutex, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		catalog:   catalog,
		audit:     audit,
		metrics:   metrics,
		mu:        mu,
		validator: validate,
		logger:    logger,
	}
}

// Create adds a new course to the catalog.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	course := &models.Course{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		Credits:         req.Credits,
		MaxCapacity:     req.MaxCapacity,
		DifficultyLevel: req.DifficultyLevel,
	}
	if err := s.catalog.Add(course); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			s.audit.Append(models.AuditLevelError, models.AuditOpCreateCourse, "Maximum course limit reached")
			s.metrics.RecordEngineOperation("create_course", appErrors.ErrCapacityExceeded)
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "course limit reached")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.audit.Append(models.AuditLevelSuccess, models.AuditOpCreateCourse, fmt.Sprintf("Created course %d (%s)", course.ID, course.Code))
	s.metrics.RecordEngineOperation("create_course", nil)
	s.metrics.SetCourseCount(s.catalog.Count())
	s.metrics.SetAuditEntryCount(s.audit.Count())

	copied := *course
	return &copied, nil
}

// Get returns the course with the given ID.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, err := s.catalog.FindByID(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	copied := *course
	return &copied, nil
}

// List returns courses in creation order plus pagination metadata.
func (s *CourseService) List(ctx context.Context, page, pageSize int) ([]models.Course, *models.Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses, total := s.catalog.List(page, pageSize)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return courses, pagination, nil
}
