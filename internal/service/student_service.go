package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

// RegisterStudentRequest holds payload for registering students. Contact
// fields are advisory: malformed values produce audit warnings, not errors.
type RegisterStudentRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AdmissionYear int    `json:"admission_year"`
	Major         string `json:"major"`
}

// StudentService handles student registry use-cases.
type StudentService struct {
	registry  *repository.StudentRegistry
	audit     *repository.AuditLog
	metrics   *MetricsService
	mu        *sync.RWMutex
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(registry *repository.StudentRegistry, audit *repository.AuditLog, metrics *MetricsService, mu *sync.RWMutex, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		registry:  registry,
		audit:     audit,
		metrics:   metrics,
		mu:        mu,
		validator: validate,
		logger:    logger,
	}
}

// Register creates a new student record.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student := &models.Student{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		AdmissionYear: req.AdmissionYear,
		Major:         req.Major,
	}
	if err := s.registry.Add(student); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			s.audit.Append(models.AuditLevelError, models.AuditOpRegisterStudent, "Maximum student limit reached")
			s.metrics.RecordEngineOperation("register_student", appErrors.ErrCapacityExceeded)
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "student limit reached")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}

	s.auditContactWarnings(student)
	s.audit.Append(models.AuditLevelSuccess, models.AuditOpRegisterStudent, fmt.Sprintf("Registered student %d (%s)", student.ID, student.Name))
	s.metrics.RecordEngineOperation("register_student", nil)
	s.metrics.SetStudentCount(s.registry.ActiveCount())
	s.metrics.SetAuditEntryCount(s.audit.Count())

	copied := *student
	return &copied, nil
}

// Get returns the student with the given ID, active or not.
func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, err := s.registry.FindByID(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	copied := *student
	return &copied, nil
}

// List returns students matching the filter plus pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students, total := s.registry.List(filter)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Search returns active students whose name contains the substring.
func (s *StudentService) Search(ctx context.Context, substring string) ([]models.Student, error) {
	if substring == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search term required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.SearchByName(substring), nil
}

// Deactivate soft-deletes a student. Existing enrollments are untouched.
func (s *StudentService) Deactivate(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.registry.FindByID(id)
	if err != nil {
		s.audit.Append(models.AuditLevelError, models.AuditOpDeactivateStudent, fmt.Sprintf("Student %d not found", id))
		s.metrics.RecordEngineOperation("deactivate_student", appErrors.ErrNotFound)
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !student.Active {
		s.audit.Append(models.AuditLevelWarning, models.AuditOpDeactivateStudent, fmt.Sprintf("Student %d already inactive", id))
		s.metrics.RecordEngineOperation("deactivate_student", appErrors.ErrConflict)
		return appErrors.Clone(appErrors.ErrConflict, "student already inactive")
	}
	if err := s.registry.Deactivate(id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}

	s.audit.Append(models.AuditLevelSuccess, models.AuditOpDeactivateStudent, fmt.Sprintf("Deactivated student %d (%s)", student.ID, student.Name))
	s.metrics.RecordEngineOperation("deactivate_student", nil)
	s.metrics.SetStudentCount(s.registry.ActiveCount())
	s.metrics.SetAuditEntryCount(s.audit.Count())
	return nil
}

func (s *StudentService) auditContactWarnings(student *models.Student) {
	if student.Email != "" && (!strings.Contains(student.Email, "@") || !strings.Contains(student.Email, ".")) {
		s.audit.Append(models.AuditLevelWarning, models.AuditOpRegisterStudent, fmt.Sprintf("Suspicious email format for student %d", student.ID))
	}
	if student.Phone != "" {
		digits := 0
		for _, r := range student.Phone {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < 7 {
			s.audit.Append(models.AuditLevelWarning, models.AuditOpRegisterStudent, fmt.Sprintf("Suspicious phone number for student %d", student.ID))
		}
	}
}
