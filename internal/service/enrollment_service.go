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

// EnrollRequest holds payload for enrolling a student into a course.
type EnrollRequest struct {
	StudentID int `json:"student_id" validate:"required"`
	CourseID  int `json:"course_id" validate:"required"`
}

// RecordGradeRequest holds payload for grading an enrollment. The grade
// range is checked by the service, not by struct tags, so that 0 stays a
// valid score.
type RecordGradeRequest struct {
	Grade float64 `json:"grade"`
}

// EnrollmentService owns the enrollment lifecycle: enroll, grade, drop.
// All validation failures and mutations are recorded in the audit log.
type EnrollmentService struct {
	students    *repository.StudentRegistry
	courses     *repository.CourseCatalog
	enrollments *repository.EnrollmentStore
	audit       *repository.AuditLog
	metrics     *MetricsService
	mu          *sync.RWMutex
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(students *repository.StudentRegistry, courses *repository.CourseCatalog, enrollments *repository.EnrollmentStore, audit *repository.AuditLog, metrics *MetricsService, mu *sync.RWMutex, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		audit:       audit,
		metrics:     metrics,
		mu:          mu,
		validator:   validate,
		logger:      logger,
	}
}

// Enroll links a student to a course. Checks run in a fixed order: global
// limit, student, course, capacity, duplicate. Only after all pass is the
// record created and the course counter incremented.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enrollments.AtLimit() {
		s.audit.Append(models.AuditLevelError, models.AuditOpEnroll, "Maximum enrollment limit reached")
		s.metrics.RecordEngineOperation("enroll", appErrors.ErrCapacityExceeded)
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "enrollment limit reached")
	}

	student, err := s.students.FindActiveByID(req.StudentID)
	if err != nil {
		s.audit.Append(models.AuditLevelError, models.AuditOpEnroll, fmt.Sprintf("Student %d not found or inactive", req.StudentID))
		s.metrics.RecordEngineOperation("enroll", appErrors.ErrNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found or inactive")
	}

	course, err := s.courses.FindByID(req.CourseID)
	if err != nil {
		s.audit.Append(models.AuditLevelError, models.AuditOpEnroll, fmt.Sprintf("Course %d not found", req.CourseID))
		s.metrics.RecordEngineOperation("enroll", appErrors.ErrNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if course.CurrentEnrollment >= course.MaxCapacity {
		s.audit.Append(models.AuditLevelError, models.AuditOpEnroll, fmt.Sprintf("Course %d at maximum capacity", course.ID))
		s.metrics.RecordEngineOperation("enroll", appErrors.ErrCapacityExceeded)
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "course at maximum capacity")
	}

	if s.enrollments.ActiveExists(req.StudentID, req.CourseID) {
		s.audit.Append(models.AuditLevelWarning, models.AuditOpEnroll, fmt.Sprintf("Student %d already enrolled in course %d", req.StudentID, req.CourseID))
		s.metrics.RecordEngineOperation("enroll", appErrors.ErrDuplicateEnrollment)
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}

	enrollment, err := s.enrollments.Add(req.StudentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if err := s.courses.IncrementEnrollment(course.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course counter")
	}

	s.audit.Append(models.AuditLevelSuccess, models.AuditOpEnroll, fmt.Sprintf("Enrolled student %d in course %d (enrollment %d)", student.ID, course.ID, enrollment.ID))
	s.metrics.RecordEngineOperation("enroll", nil)
	s.metrics.SetEnrollmentCount(s.enrollments.Count())
	s.metrics.SetAuditEntryCount(s.audit.Count())

	detail := s.detail(*enrollment)
	return &detail, nil
}

// RecordGrade finalizes an enrollment with a numeric grade. The range check
// runs before the enrollment is resolved, so an out-of-range score against
// an unknown enrollment reports the grade error.
func (s *EnrollmentService) RecordGrade(ctx context.Context, enrollmentID int, req RecordGradeRequest) (*models.EnrollmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !models.ValidGrade(req.Grade) {
		s.audit.Append(models.AuditLevelError, models.AuditOpRecordGrade, fmt.Sprintf("Invalid grade value: %.2f", req.Grade))
		s.metrics.RecordEngineOperation("record_grade", appErrors.ErrInvalidGrade)
		return nil, appErrors.Clone(appErrors.ErrInvalidGrade, "")
	}

	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		s.audit.Append(models.AuditLevelError, models.AuditOpRecordGrade, fmt.Sprintf("Enrollment %d not found", enrollmentID))
		s.metrics.RecordEngineOperation("record_grade", appErrors.ErrNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if enrollment.Status.Terminal() {
		message := "grade already finalized"
		if enrollment.Status == models.EnrollmentStatusDropped {
			message = "enrollment dropped"
		}
		s.audit.Append(models.AuditLevelWarning, models.AuditOpRecordGrade, fmt.Sprintf("Enrollment %d is %s, grade rejected", enrollmentID, enrollment.Status))
		s.metrics.RecordEngineOperation("record_grade", appErrors.ErrFinalized)
		return nil, appErrors.Clone(appErrors.ErrFinalized, message)
	}

	letter := models.LetterGradeFor(req.Grade)
	if err := s.enrollments.SetGrade(enrollmentID, req.Grade, letter, letter.Points()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	s.audit.Append(models.AuditLevelSuccess, models.AuditOpRecordGrade, fmt.Sprintf("Recorded grade %.2f (%s) for enrollment %d", req.Grade, letter, enrollmentID))
	s.metrics.RecordEngineOperation("record_grade", nil)
	s.metrics.SetAuditEntryCount(s.audit.Count())

	detail := s.detail(*enrollment)
	return &detail, nil
}

// Drop withdraws an enrollment and releases its course seat. The record is
// kept with DROPPED status and the (student, course) pair becomes free for
// re-enrollment.
func (s *EnrollmentService) Drop(ctx context.Context, enrollmentID int) (*models.EnrollmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		s.audit.Append(models.AuditLevelError, models.AuditOpDropEnrollment, fmt.Sprintf("Enrollment %d not found", enrollmentID))
		s.metrics.RecordEngineOperation("drop_enrollment", appErrors.ErrNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if enrollment.Status.Terminal() {
		s.audit.Append(models.AuditLevelWarning, models.AuditOpDropEnrollment, fmt.Sprintf("Enrollment %d is %s, drop rejected", enrollmentID, enrollment.Status))
		s.metrics.RecordEngineOperation("drop_enrollment", appErrors.ErrFinalized)
		return nil, appErrors.Clone(appErrors.ErrFinalized, "enrollment already finalized")
	}

	if err := s.enrollments.Drop(enrollmentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop enrollment")
	}
	if err := s.courses.DecrementEnrollment(enrollment.CourseID); err != nil {
		if errors.Is(err, repository.ErrCounterRange) {
			return nil, appErrors.Wrap(err, appErrors.ErrOutOfRange.Code, appErrors.ErrOutOfRange.Status, "course counter already at zero")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course counter")
	}

	s.audit.Append(models.AuditLevelSuccess, models.AuditOpDropEnrollment, fmt.Sprintf("Dropped enrollment %d (student %d, course %d)", enrollment.ID, enrollment.StudentID, enrollment.CourseID))
	s.metrics.RecordEngineOperation("drop_enrollment", nil)
	s.metrics.SetAuditEntryCount(s.audit.Count())

	detail := s.detail(*enrollment)
	return &detail, nil
}

// Get returns one enrollment enriched with student and course info.
func (s *EnrollmentService) Get(ctx context.Context, enrollmentID int) (*models.EnrollmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	detail := s.detail(*enrollment)
	return &detail, nil
}

// ListByStudent returns all enrollments of the student, any status.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int) ([]models.EnrollmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.students.FindByID(studentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	enrollments := s.enrollments.ListByStudent(studentID)
	details := make([]models.EnrollmentDetail, 0, len(enrollments))
	for _, enrollment := range enrollments {
		details = append(details, s.detail(enrollment))
	}
	return details, nil
}

// ListByCourse returns all enrollments of the course, any status.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID int) ([]models.EnrollmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.courses.FindByID(courseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	enrollments := s.enrollments.ListByCourse(courseID)
	details := make([]models.EnrollmentDetail, 0, len(enrollments))
	for _, enrollment := range enrollments {
		details = append(details, s.detail(enrollment))
	}
	return details, nil
}

// detail resolves student and course display fields. The caller must hold
// the state lock.
func (s *EnrollmentService) detail(enrollment models.Enrollment) models.EnrollmentDetail {
	detail := models.EnrollmentDetail{Enrollment: enrollment}
	if student, err := s.students.FindByID(enrollment.StudentID); err == nil {
		detail.StudentName = student.Name
	}
	if course, err := s.courses.FindByID(enrollment.CourseID); err == nil {
		detail.CourseName = course.Name
		detail.CourseCode = course.Code
		detail.Credits = course.Credits
	}
	return detail
}
