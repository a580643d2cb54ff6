package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

// AnalyticsService computes aggregates on demand. Nothing is cached: every
// call walks the live collections under the read lock, so results always
// reflect the current records.
type AnalyticsService struct {
	students    *repository.StudentRegistry
	courses     *repository.CourseCatalog
	enrollments *repository.EnrollmentStore
	audit       *repository.AuditLog
	mu          *sync.RWMutex
	logger      *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(students *repository.StudentRegistry, courses *repository.CourseCatalog, enrollments *repository.EnrollmentStore, audit *repository.AuditLog, mu *sync.RWMutex, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		audit:       audit,
		mu:          mu,
		logger:      logger,
	}
}

// StudentGPA computes the grade point average over the student's completed
// enrollments. GPA is nil when nothing has been completed.
func (s *AnalyticsService) StudentGPA(ctx context.Context, studentID int) (*models.StudentGPA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, err := s.students.FindByID(studentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	result := &models.StudentGPA{
		StudentID:   student.ID,
		StudentName: student.Name,
	}
	total := 0.0
	for _, enrollment := range s.enrollments.ListByStudent(studentID) {
		if enrollment.Status != models.EnrollmentStatusCompleted {
			continue
		}
		result.CompletedCourses++
		total += enrollment.CreditPoints
	}
	if result.CompletedCourses > 0 {
		gpa := total / float64(result.CompletedCourses)
		result.GPA = &gpa
	}
	return result, nil
}

// ClassStatistics aggregates completed enrollments of one course. The
// numeric aggregates are nil when no grade has been recorded yet.
func (s *AnalyticsService) ClassStatistics(ctx context.Context, courseID int) (*models.ClassStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, err := s.courses.FindByID(courseID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	stats := &models.ClassStatistics{
		CourseID:          course.ID,
		CourseName:        course.Name,
		CourseCode:        course.Code,
		CurrentEnrollment: course.CurrentEnrollment,
	}
	var sum, highest, lowest float64
	for _, enrollment := range s.enrollments.ListByCourse(courseID) {
		if enrollment.Status != models.EnrollmentStatusCompleted {
			continue
		}
		if stats.GradedCount == 0 {
			highest = enrollment.Grade
			lowest = enrollment.Grade
		} else {
			if enrollment.Grade > highest {
				highest = enrollment.Grade
			}
			if enrollment.Grade < lowest {
				lowest = enrollment.Grade
			}
		}
		sum += enrollment.Grade
		stats.GradedCount++
	}
	if stats.GradedCount > 0 {
		average := sum / float64(stats.GradedCount)
		gradeRange := highest - lowest
		stats.AverageGrade = &average
		stats.HighestGrade = &highest
		stats.LowestGrade = &lowest
		stats.GradeRange = &gradeRange
	}
	return stats, nil
}

// SystemStatistics reports system-wide aggregates. The average GPA is the
// mean credit points across all completed enrollments; the enrollment rate
// is the mean seat utilisation across courses.
func (s *AnalyticsService) SystemStatistics(ctx context.Context) (*models.SystemStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.SystemStatistics{
		StudentCount:    s.students.ActiveCount(),
		CourseCount:     s.courses.Count(),
		EnrollmentCount: s.enrollments.Count(),
		AuditEntryCount: s.audit.Count(),
		GeneratedAt:     time.Now().UTC(),
	}

	pointsTotal := 0.0
	completed := 0
	for _, enrollment := range s.enrollments.Snapshot() {
		if enrollment.Status != models.EnrollmentStatusCompleted {
			continue
		}
		pointsTotal += enrollment.CreditPoints
		completed++
	}
	if completed > 0 {
		average := pointsTotal / float64(completed)
		stats.AverageSystemGPA = &average
	}

	courses := s.courses.Snapshot()
	if len(courses) > 0 {
		rateTotal := 0.0
		for _, course := range courses {
			if course.MaxCapacity > 0 {
				rateTotal += float64(course.CurrentEnrollment) / float64(course.MaxCapacity)
			}
		}
		rate := rateTotal / float64(len(courses))
		stats.AverageEnrollmentRate = &rate
	}
	return stats, nil
}
