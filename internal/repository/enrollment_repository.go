package repository

import (
	"time"

	"github.com/acadsys/registrar-api/internal/models"
)

type enrollmentPair struct {
	studentID int
	courseID  int
}

// EnrollmentStore owns the enrollment collection. Besides the primary index
// by ID it maintains a secondary index from (student, course) to the one
// non-dropped enrollment of that pair, keeping duplicate checks O(1).
type EnrollmentStore struct {
	limit      int
	byID       map[int]*models.Enrollment
	order      []int
	activePair map[enrollmentPair]int
	alloc      *IDAllocator
}

// NewEnrollmentStore constructs a store with the given soft limit.
func NewEnrollmentStore(limit int) *EnrollmentStore {
	if limit <= 0 {
		limit = 5000
	}
	return &EnrollmentStore{
		limit:      limit,
		byID:       make(map[int]*models.Enrollment),
		activePair: make(map[enrollmentPair]int),
		alloc:      NewIDAllocator(EnrollmentIDStart),
	}
}

// AtLimit reports whether the soft enrollment limit is exhausted.
func (s *EnrollmentStore) AtLimit() bool {
	return len(s.byID) >= s.limit
}

// Add creates a pending enrollment with sentinel grade fields. The caller
// must have validated capacity and duplicates already.
func (s *EnrollmentStore) Add(studentID, courseID int) (*models.Enrollment, error) {
	if s.AtLimit() {
		return nil, ErrLimitReached
	}
	enrollment := &models.Enrollment{
		ID:             s.alloc.Next(),
		StudentID:      studentID,
		CourseID:       courseID,
		Grade:          0,
		LetterGrade:    models.LetterGradeNone,
		CreditPoints:   0,
		EnrollmentDate: time.Now().UTC(),
		Status:         models.EnrollmentStatusPending,
	}
	s.byID[enrollment.ID] = enrollment
	s.order = append(s.order, enrollment.ID)
	s.activePair[enrollmentPair{studentID, courseID}] = enrollment.ID
	return enrollment, nil
}

// FindByID returns the enrollment with the given ID.
func (s *EnrollmentStore) FindByID(id int) (*models.Enrollment, error) {
	enrollment, ok := s.byID[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return enrollment, nil
}

// ActiveExists reports whether a non-dropped enrollment exists for the pair.
func (s *EnrollmentStore) ActiveExists(studentID, courseID int) bool {
	_, ok := s.activePair[enrollmentPair{studentID, courseID}]
	return ok
}

// SetGrade stores the numeric grade and its derived fields and marks the
// enrollment completed. Consistency between grade, letter and points is the
// caller's contract; the store only persists them together.
func (s *EnrollmentStore) SetGrade(id int, grade float64, letter models.LetterGrade, points float64) error {
	enrollment, ok := s.byID[id]
	if !ok {
		return ErrNoRecord
	}
	enrollment.Grade = grade
	enrollment.LetterGrade = letter
	enrollment.CreditPoints = points
	enrollment.Status = models.EnrollmentStatusCompleted
	return nil
}

// Drop marks the enrollment dropped and frees its (student, course) pair
// for re-enrollment. The record itself is retained forever.
func (s *EnrollmentStore) Drop(id int) error {
	enrollment, ok := s.byID[id]
	if !ok {
		return ErrNoRecord
	}
	enrollment.Status = models.EnrollmentStatusDropped
	delete(s.activePair, enrollmentPair{enrollment.StudentID, enrollment.CourseID})
	return nil
}

// ListByStudent returns all enrollments of the student, any status.
func (s *EnrollmentStore) ListByStudent(studentID int) []models.Enrollment {
	matches := make([]models.Enrollment, 0)
	for _, id := range s.order {
		if s.byID[id].StudentID == studentID {
			matches = append(matches, *s.byID[id])
		}
	}
	return matches
}

// ListByCourse returns all enrollments of the course, any status.
func (s *EnrollmentStore) ListByCourse(courseID int) []models.Enrollment {
	matches := make([]models.Enrollment, 0)
	for _, id := range s.order {
		if s.byID[id].CourseID == courseID {
			matches = append(matches, *s.byID[id])
		}
	}
	return matches
}

// CountActiveByCourse recounts non-dropped enrollments for the course.
// Used by invariant checks against the course counter.
func (s *EnrollmentStore) CountActiveByCourse(courseID int) int {
	count := 0
	for _, enrollment := range s.byID {
		if enrollment.CourseID == courseID && enrollment.Status != models.EnrollmentStatusDropped {
			count++
		}
	}
	return count
}

// Count returns the total number of enrollment records.
func (s *EnrollmentStore) Count() int {
	return len(s.byID)
}

// Snapshot copies every record in insertion order.
func (s *EnrollmentStore) Snapshot() []models.Enrollment {
	enrollments := make([]models.Enrollment, 0, len(s.order))
	for _, id := range s.order {
		enrollments = append(enrollments, *s.byID[id])
	}
	return enrollments
}
