package repository

import (
	"strings"
	"time"

	"github.com/acadsys/registrar-api/internal/models"
)

// StudentRegistry owns the student collection. It is a plain unsynchronized
// container; callers serialize access through the shared state lock.
type StudentRegistry struct {
	limit int
	byID  map[int]*models.Student
	order []int
	alloc *IDAllocator
}

// NewStudentRegistry constructs a registry with the given soft limit.
func NewStudentRegistry(limit int) *StudentRegistry {
	if limit <= 0 {
		limit = 500
	}
	return &StudentRegistry{
		limit: limit,
		byID:  make(map[int]*models.Student),
		alloc: NewIDAllocator(StudentIDStart),
	}
}

// Add registers a new student, allocating its ID. Fails with
// ErrLimitReached when the soft limit is exhausted.
func (r *StudentRegistry) Add(student *models.Student) error {
	if len(r.byID) >= r.limit {
		return ErrLimitReached
	}
	student.ID = r.alloc.Next()
	student.RegistrationDate = time.Now().UTC()
	student.Active = true
	r.byID[student.ID] = student
	r.order = append(r.order, student.ID)
	return nil
}

// FindByID returns the student regardless of its active flag.
func (r *StudentRegistry) FindByID(id int) (*models.Student, error) {
	student, ok := r.byID[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return student, nil
}

// FindActiveByID returns the student only when it is active. This is the
// view the enrollment engine resolves students through.
func (r *StudentRegistry) FindActiveByID(id int) (*models.Student, error) {
	student, ok := r.byID[id]
	if !ok || !student.Active {
		return nil, ErrNoRecord
	}
	return student, nil
}

// SearchByName returns active students whose name contains the given
// substring. Matching is case-sensitive; result order is insertion order.
func (r *StudentRegistry) SearchByName(substring string) []models.Student {
	matches := make([]models.Student, 0)
	for _, id := range r.order {
		student := r.byID[id]
		if student.Active && strings.Contains(student.Name, substring) {
			matches = append(matches, *student)
		}
	}
	return matches
}

// List returns students matching the filter plus the total match count.
func (r *StudentRegistry) List(filter models.StudentFilter) ([]models.Student, int) {
	matches := make([]models.Student, 0)
	for _, id := range r.order {
		student := r.byID[id]
		if filter.Active != nil && student.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(student.Name, filter.Search) {
			continue
		}
		matches = append(matches, *student)
	}
	total := len(matches)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []models.Student{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matches[start:end], total
}

// Deactivate soft-deletes a student. The record stays resolvable through
// FindByID for historical enrollments.
func (r *StudentRegistry) Deactivate(id int) error {
	student, ok := r.byID[id]
	if !ok {
		return ErrNoRecord
	}
	student.Active = false
	return nil
}

// Count returns the number of registered students, active or not.
func (r *StudentRegistry) Count() int {
	return len(r.byID)
}

// ActiveCount returns the number of active students.
func (r *StudentRegistry) ActiveCount() int {
	count := 0
	for _, student := range r.byID {
		if student.Active {
			count++
		}
	}
	return count
}

// Snapshot copies every record in insertion order.
func (r *StudentRegistry) Snapshot() []models.Student {
	students := make([]models.Student, 0, len(r.order))
	for _, id := range r.order {
		students = append(students, *r.byID[id])
	}
	return students
}
