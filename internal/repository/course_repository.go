package repository

import (
	"time"

	"github.com/acadsys/registrar-api/internal/models"
)

// CourseCatalog owns the course collection. Like the student registry it is
// unsynchronized; the shared state lock serializes access.
type CourseCatalog struct {
	limit int
	byID  map[int]*models.Course
	order []int
	alloc *IDAllocator
}

// NewCourseCatalog constructs a catalog with the given soft limit.
func NewCourseCatalog(limit int) *CourseCatalog {
	if limit <= 0 {
		limit = 100
	}
	return &CourseCatalog{
		limit: limit,
		byID:  make(map[int]*models.Course),
		alloc: NewIDAllocator(CourseIDStart),
	}
}

// Add creates a new course, allocating its ID. The enrollment counter
// always starts at zero.
func (c *CourseCatalog) Add(course *models.Course) error {
	if len(c.byID) >= c.limit {
		return ErrLimitReached
	}
	course.ID = c.alloc.Next()
	course.CurrentEnrollment = 0
	course.CreatedDate = time.Now().UTC()
	c.byID[course.ID] = course
	c.order = append(c.order, course.ID)
	return nil
}

// FindByID returns the course with the given ID.
func (c *CourseCatalog) FindByID(id int) (*models.Course, error) {
	course, ok := c.byID[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return course, nil
}

// IncrementEnrollment raises the course counter by one. Fails with
// ErrCounterRange when the counter would exceed the course capacity.
func (c *CourseCatalog) IncrementEnrollment(id int) error {
	course, ok := c.byID[id]
	if !ok {
		return ErrNoRecord
	}
	if course.CurrentEnrollment >= course.MaxCapacity {
		return ErrCounterRange
	}
	course.CurrentEnrollment++
	return nil
}

// DecrementEnrollment lowers the course counter by one. Fails with
// ErrCounterRange when the counter would go negative.
func (c *CourseCatalog) DecrementEnrollment(id int) error {
	course, ok := c.byID[id]
	if !ok {
		return ErrNoRecord
	}
	if course.CurrentEnrollment <= 0 {
		return ErrCounterRange
	}
	course.CurrentEnrollment--
	return nil
}

// List returns all courses in insertion order with the total count.
func (c *CourseCatalog) List(page, pageSize int) ([]models.Course, int) {
	all := c.Snapshot()
	total := len(all)

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Course{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total
}

// Count returns the number of courses.
func (c *CourseCatalog) Count() int {
	return len(c.byID)
}

// Snapshot copies every record in insertion order.
func (c *CourseCatalog) Snapshot() []models.Course {
	courses := make([]models.Course, 0, len(c.order))
	for _, id := range c.order {
		courses = append(courses, *c.byID[id])
	}
	return courses
}
