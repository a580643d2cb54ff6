package repository

// ID offsets per entity kind. They only make IDs visually distinguishable
// in output; uniqueness comes from the per-collection counters.
const (
	StudentIDStart    = 1001
	CourseIDStart     = 5001
	EnrollmentIDStart = 7001
)

// IDAllocator hands out strictly increasing integer IDs. IDs are never
// reused, even after a record is deactivated or dropped.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator whose first ID is start.
func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns the next ID and advances the counter.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}
