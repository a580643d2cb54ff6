package models

import "time"

// Snapshot is a full, consistent read-only copy of the three collections,
// taken under the state lock. Export collaborators work exclusively from
// snapshots so a dump never observes a half-applied operation.
type Snapshot struct {
	Students    []Student    `json:"students"`
	Courses     []Course     `json:"courses"`
	Enrollments []Enrollment `json:"enrollments"`
	TakenAt     time.Time    `json:"taken_at"`
}
