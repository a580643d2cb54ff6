package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. ACTIVE is a reserved value: no current
// operation transitions into it, but it must stay representable.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted || s == EnrollmentStatusDropped
}

// Enrollment links one student to one course and carries grading state.
// Grade fields hold sentinels (0, "-", 0) until a grade is recorded.
type Enrollment struct {
	ID             int              `json:"id"`
	StudentID      int              `json:"student_id"`
	CourseID       int              `json:"course_id"`
	Grade          float64          `json:"grade"`
	LetterGrade    LetterGrade      `json:"letter_grade"`
	CreditPoints   float64          `json:"credit_points"`
	EnrollmentDate time.Time        `json:"enrollment_date"`
	Status         EnrollmentStatus `json:"status"`
}

// EnrollmentDetail enriches Enrollment with student and course info for
// list responses.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `json:"student_name"`
	CourseName  string `json:"course_name"`
	CourseCode  string `json:"course_code"`
	Credits     int    `json:"credits"`
}
