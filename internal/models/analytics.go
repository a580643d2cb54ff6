package models

import "time"

// StudentGPA reports a student's grade point average over completed
// enrollments. GPA is nil when the student has no completed enrollment;
// "no data" is deliberately distinct from a 0.0 average.
type StudentGPA struct {
	StudentID        int      `json:"student_id"`
	StudentName      string   `json:"student_name"`
	CompletedCourses int      `json:"completed_courses"`
	GPA              *float64 `json:"gpa,omitempty"`
}

// ClassStatistics aggregates completed (graded) enrollments of one course.
// The numeric aggregates are nil when nothing has been graded yet.
type ClassStatistics struct {
	CourseID          int      `json:"course_id"`
	CourseName        string   `json:"course_name"`
	CourseCode        string   `json:"course_code"`
	CurrentEnrollment int      `json:"current_enrollment"`
	GradedCount       int      `json:"graded_count"`
	AverageGrade      *float64 `json:"average_grade,omitempty"`
	HighestGrade      *float64 `json:"highest_grade,omitempty"`
	LowestGrade       *float64 `json:"lowest_grade,omitempty"`
	GradeRange        *float64 `json:"grade_range,omitempty"`
}

// SystemStatistics is the system-wide aggregate snapshot.
type SystemStatistics struct {
	StudentCount          int       `json:"student_count"`
	CourseCount           int       `json:"course_count"`
	EnrollmentCount       int       `json:"enrollment_count"`
	AuditEntryCount       int       `json:"audit_entry_count"`
	AverageSystemGPA      *float64  `json:"average_system_gpa,omitempty"`
	AverageEnrollmentRate *float64  `json:"average_enrollment_rate,omitempty"`
	GeneratedAt           time.Time `json:"generated_at"`
}
