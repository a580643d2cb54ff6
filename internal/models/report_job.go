package models

import "time"

// ReportType enumerates supported asynchronous report categories.
type ReportType string

const (
	ReportTypeStudents    ReportType = "students"
	ReportTypeCourses     ReportType = "courses"
	ReportTypeEnrollments ReportType = "enrollments"
	ReportTypeSummary     ReportType = "summary"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob holds background report generation metadata.
type ReportJob struct {
	ID           string       `json:"id"`
	Type         ReportType   `json:"type"`
	Format       ReportFormat `json:"format"`
	Status       ReportStatus `json:"status"`
	ResultURL    *string      `json:"result_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
