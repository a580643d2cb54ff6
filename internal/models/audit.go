package models

import "time"

// AuditLevel classifies audit log entries.
type AuditLevel string

const (
	AuditLevelInfo    AuditLevel = "INFO"
	AuditLevelWarning AuditLevel = "WARNING"
	AuditLevelError   AuditLevel = "ERROR"
	AuditLevelSuccess AuditLevel = "SUCCESS"
)

// Audit operation names emitted by the engine.
const (
	AuditOpRegisterStudent   = "Register Student"
	AuditOpDeactivateStudent = "Deactivate Student"
	AuditOpCreateCourse      = "Create Course"
	AuditOpEnroll            = "Enrollment"
	AuditOpRecordGrade       = "Record Grade"
	AuditOpDropEnrollment    = "Drop Enrollment"
	AuditOpExport            = "Export Data"
)

// AuditEntry is one append-only record of an engine operation or a
// validation failure. Entries are consumed by display collaborators only;
// the engine never reads them back.
type AuditEntry struct {
	ID        int        `json:"id"`
	Level     AuditLevel `json:"level"`
	Timestamp time.Time  `json:"timestamp"`
	Operation string     `json:"operation"`
	Details   string     `json:"details"`
}
