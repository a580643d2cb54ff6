package models

import "time"

// Student represents a learner registered in the institution. Records are
// never physically deleted; deactivation flips the Active flag only.
type Student struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	AdmissionYear    int       `json:"admission_year"`
	Major            string    `json:"major"`
	RegistrationDate time.Time `json:"registration_date"`
	Active           bool      `json:"active"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
