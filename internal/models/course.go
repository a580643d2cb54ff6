package models

import "time"

// Course represents an offered course. CurrentEnrollment is maintained
// solely by the enrollment engine and always stays within [0, MaxCapacity].
type Course struct {
	ID                int       `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Credits           int       `json:"credits"`
	MaxCapacity       int       `json:"max_capacity"`
	CurrentEnrollment int       `json:"current_enrollment"`
	DifficultyLevel   float64   `json:"difficulty_level"`
	CreatedDate       time.Time `json:"created_date"`
}

// AvailableSeats returns the remaining capacity.
func (c Course) AvailableSeats() int {
	return c.MaxCapacity - c.CurrentEnrollment
}
