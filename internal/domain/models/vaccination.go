package models

import "time"

// VaccinationStatus tracks the lifecycle of a vaccination.
type VaccinationStatus string

const (
	VaccinationScheduled VaccinationStatus = "scheduled"
	VaccinationCompleted VaccinationStatus = "completed"
	VaccinationOverdue   VaccinationStatus = "overdue"
)

// Vaccination is a planned or administered vaccine for an animal.
type Vaccination struct {
	ID            string            `bson:"_id" json:"id"`
	UserID        string            `bson:"user_id" json:"user_id"`
	AnimalID      string            `bson:"animal_id" json:"animal_id"`
	VaccineName   string            `bson:"vaccine_name" json:"vaccine_name"`
	ScheduledDate time.Time         `bson:"scheduled_date" json:"scheduled_date"`
	CompletedDate *time.Time        `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	Status        VaccinationStatus `bson:"status" json:"status"`
	Notes         string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`
}

// VaccinationPatch is a partial update of a vaccination. Completion goes
// through its own operation.
type VaccinationPatch struct {
	VaccineName   *string    `json:"vaccine_name"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Notes         *string    `json:"notes"`
}
