package models

import "time"

// Frequency enumerates the supported feeding recurrences.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

// FeedingStatus is the due-state of a schedule relative to a given instant.
type FeedingStatus string

const (
	FeedingStatusNone     FeedingStatus = "none"
	FeedingStatusUpcoming FeedingStatus = "upcoming"
	FeedingStatusOverdue  FeedingStatus = "overdue"
)

// FeedingSchedule is a recurring feeding commitment for one animal.
//
// NextFeedingDate is a cached value derived from the recurrence fields and is
// recomputed whenever they change or a feeding is recorded against the schedule.
type FeedingSchedule struct {
	ID                       string     `bson:"_id" json:"id"`
	UserID                   string     `bson:"user_id" json:"user_id"`
	AnimalID                 string     `bson:"animal_id" json:"animal_id"`
	FeedType                 string     `bson:"feed_type" json:"feed_type"`
	Quantity                 float64    `bson:"quantity" json:"quantity"`
	FeedingTime              string     `bson:"feeding_time" json:"feeding_time"`
	Frequency                Frequency  `bson:"frequency" json:"frequency"`
	DaysOfWeek               []string   `bson:"days_of_week,omitempty" json:"days_of_week,omitempty"`
	AnchorDate               time.Time  `bson:"anchor_date" json:"anchor_date"`
	NextFeedingDate          *time.Time `bson:"next_feeding_date,omitempty" json:"next_feeding_date,omitempty"`
	NextFeedingAuthoritative bool       `bson:"next_feeding_authoritative" json:"next_feeding_authoritative"`
	IsActive                 bool       `bson:"is_active" json:"is_active"`
	Notes                    string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt                time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `bson:"updated_at" json:"updated_at"`
}

// FeedingRecord is an immutable fact that an animal was fed.
type FeedingRecord struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	AnimalID   string    `bson:"animal_id" json:"animal_id"`
	ScheduleID string    `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	FeedType   string    `bson:"feed_type" json:"feed_type"`
	Quantity   float64   `bson:"quantity" json:"quantity"`
	FedAt      time.Time `bson:"fed_at" json:"fed_at"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// NextOccurrence is a computed next feeding instant tagged with its provenance.
// Authoritative is false when the value is the fallback approximation.
type NextOccurrence struct {
	Value         time.Time
	Authoritative bool
}

// DueFeeding pairs a schedule with its classification. Advisory marks
// classifications derived from a non-authoritative next feeding date.
type DueFeeding struct {
	Schedule FeedingSchedule `json:"schedule"`
	Status   FeedingStatus   `json:"status"`
	Advisory bool            `json:"advisory"`
}

// DueFeedings groups the upcoming and overdue schedules of a user.
type DueFeedings struct {
	Upcoming []DueFeeding `json:"upcoming"`
	Overdue  []DueFeeding `json:"overdue"`
}

// ScheduleInput carries the fields accepted when creating a schedule.
type ScheduleInput struct {
	AnimalID    string    `json:"animal_id"`
	FeedType    string    `json:"feed_type"`
	Quantity    float64   `json:"quantity"`
	FeedingTime string    `json:"feeding_time"`
	Frequency   Frequency `json:"frequency"`
	DaysOfWeek  []string  `json:"days_of_week"`
	IsActive    *bool     `json:"is_active"`
	Notes       string    `json:"notes"`
}

// SchedulePatch is a partial update; nil fields are left untouched.
type SchedulePatch struct {
	FeedType    *string    `json:"feed_type"`
	Quantity    *float64   `json:"quantity"`
	FeedingTime *string    `json:"feeding_time"`
	Frequency   *Frequency `json:"frequency"`
	DaysOfWeek  *[]string  `json:"days_of_week"`
	IsActive    *bool      `json:"is_active"`
	Notes       *string    `json:"notes"`
}

// FeedingInput carries the fields accepted when recording a feeding.
type FeedingInput struct {
	AnimalID   string     `json:"animal_id"`
	ScheduleID string     `json:"schedule_id"`
	FeedType   string     `json:"feed_type"`
	Quantity   float64    `json:"quantity"`
	FedAt      *time.Time `json:"fed_at"`
	Notes      string     `json:"notes"`
}
