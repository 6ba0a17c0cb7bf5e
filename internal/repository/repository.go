// Package repository declares the persistence contracts of the application.
// Every read and write is scoped to the owning user id.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ErrNotFound is returned when no document matches the id and owner.
var ErrNotFound = errors.New("not found")

// ScheduleRepository persists feeding schedules.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule models.FeedingSchedule) error
	UpdateSchedule(ctx context.Context, schedule models.FeedingSchedule) error
	DeleteSchedule(ctx context.Context, userID, id string) error
	GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error)
	// ListSchedules returns the user's schedules, newest first.
	ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error)
}

// RecordRepository persists feeding records. Records are never updated.
type RecordRepository interface {
	CreateRecord(ctx context.Context, record models.FeedingRecord) error
	// ListRecords returns at most limit records, most recent fed_at first.
	ListRecords(ctx context.Context, userID string, limit int) ([]models.FeedingRecord, error)
	ListRecordsSince(ctx context.Context, userID string, since time.Time) ([]models.FeedingRecord, error)
}

// AnimalRepository persists the animal registry.
type AnimalRepository interface {
	CreateAnimal(ctx context.Context, animal models.Animal) error
	GetAnimal(ctx context.Context, userID, id string) (models.Animal, error)
	ListAnimals(ctx context.Context, userID string) ([]models.Animal, error)
	UpdateAnimal(ctx context.Context, animal models.Animal) error
	DeleteAnimal(ctx context.Context, userID, id string) error
}

// WeightRepository persists weighings.
type WeightRepository interface {
	CreateWeight(ctx context.Context, record models.WeightRecord) error
	// ListWeightsSince returns weighings in ascending recorded_at order.
	ListWeightsSince(ctx context.Context, userID string, since time.Time) ([]models.WeightRecord, error)
}

// VaccinationRepository persists vaccinations.
type VaccinationRepository interface {
	CreateVaccination(ctx context.Context, vaccination models.Vaccination) error
	GetVaccination(ctx context.Context, userID, id string) (models.Vaccination, error)
	ListVaccinations(ctx context.Context, userID string) ([]models.Vaccination, error)
	UpdateVaccination(ctx context.Context, vaccination models.Vaccination) error
	DeleteVaccination(ctx context.Context, userID, id string) error
	// MarkOverdue flips scheduled vaccinations dated before the cutoff to overdue.
	MarkOverdue(ctx context.Context, before, now time.Time) (int64, error)
}

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	FindProfileByPhone(ctx context.Context, phone string) (models.Profile, error)
	ListFeedingReminderProfiles(ctx context.Context) ([]models.Profile, error)
}

// Store bundles every repository, as implemented by the storage adapters.
type Store interface {
	ScheduleRepository
	RecordRepository
	AnimalRepository
	WeightRepository
	VaccinationRepository
	ProfileRepository
}
