// Package registry manages the animal registry, weighings, vaccinations and
// user profiles.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// ErrNotFound is returned when the animal or profile does not exist for the user.
var ErrNotFound = repository.ErrNotFound

// ValidationError reports a missing or invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Store is the persistence needed by the registry.
type Store interface {
	repository.AnimalRepository
	repository.WeightRepository
	repository.VaccinationRepository
	repository.ProfileRepository
}

// Service implements the registry operations.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService constructs a registry service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now, newID: uuid.NewString}
}

// CreateAnimal registers an animal. Health status defaults to healthy.
func (s *Service) CreateAnimal(ctx context.Context, userID string, in models.Animal) (models.Animal, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	if err := validateAnimal(in); err != nil {
		return models.Animal{}, err
	}
	if in.HealthStatus == "" {
		in.HealthStatus = models.HealthStatusHealthy
	}

	now := s.now()
	in.ID = s.newID()
	in.UserID = userID
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.store.CreateAnimal(ctx, in); err != nil {
		return models.Animal{}, fmt.Errorf("create animal: %w", err)
	}
	return in, nil
}

// ListAnimals returns the user's animals, newest first.
func (s *Service) ListAnimals(ctx context.Context, userID string) ([]models.Animal, error) {
	list, err := s.store.ListAnimals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	return list, nil
}

// GetAnimal loads one of the user's animals.
func (s *Service) GetAnimal(ctx context.Context, userID, id string) (models.Animal, error) {
	animal, err := s.store.GetAnimal(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Animal{}, ErrNotFound
		}
		return models.Animal{}, fmt.Errorf("load animal: %w", err)
	}
	return animal, nil
}

// UpdateAnimal applies a partial update to an animal.
func (s *Service) UpdateAnimal(ctx context.Context, userID, id string, patch models.AnimalPatch) (models.Animal, error) {
	animal, err := s.GetAnimal(ctx, userID, id)
	if err != nil {
		return models.Animal{}, err
	}

	if patch.Name != nil {
		animal.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Species != nil {
		animal.Species = strings.TrimSpace(*patch.Species)
	}
	if patch.Breed != nil {
		animal.Breed = *patch.Breed
	}
	if patch.Age != nil {
		animal.Age = patch.Age
	}
	if patch.Weight != nil {
		animal.Weight = patch.Weight
	}
	if patch.HealthStatus != nil {
		animal.HealthStatus = *patch.HealthStatus
	}
	if patch.PhotoURL != nil {
		animal.PhotoURL = *patch.PhotoURL
	}
	if patch.Notes != nil {
		animal.Notes = *patch.Notes
	}
	if err := validateAnimal(animal); err != nil {
		return models.Animal{}, err
	}
	if animal.HealthStatus == "" {
		animal.HealthStatus = models.HealthStatusHealthy
	}
	animal.UpdatedAt = s.now()

	if err := s.store.UpdateAnimal(ctx, animal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Animal{}, ErrNotFound
		}
		return models.Animal{}, fmt.Errorf("update animal: %w", err)
	}
	return animal, nil
}

// DeleteAnimal removes an animal. Its feeding history and weighings are kept.
func (s *Service) DeleteAnimal(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAnimal(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete animal: %w", err)
	}
	s.logger.Info("animal deleted", zap.String("animal_id", id))
	return nil
}

// AddWeight records a weighing of one of the user's animals. RecordedAt
// defaults to now.
func (s *Service) AddWeight(ctx context.Context, userID, animalID string, in models.WeightRecord) (models.WeightRecord, error) {
	if !(in.Weight > 0) {
		return models.WeightRecord{}, invalid("weight", "weight must be greater than zero")
	}
	if err := s.ensureAnimal(ctx, userID, animalID); err != nil {
		return models.WeightRecord{}, err
	}

	now := s.now()
	in.ID = s.newID()
	in.UserID = userID
	in.AnimalID = animalID
	in.CreatedAt = now
	if in.RecordedAt.IsZero() {
		in.RecordedAt = now
	}

	if err := s.store.CreateWeight(ctx, in); err != nil {
		return models.WeightRecord{}, fmt.Errorf("create weight: %w", err)
	}
	return in, nil
}

// CreateVaccination plans or logs a vaccination. A completion date marks it
// completed; otherwise it starts as scheduled.
func (s *Service) CreateVaccination(ctx context.Context, userID string, in models.Vaccination) (models.Vaccination, error) {
	in.VaccineName = strings.TrimSpace(in.VaccineName)
	if in.VaccineName == "" {
		return models.Vaccination{}, invalid("vaccine_name", "vaccine name is required")
	}
	if in.ScheduledDate.IsZero() {
		return models.Vaccination{}, invalid("scheduled_date", "scheduled date is required")
	}
	if err := s.ensureAnimal(ctx, userID, in.AnimalID); err != nil {
		return models.Vaccination{}, err
	}

	now := s.now()
	in.ID = s.newID()
	in.UserID = userID
	in.Status = models.VaccinationScheduled
	if in.CompletedDate != nil {
		in.Status = models.VaccinationCompleted
	}
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.store.CreateVaccination(ctx, in); err != nil {
		return models.Vaccination{}, fmt.Errorf("create vaccination: %w", err)
	}
	return in, nil
}

// ListVaccinations returns the user's vaccinations.
func (s *Service) ListVaccinations(ctx context.Context, userID string) ([]models.Vaccination, error) {
	list, err := s.store.ListVaccinations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list vaccinations: %w", err)
	}
	return list, nil
}

// GetVaccination loads one of the user's vaccinations.
func (s *Service) GetVaccination(ctx context.Context, userID, id string) (models.Vaccination, error) {
	v, err := s.store.GetVaccination(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Vaccination{}, ErrNotFound
		}
		return models.Vaccination{}, fmt.Errorf("load vaccination: %w", err)
	}
	return v, nil
}

// UpdateVaccination applies a partial update. Moving an overdue vaccination
// to a new date puts it back to scheduled.
func (s *Service) UpdateVaccination(ctx context.Context, userID, id string, patch models.VaccinationPatch) (models.Vaccination, error) {
	v, err := s.GetVaccination(ctx, userID, id)
	if err != nil {
		return models.Vaccination{}, err
	}

	if patch.VaccineName != nil {
		v.VaccineName = strings.TrimSpace(*patch.VaccineName)
		if v.VaccineName == "" {
			return models.Vaccination{}, invalid("vaccine_name", "vaccine name is required")
		}
	}
	if patch.ScheduledDate != nil {
		if patch.ScheduledDate.IsZero() {
			return models.Vaccination{}, invalid("scheduled_date", "scheduled date is required")
		}
		v.ScheduledDate = *patch.ScheduledDate
		if v.Status == models.VaccinationOverdue {
			v.Status = models.VaccinationScheduled
		}
	}
	if patch.Notes != nil {
		v.Notes = *patch.Notes
	}
	v.UpdatedAt = s.now()

	if err := s.saveVaccination(ctx, v); err != nil {
		return models.Vaccination{}, err
	}
	return v, nil
}

// CompleteVaccination marks a vaccination administered now.
func (s *Service) CompleteVaccination(ctx context.Context, userID, id string) (models.Vaccination, error) {
	v, err := s.GetVaccination(ctx, userID, id)
	if err != nil {
		return models.Vaccination{}, err
	}

	now := s.now()
	v.Status = models.VaccinationCompleted
	v.CompletedDate = &now
	v.UpdatedAt = now

	if err := s.saveVaccination(ctx, v); err != nil {
		return models.Vaccination{}, err
	}
	s.logger.Info("vaccination completed", zap.String("vaccination_id", id))
	return v, nil
}

// DeleteVaccination removes a vaccination.
func (s *Service) DeleteVaccination(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteVaccination(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete vaccination: %w", err)
	}
	return nil
}

func (s *Service) saveVaccination(ctx context.Context, v models.Vaccination) error {
	if err := s.store.UpdateVaccination(ctx, v); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update vaccination: %w", err)
	}
	return nil
}

// SaveProfile creates or replaces the user's profile, keeping the original
// creation time. A phone number identifies one user only, since inbound
// messages are routed by it.
func (s *Service) SaveProfile(ctx context.Context, userID string, in models.Profile) (models.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.PhoneNumber = strings.ReplaceAll(strings.TrimSpace(in.PhoneNumber), " ", "")
	if in.Username == "" {
		return models.Profile{}, invalid("username", "username is required")
	}
	if in.PhoneNumber == "" {
		return models.Profile{}, invalid("phone_number", "phone number is required")
	}

	now := s.now()
	in.UserID = userID
	in.CreatedAt = now
	in.UpdatedAt = now

	if err := s.ensurePhoneFree(ctx, userID, in.PhoneNumber); err != nil {
		return models.Profile{}, err
	}

	existing, err := s.store.GetProfile(ctx, userID)
	switch {
	case err == nil:
		in.CreatedAt = existing.CreatedAt
	case !errors.Is(err, repository.ErrNotFound):
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	if err := s.store.UpsertProfile(ctx, in); err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return in, nil
}

// GetProfile loads the user's profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// ensurePhoneFree rejects a number already used by another profile, with or
// without the leading "+".
func (s *Service) ensurePhoneFree(ctx context.Context, userID, phone string) error {
	alt := "+" + phone
	if strings.HasPrefix(phone, "+") {
		alt = strings.TrimPrefix(phone, "+")
	}

	for _, candidate := range []string{phone, alt} {
		owner, err := s.store.FindProfileByPhone(ctx, candidate)
		switch {
		case err == nil && owner.UserID != userID:
			return invalid("phone_number", "phone number is already linked to another user")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("look up phone number: %w", err)
		}
	}
	return nil
}

func validateAnimal(animal models.Animal) error {
	if animal.Name == "" {
		return invalid("name", "name is required")
	}
	if animal.Species == "" {
		return invalid("species", "species is required")
	}
	if animal.Age != nil && *animal.Age < 0 {
		return invalid("age", "age must not be negative")
	}
	if animal.Weight != nil && *animal.Weight <= 0 {
		return invalid("weight", "weight must be greater than zero")
	}
	return nil
}

func (s *Service) ensureAnimal(ctx context.Context, userID, animalID string) error {
	if strings.TrimSpace(animalID) == "" {
		return invalid("animal_id", "animal is required")
	}
	if _, err := s.store.GetAnimal(ctx, userID, animalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load animal: %w", err)
	}
	return nil
}
