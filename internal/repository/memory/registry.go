package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateAnimal(ctx context.Context, animal models.Animal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(animal.ID); err != nil {
		return err
	}
	if _, exists := s.animals[animal.ID]; exists {
		return errors.New("animal already exists")
	}
	s.animals[animal.ID] = animal
	return nil
}

func (s *Store) GetAnimal(ctx context.Context, userID, id string) (models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	animal, ok := s.animals[id]
	if !ok || animal.UserID != userID {
		return models.Animal{}, repository.ErrNotFound
	}
	return animal, nil
}

func (s *Store) ListAnimals(ctx context.Context, userID string) ([]models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Animal, 0)
	for _, a := range s.animals {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateAnimal(ctx context.Context, animal models.Animal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.animals[animal.ID]
	if !ok || current.UserID != animal.UserID {
		return repository.ErrNotFound
	}
	s.animals[animal.ID] = animal
	return nil
}

func (s *Store) DeleteAnimal(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.animals[id]
	if !ok || current.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.animals, id)
	return nil
}

func (s *Store) CreateWeight(ctx context.Context, record models.WeightRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(record.ID); err != nil {
		return err
	}
	s.weights[record.ID] = record
	return nil
}

func (s *Store) ListWeightsSince(ctx context.Context, userID string, since time.Time) ([]models.WeightRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WeightRecord, 0)
	for _, w := range s.weights {
		if w.UserID == userID && !w.RecordedAt.Before(since) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (s *Store) CreateVaccination(ctx context.Context, vaccination models.Vaccination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(vaccination.ID); err != nil {
		return err
	}
	s.vaccinations[vaccination.ID] = vaccination
	return nil
}

func (s *Store) GetVaccination(ctx context.Context, userID, id string) (models.Vaccination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vaccinations[id]
	if !ok || v.UserID != userID {
		return models.Vaccination{}, repository.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateVaccination(ctx context.Context, vaccination models.Vaccination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vaccinations[vaccination.ID]
	if !ok || current.UserID != vaccination.UserID {
		return repository.ErrNotFound
	}
	s.vaccinations[vaccination.ID] = vaccination
	return nil
}

func (s *Store) DeleteVaccination(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vaccinations[id]
	if !ok || current.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.vaccinations, id)
	return nil
}

func (s *Store) ListVaccinations(ctx context.Context, userID string) ([]models.Vaccination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Vaccination, 0)
	for _, v := range s.vaccinations {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (s *Store) MarkOverdue(ctx context.Context, before, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, v := range s.vaccinations {
		if v.Status == models.VaccinationScheduled && v.ScheduledDate.Before(before) {
			v.Status = models.VaccinationOverdue
			v.UpdatedAt = now
			s.vaccinations[id] = v
			changed++
		}
	}
	return changed, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(profile.UserID); err != nil {
		return err
	}
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *Store) FindProfileByPhone(ctx context.Context, phone string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.PhoneNumber == phone {
			return p, nil
		}
	}
	return models.Profile{}, repository.ErrNotFound
}

func (s *Store) ListFeedingReminderProfiles(ctx context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0)
	for _, p := range s.profiles {
		if p.NotificationFeeding {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
