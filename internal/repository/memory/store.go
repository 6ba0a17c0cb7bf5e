package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// Store is a mutex-guarded in-process implementation of repository.Store.
type Store struct {
	mu           sync.RWMutex
	schedules    map[string]models.FeedingSchedule
	records      map[string]models.FeedingRecord
	animals      map[string]models.Animal
	weights      map[string]models.WeightRecord
	vaccinations map[string]models.Vaccination
	profiles     map[string]models.Profile
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		schedules:    make(map[string]models.FeedingSchedule),
		records:      make(map[string]models.FeedingRecord),
		animals:      make(map[string]models.Animal),
		weights:      make(map[string]models.WeightRecord),
		vaccinations: make(map[string]models.Vaccination),
		profiles:     make(map[string]models.Profile),
	}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("id required")
	}
	return nil
}

func (s *Store) CreateSchedule(ctx context.Context, schedule models.FeedingSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(schedule.ID); err != nil {
		return err
	}
	if _, exists := s.schedules[schedule.ID]; exists {
		return errors.New("schedule already exists")
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (s *Store) UpdateSchedule(ctx context.Context, schedule models.FeedingSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.schedules[schedule.ID]
	if !ok || current.UserID != schedule.UserID {
		return repository.ErrNotFound
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.schedules[id]
	if !ok || current.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok || schedule.UserID != userID {
		return models.FeedingSchedule{}, repository.ErrNotFound
	}
	return cloneSchedule(schedule), nil
}

func (s *Store) ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FeedingSchedule, 0)
	for _, schedule := range s.schedules {
		if schedule.UserID == userID {
			out = append(out, cloneSchedule(schedule))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateRecord(ctx context.Context, record models.FeedingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireID(record.ID); err != nil {
		return err
	}
	if _, exists := s.records[record.ID]; exists {
		return errors.New("record already exists")
	}
	s.records[record.ID] = record
	return nil
}

func (s *Store) ListRecords(ctx context.Context, userID string, limit int) ([]models.FeedingRecord, error) {
	out := s.recordsWhere(func(r models.FeedingRecord) bool { return r.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListRecordsSince(ctx context.Context, userID string, since time.Time) ([]models.FeedingRecord, error) {
	return s.recordsWhere(func(r models.FeedingRecord) bool {
		return r.UserID == userID && !r.FedAt.Before(since)
	}), nil
}

func (s *Store) recordsWhere(keep func(models.FeedingRecord) bool) []models.FeedingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FeedingRecord, 0)
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FedAt.After(out[j].FedAt) })
	return out
}

func cloneSchedule(s models.FeedingSchedule) models.FeedingSchedule {
	if s.DaysOfWeek != nil {
		s.DaysOfWeek = append([]string(nil), s.DaysOfWeek...)
	}
	if s.NextFeedingDate != nil {
		next := *s.NextFeedingDate
		s.NextFeedingDate = &next
	}
	return s
}
