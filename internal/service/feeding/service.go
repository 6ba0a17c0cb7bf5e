package feeding

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/recurrence"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// DefaultRecordLimit bounds ListRecords when no limit is given.
const DefaultRecordLimit = 50

// RecordResult is the outcome of recording a feeding. Schedule is set when the
// record was linked to a schedule and its next feeding date was recomputed.
type RecordResult struct {
	Record   models.FeedingRecord    `json:"record"`
	Schedule *models.FeedingSchedule `json:"schedule,omitempty"`
}

// Service owns the feeding schedule lifecycle and the recompute triggers.
type Service struct {
	schedules repository.ScheduleRepository
	records   repository.RecordRepository
	animals   repository.AnimalRepository
	resolver  *Resolver
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	onRemoved func(scheduleID string)
}

// NewService constructs the feeding service. Times are computed in loc.
func NewService(
	schedules repository.ScheduleRepository,
	records repository.RecordRepository,
	animals repository.AnimalRepository,
	resolver *Resolver,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if resolver == nil {
		resolver = NewResolver(nil, logger)
	}
	return &Service{
		schedules: schedules,
		records:   records,
		animals:   animals,
		resolver:  resolver,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// OnScheduleRemoved registers fn to run after a schedule is deleted or
// deactivated, so pending reminders can be dropped.
func (s *Service) OnScheduleRemoved(fn func(scheduleID string)) {
	s.onRemoved = fn
}

func (s *Service) scheduleRemoved(id string) {
	if s.onRemoved != nil {
		s.onRemoved(id)
	}
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// CreateSchedule validates the input, computes the first occurrence from now
// and persists the schedule.
func (s *Service) CreateSchedule(ctx context.Context, userID string, in models.ScheduleInput) (models.FeedingSchedule, error) {
	now := s.clock()

	schedule := models.FeedingSchedule{
		ID:          s.newID(),
		UserID:      userID,
		AnimalID:    strings.TrimSpace(in.AnimalID),
		FeedType:    strings.TrimSpace(in.FeedType),
		Quantity:    in.Quantity,
		FeedingTime: in.FeedingTime,
		Frequency:   in.Frequency,
		DaysOfWeek:  in.DaysOfWeek,
		AnchorDate:  now,
		IsActive:    true,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		schedule.IsActive = *in.IsActive
	}

	if schedule.AnimalID == "" {
		return models.FeedingSchedule{}, invalid("animal_id", "animal is required")
	}
	if err := validateFeed(schedule.FeedType, schedule.Quantity); err != nil {
		return models.FeedingSchedule{}, err
	}
	rule, err := normalizeRule(&schedule)
	if err != nil {
		return models.FeedingSchedule{}, err
	}
	if err := s.ensureAnimal(ctx, userID, schedule.AnimalID); err != nil {
		return models.FeedingSchedule{}, err
	}

	if err := s.recompute(ctx, &schedule, rule, now); err != nil {
		return models.FeedingSchedule{}, err
	}

	if err := s.schedules.CreateSchedule(ctx, schedule); err != nil {
		return models.FeedingSchedule{}, persistenceErr("create schedule", err)
	}

	s.logger.Info("feeding schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("frequency", string(schedule.Frequency)),
		zap.Timep("next_feeding_date", schedule.NextFeedingDate))
	return schedule, nil
}

// UpdateSchedule applies a partial update. The next feeding date is recomputed
// from now only when frequency, feeding time or days of week changed.
func (s *Service) UpdateSchedule(ctx context.Context, userID, id string, patch models.SchedulePatch) (models.FeedingSchedule, error) {
	current, err := s.GetSchedule(ctx, userID, id)
	if err != nil {
		return models.FeedingSchedule{}, err
	}

	updated := current
	if patch.FeedType != nil {
		updated.FeedType = strings.TrimSpace(*patch.FeedType)
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}
	if patch.FeedingTime != nil {
		updated.FeedingTime = *patch.FeedingTime
	}
	if patch.Frequency != nil {
		updated.Frequency = *patch.Frequency
	}
	if patch.DaysOfWeek != nil {
		updated.DaysOfWeek = *patch.DaysOfWeek
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}

	if err := validateFeed(updated.FeedType, updated.Quantity); err != nil {
		return models.FeedingSchedule{}, err
	}
	rule, err := normalizeRule(&updated)
	if err != nil {
		return models.FeedingSchedule{}, err
	}

	now := s.clock()
	if ruleChanged(current, updated) {
		updated.AnchorDate = now
		rule.Anchor = now
		if err := s.recompute(ctx, &updated, rule, now); err != nil {
			return models.FeedingSchedule{}, err
		}
	}
	updated.UpdatedAt = now

	if err := s.schedules.UpdateSchedule(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.FeedingSchedule{}, ErrNotFound
		}
		return models.FeedingSchedule{}, persistenceErr("update schedule", err)
	}
	if current.IsActive && !updated.IsActive {
		s.scheduleRemoved(updated.ID)
	}
	return updated, nil
}

// DeleteSchedule removes a schedule. Its historical records are kept.
func (s *Service) DeleteSchedule(ctx context.Context, userID, id string) error {
	if err := s.schedules.DeleteSchedule(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return persistenceErr("delete schedule", err)
	}
	s.scheduleRemoved(id)
	return nil
}

// GetSchedule loads one schedule of the user.
func (s *Service) GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error) {
	schedule, err := s.schedules.GetSchedule(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.FeedingSchedule{}, ErrNotFound
		}
		return models.FeedingSchedule{}, persistenceErr("get schedule", err)
	}
	return schedule, nil
}

// ListSchedules returns the user's schedules, newest first.
func (s *Service) ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error) {
	list, err := s.schedules.ListSchedules(ctx, userID)
	if err != nil {
		return nil, persistenceErr("list schedules", err)
	}
	return list, nil
}

// RecordFeeding stores an immutable feeding record. When the record references
// a schedule, the schedule's next feeding date is recomputed from the later of
// fed_at and now, so a back-dated record never yields an elapsed occurrence.
func (s *Service) RecordFeeding(ctx context.Context, userID string, in models.FeedingInput) (RecordResult, error) {
	now := s.clock()

	record := models.FeedingRecord{
		ID:         s.newID(),
		UserID:     userID,
		AnimalID:   strings.TrimSpace(in.AnimalID),
		ScheduleID: strings.TrimSpace(in.ScheduleID),
		FeedType:   strings.TrimSpace(in.FeedType),
		Quantity:   in.Quantity,
		FedAt:      now,
		Notes:      in.Notes,
		CreatedAt:  now,
	}
	if in.FedAt != nil {
		record.FedAt = in.FedAt.In(s.loc)
	}

	if record.AnimalID == "" {
		return RecordResult{}, invalid("animal_id", "animal is required")
	}
	if err := validateFeed(record.FeedType, record.Quantity); err != nil {
		return RecordResult{}, err
	}
	if err := s.ensureAnimal(ctx, userID, record.AnimalID); err != nil {
		return RecordResult{}, err
	}

	var schedule *models.FeedingSchedule
	if record.ScheduleID != "" {
		found, err := s.GetSchedule(ctx, userID, record.ScheduleID)
		if errors.Is(err, ErrNotFound) {
			return RecordResult{}, invalid("schedule_id", "schedule does not exist")
		}
		if err != nil {
			return RecordResult{}, err
		}
		if found.AnimalID != record.AnimalID {
			return RecordResult{}, invalid("animal_id", "animal does not match the schedule")
		}
		schedule = &found
	}

	if err := s.records.CreateRecord(ctx, record); err != nil {
		return RecordResult{}, persistenceErr("create record", err)
	}
	result := RecordResult{Record: record}

	if schedule == nil {
		return result, nil
	}

	rule, err := recurrence.RuleFromSchedule(*schedule)
	if err != nil {
		// Stored schedules are validated on write; a broken one is logged and
		// left untouched rather than failing the already saved record.
		s.logger.Error("stored schedule has invalid recurrence", zap.String("schedule_id", schedule.ID), zap.Error(err))
		return result, nil
	}

	reference := record.FedAt
	if now.After(reference) {
		reference = now
	}
	updated := *schedule
	if err := s.recompute(ctx, &updated, rule, reference); err != nil {
		return result, err
	}
	updated.UpdatedAt = now

	if err := s.schedules.UpdateSchedule(ctx, updated); err != nil {
		return result, persistenceErr("update schedule after feeding", err)
	}
	result.Schedule = &updated
	return result, nil
}

// ListRecords returns the most recent feedings, DefaultRecordLimit when limit <= 0.
func (s *Service) ListRecords(ctx context.Context, userID string, limit int) ([]models.FeedingRecord, error) {
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	list, err := s.records.ListRecords(ctx, userID, limit)
	if err != nil {
		return nil, persistenceErr("list records", err)
	}
	return list, nil
}

// DueFeedings classifies the user's schedules against now. Both lists are
// ordered by next feeding date.
func (s *Service) DueFeedings(ctx context.Context, userID string) (models.DueFeedings, error) {
	list, err := s.ListSchedules(ctx, userID)
	if err != nil {
		return models.DueFeedings{}, err
	}

	now := s.clock()
	due := models.DueFeedings{Upcoming: []models.DueFeeding{}, Overdue: []models.DueFeeding{}}
	for _, schedule := range list {
		item := models.DueFeeding{
			Schedule: schedule,
			Status:   recurrence.Classify(schedule, now),
			Advisory: !schedule.NextFeedingAuthoritative,
		}
		switch item.Status {
		case models.FeedingStatusUpcoming:
			due.Upcoming = append(due.Upcoming, item)
		case models.FeedingStatusOverdue:
			due.Overdue = append(due.Overdue, item)
		}
	}

	byNext := func(items []models.DueFeeding) {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Schedule.NextFeedingDate.Before(*items[j].Schedule.NextFeedingDate)
		})
	}
	byNext(due.Upcoming)
	byNext(due.Overdue)
	return due, nil
}

func (s *Service) recompute(ctx context.Context, schedule *models.FeedingSchedule, rule recurrence.Rule, reference time.Time) error {
	next, err := s.resolver.Next(ctx, rule, reference)
	if err != nil {
		return err
	}
	value := next.Value
	schedule.NextFeedingDate = &value
	schedule.NextFeedingAuthoritative = next.Authoritative
	return nil
}

func (s *Service) ensureAnimal(ctx context.Context, userID, animalID string) error {
	if s.animals == nil {
		return nil
	}
	if _, err := s.animals.GetAnimal(ctx, userID, animalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("animal_id", "animal does not exist")
		}
		return persistenceErr("get animal", err)
	}
	return nil
}

func validateFeed(feedType string, quantity float64) error {
	if feedType == "" {
		return invalid("feed_type", "feed type is required")
	}
	if !(quantity > 0) {
		return invalid("quantity", "quantity must be greater than zero")
	}
	return nil
}

// normalizeRule validates the recurrence fields and rewrites them in canonical
// form: "HH:MM" time, lower-case weekday names, no days for non-weekly rules.
func normalizeRule(schedule *models.FeedingSchedule) (recurrence.Rule, error) {
	rule, err := recurrence.RuleFromSchedule(*schedule)
	if err != nil {
		return recurrence.Rule{}, err
	}
	schedule.Frequency = rule.Frequency
	schedule.FeedingTime = rule.FeedingTime.String()
	schedule.DaysOfWeek = rule.DayNames()
	return rule, nil
}

func ruleChanged(before, after models.FeedingSchedule) bool {
	return before.Frequency != after.Frequency ||
		before.FeedingTime != after.FeedingTime ||
		!slices.Equal(before.DaysOfWeek, after.DaysOfWeek)
}
