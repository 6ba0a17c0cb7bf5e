package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	sweepTimeout          = 2 * time.Minute
	feedingReminderTitle  = "Feeding Reminder"
	feedingReminderPrefix = "feeding-"
)

// ReminderScheduler is the notification collaborator used by the sweeps.
type ReminderScheduler interface {
	ScheduleReminder(reminder models.Reminder) (Handle, error)
	Cancel(tag string)
	PendingTags(prefix string) []string
}

// Scheduler runs the periodic reminder and vaccination jobs.
type Scheduler struct {
	cron         *cron.Cron
	reminders    ReminderScheduler
	profiles     repository.ProfileRepository
	schedules    repository.ScheduleRepository
	animals      repository.AnimalRepository
	vaccinations repository.VaccinationRepository
	cfg          config.RemindersConfig
	logger       *zap.Logger
	now          func() time.Time
	wg           sync.WaitGroup
}

// NewCron builds the cron instance shared by the scheduler and reminders.
func NewCron(cfg config.RemindersConfig) *cron.Cron {
	return cron.New(cron.WithLocation(cfg.Location()))
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(
	c *cron.Cron,
	cfg config.RemindersConfig,
	reminders ReminderScheduler,
	store repository.Store,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         c,
		reminders:    reminders,
		profiles:     store,
		schedules:    store,
		animals:      store,
		vaccinations: store,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reminder_sweep", s.cfg.SweepSchedule),
		zap.String("vaccination_sweep", s.cfg.VaccinationSchedule))

	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.runFeedingSweep); err != nil {
		return fmt.Errorf("schedule feeding reminder sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.VaccinationSchedule, s.runVaccinationSweep); err != nil {
		return fmt.Errorf("schedule vaccination sweep: %w", err)
	}

	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runFeedingSweep()
	}()
	return nil
}

// Stop stops the scheduler and waits for running jobs, including the
// startup sweep.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// CancelFeedingReminder drops the pending reminder of a feeding schedule.
func (s *Scheduler) CancelFeedingReminder(scheduleID string) {
	s.reminders.Cancel(feedingReminderPrefix + scheduleID)
}

func (s *Scheduler) runFeedingSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	scheduled, err := s.SweepFeedingReminders(ctx)
	if err != nil {
		s.logger.Error("feeding reminder sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("feeding reminder sweep done", zap.Int("scheduled", scheduled))
}

func (s *Scheduler) runVaccinationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	changed, err := s.MarkOverdueVaccinations(ctx)
	if err != nil {
		s.logger.Error("vaccination sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("overdue vaccinations updated", zap.Int64("changed", changed))
}

// SweepFeedingReminders schedules a reminder ahead of the next feeding of every
// active schedule owned by a user with feeding notifications enabled.
// Feedings already due are skipped. Pending feeding reminders whose schedule
// was not eligible in this sweep are cancelled, unless a user's schedules
// could not be listed.
func (s *Scheduler) SweepFeedingReminders(ctx context.Context) (int, error) {
	profiles, err := s.profiles.ListFeedingReminderProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reminder profiles: %w", err)
	}

	now := s.now()
	scheduled := 0
	seen := make(map[string]struct{})
	complete := true
	for _, profile := range profiles {
		if profile.PhoneNumber == "" {
			continue
		}

		schedules, err := s.schedules.ListSchedules(ctx, profile.UserID)
		if err != nil {
			s.logger.Warn("skip reminders for user", zap.String("user_id", profile.UserID), zap.Error(err))
			complete = false
			continue
		}

		names := make(map[string]string)
		for _, schedule := range schedules {
			if !schedule.IsActive {
				continue
			}
			if schedule.NextFeedingDate == nil || !schedule.NextFeedingDate.After(now) {
				continue
			}

			tag := feedingReminderPrefix + schedule.ID
			seen[tag] = struct{}{}
			reminder := models.Reminder{
				To:     profile.PhoneNumber,
				Title:  feedingReminderTitle,
				Body:   s.reminderBody(ctx, profile.UserID, schedule, names),
				FireAt: schedule.NextFeedingDate.Add(-s.cfg.LeadTime),
				Tag:    tag,
			}
			if _, err := s.reminders.ScheduleReminder(reminder); err != nil {
				s.logger.Warn("failed to schedule reminder", zap.String("schedule_id", schedule.ID), zap.Error(err))
				continue
			}
			scheduled++
		}
	}

	if complete {
		for _, tag := range s.reminders.PendingTags(feedingReminderPrefix) {
			if _, ok := seen[tag]; ok {
				continue
			}
			s.reminders.Cancel(tag)
			s.logger.Debug("stale reminder cancelled", zap.String("tag", tag))
		}
	}
	return scheduled, nil
}

// MarkOverdueVaccinations flags scheduled vaccinations dated before today.
func (s *Scheduler) MarkOverdueVaccinations(ctx context.Context) (int64, error) {
	now := s.now().In(s.cfg.Location())
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	changed, err := s.vaccinations.MarkOverdue(ctx, startOfDay, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue vaccinations: %w", err)
	}
	return changed, nil
}

func (s *Scheduler) reminderBody(ctx context.Context, userID string, schedule models.FeedingSchedule, names map[string]string) string {
	name, ok := names[schedule.AnimalID]
	if !ok {
		name = "your animal"
		if animal, err := s.animals.GetAnimal(ctx, userID, schedule.AnimalID); err == nil {
			name = animal.Name
		}
		names[schedule.AnimalID] = name
	}

	body := fmt.Sprintf("Time to feed %s with %skg of %s", name, strconv.FormatFloat(schedule.Quantity, 'f', -1, 64), schedule.FeedType)
	if !schedule.NextFeedingAuthoritative {
		body += " (estimated time)"
	}
	return body
}
