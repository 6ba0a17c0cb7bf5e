package scheduler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
)

type capturingReminders struct {
	got       []models.Reminder
	cancelled []string
	pending   map[string]bool
}

func (c *capturingReminders) Cancel(tag string) {
	c.cancelled = append(c.cancelled, tag)
	delete(c.pending, tag)
}

func (c *capturingReminders) ScheduleReminder(reminder models.Reminder) (Handle, error) {
	if c.pending == nil {
		c.pending = map[string]bool{}
	}
	c.got = append(c.got, reminder)
	c.pending[reminder.Tag] = true
	return Handle(len(c.got)), nil
}

func (c *capturingReminders) PendingTags(prefix string) []string {
	var tags []string
	for tag := range c.pending {
		if strings.HasPrefix(tag, prefix) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

type countingStore struct {
	*memory.Store
	profileLists atomic.Int32
}

func (c *countingStore) ListFeedingReminderProfiles(ctx context.Context) ([]models.Profile, error) {
	c.profileLists.Add(1)
	return c.Store.ListFeedingReminderProfiles(ctx)
}

type failingScheduleStore struct {
	*memory.Store
}

func (failingScheduleStore) ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error) {
	return nil, errors.New("connection reset")
}

func TestSweepFeedingReminders(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		v := time.Date(2024, 6, 3, h, 0, 0, 0, time.UTC)
		return &v
	}

	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u1", PhoneNumber: "224600", NotificationFeeding: true}))
	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u2", PhoneNumber: "224700", NotificationFeeding: false}))
	require.NoError(t, store.CreateAnimal(ctx, models.Animal{ID: "a1", UserID: "u1", Name: "Bella"}))

	for _, s := range []models.FeedingSchedule{
		{ID: "s1", UserID: "u1", AnimalID: "a1", FeedType: "Hay", Quantity: 2.5, IsActive: true, NextFeedingDate: at(12), NextFeedingAuthoritative: true},
		{ID: "s2", UserID: "u1", AnimalID: "a9", FeedType: "Corn", Quantity: 1, IsActive: true, NextFeedingDate: at(14)},
		{ID: "s3", UserID: "u1", AnimalID: "a1", FeedType: "Hay", Quantity: 1, IsActive: false, NextFeedingDate: at(12)},
		{ID: "s4", UserID: "u1", AnimalID: "a1", FeedType: "Hay", Quantity: 1, IsActive: true, NextFeedingDate: at(9)},
		{ID: "s5", UserID: "u2", AnimalID: "a1", FeedType: "Hay", Quantity: 1, IsActive: true, NextFeedingDate: at(12)},
	} {
		require.NoError(t, store.CreateSchedule(ctx, s))
	}

	capture := &capturingReminders{pending: map[string]bool{
		"feeding-s3":   true,
		"feeding-gone": true,
		"other-x":      true,
	}}
	cfg := config.RemindersConfig{LeadTime: 15 * time.Minute, Timezone: "UTC"}
	s := NewScheduler(cron.New(), cfg, capture, store, nil)
	s.now = func() time.Time { return now }

	n, err := s.SweepFeedingReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byTag := map[string]models.Reminder{}
	for _, r := range capture.got {
		byTag[r.Tag] = r
	}

	r1 := byTag["feeding-s1"]
	assert.Equal(t, "224600", r1.To)
	assert.Equal(t, "Feeding Reminder", r1.Title)
	assert.Equal(t, "Time to feed Bella with 2.5kg of Hay", r1.Body)
	assert.Equal(t, time.Date(2024, 6, 3, 11, 45, 0, 0, time.UTC), r1.FireAt)

	r2 := byTag["feeding-s2"]
	assert.Equal(t, "Time to feed your animal with 1kg of Corn (estimated time)", r2.Body)

	assert.Equal(t, []string{"feeding-gone", "feeding-s3"}, capture.cancelled)
	assert.Equal(t, []string{"feeding-s1", "feeding-s2"}, capture.PendingTags("feeding-"))
	assert.True(t, capture.pending["other-x"])
}

func TestSweepCancelsRemindersOfRemovedSchedules(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	next := time.Now().Add(2 * time.Hour)

	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u1", PhoneNumber: "224600", NotificationFeeding: true}))
	require.NoError(t, store.CreateSchedule(ctx, models.FeedingSchedule{ID: "s1", UserID: "u1", AnimalID: "a1", FeedType: "Hay", Quantity: 1, IsActive: true, NextFeedingDate: &next}))
	require.NoError(t, store.CreateSchedule(ctx, models.FeedingSchedule{ID: "s2", UserID: "u1", AnimalID: "a1", FeedType: "Corn", Quantity: 1, IsActive: true, NextFeedingDate: &next}))

	notifier := newRecordingNotifier()
	reminders := NewReminders(cron.New(), notifier, nil)
	s := NewScheduler(cron.New(), config.RemindersConfig{LeadTime: 15 * time.Minute, Timezone: "UTC"}, reminders, store, nil)

	n, err := s.SweepFeedingReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"feeding-s1", "feeding-s2"}, reminders.PendingTags("feeding-"))

	require.NoError(t, store.DeleteSchedule(ctx, "u1", "s1"))
	_, err = s.SweepFeedingReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"feeding-s2"}, reminders.PendingTags("feeding-"))

	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u1", PhoneNumber: "224600", NotificationFeeding: false}))
	_, err = s.SweepFeedingReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, reminders.Pending())
	assert.Zero(t, notifier.count())
}

func TestSweepKeepsRemindersWhenSchedulesCannotBeListed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u1", PhoneNumber: "224600", NotificationFeeding: true}))

	capture := &capturingReminders{pending: map[string]bool{"feeding-s1": true}}
	s := NewScheduler(cron.New(), config.RemindersConfig{Timezone: "UTC"}, capture, failingScheduleStore{store}, nil)

	n, err := s.SweepFeedingReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, capture.cancelled)
}

func TestCancelFeedingReminder(t *testing.T) {
	capture := &capturingReminders{pending: map[string]bool{"feeding-s1": true}}
	s := NewScheduler(cron.New(), config.RemindersConfig{Timezone: "UTC"}, capture, memory.NewStore(), nil)

	s.CancelFeedingReminder("s1")
	assert.Equal(t, []string{"feeding-s1"}, capture.cancelled)
	assert.Empty(t, capture.PendingTags("feeding-"))
}

func TestMarkOverdueVaccinations(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateVaccination(ctx, models.Vaccination{ID: "v1", UserID: "u1", Status: models.VaccinationScheduled, ScheduledDate: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, store.CreateVaccination(ctx, models.Vaccination{ID: "v2", UserID: "u1", Status: models.VaccinationScheduled, ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}))

	s := NewScheduler(cron.New(), config.RemindersConfig{Timezone: "UTC"}, &capturingReminders{}, store, nil)
	s.now = func() time.Time { return now }

	changed, err := s.MarkOverdueVaccinations(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := config.RemindersConfig{SweepSchedule: "every now and then", VaccinationSchedule: "0 1 * * *", Timezone: "UTC"}
	s := NewScheduler(cron.New(), cfg, &capturingReminders{}, memory.NewStore(), nil)
	assert.Error(t, s.Start())
}

func TestStopWaitsForStartupSweep(t *testing.T) {
	store := &countingStore{Store: memory.NewStore()}
	cfg := config.RemindersConfig{SweepSchedule: "0 0 1 1 *", VaccinationSchedule: "0 0 1 1 *", Timezone: "UTC"}
	s := NewScheduler(cron.New(), cfg, &capturingReminders{}, store, nil)

	require.NoError(t, s.Start())
	s.Stop()
	assert.EqualValues(t, 1, store.profileLists.Load())
}
