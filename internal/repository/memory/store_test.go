package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func TestScheduleOwnership(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	s := models.FeedingSchedule{ID: "s1", UserID: "u1", DaysOfWeek: []string{"monday"}}
	require.NoError(t, store.CreateSchedule(ctx, s))
	require.Error(t, store.CreateSchedule(ctx, s))

	_, err := store.GetSchedule(ctx, "u2", "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	s.UserID = "u2"
	assert.ErrorIs(t, store.UpdateSchedule(ctx, s), repository.ErrNotFound)
	assert.ErrorIs(t, store.DeleteSchedule(ctx, "u2", "s1"), repository.ErrNotFound)

	require.NoError(t, store.DeleteSchedule(ctx, "u1", "s1"))
	_, err = store.GetSchedule(ctx, "u1", "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	next := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSchedule(ctx, models.FeedingSchedule{
		ID: "s1", UserID: "u1", DaysOfWeek: []string{"monday"}, NextFeedingDate: &next,
	}))

	got, err := store.GetSchedule(ctx, "u1", "s1")
	require.NoError(t, err)
	got.DaysOfWeek[0] = "friday"
	*got.NextFeedingDate = next.Add(time.Hour)

	again, err := store.GetSchedule(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"monday"}, again.DaysOfWeek)
	assert.Equal(t, next, *again.NextFeedingDate)
}

func TestListSchedulesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateSchedule(ctx, models.FeedingSchedule{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, store.CreateSchedule(ctx, models.FeedingSchedule{ID: "x", UserID: "u2"}))

	list, err := store.ListSchedules(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[2].ID)
}

func TestRecordsOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.CreateRecord(ctx, models.FeedingRecord{
			ID: string(rune('a' + i)), UserID: "u1", FedAt: base.AddDate(0, 0, i),
		}))
	}

	latest, err := store.ListRecords(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "e", latest[0].ID)

	since, err := store.ListRecordsSince(ctx, "u1", base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestMarkOverdue(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateVaccination(ctx, models.Vaccination{ID: "v1", UserID: "u1", Status: models.VaccinationScheduled, ScheduledDate: now.AddDate(0, 0, -2)}))
	require.NoError(t, store.CreateVaccination(ctx, models.Vaccination{ID: "v2", UserID: "u1", Status: models.VaccinationScheduled, ScheduledDate: now.AddDate(0, 0, 2)}))
	require.NoError(t, store.CreateVaccination(ctx, models.Vaccination{ID: "v3", UserID: "u1", Status: models.VaccinationCompleted, ScheduledDate: now.AddDate(0, 0, -5)}))

	changed, err := store.MarkOverdue(ctx, now, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	list, err := store.ListVaccinations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.VaccinationCompleted, list[0].Status)
	assert.Equal(t, models.VaccinationOverdue, list[1].Status)
	assert.Equal(t, models.VaccinationScheduled, list[2].Status)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u1", PhoneNumber: "224600", NotificationFeeding: true}))
	require.NoError(t, store.UpsertProfile(ctx, models.Profile{UserID: "u2", PhoneNumber: "224700"}))

	p, err := store.FindProfileByPhone(ctx, "224700")
	require.NoError(t, err)
	assert.Equal(t, "u2", p.UserID)

	_, err = store.FindProfileByPhone(ctx, "000")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	withReminders, err := store.ListFeedingReminderProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, withReminders, 1)
	assert.Equal(t, "u1", withReminders[0].UserID)
}

func TestAnimalUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	a := models.Animal{ID: "a1", UserID: "u1", Name: "Bella", Species: "cattle"}
	require.NoError(t, store.CreateAnimal(ctx, a))

	a.Name = "Bella II"
	require.NoError(t, store.UpdateAnimal(ctx, a))
	got, err := store.GetAnimal(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Bella II", got.Name)

	a.UserID = "u2"
	assert.ErrorIs(t, store.UpdateAnimal(ctx, a), repository.ErrNotFound)
	assert.ErrorIs(t, store.DeleteAnimal(ctx, "u2", "a1"), repository.ErrNotFound)

	require.NoError(t, store.DeleteAnimal(ctx, "u1", "a1"))
	_, err = store.GetAnimal(ctx, "u1", "a1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVaccinationUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	v := models.Vaccination{ID: "v1", UserID: "u1", AnimalID: "a1", VaccineName: "FMD", Status: models.VaccinationScheduled}
	require.NoError(t, store.CreateVaccination(ctx, v))

	v.Status = models.VaccinationCompleted
	require.NoError(t, store.UpdateVaccination(ctx, v))
	got, err := store.GetVaccination(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Equal(t, models.VaccinationCompleted, got.Status)

	_, err = store.GetVaccination(ctx, "u2", "v1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	v.UserID = "u2"
	assert.ErrorIs(t, store.UpdateVaccination(ctx, v), repository.ErrNotFound)
	assert.ErrorIs(t, store.DeleteVaccination(ctx, "u2", "v1"), repository.ErrNotFound)

	require.NoError(t, store.DeleteVaccination(ctx, "u1", "v1"))
	list, err := store.ListVaccinations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
