package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const testDB = "herdbook_test"

func TestScheduleStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := testDB + "." + schedulesCollection

	mt.Run("create", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := store.CreateSchedule(ctx, models.FeedingSchedule{ID: "s1", UserID: "u1", Frequency: models.FrequencyDaily})
		require.NoError(mt, err)
	})

	mt.Run("get decodes document", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		next := time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "user_id", Value: "u1"},
			{Key: "feed_type", Value: "Hay"},
			{Key: "quantity", Value: 2.5},
			{Key: "feeding_time", Value: "07:00"},
			{Key: "frequency", Value: "weekly"},
			{Key: "days_of_week", Value: bson.A{"sunday"}},
			{Key: "next_feeding_date", Value: next},
			{Key: "next_feeding_authoritative", Value: true},
			{Key: "is_active", Value: true},
		}))

		got, err := store.GetSchedule(ctx, "u1", "s1")
		require.NoError(mt, err)
		assert.Equal(mt, "Hay", got.FeedType)
		assert.Equal(mt, models.FrequencyWeekly, got.Frequency)
		assert.Equal(mt, []string{"sunday"}, got.DaysOfWeek)
		require.NotNil(mt, got.NextFeedingDate)
		assert.True(mt, next.Equal(*got.NextFeedingDate))
		assert.True(mt, got.IsActive)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.GetSchedule(ctx, "u1", "nope")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := store.UpdateSchedule(ctx, models.FeedingSchedule{ID: "s1", UserID: "u2"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, store.DeleteSchedule(ctx, "u1", "s1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, store.DeleteSchedule(ctx, "u1", "s1"), repository.ErrNotFound)
	})

	mt.Run("insert failure is wrapped", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := store.CreateRecord(ctx, models.FeedingRecord{ID: "r1", UserID: "u1"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), recordsCollection)
	})
}

func TestVaccinationStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("mark overdue reports modified count", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}, bson.E{Key: "nModified", Value: 2}))

		changed, err := store.MarkOverdue(ctx, time.Now(), time.Now())
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, changed)
	})

	mt.Run("list profiles with feeding reminders", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+profilesCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "phone_number", Value: "224600"}, {Key: "notification_feeding", Value: true}},
			bson.D{{Key: "_id", Value: "u2"}, {Key: "phone_number", Value: "224700"}, {Key: "notification_feeding", Value: true}},
		))

		profiles, err := store.ListFeedingReminderProfiles(ctx)
		require.NoError(mt, err)
		require.Len(mt, profiles, 2)
		assert.Equal(mt, "u2", profiles[1].UserID)
	})

	mt.Run("get decodes document", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		completed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+vaccinationsCollection, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "v1"},
			{Key: "user_id", Value: "u1"},
			{Key: "vaccine_name", Value: "FMD"},
			{Key: "status", Value: "completed"},
			{Key: "completed_date", Value: completed},
		}))

		got, err := store.GetVaccination(ctx, "u1", "v1")
		require.NoError(mt, err)
		assert.Equal(mt, models.VaccinationCompleted, got.Status)
		require.NotNil(mt, got.CompletedDate)
		assert.True(mt, completed.Equal(*got.CompletedDate))
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := store.UpdateVaccination(ctx, models.Vaccination{ID: "v1", UserID: "u2"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, store.DeleteVaccination(ctx, "u1", "v1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, store.DeleteVaccination(ctx, "u1", "v1"), repository.ErrNotFound)
	})
}

func TestAnimalStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("update matched", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		require.NoError(mt, store.UpdateAnimal(ctx, models.Animal{ID: "a1", UserID: "u1", Name: "Bella"}))
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := store.UpdateAnimal(ctx, models.Animal{ID: "a1", UserID: "u2"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		store := NewStore(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, store.DeleteAnimal(ctx, "u1", "a1"), repository.ErrNotFound)
	})
}
