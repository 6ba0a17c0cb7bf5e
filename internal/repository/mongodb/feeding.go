package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateSchedule(ctx context.Context, schedule models.FeedingSchedule) error {
	return insert(ctx, s.collection(schedulesCollection), schedule)
}

func (s *Store) UpdateSchedule(ctx context.Context, schedule models.FeedingSchedule) error {
	res, err := s.collection(schedulesCollection).ReplaceOne(ctx, ownedBy(schedule.UserID, schedule.ID), schedule)
	if err != nil {
		return fmt.Errorf("replace feeding schedule %s: %w", schedule.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, userID, id string) error {
	res, err := s.collection(schedulesCollection).DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return fmt.Errorf("delete feeding schedule %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error) {
	return findOne[models.FeedingSchedule](ctx, s.collection(schedulesCollection), ownedBy(userID, id))
}

func (s *Store) ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.FeedingSchedule](ctx, s.collection(schedulesCollection), bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *Store) CreateRecord(ctx context.Context, record models.FeedingRecord) error {
	return insert(ctx, s.collection(recordsCollection), record)
}

func (s *Store) ListRecords(ctx context.Context, userID string, limit int) ([]models.FeedingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.FeedingRecord](ctx, s.collection(recordsCollection), bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *Store) ListRecordsSince(ctx context.Context, userID string, since time.Time) ([]models.FeedingRecord, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "fed_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "fed_at", Value: -1}})
	return findAll[models.FeedingRecord](ctx, s.collection(recordsCollection), filter, opts)
}
