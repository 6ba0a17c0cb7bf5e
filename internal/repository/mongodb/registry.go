package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateAnimal(ctx context.Context, animal models.Animal) error {
	return insert(ctx, s.collection(animalsCollection), animal)
}

func (s *Store) GetAnimal(ctx context.Context, userID, id string) (models.Animal, error) {
	return findOne[models.Animal](ctx, s.collection(animalsCollection), ownedBy(userID, id))
}

func (s *Store) ListAnimals(ctx context.Context, userID string) ([]models.Animal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.Animal](ctx, s.collection(animalsCollection), bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *Store) UpdateAnimal(ctx context.Context, animal models.Animal) error {
	return replaceOwned(ctx, s.collection(animalsCollection), animal.UserID, animal.ID, animal)
}

func (s *Store) DeleteAnimal(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.collection(animalsCollection), userID, id)
}

func (s *Store) CreateWeight(ctx context.Context, record models.WeightRecord) error {
	return insert(ctx, s.collection(weightsCollection), record)
}

func (s *Store) ListWeightsSince(ctx context.Context, userID string, since time.Time) ([]models.WeightRecord, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "recorded_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	return findAll[models.WeightRecord](ctx, s.collection(weightsCollection), filter, opts)
}

func (s *Store) CreateVaccination(ctx context.Context, vaccination models.Vaccination) error {
	return insert(ctx, s.collection(vaccinationsCollection), vaccination)
}

func (s *Store) GetVaccination(ctx context.Context, userID, id string) (models.Vaccination, error) {
	return findOne[models.Vaccination](ctx, s.collection(vaccinationsCollection), ownedBy(userID, id))
}

func (s *Store) UpdateVaccination(ctx context.Context, vaccination models.Vaccination) error {
	return replaceOwned(ctx, s.collection(vaccinationsCollection), vaccination.UserID, vaccination.ID, vaccination)
}

func (s *Store) DeleteVaccination(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.collection(vaccinationsCollection), userID, id)
}

func (s *Store) ListVaccinations(ctx context.Context, userID string) ([]models.Vaccination, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_date", Value: 1}})
	return findAll[models.Vaccination](ctx, s.collection(vaccinationsCollection), bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *Store) MarkOverdue(ctx context.Context, before, now time.Time) (int64, error) {
	filter := bson.D{
		{Key: "status", Value: models.VaccinationScheduled},
		{Key: "scheduled_date", Value: bson.D{{Key: "$lt", Value: before}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: models.VaccinationOverdue},
		{Key: "updated_at", Value: now},
	}}}

	res, err := s.collection(vaccinationsCollection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("mark overdue vaccinations: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile models.Profile) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection(profilesCollection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: profile.UserID}}, profile, opts); err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return findOne[models.Profile](ctx, s.collection(profilesCollection), bson.D{{Key: "_id", Value: userID}})
}

func (s *Store) FindProfileByPhone(ctx context.Context, phone string) (models.Profile, error) {
	return findOne[models.Profile](ctx, s.collection(profilesCollection), bson.D{{Key: "phone_number", Value: phone}})
}

func (s *Store) ListFeedingReminderProfiles(ctx context.Context) ([]models.Profile, error) {
	return findAll[models.Profile](ctx, s.collection(profilesCollection), bson.D{{Key: "notification_feeding", Value: true}})
}

func replaceOwned(ctx context.Context, coll *mongo.Collection, userID, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, ownedBy(userID, id), doc)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOwned(ctx context.Context, coll *mongo.Collection, userID, id string) error {
	res, err := coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
