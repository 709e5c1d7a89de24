package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"reliance-backend/internal/valuezone/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoValueZoneRepository struct {
	coll *mongo.Collection
}

// NewMongoValueZoneRepository creates a MongoDB-backed ValueZoneRepository
func NewMongoValueZoneRepository(db *mongo.Database) ValueZoneRepository {
	coll := db.Collection("value_zones")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "priority", Value: 1}},
	}); err != nil {
		log.Printf("[ValueZoneRepository] Failed to create mongo index: %v", err)
	}

	return &mongoValueZoneRepository{coll: coll}
}

func (r *mongoValueZoneRepository) Create(ctx context.Context, zone *domain.ValueZone) error {
	zone.ID = primitive.NewObjectID().Hex()
	zone.CreatedAt = time.Now().UTC()
	zone.UpdatedAt = zone.CreatedAt
	_, err := r.coll.InsertOne(ctx, zone)
	return err
}

func (r *mongoValueZoneRepository) FindByID(ctx context.Context, id string) (*domain.ValueZone, error) {
	var zone domain.ValueZone
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&zone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

func (r *mongoValueZoneRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.ValueZone, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	zones := make([]*domain.ValueZone, 0)
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *mongoValueZoneRepository) Update(ctx context.Context, zone *domain.ValueZone) error {
	zone.UpdatedAt = time.Now().UTC()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": zone.ID}, zone)
	return err
}

func (r *mongoValueZoneRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
