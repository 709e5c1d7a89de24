package repository

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	authdomain "reliance-backend/internal/auth/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

// NewMongoUserRepository creates a MongoDB-backed UserRepository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	r := &mongoUserRepository{
		users:  db.Collection("users"),
		tokens: db.Collection("refresh_tokens"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		log.Printf("[UserRepository] Failed to create email index: %v", err)
	}
	if _, err := r.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	}); err != nil {
		log.Printf("[UserRepository] Failed to create refresh token index: %v", err)
	}
	return r
}

func (r *mongoUserRepository) Create(ctx context.Context, user *authdomain.User) error {
	user.ID = primitive.NewObjectID().Hex()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return authdomain.ErrEmailTaken
	}
	return err
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	return r.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	return r.findUser(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) ReplaceRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error {
	if _, err := r.tokens.DeleteMany(ctx, bson.M{
		"userId":    token.UserID,
		"expiresAt": bson.M{"$lt": time.Now().UTC()},
	}); err != nil {
		return err
	}
	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

func (r *mongoUserRepository) FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error) {
	var rt authdomain.RefreshToken
	err := r.tokens.FindOne(ctx, bson.M{"_id": token}).Decode(&rt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *mongoUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.tokens.DeleteOne(ctx, bson.M{"_id": token})
	return err
}

func (r *mongoUserRepository) findUser(ctx context.Context, filter bson.M) (*authdomain.User, error) {
	var user authdomain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
