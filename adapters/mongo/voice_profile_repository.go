package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
)

type VoiceProfileRepository struct {
	collection *mongo.Collection
}

type voiceProfileDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Embedding []float64          `bson:"embedding"`
	Threshold float64            `bson:"threshold"`
	Samples   int                `bson:"samples"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *voiceProfileDoc) toEntity() *entities.VoiceProfile {
	return &entities.VoiceProfile{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Embedding: d.Embedding,
		Threshold: d.Threshold,
		Samples:   d.Samples,
		UpdatedAt: d.UpdatedAt,
	}
}

// NewVoiceProfileRepository creates a new MongoDB voice profile repository
func NewVoiceProfileRepository(db *mongo.Database) repositories.VoiceProfileRepository {
	return &VoiceProfileRepository{
		collection: db.Collection("voice_profiles"),
	}
}

// Upsert implements repositories.VoiceProfileRepository. A user has at
// most one profile, keyed by user_id.
func (r *VoiceProfileRepository) Upsert(ctx context.Context, profile *entities.VoiceProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if len(profile.Embedding) == 0 {
		return errors.New("embedding cannot be empty")
	}

	profile.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"user_id":    profile.UserID,
			"embedding":  profile.Embedding,
			"threshold":  profile.Threshold,
			"samples":    profile.Samples,
			"updated_at": profile.UpdatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": profile.UserID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert voice profile: %w", err)
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		profile.ID = oid.Hex()
	}
	return nil
}

// GetByUserID implements repositories.VoiceProfileRepository
func (r *VoiceProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.VoiceProfile, error) {
	var doc voiceProfileDoc
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get voice profile: %w", err)
	}
	return doc.toEntity(), nil
}

// List implements repositories.VoiceProfileRepository
func (r *VoiceProfileRepository) List(ctx context.Context) ([]*entities.VoiceProfile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list voice profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*entities.VoiceProfile
	for cursor.Next(ctx) {
		var doc voiceProfileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode voice profile: %w", err)
		}
		profiles = append(profiles, doc.toEntity())
	}
	return profiles, cursor.Err()
}
