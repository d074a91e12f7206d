package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

const (
	collectionUserProjections  = "user_projections"
	collectionTrackProjections = "track_projections"
)

// UserProjectionRepository implements ports.UserProjectionRepository using MongoDB.
type UserProjectionRepository struct {
	col *mongo.Collection
}

func NewUserProjectionRepository(db *mongo.Database) *UserProjectionRepository {
	return &UserProjectionRepository{col: db.Collection(collectionUserProjections)}
}

// Upsert replaces the projection keyed by external user id, creating it when
// missing. Replaying the same event is a no-op by construction.
func (r *UserProjectionRepository) Upsert(ctx context.Context, u *domain.UserProjection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, opts)
	return err
}

// Delete removes the projection. Missing documents are not an error.
func (r *UserProjectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *UserProjectionRepository) FindByID(ctx context.Context, id string) (*domain.UserProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.UserProjection
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// TrackProjectionRepository implements ports.TrackProjectionRepository using MongoDB.
type TrackProjectionRepository struct {
	col *mongo.Collection
}

func NewTrackProjectionRepository(db *mongo.Database) *TrackProjectionRepository {
	return &TrackProjectionRepository{col: db.Collection(collectionTrackProjections)}
}

func (r *TrackProjectionRepository) Upsert(ctx context.Context, t *domain.TrackProjection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, opts)
	return err
}

// UpdateStats upserts only the counters and updated_at, leaving the
// descriptive fields untouched.
func (r *TrackProjectionRepository) UpdateStats(ctx context.Context, id string, stats domain.TrackStats) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"stats":      stats,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update, opts)
	return err
}

func (r *TrackProjectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *TrackProjectionRepository) DeleteByCreator(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"created_by.user_id": userID})
	return err
}

func (r *TrackProjectionRepository) FindByID(ctx context.Context, id string) (*domain.TrackProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.TrackProjection
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("track not found")
		}
		return nil, err
	}
	return &t, nil
}
