package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

const (
	collectionComments  = "comments"
	collectionRatings   = "ratings"
	collectionPlaylists = "playlists"
)

// CommentRepository implements ports.CommentRepository using MongoDB.
// Documents are created by the comments CRUD service; this repository only
// reads and cascade-deletes.
type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("comment not found")
		}
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) DeleteByTrack(ctx context.Context, trackID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"track_id": trackID})
	return err
}

func (r *CommentRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"author_id": authorID})
	return err
}

// RatingRepository implements ports.RatingRepository using MongoDB.
type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) *RatingRepository {
	return &RatingRepository{col: db.Collection(collectionRatings)}
}

func (r *RatingRepository) FindByID(ctx context.Context, id string) (*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rt domain.Rating
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("rating not found")
		}
		return nil, err
	}
	return &rt, nil
}

func (r *RatingRepository) DeleteByTrack(ctx context.Context, trackID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"track_id": trackID})
	return err
}

func (r *RatingRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"author_id": authorID})
	return err
}

// PlaylistRepository implements ports.PlaylistRepository using MongoDB.
type PlaylistRepository struct {
	col *mongo.Collection
}

func NewPlaylistRepository(db *mongo.Database) *PlaylistRepository {
	return &PlaylistRepository{col: db.Collection(collectionPlaylists)}
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (*domain.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var pl domain.Playlist
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&pl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("playlist not found")
		}
		return nil, err
	}
	return &pl, nil
}

// PullTrack removes the track from every playlist's track list. Pulling an
// absent value matches zero documents, which keeps replays safe.
func (r *PlaylistRepository) PullTrack(ctx context.Context, trackID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"track_ids": trackID},
		bson.M{"$pull": bson.M{"track_ids": trackID}},
	)
	return err
}

func (r *PlaylistRepository) PullCollaborator(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"collaborators": userID},
		bson.M{"$pull": bson.M{"collaborators": userID}},
	)
	return err
}

func (r *PlaylistRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	return err
}
