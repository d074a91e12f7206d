package ports

import (
	"context"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// The content repositories expose only what the projection cascades and the
// moderation resolver need. Creation and editing of these documents belongs
// to the interaction CRUD services.

// CommentRepository reads and cascade-deletes comments.
type CommentRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	DeleteByTrack(ctx context.Context, trackID string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

// RatingRepository reads and cascade-deletes ratings.
type RatingRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Rating, error)
	DeleteByTrack(ctx context.Context, trackID string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

// PlaylistRepository reads and cascade-mutates playlists.
type PlaylistRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Playlist, error)
	// PullTrack removes trackID from every playlist's track list.
	PullTrack(ctx context.Context, trackID string) error
	// PullCollaborator removes userID from every playlist's collaborator list.
	PullCollaborator(ctx context.Context, userID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
