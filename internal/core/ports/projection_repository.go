package ports

import (
	"context"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// UserProjectionRepository defines persistence for the user_projections
// collection. All writes must be idempotent: events are delivered
// at-least-once and may be replayed.
type UserProjectionRepository interface {
	// Upsert creates or fully replaces the projection keyed by external user id.
	Upsert(ctx context.Context, u *domain.UserProjection) error
	// Delete removes the projection. Deleting a missing projection is not an error.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.UserProjection, error)
}

// TrackProjectionRepository defines persistence for the track_projections collection.
type TrackProjectionRepository interface {
	// Upsert creates or fully replaces the projection keyed by external track id.
	Upsert(ctx context.Context, t *domain.TrackProjection) error
	// UpdateStats upserts only the counter fields and updated_at.
	UpdateStats(ctx context.Context, id string, stats domain.TrackStats) error
	Delete(ctx context.Context, id string) error
	// DeleteByCreator removes every projection whose creator snapshot matches userID.
	DeleteByCreator(ctx context.Context, userID string) error
	FindByID(ctx context.Context, id string) (*domain.TrackProjection, error)
}
