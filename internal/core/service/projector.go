package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/beatshub/interaction-service/internal/core/domain"
	"github.com/beatshub/interaction-service/internal/core/ports"
)

// Projector consumes beat and user events and keeps the local projections
// current, cascading deletes into the comment, rating, and playlist
// collections. Every mutation is idempotent: delivery is at-least-once and
// any message may be re-processed after a crash mid-cascade.
//
// Per-entity event ordering is assumed from the broker; there is no version
// check, so an older update delivered after a newer one (e.g. across
// partitions) wins.
type Projector struct {
	users     ports.UserProjectionRepository
	tracks    ports.TrackProjectionRepository
	comments  ports.CommentRepository
	ratings   ports.RatingRepository
	playlists ports.PlaylistRepository
	log       zerolog.Logger
}

func NewProjector(
	users ports.UserProjectionRepository,
	tracks ports.TrackProjectionRepository,
	comments ports.CommentRepository,
	ratings ports.RatingRepository,
	playlists ports.PlaylistRepository,
	log zerolog.Logger,
) *Projector {
	return &Projector{
		users:     users,
		tracks:    tracks,
		comments:  comments,
		ratings:   ratings,
		playlists: playlists,
		log:       log,
	}
}

// Process parses one raw message and dispatches by event type. Unknown types
// are logged and ignored; any other failure is returned so the consumer can
// route the original message to the dead-letter topic.
func (p *Projector) Process(ctx context.Context, raw []byte) error {
	var env domain.EventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}
	if env.Type == "" {
		return fmt.Errorf("parse envelope: missing event type")
	}

	var err error
	switch env.Type {
	case domain.EventBeatCreated, domain.EventBeatUpdated:
		err = p.upsertTrack(ctx, env.Payload)
	case domain.EventBeatPlaysIncremented, domain.EventBeatDownloadsIncremented:
		err = p.updateTrackStats(ctx, env.Payload)
	case domain.EventBeatDeleted:
		err = p.deleteTrack(ctx, env.Payload)
	case domain.EventUserCreated, domain.EventUserUpdated:
		err = p.upsertUser(ctx, env.Payload)
	case domain.EventUserDeleted:
		err = p.deleteUser(ctx, env.Payload)
	default:
		// Not an error: other consumers of these topics handle types we don't.
		p.log.Debug().Str("type", env.Type).Msg("unknown event type ignored")
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}

	p.log.Info().Str("type", env.Type).Msg("event processed")
	return nil
}

func (p *Projector) upsertTrack(ctx context.Context, payload json.RawMessage) error {
	var beat domain.BeatPayload
	if err := json.Unmarshal(payload, &beat); err != nil {
		return fmt.Errorf("parse beat payload: %w", err)
	}
	if beat.ID == "" {
		return fmt.Errorf("beat payload missing _id")
	}

	return p.tracks.Upsert(ctx, &domain.TrackProjection{
		ID:    beat.ID,
		Title: beat.Title,
		CreatedBy: domain.CreatorSnapshot{
			UserID:   beat.CreatedBy.UserID,
			Username: beat.CreatedBy.Username,
			Roles:    beat.CreatedBy.Roles,
		},
		Genre:          beat.Genre,
		Tags:           beat.Tags,
		Description:    beat.Description,
		Audio:          domain.TrackAudio{URL: beat.Audio.URL, S3Key: beat.Audio.S3Key},
		Stats:          domain.TrackStats{Plays: beat.Stats.Plays, Downloads: beat.Stats.Downloads},
		IsPublic:       beat.IsPublic,
		IsDownloadable: beat.IsDownloadable,
		UpdatedAt:      time.Now().UTC(),
	})
}

func (p *Projector) updateTrackStats(ctx context.Context, payload json.RawMessage) error {
	var stats domain.BeatStatsPayload
	if err := json.Unmarshal(payload, &stats); err != nil {
		return fmt.Errorf("parse stats payload: %w", err)
	}
	if stats.ID == "" {
		return fmt.Errorf("stats payload missing _id")
	}

	return p.tracks.UpdateStats(ctx, stats.ID, domain.TrackStats{
		Plays:     stats.Stats.Plays,
		Downloads: stats.Stats.Downloads,
	})
}

// deleteTrack removes the projection and everything referencing the track.
// Multi-collection and non-transactional: a crash mid-way leaves a partial
// cascade that the redelivered message completes.
func (p *Projector) deleteTrack(ctx context.Context, payload json.RawMessage) error {
	var del domain.BeatDeletedPayload
	if err := json.Unmarshal(payload, &del); err != nil {
		return fmt.Errorf("parse delete payload: %w", err)
	}
	if del.ID == "" {
		return fmt.Errorf("delete payload missing _id")
	}

	if err := p.tracks.Delete(ctx, del.ID); err != nil {
		return fmt.Errorf("delete track projection: %w", err)
	}
	if err := p.comments.DeleteByTrack(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade comments: %w", err)
	}
	if err := p.ratings.DeleteByTrack(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade ratings: %w", err)
	}
	if err := p.playlists.PullTrack(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade playlists: %w", err)
	}

	p.log.Info().Str("track_id", del.ID).Msg("track delete cascaded")
	return nil
}

func (p *Projector) upsertUser(ctx context.Context, payload json.RawMessage) error {
	var user domain.UserPayload
	if err := json.Unmarshal(payload, &user); err != nil {
		return fmt.Errorf("parse user payload: %w", err)
	}
	if user.ID == "" {
		return fmt.Errorf("user payload missing _id")
	}

	now := time.Now().UTC()
	proj := &domain.UserProjection{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     user.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.CreatedAt != nil {
		proj.CreatedAt = user.CreatedAt.UTC()
	}
	if user.UpdatedAt != nil {
		proj.UpdatedAt = user.UpdatedAt.UTC()
	}

	return p.users.Upsert(ctx, proj)
}

// deleteUser removes the projection and every locally-owned document the user
// participates in, then the track projections they created.
func (p *Projector) deleteUser(ctx context.Context, payload json.RawMessage) error {
	var del domain.UserDeletedPayload
	if err := json.Unmarshal(payload, &del); err != nil {
		return fmt.Errorf("parse delete payload: %w", err)
	}
	if del.ID == "" {
		return fmt.Errorf("delete payload missing _id")
	}

	if err := p.playlists.DeleteByOwner(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade owned playlists: %w", err)
	}
	if err := p.playlists.PullCollaborator(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade collaborations: %w", err)
	}
	if err := p.comments.DeleteByAuthor(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade comments: %w", err)
	}
	if err := p.ratings.DeleteByAuthor(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade ratings: %w", err)
	}
	if err := p.users.Delete(ctx, del.ID); err != nil {
		return fmt.Errorf("delete user projection: %w", err)
	}
	if err := p.tracks.DeleteByCreator(ctx, del.ID); err != nil {
		return fmt.Errorf("cascade created tracks: %w", err)
	}

	p.log.Info().Str("user_id", del.ID).Msg("user delete cascaded")
	return nil
}
