package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/beatshub/interaction-service/internal/core/domain"
	"github.com/beatshub/interaction-service/internal/core/ports"
)

// User-facing messages for the moderation invariants. The storage-race path
// and the advisory pre-check must surface the identical Conflict message.
const (
	msgAlreadyReported   = "already reported and under review"
	msgSelfReport        = "cannot report your own content"
	msgPrivateContent    = "cannot report content on a private playlist"
	msgPrivatePlaylist   = "cannot report a private playlist"
	msgInvalidTransition = "report is already resolved"
	msgMissingReporter   = "reporter identity is missing or invalid"
)

type reportService struct {
	reports   ports.ReportRepository
	comments  ports.CommentRepository
	ratings   ports.RatingRepository
	playlists ports.PlaylistRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewReportService returns a ReportService implementation.
func NewReportService(
	reports ports.ReportRepository,
	comments ports.CommentRepository,
	ratings ports.RatingRepository,
	playlists ports.PlaylistRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.ReportService {
	return &reportService{
		reports:   reports,
		comments:  comments,
		ratings:   ratings,
		playlists: playlists,
		publisher: publisher,
		log:       log,
	}
}

// CreateReport files a moderation report against a single content item.
func (s *reportService) CreateReport(ctx context.Context, input ports.CreateReportInput) (*domain.Report, error) {
	// 1. Identity and target shape checks.
	if !primitive.IsValidObjectID(input.ReporterID) {
		return nil, domain.UnprocessableError(msgMissingReporter)
	}
	kind, err := domain.ParseTargetKind(input.Kind)
	if err != nil {
		return nil, err
	}
	target := domain.Target{Kind: kind, ID: input.TargetID}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	// 2. Resolve the target and derive its author.
	authorID, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	// 3. Invariants: no self-reporting, no second active report.
	if input.ReporterID == authorID {
		return nil, domain.UnprocessableError(msgSelfReport)
	}
	if _, err := s.reports.FindActiveByTarget(ctx, target); err == nil {
		return nil, domain.ConflictError(msgAlreadyReported)
	} else if !domain.IsKind(err, domain.KindNotFound) {
		s.log.Error().Err(err).Str("target_id", target.ID).Msg("active-report lookup failed")
		return nil, fmt.Errorf("create report: %w", err)
	}

	// 4. Persist. The pre-check above is advisory; the partial unique index
	// closes the race and Insert maps the duplicate-key violation to the
	// same Conflict the pre-check produces.
	now := time.Now().UTC()
	report := &domain.Report{
		ID:         primitive.NewObjectID().Hex(),
		Target:     target,
		ReporterID: input.ReporterID,
		AuthorID:   authorID,
		State:      domain.StateChecking,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		s.log.Error().Err(err).Str("target_id", target.ID).Msg("failed to insert report")
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.emitReportEvent(ctx, domain.EventReportCreated, report)

	s.log.Info().
		Str("report_id", report.ID).
		Str("kind", string(kind)).
		Str("target_id", target.ID).
		Str("reporter_id", report.ReporterID).
		Msg("report created")

	return report, nil
}

// resolveTarget loads the minimal projection of the reported content,
// enforces the visibility rules, and returns the derived author id.
func (s *reportService) resolveTarget(ctx context.Context, target domain.Target) (string, error) {
	if !primitive.IsValidObjectID(target.ID) {
		return "", domain.NotFoundError(string(target.Kind) + " not found")
	}

	switch target.Kind {
	case domain.TargetComment:
		c, err := s.comments.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if err := s.requirePublicPlaylist(ctx, c.PlaylistID); err != nil {
			return "", err
		}
		return c.AuthorID, nil

	case domain.TargetRating:
		r, err := s.ratings.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if err := s.requirePublicPlaylist(ctx, r.PlaylistID); err != nil {
			return "", err
		}
		return r.AuthorID, nil

	case domain.TargetPlaylist:
		pl, err := s.playlists.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if !pl.IsPublic {
			return "", domain.UnprocessableError(msgPrivatePlaylist)
		}
		return pl.OwnerID, nil
	}

	return "", domain.UnprocessableError(fmt.Sprintf("invalid report target kind %q", target.Kind))
}

// requirePublicPlaylist enforces visibility for content attached to a
// playlist. Standalone track-attached content (empty playlistID) is
// unaffected by playlist state.
func (s *reportService) requirePublicPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return nil
	}
	pl, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.UnprocessableError(msgPrivateContent)
		}
		return err
	}
	if !pl.IsPublic {
		return domain.UnprocessableError(msgPrivateContent)
	}
	return nil
}

// UpdateReportState applies a moderation decision. Target existence and
// visibility are deliberately not re-validated: a report already filed must
// remain resolvable after its target is deleted or its playlist turns private.
func (s *reportService) UpdateReportState(ctx context.Context, input ports.UpdateReportStateInput) (*domain.Report, error) {
	if !primitive.IsValidObjectID(input.ReportID) {
		return nil, domain.NotFoundError("report not found")
	}
	next, err := domain.ParseReportState(input.State)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.FindByID(ctx, input.ReportID)
	if err != nil {
		return nil, err
	}
	if !report.State.CanTransitionTo(next) {
		return nil, domain.UnprocessableError(msgInvalidTransition)
	}

	updated, err := s.reports.UpdateState(ctx, input.ReportID, next, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Str("report_id", input.ReportID).Msg("failed to update report state")
		return nil, fmt.Errorf("update report state: %w", err)
	}

	s.emitReportEvent(ctx, domain.EventReportStateChanged, updated)

	s.log.Info().
		Str("report_id", updated.ID).
		Str("state", string(updated.State)).
		Msg("report state changed")

	return updated, nil
}

func (s *reportService) GetReportByID(ctx context.Context, id string) (*domain.Report, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.NotFoundError("report not found")
	}
	return s.reports.FindByID(ctx, id)
}

func (s *reportService) ListReportsByReportedUser(ctx context.Context, authorID string) ([]*domain.Report, error) {
	return s.reports.ListByAuthor(ctx, authorID)
}

func (s *reportService) ListReportsForRequester(ctx context.Context, reporterID string) ([]*domain.Report, error) {
	return s.reports.ListByReporter(ctx, reporterID)
}

func (s *reportService) ListAll(ctx context.Context) ([]*domain.Report, error) {
	return s.reports.ListAll(ctx)
}

// emitReportEvent publishes on the social-events topic; failures are logged
// and never fail the request.
func (s *reportService) emitReportEvent(ctx context.Context, eventType string, r *domain.Report) {
	payload := domain.ReportEventPayload{
		ReportID:   r.ID,
		TargetKind: string(r.Target.Kind),
		TargetID:   r.Target.ID,
		ReporterID: r.ReporterID,
		AuthorID:   r.AuthorID,
		State:      string(r.State),
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("report_id", r.ID).Str("type", eventType).Msg("failed to publish report event")
	}
}
