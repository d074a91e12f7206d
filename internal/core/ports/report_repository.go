package ports

import (
	"context"
	"time"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// ReportRepository defines persistence for moderation reports.
//
// The at-most-one-active-report-per-target invariant is ultimately enforced
// here: Insert must translate a storage uniqueness violation on
// (target, state=Checking) into a domain Conflict error, so the racing
// reporter sees the same outcome as the advisory pre-check.
type ReportRepository interface {
	Insert(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	// FindActiveByTarget returns the report in state Checking for the exact
	// target, or a NotFound domain error when none exists.
	FindActiveByTarget(ctx context.Context, target domain.Target) (*domain.Report, error)
	// UpdateState sets the report state and updated_at without any target
	// re-validation, and returns the updated report.
	UpdateState(ctx context.Context, id string, state domain.ReportState, ts time.Time) (*domain.Report, error)

	// List queries return reports sorted newest-first by creation time.
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Report, error)
	ListByReporter(ctx context.Context, reporterID string) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
}
