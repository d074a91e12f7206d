package ports

import (
	"context"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// CreateReportInput carries all data needed to file a moderation report.
// ReporterID comes from the authenticated identity, never from the body.
type CreateReportInput struct {
	Kind       string
	TargetID   string
	ReporterID string
}

// UpdateReportStateInput carries the decision applied to an existing report.
type UpdateReportStateInput struct {
	ReportID string
	State    string
}

// ReportService defines the moderation use-case surface consumed by the
// route layer and the external decision process.
type ReportService interface {
	CreateReport(ctx context.Context, input CreateReportInput) (*domain.Report, error)
	// UpdateReportState applies a moderation decision. It deliberately skips
	// target existence and visibility re-validation so a report can still be
	// resolved after its target was deleted or hidden.
	UpdateReportState(ctx context.Context, input UpdateReportStateInput) (*domain.Report, error)
	GetReportByID(ctx context.Context, id string) (*domain.Report, error)
	ListReportsByReportedUser(ctx context.Context, authorID string) ([]*domain.Report, error)
	ListReportsForRequester(ctx context.Context, reporterID string) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
}
