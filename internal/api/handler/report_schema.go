package handler

import (
	"time"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

type createReportRequest struct {
	Kind     string `json:"kind"      validate:"required,oneof=comment rating playlist"`
	TargetID string `json:"target_id" validate:"required"`
}

type updateReportStateRequest struct {
	State string `json:"state" validate:"required,oneof=Accepted Rejected"`
}

type reportResponse struct {
	ID         string    `json:"id"`
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	UserID     string    `json:"user_id"`
	AuthorID   string    `json:"author_id"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type reportListResponse struct {
	Items []reportResponse `json:"items"`
	Total int              `json:"total"`
}

func toReportResponse(r *domain.Report) reportResponse {
	return reportResponse{
		ID:         r.ID,
		TargetKind: string(r.Target.Kind),
		TargetID:   r.Target.ID,
		UserID:     r.ReporterID,
		AuthorID:   r.AuthorID,
		State:      string(r.State),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toReportListResponse(reports []*domain.Report) reportListResponse {
	items := make([]reportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toReportResponse(r))
	}
	return reportListResponse{Items: items, Total: len(items)}
}
