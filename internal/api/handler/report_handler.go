package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beatshub/interaction-service/internal/api/metrics"
	"github.com/beatshub/interaction-service/internal/core/domain"
	"github.com/beatshub/interaction-service/internal/core/ports"
)

// ReportHandler handles HTTP requests for the moderation report surface.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create handles POST /v1/reports. The reporter identity comes from the
// token, never from the body.
func (h *ReportHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	report, err := h.service.CreateReport(c.Request().Context(), ports.CreateReportInput{
		Kind:       req.Kind,
		TargetID:   req.TargetID,
		ReporterID: userID,
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			metrics.ReportsRejectedTotal.WithLabelValues(string(de.Kind)).Inc()
		}
		return err
	}

	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Target.Kind)).Inc()
	return c.JSON(http.StatusCreated, toReportResponse(report))
}

// Get handles GET /v1/reports/:id. Visible to admins and the involved users.
func (h *ReportHandler) Get(c echo.Context) error {
	userID, roles, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	report, err := h.service.GetReportByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if !isAdmin(roles) && report.ReporterID != userID && report.AuthorID != userID {
		// Hide existence from unrelated users.
		return domain.NotFoundError("report not found")
	}

	return c.JSON(http.StatusOK, toReportResponse(report))
}

// ListMine handles GET /v1/reports/me — the requester's own reports.
func (h *ReportHandler) ListMine(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	reports, err := h.service.ListReportsForRequester(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportListResponse(reports))
}

// ListAll handles GET /v1/reports (admin only).
func (h *ReportHandler) ListAll(c echo.Context) error {
	reports, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportListResponse(reports))
}

// ListByReportedUser handles GET /v1/reports/user/:userId (admin only).
func (h *ReportHandler) ListByReportedUser(c echo.Context) error {
	reports, err := h.service.ListReportsByReportedUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportListResponse(reports))
}

// UpdateState handles PATCH /v1/reports/:id/state (admin only) — the decision
// path used by the moderation worker.
func (h *ReportHandler) UpdateState(c echo.Context) error {
	var req updateReportStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	report, err := h.service.UpdateReportState(c.Request().Context(), ports.UpdateReportStateInput{
		ReportID: c.Param("id"),
		State:    req.State,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}
