package emergency

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medivault/medivault/internal/domain/record"
	"github.com/medivault/medivault/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the authorized QR issue route on api and the
// unauthenticated dereference route on public.
func (h *Handler) RegisterRoutes(api, public *echo.Group) {
	api.POST("/qr", h.IssueLink)
	public.GET("/records/:id/pdf", h.RenderPDF)
}

type issueRequest struct {
	RecordID string `json:"record_id"`
}

func (h *Handler) IssueLink(c echo.Context) error {
	ownerID, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RecordID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "record_id is required")
	}
	recordID, err := uuid.Parse(req.RecordID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record_id")
	}

	link, err := h.svc.Issue(c.Request().Context(), ownerID, recordID)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate QR")
	}
	return c.JSON(http.StatusOK, link)
}

func (h *Handler) RenderPDF(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	pdf, err := h.svc.Render(c.Request().Context(), recordID)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate PDF")
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=record_%s.pdf", recordID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
