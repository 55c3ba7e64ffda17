package evaluations

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/report"
	"dealflow-backend/internal/shared/server/middleware"
	"dealflow-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches evaluation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/companies/:id/evaluations", h.evaluate)
	rg.GET("/companies/:id/evaluations", h.list)
	rg.GET("/evaluations/:id", h.get)
	rg.GET("/evaluations/:id/report", h.renderReport)
}

func (h *Handler) evaluate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	ev, err := h.Svc.Evaluate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "company not found", nil)
		case errors.Is(err, ErrScoringIncomplete):
			respond.Error(c, http.StatusConflict, "scoring_incomplete", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to evaluate company", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(ev))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	evaluations, err := h.Svc.ListByCompany(c.Request.Context(), userID, c.Param("id"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "company not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list evaluations", nil)
		}
		return
	}

	resp := make([]EvaluationResponse, 0, len(evaluations))
	for _, ev := range evaluations {
		resp = append(resp, toResponse(ev))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	ev, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "evaluation not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch evaluation", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(ev))
}

func (h *Handler) renderReport(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = report.FormatMarkdown
	}
	if format != report.FormatMarkdown && format != report.FormatPDF {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be markdown or pdf", nil)
		return
	}

	artifact, err := h.Svc.RenderReport(c.Request.Context(), userID, c.Param("id"), format)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "evaluation not found", nil)
		case errors.Is(err, report.ErrRenderIncomplete):
			respond.Error(c, http.StatusUnprocessableEntity, "render_incomplete", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render report", nil)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	c.Data(http.StatusOK, artifact.MimeType, artifact.Data)
}
