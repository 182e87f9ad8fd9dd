package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transferpath/degree-audit-api/internal/engine"
	"github.com/transferpath/degree-audit-api/internal/middleware"
	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
	"github.com/transferpath/degree-audit-api/pkg/response"
)

type progressService interface {
	Compute(ctx context.Context, planID string, view models.ViewFilter) (*engine.Report, bool, error)
}

// ProgressHandler wires progress computation to HTTP endpoints.
type ProgressHandler struct {
	service progressService
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Get godoc
// @Summary Compute degree progress for a plan
// @Tags Progress
// @Produce json
// @Param id path string true "Plan ID"
// @Param view query string false "View filter (all, planned, in_progress, completed)"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/progress [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	planID := strings.TrimSpace(c.Param("id"))
	if planID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "plan id is required"))
		return
	}
	view := models.ViewFilter(strings.TrimSpace(c.Query("view")))

	start := time.Now()
	report, cacheHit, err := h.service.Compute(c.Request.Context(), planID, view)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, nil, meta)
}
