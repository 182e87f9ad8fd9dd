package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transferpath/degree-audit-api/internal/dto"
	"github.com/transferpath/degree-audit-api/internal/middleware"
	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
	"github.com/transferpath/degree-audit-api/pkg/response"
)

type auditService interface {
	Audit(ctx context.Context, planID string, view models.ViewFilter) (*dto.AuditReport, bool, error)
	RequestExport(ctx context.Context, planID, requestedBy string, req dto.ExportRequest) (*models.ExportJob, error)
	Status(ctx context.Context, jobID string) (*dto.ExportStatusResponse, error)
	Open(ctx context.Context, token string) (*models.ExportJob, *os.File, error)
}

// AuditHandler wires the audit and export pipeline to HTTP endpoints.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// Get godoc
// @Summary Constraint violation report for a plan
// @Tags Audit
// @Produce json
// @Param id path string true "Plan ID"
// @Param view query string false "View filter (all, planned, in_progress, completed)"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/audit [get]
func (h *AuditHandler) Get(c *gin.Context) {
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
	audit, cacheHit, err := h.service.Audit(c.Request.Context(), planID, view)
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
	response.JSON(c, http.StatusOK, audit, nil, meta)
}

// Export godoc
// @Summary Request an asynchronous audit export
// @Tags Audit
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /plans/{id}/audit/export [post]
func (h *AuditHandler) Export(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	planID := strings.TrimSpace(c.Param("id"))
	if planID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "plan id is required"))
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return
	}
	requestedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		requestedBy = claims.UserID
	}

	job, err := h.service.RequestExport(c.Request.Context(), planID, requestedBy, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.ExportJobResponse{ID: job.ID, Status: job.Status, Format: job.Format}, nil)
}

// Status godoc
// @Summary Export job status
// @Tags Audit
// @Produce json
// @Param jobId path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /export-jobs/{jobId} [get]
func (h *AuditHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	jobID := strings.TrimSpace(c.Param("jobId"))
	if jobID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "job id is required"))
		return
	}
	status, err := h.service.Status(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a completed export via signed token
// @Tags Audit
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/{token} [get]
func (h *AuditHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	job, file, err := h.service.Open(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "text/csv"
	if job.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}
	filename := filepath.Base(file.Name())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
