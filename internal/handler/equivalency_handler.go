package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/transferpath/degree-audit-api/internal/models"
	"github.com/transferpath/degree-audit-api/internal/service"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
	"github.com/transferpath/degree-audit-api/pkg/response"
)

type equivalencyService interface {
	ListByInstitutions(ctx context.Context, a, b string) ([]models.Equivalency, error)
	Resolve(ctx context.Context, code, institution string) ([]models.Equivalency, error)
	Create(ctx context.Context, req service.CreateEquivalencyRequest) (*models.Equivalency, error)
	Delete(ctx context.Context, id string) error
}

// EquivalencyHandler wires transfer relation management.
type EquivalencyHandler struct {
	service equivalencyService
}

// NewEquivalencyHandler constructs the handler.
func NewEquivalencyHandler(service equivalencyService) *EquivalencyHandler {
	return &EquivalencyHandler{service: service}
}

// List godoc
// @Summary List transfer relations between two institutions
// @Tags Equivalencies
// @Produce json
// @Param source query string true "Source institution"
// @Param target query string true "Target institution"
// @Success 200 {object} response.Envelope
// @Router /equivalencies [get]
func (h *EquivalencyHandler) List(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	target := strings.TrimSpace(c.Query("target"))
	rows, err := h.service.ListByInstitutions(c.Request.Context(), source, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Resolve godoc
// @Summary Resolve relations touching one course
// @Tags Equivalencies
// @Produce json
// @Param code query string true "Course code"
// @Param institution query string true "Institution"
// @Success 200 {object} response.Envelope
// @Router /equivalencies/resolve [get]
func (h *EquivalencyHandler) Resolve(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	institution := strings.TrimSpace(c.Query("institution"))
	rows, err := h.service.Resolve(c.Request.Context(), code, institution)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Create godoc
// @Summary Register a transfer relation
// @Tags Equivalencies
// @Accept json
// @Produce json
// @Param payload body service.CreateEquivalencyRequest true "Equivalency"
// @Success 201 {object} response.Envelope
// @Router /equivalencies [post]
func (h *EquivalencyHandler) Create(c *gin.Context) {
	var req service.CreateEquivalencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equivalency payload"))
		return
	}
	eq, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, eq)
}

// Delete godoc
// @Summary Delete a transfer relation
// @Tags Equivalencies
// @Param id path string true "Equivalency ID"
// @Success 204
// @Router /equivalencies/{id} [delete]
func (h *EquivalencyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
