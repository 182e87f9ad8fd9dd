package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
	"github.com/transferpath/degree-audit-api/pkg/response"
)

type programService interface {
	Get(ctx context.Context, id string) (*models.Program, error)
	GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error)
	GetSet(ctx context.Context, setID string) (*models.RequirementSet, error)
	GetSetByTerm(ctx context.Context, programID, semester string, year int) (*models.RequirementSet, error)
	ListSets(ctx context.Context, programID string) ([]models.RequirementSet, error)
}

// ProgramHandler wires program and requirement-set reads.
type ProgramHandler struct {
	service programService
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(service programService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

// Get godoc
// @Summary Fetch one program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// CurrentSet godoc
// @Summary Fetch the current requirement set of a program, or the set for one term
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Param semester query string false "Semester"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/requirements [get]
func (h *ProgramHandler) CurrentSet(c *gin.Context) {
	semester := strings.TrimSpace(c.Query("semester"))
	yearRaw := strings.TrimSpace(c.Query("year"))

	var (
		set *models.RequirementSet
		err error
	)
	if semester != "" || yearRaw != "" {
		year, convErr := strconv.Atoi(yearRaw)
		if convErr != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
			return
		}
		set, err = h.service.GetSetByTerm(c.Request.Context(), c.Param("id"), semester, year)
	} else {
		set, err = h.service.GetCurrentSet(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}

// ListSets godoc
// @Summary List requirement set versions of a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/requirement-sets [get]
func (h *ProgramHandler) ListSets(c *gin.Context) {
	sets, err := h.service.ListSets(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sets, nil)
}

// GetSet godoc
// @Summary Fetch one requirement set by id
// @Tags Programs
// @Produce json
// @Param setId path string true "Requirement set ID"
// @Success 200 {object} response.Envelope
// @Router /requirement-sets/{setId} [get]
func (h *ProgramHandler) GetSet(c *gin.Context) {
	set, err := h.service.GetSet(c.Request.Context(), c.Param("setId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}
