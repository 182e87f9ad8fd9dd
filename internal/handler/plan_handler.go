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

type planService interface {
	Get(ctx context.Context, id string) (*models.Plan, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Plan, error)
	Create(ctx context.Context, req service.CreatePlanRequest) (*models.Plan, error)
	Update(ctx context.Context, id string, req service.UpdatePlanRequest) (*models.Plan, error)
	Delete(ctx context.Context, id string) error
	AddCourse(ctx context.Context, planID string, req service.PlanCourseRequest) (*models.PlanCourse, error)
	UpdateCourse(ctx context.Context, planID, courseID string, req service.PlanCourseRequest) (*models.PlanCourse, error)
	RemoveCourse(ctx context.Context, planID, courseID string) error
}

// PlanHandler wires plan lifecycle endpoints.
type PlanHandler struct {
	service planService
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(service planService) *PlanHandler {
	return &PlanHandler{service: service}
}

// Get godoc
// @Summary Fetch one plan with its courses
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ListByStudent godoc
// @Summary List a student's plans
// @Tags Plans
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/plans [get]
func (h *PlanHandler) ListByStudent(c *gin.Context) {
	plans, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Create godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body service.CreatePlanRequest true "Plan"
// @Success 201 {object} response.Envelope
// @Router /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		req.StudentID = claims.UserID
	}
	plan, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update godoc
// @Summary Update a plan header
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body service.UpdatePlanRequest true "Plan"
// @Success 200 {object} response.Envelope
// @Router /plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	var req service.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload"))
		return
	}
	plan, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a plan
// @Tags Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddCourse godoc
// @Summary Add a course to a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body service.PlanCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /plans/{id}/courses [post]
func (h *PlanHandler) AddCourse(c *gin.Context) {
	var req service.PlanCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload"))
		return
	}
	course, err := h.service.AddCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a plan course
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param courseId path string true "Plan course ID"
// @Param payload body service.PlanCourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/courses/{courseId} [put]
func (h *PlanHandler) UpdateCourse(c *gin.Context) {
	var req service.PlanCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload"))
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), c.Param("id"), c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// RemoveCourse godoc
// @Summary Remove a course from a plan
// @Tags Plans
// @Param id path string true "Plan ID"
// @Param courseId path string true "Plan course ID"
// @Success 204
// @Router /plans/{id}/courses/{courseId} [delete]
func (h *PlanHandler) RemoveCourse(c *gin.Context) {
	planID := strings.TrimSpace(c.Param("id"))
	courseID := strings.TrimSpace(c.Param("courseId"))
	if err := h.service.RemoveCourse(c.Request.Context(), planID, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
