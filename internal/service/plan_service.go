package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type planStore interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id string) error
	ListCourses(ctx context.Context, filter models.PlanCourseFilter) ([]models.PlanCourse, error)
	AddCourse(ctx context.Context, course *models.PlanCourse) error
	UpdateCourse(ctx context.Context, course *models.PlanCourse) error
	RemoveCourse(ctx context.Context, planID, courseID string) error
	TouchPlan(ctx context.Context, planID string) error
}

type reportInvalidator interface {
	Invalidate(ctx context.Context, planID string)
}

// CreatePlanRequest holds payload for creating plans.
type CreatePlanRequest struct {
	StudentID        string `json:"student_id" validate:"required"`
	TargetProgramID  string `json:"target_program_id" validate:"required"`
	CurrentProgramID string `json:"current_program_id"`
	Name             string `json:"name" validate:"required"`
}

// UpdatePlanRequest holds payload for updating plan headers.
type UpdatePlanRequest struct {
	TargetProgramID  string `json:"target_program_id" validate:"required"`
	CurrentProgramID string `json:"current_program_id"`
	Name             string `json:"name" validate:"required"`
}

// PlanCourseRequest holds payload for adding or updating a plan course.
type PlanCourseRequest struct {
	CourseCode          string              `json:"course_code" validate:"required"`
	Institution         string              `json:"institution" validate:"required"`
	Status              models.CourseStatus `json:"status" validate:"required,oneof=planned in_progress completed"`
	Semester            string              `json:"semester"`
	Year                int                 `json:"year"`
	Credits             float64             `json:"credits" validate:"gte=0"`
	Grade               string              `json:"grade"`
	RequirementCategory string              `json:"requirement_category"`
	RequirementGroupID  string              `json:"requirement_group_id"`
	Position            int                 `json:"position"`
}

// PlanService handles plan lifecycle use-cases. Every mutation drops the
// plan's cached progress reports before returning.
type PlanService struct {
	repo      planStore
	progress  reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService constructs the plan service.
func NewPlanService(repo planStore, progress reportInvalidator, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, progress: progress, validator: validate, logger: logger}
}

// Get returns a plan with its courses.
func (s *PlanService) Get(ctx context.Context, id string) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	return plan, nil
}

// ListByStudent returns plan headers for one student.
func (s *PlanService) ListByStudent(ctx context.Context, studentID string) ([]models.Plan, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	plans, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return plans, nil
}

// Create registers a new plan.
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan := &models.Plan{
		StudentID:        req.StudentID,
		TargetProgramID:  req.TargetProgramID,
		CurrentProgramID: req.CurrentProgramID,
		Name:             req.Name,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	return plan, nil
}

// Update modifies a plan header. Switching the target program changes the
// requirement set, so cached reports are dropped.
func (s *PlanService) Update(ctx context.Context, id string, req UpdatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.TargetProgramID = req.TargetProgramID
	plan.CurrentProgramID = req.CurrentProgramID
	plan.Name = req.Name
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan")
	}
	s.invalidate(ctx, id)
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	s.invalidate(ctx, id)
	return nil
}

// AddCourse appends a course to a plan.
func (s *PlanService) AddCourse(ctx context.Context, planID string, req PlanCourseRequest) (*models.PlanCourse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, err
	}
	course := s.applyCourseRequest(&models.PlanCourse{PlanID: planID}, req)
	if err := s.repo.AddCourse(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add course")
	}
	s.touchAndInvalidate(ctx, planID)
	return course, nil
}

// UpdateCourse modifies an existing plan course.
func (s *PlanService) UpdateCourse(ctx context.Context, planID, courseID string, req PlanCourseRequest) (*models.PlanCourse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	var existing *models.PlanCourse
	for i := range plan.Courses {
		if plan.Courses[i].ID == courseID {
			existing = &plan.Courses[i]
			break
		}
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "plan course not found")
	}
	course := s.applyCourseRequest(existing, req)
	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.touchAndInvalidate(ctx, planID)
	return course, nil
}

// RemoveCourse deletes a course from a plan.
func (s *PlanService) RemoveCourse(ctx context.Context, planID, courseID string) error {
	if _, err := s.Get(ctx, planID); err != nil {
		return err
	}
	if err := s.repo.RemoveCourse(ctx, planID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove course")
	}
	s.touchAndInvalidate(ctx, planID)
	return nil
}

func (s *PlanService) applyCourseRequest(course *models.PlanCourse, req PlanCourseRequest) *models.PlanCourse {
	course.CourseCode = req.CourseCode
	course.Institution = req.Institution
	course.Status = req.Status
	course.Semester = req.Semester
	course.Year = req.Year
	course.Credits = req.Credits
	course.Grade = req.Grade
	course.RequirementCategory = req.RequirementCategory
	course.RequirementGroupID = req.RequirementGroupID
	course.Position = req.Position
	return course
}

func (s *PlanService) touchAndInvalidate(ctx context.Context, planID string) {
	if err := s.repo.TouchPlan(ctx, planID); err != nil {
		s.logger.Warn("plan touch failed", zap.String("plan_id", planID), zap.Error(err))
	}
	s.invalidate(ctx, planID)
}

func (s *PlanService) invalidate(ctx context.Context, planID string) {
	if s.progress != nil {
		s.progress.Invalidate(ctx, planID)
	}
}
