package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// PlanRepository manages persistence for student plans and their courses.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs a PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindByID fetches a plan with its courses ordered by position.
func (r *PlanRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	const query = `SELECT id, student_id, target_program_id, current_program_id, name, created_at, updated_at
FROM plans WHERE id = $1`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	courses, err := r.ListCourses(ctx, models.PlanCourseFilter{PlanID: id})
	if err != nil {
		return nil, err
	}
	plan.Courses = courses
	return &plan, nil
}

// ListByStudent returns plan headers for one student, newest first.
func (r *PlanRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Plan, error) {
	const query = `SELECT id, student_id, target_program_id, current_program_id, name, created_at, updated_at
FROM plans WHERE student_id = $1 ORDER BY created_at DESC`
	var plans []models.Plan
	if err := r.db.SelectContext(ctx, &plans, query, studentID); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Create inserts a new plan row.
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	const query = `INSERT INTO plans (id, student_id, target_program_id, current_program_id, name, created_at, updated_at)
VALUES (:id, :student_id, :target_program_id, :current_program_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// Update modifies a plan's mutable header fields.
func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE plans SET target_program_id = :target_program_id, current_program_id = :current_program_id, name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Delete removes a plan and cascades to its courses.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM plans WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// ListCourses returns plan courses matching the filter, ordered by
// position then creation time.
func (r *PlanRepository) ListCourses(ctx context.Context, filter models.PlanCourseFilter) ([]models.PlanCourse, error) {
	query := `SELECT id, plan_id, course_code, institution, status, semester, year, credits, grade, requirement_category, requirement_group_id, position, created_at, updated_at
FROM plan_courses WHERE plan_id = $1`
	args := []interface{}{filter.PlanID}
	if filter.Status != "" {
		query += " AND status = $2"
		args = append(args, filter.Status)
	}
	query += " ORDER BY position ASC, created_at ASC"

	var courses []models.PlanCourse
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list plan courses: %w", err)
	}
	return courses, nil
}

// AddCourse inserts a course row into a plan.
func (r *PlanRepository) AddCourse(ctx context.Context, course *models.PlanCourse) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO plan_courses (id, plan_id, course_code, institution, status, semester, year, credits, grade, requirement_category, requirement_group_id, position, created_at, updated_at)
VALUES (:id, :plan_id, :course_code, :institution, :status, :semester, :year, :credits, :grade, :requirement_category, :requirement_group_id, :position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("add plan course: %w", err)
	}
	return nil
}

// UpdateCourse modifies an existing plan course.
func (r *PlanRepository) UpdateCourse(ctx context.Context, course *models.PlanCourse) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE plan_courses SET course_code = :course_code, institution = :institution, status = :status, semester = :semester, year = :year, credits = :credits, grade = :grade, requirement_category = :requirement_category, requirement_group_id = :requirement_group_id, position = :position, updated_at = :updated_at
WHERE id = :id AND plan_id = :plan_id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update plan course: %w", err)
	}
	return nil
}

// RemoveCourse deletes one course row from a plan.
func (r *PlanRepository) RemoveCourse(ctx context.Context, planID, courseID string) error {
	const query = `DELETE FROM plan_courses WHERE id = $1 AND plan_id = $2`
	if _, err := r.db.ExecContext(ctx, query, courseID, planID); err != nil {
		return fmt.Errorf("remove plan course: %w", err)
	}
	return nil
}

// TouchPlan bumps the plan's updated_at after course mutations.
func (r *PlanRepository) TouchPlan(ctx context.Context, planID string) error {
	const query = `UPDATE plans SET updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, planID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch plan: %w", err)
	}
	return nil
}
