package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type planStoreMock struct {
	plans map[string]*models.Plan
	seq   int
}

func newPlanStoreMock() *planStoreMock {
	return &planStoreMock{plans: make(map[string]*models.Plan)}
}

func (m *planStoreMock) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *plan
	copied.Courses = append([]models.PlanCourse(nil), plan.Courses...)
	return &copied, nil
}

func (m *planStoreMock) ListByStudent(ctx context.Context, studentID string) ([]models.Plan, error) {
	var out []models.Plan
	for _, plan := range m.plans {
		if plan.StudentID == studentID {
			out = append(out, *plan)
		}
	}
	return out, nil
}

func (m *planStoreMock) Create(ctx context.Context, plan *models.Plan) error {
	m.seq++
	if plan.ID == "" {
		plan.ID = fmt.Sprintf("plan-%d", m.seq)
	}
	copied := *plan
	m.plans[plan.ID] = &copied
	return nil
}

func (m *planStoreMock) Update(ctx context.Context, plan *models.Plan) error {
	stored, ok := m.plans[plan.ID]
	if !ok {
		return sql.ErrNoRows
	}
	courses := stored.Courses
	*stored = *plan
	stored.Courses = courses
	return nil
}

func (m *planStoreMock) Delete(ctx context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

func (m *planStoreMock) ListCourses(ctx context.Context, filter models.PlanCourseFilter) ([]models.PlanCourse, error) {
	plan, ok := m.plans[filter.PlanID]
	if !ok {
		return nil, nil
	}
	return append([]models.PlanCourse(nil), plan.Courses...), nil
}

func (m *planStoreMock) AddCourse(ctx context.Context, course *models.PlanCourse) error {
	plan, ok := m.plans[course.PlanID]
	if !ok {
		return sql.ErrNoRows
	}
	m.seq++
	if course.ID == "" {
		course.ID = fmt.Sprintf("pc-%d", m.seq)
	}
	plan.Courses = append(plan.Courses, *course)
	return nil
}

func (m *planStoreMock) UpdateCourse(ctx context.Context, course *models.PlanCourse) error {
	plan, ok := m.plans[course.PlanID]
	if !ok {
		return sql.ErrNoRows
	}
	for i := range plan.Courses {
		if plan.Courses[i].ID == course.ID {
			plan.Courses[i] = *course
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *planStoreMock) RemoveCourse(ctx context.Context, planID, courseID string) error {
	plan, ok := m.plans[planID]
	if !ok {
		return sql.ErrNoRows
	}
	for i := range plan.Courses {
		if plan.Courses[i].ID == courseID {
			plan.Courses = append(plan.Courses[:i], plan.Courses[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *planStoreMock) TouchPlan(ctx context.Context, planID string) error {
	return nil
}

type invalidatorMock struct {
	calls []string
}

func (m *invalidatorMock) Invalidate(ctx context.Context, planID string) {
	m.calls = append(m.calls, planID)
}

func newPlanServiceForTest(t *testing.T) (*PlanService, *planStoreMock, *invalidatorMock) {
	t.Helper()
	store := newPlanStoreMock()
	invalidator := &invalidatorMock{}
	svc := NewPlanService(store, invalidator, nil, zap.NewNop())
	return svc, store, invalidator
}

func validCourseRequest() PlanCourseRequest {
	return PlanCourseRequest{
		CourseCode:  "MATH 2413",
		Institution: "Community College",
		Status:      models.CourseStatusCompleted,
		Credits:     4,
	}
}

func TestPlanServiceCreateAndGet(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Name:            "Transfer Fall 2026",
	})
	require.NoError(t, err)
	require.NotEmpty(t, plan.ID)

	loaded, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Transfer Fall 2026", loaded.Name)
}

func TestPlanServiceCreateValidation(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	_, err := svc.Create(context.Background(), CreatePlanRequest{StudentID: "student-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPlanServiceGetNotFound(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlanServiceUpdateInvalidates(t *testing.T) {
	svc, _, invalidator := newPlanServiceForTest(t)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Name:            "Draft",
	})
	require.NoError(t, err)
	require.Empty(t, invalidator.calls)

	updated, err := svc.Update(context.Background(), plan.ID, UpdatePlanRequest{
		TargetProgramID: "prog-2",
		Name:            "Final",
	})
	require.NoError(t, err)
	assert.Equal(t, "prog-2", updated.TargetProgramID)
	assert.Equal(t, []string{plan.ID}, invalidator.calls)
}

func TestPlanServiceCourseLifecycle(t *testing.T) {
	svc, _, invalidator := newPlanServiceForTest(t)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Name:            "Transfer",
	})
	require.NoError(t, err)

	course, err := svc.AddCourse(context.Background(), plan.ID, validCourseRequest())
	require.NoError(t, err)
	require.NotEmpty(t, course.ID)
	assert.Len(t, invalidator.calls, 1)

	req := validCourseRequest()
	req.Status = models.CourseStatusInProgress
	req.Grade = "B"
	updated, err := svc.UpdateCourse(context.Background(), plan.ID, course.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusInProgress, updated.Status)
	assert.Len(t, invalidator.calls, 2)

	require.NoError(t, svc.RemoveCourse(context.Background(), plan.ID, course.ID))
	assert.Len(t, invalidator.calls, 3)

	loaded, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Courses)
}

func TestPlanServiceUpdateCourseNotFound(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Name:            "Transfer",
	})
	require.NoError(t, err)

	_, err = svc.UpdateCourse(context.Background(), plan.ID, "missing", validCourseRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlanServiceAddCourseValidation(t *testing.T) {
	svc, _, _ := newPlanServiceForTest(t)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Name:            "Transfer",
	})
	require.NoError(t, err)

	req := validCourseRequest()
	req.Status = "withdrawn"
	_, err = svc.AddCourse(context.Background(), plan.ID, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
