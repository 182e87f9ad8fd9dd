package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/transferpath/degree-audit-api/internal/models"
)

func TestPlanRepositoryFindByIDLoadsCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "target_program_id", "current_program_id", "name", "created_at", "updated_at"}).
			AddRow("plan-1", "stu-1", "prog-1", "", "Transfer Plan", time.Now(), time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("FROM plan_courses WHERE plan_id = $1 ORDER BY position ASC, created_at ASC")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "course_code", "institution", "status", "semester", "year", "credits", "grade", "requirement_category", "requirement_group_id", "position", "created_at", "updated_at"}).
			AddRow("pc-1", "plan-1", "MATH 2413", "Community College", "completed", "Fall", 2024, 4.0, "A", "", "", 1, time.Now(), time.Now()).
			AddRow("pc-2", "plan-1", "CS 2305", "State University", "planned", "", 0, 3.0, "", "Core", "grp-theory", 2, time.Now(), time.Now()))

	plan, err := repo.FindByID(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Len(t, plan.Courses, 2)
	require.Equal(t, models.CourseStatusCompleted, plan.Courses[0].Status)
	require.Equal(t, "grp-theory", plan.Courses[1].RequirementGroupID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryListCoursesByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plan_courses WHERE plan_id = $1 AND status = $2 ORDER BY position ASC, created_at ASC")).
		WithArgs("plan-1", models.CourseStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "course_code", "institution", "status", "semester", "year", "credits", "grade", "requirement_category", "requirement_group_id", "position", "created_at", "updated_at"}).
			AddRow("pc-1", "plan-1", "MATH 2413", "Community College", "completed", "Fall", 2024, 4.0, "A", "", "", 1, time.Now(), time.Now()))

	courses, err := repo.ListCourses(context.Background(), models.PlanCourseFilter{PlanID: "plan-1", Status: models.CourseStatusCompleted})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "prog-1", "", "Transfer Plan", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	plan := &models.Plan{StudentID: "stu-1", TargetProgramID: "prog-1", Name: "Transfer Plan"}
	require.NoError(t, repo.Create(context.Background(), plan))
	require.NotEmpty(t, plan.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryAddAndRemoveCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plan_courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.PlanCourse{PlanID: "plan-1", CourseCode: "BIOL 101", Institution: "Community College", Status: models.CourseStatusPlanned, Credits: 4}
	require.NoError(t, repo.AddCourse(context.Background(), course))
	require.NotEmpty(t, course.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plan_courses WHERE id = $1 AND plan_id = $2")).
		WithArgs(course.ID, "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RemoveCourse(context.Background(), "plan-1", course.ID))
	require.NoError(t, mock.ExpectationsWereMet())
}
