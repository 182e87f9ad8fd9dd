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

func TestCourseRepositoryFindByRefs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE (UPPER(code), UPPER(institution)) IN")).
		WithArgs("MATH 2413", "Community College", "BIO 1010", "State University").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "institution", "title", "subject", "level", "credits", "has_lab", "course_type", "created_at", "updated_at"}).
			AddRow("c-1", "MATH 2413", "Community College", "Calculus I", "MATH", 2000, 4.0, false, "", time.Now(), time.Now()))

	catalog, err := repo.FindByRefs(context.Background(), []models.CourseRef{
		{Code: "MATH 2413", Institution: "Community College"},
		{Code: "BIO 1010", Institution: "State University"},
	})
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	key := models.CourseRef{Code: "MATH 2413", Institution: "Community College"}.Key()
	require.Equal(t, "Calculus I", catalog[key].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByRefsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	catalog, err := repo.FindByRefs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, catalog)
}

func TestEquivalencyRepositoryListTouching(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquivalencyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM equivalencies")).
		WithArgs("BIOL 101", "Community College").
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_code", "source_institution", "target_code", "target_institution", "type", "notes", "created_at"}).
			AddRow("eq-1", "BIOL 101", "Community College", "BIO 1010", "State University", "direct", "", time.Now()))

	rows, err := repo.ListTouching(context.Background(), []models.CourseRef{
		{Code: "BIOL 101", Institution: "Community College"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.EquivalencyDirect, rows[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEquivalencyRepositoryListTouchingEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquivalencyRepository(db)

	rows, err := repo.ListTouching(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, rows)
}
