package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProgramRepositoryGetCurrentSet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_sets WHERE program_id = $1 AND is_current = true")).
		WithArgs("prog-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "semester", "year", "is_current", "created_at"}).
			AddRow("rs-1", "prog-1", "Fall", 2025, true, time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirements WHERE requirement_set_id = $1 ORDER BY position ASC")).
		WithArgs("rs-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requirement_set_id", "name", "type", "credit_goal", "description", "position"}).
			AddRow("req-core", "rs-1", "Core", "grouped", 0.0, "", 1).
			AddRow("req-elec", "rs-1", "Electives", "simple", 15.0, "", 2))

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_groups WHERE requirement_id IN")).
		WithArgs("req-core", "req-elec").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requirement_id", "name", "position"}).
			AddRow("grp-theory", "req-core", "Theory", 1))

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_course_options WHERE group_id IN")).
		WithArgs("grp-theory").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "course_code", "institution", "is_preferred", "notes"}).
			AddRow("opt-1", "grp-theory", "CS 2305", "State University", true, ""))

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_constraints WHERE group_id IN")).
		WithArgs("grp-theory").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "type", "min_value", "max_value", "level", "tag_key", "tag_value", "subjects"}).
			AddRow("con-1", "grp-theory", "courses", 2.0, nil, nil, "", "", "CS, MATH"))

	set, err := repo.GetCurrentSet(context.Background(), "prog-1")
	require.NoError(t, err)
	require.Len(t, set.Requirements, 2)
	require.Len(t, set.Requirements[0].Groups, 1)

	group := set.Requirements[0].Groups[0]
	require.Len(t, group.Options, 1)
	require.Len(t, group.Constraints, 1)
	require.Equal(t, []string{"CS", "MATH"}, group.Constraints[0].Subjects)
	require.Empty(t, set.Requirements[1].Groups)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryGetCurrentSetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_sets WHERE program_id = $1 AND is_current = true")).
		WithArgs("prog-x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "semester", "year", "is_current", "created_at"}))

	_, err := repo.GetCurrentSet(context.Background(), "prog-x")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryGetCurrentSetDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_sets WHERE program_id = $1 AND is_current = true")).
		WithArgs("prog-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "semester", "year", "is_current", "created_at"}).
			AddRow("rs-1", "prog-1", "Fall", 2024, true, time.Now()).
			AddRow("rs-2", "prog-1", "Fall", 2025, true, time.Now()))

	_, err := repo.GetCurrentSet(context.Background(), "prog-1")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateCurrentSet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryGetSetByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_sets WHERE program_id = $1 AND semester = $2 AND year = $3")).
		WithArgs("prog-1", "Fall", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "semester", "year", "is_current", "created_at"}).
			AddRow("rs-1", "prog-1", "Fall", 2024, false, time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirements WHERE requirement_set_id = $1 ORDER BY position ASC")).
		WithArgs("rs-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requirement_set_id", "name", "type", "credit_goal", "description", "position"}))

	set, err := repo.GetSetByTerm(context.Background(), "prog-1", "Fall", 2024)
	require.NoError(t, err)
	require.Equal(t, "rs-1", set.ID)
	require.False(t, set.IsCurrent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryListSets(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requirement_sets WHERE program_id = $1 ORDER BY year DESC, semester DESC")).
		WithArgs("prog-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "semester", "year", "is_current", "created_at"}).
			AddRow("rs-2", "prog-1", "Fall", 2025, true, time.Now()).
			AddRow("rs-1", "prog-1", "Fall", 2024, false, time.Now()))

	sets, err := repo.ListSets(context.Background(), "prog-1")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	require.True(t, sets[0].IsCurrent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitSubjects(t *testing.T) {
	require.Nil(t, splitSubjects(""))
	require.Equal(t, []string{"CS"}, splitSubjects("CS"))
	require.Equal(t, []string{"CS", "MATH"}, splitSubjects(" CS , MATH ,"))
}
