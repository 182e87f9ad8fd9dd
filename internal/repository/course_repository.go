package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// CourseRepository reads the shared course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, code, institution, title, subject, level, credits, has_lab, course_type, created_at, updated_at"

// FindByRef fetches one catalog entry by its cross-institution reference.
func (r *CourseRepository) FindByRef(ctx context.Context, ref models.CourseRef) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE UPPER(code) = UPPER($1) AND UPPER(institution) = UPPER($2)`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, ref.Code, ref.Institution); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByRefs bulk-loads catalog entries for the given references and
// returns them keyed by CourseRef.Key(). Missing references are simply
// absent from the map.
func (r *CourseRepository) FindByRefs(ctx context.Context, refs []models.CourseRef) (map[string]models.Course, error) {
	out := make(map[string]models.Course, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	tuples := make([]string, 0, len(refs))
	args := make([]interface{}, 0, len(refs)*2)
	for i, ref := range refs {
		tuples = append(tuples, fmt.Sprintf("(UPPER($%d), UPPER($%d))", i*2+1, i*2+2))
		args = append(args, ref.Code, ref.Institution)
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE (UPPER(code), UPPER(institution)) IN (%s)`,
		courseColumns, strings.Join(tuples, ", "))
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	for _, c := range courses {
		out[c.Ref().Key()] = c
	}
	return out, nil
}

// ListByInstitution returns the catalog of one institution, optionally
// narrowed to a subject prefix.
func (r *CourseRepository) ListByInstitution(ctx context.Context, institution, subject string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE UPPER(institution) = UPPER($1)`, courseColumns)
	args := []interface{}{institution}
	if subject != "" {
		query += " AND UPPER(subject) = UPPER($2)"
		args = append(args, subject)
	}
	query += " ORDER BY code ASC"

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
