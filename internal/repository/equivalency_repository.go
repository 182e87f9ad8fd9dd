package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// EquivalencyRepository reads and writes cross-institution transfer
// relations.
type EquivalencyRepository struct {
	db *sqlx.DB
}

// NewEquivalencyRepository constructs an EquivalencyRepository.
func NewEquivalencyRepository(db *sqlx.DB) *EquivalencyRepository {
	return &EquivalencyRepository{db: db}
}

const equivalencyColumns = "id, source_code, source_institution, target_code, target_institution, type, notes, created_at"

// ListTouching returns every relation whose source or target matches one
// of the given references. The resolver walks relations in both
// directions, so one query covers both roles.
func (r *EquivalencyRepository) ListTouching(ctx context.Context, refs []models.CourseRef) ([]models.Equivalency, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	tuples := make([]string, 0, len(refs))
	args := make([]interface{}, 0, len(refs)*2)
	for i, ref := range refs {
		tuples = append(tuples, fmt.Sprintf("(UPPER($%d), UPPER($%d))", i*2+1, i*2+2))
		args = append(args, ref.Code, ref.Institution)
	}
	in := strings.Join(tuples, ", ")

	query := fmt.Sprintf(`SELECT %s FROM equivalencies
WHERE (UPPER(source_code), UPPER(source_institution)) IN (%s)
   OR (UPPER(target_code), UPPER(target_institution)) IN (%s)`, equivalencyColumns, in, in)

	var rows []models.Equivalency
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list equivalencies: %w", err)
	}
	return rows, nil
}

// ListByInstitutions returns relations linking the two institutions in
// either direction.
func (r *EquivalencyRepository) ListByInstitutions(ctx context.Context, a, b string) ([]models.Equivalency, error) {
	query := fmt.Sprintf(`SELECT %s FROM equivalencies
WHERE (UPPER(source_institution) = UPPER($1) AND UPPER(target_institution) = UPPER($2))
   OR (UPPER(source_institution) = UPPER($2) AND UPPER(target_institution) = UPPER($1))
ORDER BY source_code ASC`, equivalencyColumns)

	var rows []models.Equivalency
	if err := r.db.SelectContext(ctx, &rows, query, a, b); err != nil {
		return nil, fmt.Errorf("list equivalencies by institution: %w", err)
	}
	return rows, nil
}

// Create inserts a new relation row.
func (r *EquivalencyRepository) Create(ctx context.Context, eq *models.Equivalency) error {
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	if eq.CreatedAt.IsZero() {
		eq.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO equivalencies (id, source_code, source_institution, target_code, target_institution, type, notes, created_at)
VALUES (:id, :source_code, :source_institution, :target_code, :target_institution, :type, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, eq); err != nil {
		return fmt.Errorf("create equivalency: %w", err)
	}
	return nil
}

// Delete removes a relation row.
func (r *EquivalencyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM equivalencies WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete equivalency: %w", err)
	}
	return nil
}
