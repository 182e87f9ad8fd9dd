package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// ProgramRepository loads programs and their requirement definitions.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindByID fetches a program row.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, institution, name, created_at, updated_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// ErrDuplicateCurrentSet reports a program with more than one requirement
// set flagged current. Exactly one current set per program is an invariant
// of the requirement model.
var ErrDuplicateCurrentSet = errors.New("duplicate current requirement sets")

// GetCurrentSet loads the single current requirement set of a program with
// its full requirement tree. sql.ErrNoRows means the program has no
// current set; ErrDuplicateCurrentSet means the model is inconsistent.
func (r *ProgramRepository) GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error) {
	const query = `SELECT id, program_id, semester, year, is_current, created_at
FROM requirement_sets WHERE program_id = $1 AND is_current = true`
	var sets []models.RequirementSet
	if err := r.db.SelectContext(ctx, &sets, query, programID); err != nil {
		return nil, err
	}
	switch {
	case len(sets) == 0:
		return nil, sql.ErrNoRows
	case len(sets) > 1:
		return nil, fmt.Errorf("program %s: %w", programID, ErrDuplicateCurrentSet)
	}
	set := sets[0]
	if err := r.loadRequirements(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetSetByID loads one requirement set with its full tree regardless of
// the current flag. Used for historical audits.
func (r *ProgramRepository) GetSetByID(ctx context.Context, id string) (*models.RequirementSet, error) {
	const query = `SELECT id, program_id, semester, year, is_current, created_at
FROM requirement_sets WHERE id = $1`
	var set models.RequirementSet
	if err := r.db.GetContext(ctx, &set, query, id); err != nil {
		return nil, err
	}
	if err := r.loadRequirements(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetSetByTerm loads the requirement set of a program for one semester and
// year with its full tree. sql.ErrNoRows means no set exists for the term.
func (r *ProgramRepository) GetSetByTerm(ctx context.Context, programID, semester string, year int) (*models.RequirementSet, error) {
	const query = `SELECT id, program_id, semester, year, is_current, created_at
FROM requirement_sets WHERE program_id = $1 AND semester = $2 AND year = $3`
	var set models.RequirementSet
	if err := r.db.GetContext(ctx, &set, query, programID, semester, year); err != nil {
		return nil, err
	}
	if err := r.loadRequirements(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// ListSets returns the set headers of a program, newest first, without
// requirement trees.
func (r *ProgramRepository) ListSets(ctx context.Context, programID string) ([]models.RequirementSet, error) {
	const query = `SELECT id, program_id, semester, year, is_current, created_at
FROM requirement_sets WHERE program_id = $1 ORDER BY year DESC, semester DESC`
	var sets []models.RequirementSet
	if err := r.db.SelectContext(ctx, &sets, query, programID); err != nil {
		return nil, fmt.Errorf("list requirement sets: %w", err)
	}
	return sets, nil
}

func (r *ProgramRepository) loadRequirements(ctx context.Context, set *models.RequirementSet) error {
	const query = `SELECT id, requirement_set_id, name, type, credit_goal, description, position
FROM requirements WHERE requirement_set_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &set.Requirements, query, set.ID); err != nil {
		return fmt.Errorf("load requirements: %w", err)
	}
	if len(set.Requirements) == 0 {
		return nil
	}

	reqIDs := make([]string, 0, len(set.Requirements))
	for _, req := range set.Requirements {
		reqIDs = append(reqIDs, req.ID)
	}

	groups, err := r.loadGroups(ctx, reqIDs)
	if err != nil {
		return err
	}
	for i := range set.Requirements {
		set.Requirements[i].Groups = groups[set.Requirements[i].ID]
	}
	return nil
}

func (r *ProgramRepository) loadGroups(ctx context.Context, reqIDs []string) (map[string][]models.Group, error) {
	query, args, err := sqlx.In(`SELECT id, requirement_id, name, position
FROM requirement_groups WHERE requirement_id IN (?) ORDER BY position ASC`, reqIDs)
	if err != nil {
		return nil, fmt.Errorf("build group query: %w", err)
	}
	var rows []models.Group
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	if len(rows) == 0 {
		return map[string][]models.Group{}, nil
	}

	groupIDs := make([]string, 0, len(rows))
	for _, g := range rows {
		groupIDs = append(groupIDs, g.ID)
	}
	options, err := r.loadOptions(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	constraints, err := r.loadConstraints(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	byRequirement := make(map[string][]models.Group, len(reqIDs))
	for _, g := range rows {
		g.Options = options[g.ID]
		g.Constraints = constraints[g.ID]
		byRequirement[g.RequirementID] = append(byRequirement[g.RequirementID], g)
	}
	return byRequirement, nil
}

func (r *ProgramRepository) loadOptions(ctx context.Context, groupIDs []string) (map[string][]models.CourseOption, error) {
	query, args, err := sqlx.In(`SELECT id, group_id, course_code, institution, is_preferred, notes
FROM group_course_options WHERE group_id IN (?) ORDER BY is_preferred DESC, course_code ASC`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("build option query: %w", err)
	}
	var rows []models.CourseOption
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load course options: %w", err)
	}
	byGroup := make(map[string][]models.CourseOption)
	for _, opt := range rows {
		byGroup[opt.GroupID] = append(byGroup[opt.GroupID], opt)
	}
	return byGroup, nil
}

func (r *ProgramRepository) loadConstraints(ctx context.Context, groupIDs []string) (map[string][]models.Constraint, error) {
	query, args, err := sqlx.In(`SELECT id, group_id, type, min_value, max_value, level, tag_key, tag_value, subjects
FROM group_constraints WHERE group_id IN (?) ORDER BY id ASC`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("build constraint query: %w", err)
	}
	var rows []models.Constraint
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	byGroup := make(map[string][]models.Constraint)
	for _, c := range rows {
		c.Subjects = splitSubjects(c.SubjectsCSV)
		byGroup[c.GroupID] = append(byGroup[c.GroupID], c)
	}
	return byGroup, nil
}

func splitSubjects(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsNotFound reports whether the error is the driver's empty-result
// sentinel.
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
