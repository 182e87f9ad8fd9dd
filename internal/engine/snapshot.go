package engine

import (
	"errors"
	"fmt"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// ErrInvalidModel marks requirement-model invariant violations detected at
// snapshot construction. These are data-layer programming errors; the
// taxonomy anomalies of normal operation (unmatched courses, missing
// catalog rows, misconfigured constraints) never produce it.
var ErrInvalidModel = errors.New("invalid requirement model")

// DefaultCourseCredits is the nominal credit value used to derive a
// group's credit requirement when its constraints state none.
const DefaultCourseCredits = 3.0

// Snapshot is the immutable input to one progress computation. The engine
// never mutates it; callers may reuse it across concurrent invocations.
type Snapshot struct {
	RequirementSet models.RequirementSet
	Plan           models.Plan
	// Catalog maps CourseRef keys to catalog rows. Missing references
	// contribute zero and raise a warning rather than an error.
	Catalog       map[string]models.Course
	Equivalencies []models.Equivalency
	// CourseCreditDefault overrides DefaultCourseCredits when positive.
	CourseCreditDefault float64
	KeywordTable        KeywordTable
}

// NewSnapshot validates the requirement model and returns a snapshot
// ready for allocation. Validation fails fast with a single explicit
// error before any allocation runs.
func NewSnapshot(set models.RequirementSet, plan models.Plan, catalog map[string]models.Course, equivalencies []models.Equivalency) (*Snapshot, error) {
	for _, req := range set.Requirements {
		switch req.Type {
		case models.RequirementSimple:
			if len(req.Groups) > 0 {
				return nil, fmt.Errorf("%w: simple requirement %q carries %d groups", ErrInvalidModel, req.Name, len(req.Groups))
			}
			if req.CreditGoal < 0 {
				return nil, fmt.Errorf("%w: requirement %q has negative credit goal", ErrInvalidModel, req.Name)
			}
		case models.RequirementGrouped:
			if len(req.Groups) == 0 {
				return nil, fmt.Errorf("%w: grouped requirement %q has zero groups", ErrInvalidModel, req.Name)
			}
		default:
			return nil, fmt.Errorf("%w: requirement %q has unknown type %q", ErrInvalidModel, req.Name, req.Type)
		}
	}
	if catalog == nil {
		catalog = map[string]models.Course{}
	}
	return &Snapshot{
		RequirementSet: set,
		Plan:           plan,
		Catalog:        catalog,
		Equivalencies:  equivalencies,
		KeywordTable:   DefaultKeywordTable,
	}, nil
}

func (s *Snapshot) creditDefault() float64 {
	if s.CourseCreditDefault > 0 {
		return s.CourseCreditDefault
	}
	return DefaultCourseCredits
}

// lookup resolves the catalog row for a plan course, or nil when missing.
func (s *Snapshot) lookup(pc models.PlanCourse) *models.Course {
	ref := models.CourseRef{Code: pc.CourseCode, Institution: pc.Institution}
	if course, ok := s.Catalog[ref.Key()]; ok {
		return &course
	}
	return nil
}
