package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// AllocatedCourse is a plan course placed into a bucket, with the
// effective values evaluation needs already resolved.
type AllocatedCourse struct {
	PlanCourse models.PlanCourse
	// Catalog is nil when the reference is absent from the snapshot; the
	// course then contributes its plan credits and parsed code values only.
	Catalog    *models.Course
	Confidence models.EquivalencyType
	Subject    string
	Level      int
	Credits    float64
}

// ConstraintResult reports one constraint evaluation with a reason string
// suitable for audit output.
type ConstraintResult struct {
	Type        models.ConstraintType `json:"type"`
	Passed      bool                  `json:"passed"`
	Reason      string                `json:"reason"`
	ConfigError bool                  `json:"config_error,omitempty"`
}

// Constraint is one compiled group rule. Evaluation is a pure function of
// the allocated courses; it performs no I/O and never panics.
type Constraint interface {
	Kind() models.ConstraintType
	Evaluate(courses []AllocatedCourse) ConstraintResult
}

// CompileConstraints converts stored constraint rows into typed variants.
// Rows whose subject scope cannot intersect the group's own options, and
// rows of unknown type, compile into a constraint that always fails with a
// configuration-error reason rather than an error: misconfiguration must
// degrade, not crash.
func CompileConstraints(group models.Group) []Constraint {
	compiled := make([]Constraint, 0, len(group.Constraints))
	for _, row := range group.Constraints {
		scope := normalizeScope(row.Subjects)
		if len(scope) > 0 && !scopeIntersectsOptions(scope, group.Options) {
			compiled = append(compiled, misconfigured{
				kind:   row.Type,
				reason: fmt.Sprintf("configuration error: subject scope [%s] matches none of the group's course options", strings.Join(row.Subjects, ", ")),
			})
			continue
		}
		switch row.Type {
		case models.ConstraintCredits:
			compiled = append(compiled, creditRange{min: row.MinValue, max: row.MaxValue, scope: scope})
		case models.ConstraintCourses:
			compiled = append(compiled, courseCount{min: row.MinValue, max: row.MaxValue, scope: scope})
		case models.ConstraintMinCoursesAtLevel:
			level := 0
			if row.Level != nil {
				level = *row.Level
			}
			min := 1.0
			if row.MinValue != nil {
				min = *row.MinValue
			}
			compiled = append(compiled, minCoursesAtLevel{level: level, min: int(min), scope: scope})
		case models.ConstraintMinTagCourses:
			min := 1.0
			if row.MinValue != nil {
				min = *row.MinValue
			}
			compiled = append(compiled, minTagCourses{key: row.TagKey, value: row.TagValue, min: int(min), scope: scope})
		case models.ConstraintMaxTagCredits:
			max := 0.0
			if row.MaxValue != nil {
				max = *row.MaxValue
			}
			compiled = append(compiled, maxTagCredits{key: row.TagKey, value: row.TagValue, max: max, scope: scope})
		default:
			compiled = append(compiled, misconfigured{
				kind:   row.Type,
				reason: fmt.Sprintf("configuration error: unknown constraint type %q", row.Type),
			})
		}
	}
	return compiled
}

type misconfigured struct {
	kind   models.ConstraintType
	reason string
}

func (c misconfigured) Kind() models.ConstraintType { return c.kind }

func (c misconfigured) Evaluate([]AllocatedCourse) ConstraintResult {
	return ConstraintResult{Type: c.kind, Passed: false, Reason: c.reason, ConfigError: true}
}

type creditRange struct {
	min, max *float64
	scope    []string
}

func (c creditRange) Kind() models.ConstraintType { return models.ConstraintCredits }

func (c creditRange) Evaluate(courses []AllocatedCourse) ConstraintResult {
	total := 0.0
	for _, course := range inScope(courses, c.scope) {
		total += course.Credits
	}
	if c.min != nil && total < *c.min {
		return failf(models.ConstraintCredits, "requires at least %s credits%s, have %s", trimFloat(*c.min), scopeSuffix(c.scope), trimFloat(total))
	}
	if c.max != nil && total > *c.max {
		return failf(models.ConstraintCredits, "allows at most %s credits%s, have %s", trimFloat(*c.max), scopeSuffix(c.scope), trimFloat(total))
	}
	return passf(models.ConstraintCredits, "%s credits%s within bounds", trimFloat(total), scopeSuffix(c.scope))
}

type courseCount struct {
	min, max *float64
	scope    []string
}

func (c courseCount) Kind() models.ConstraintType { return models.ConstraintCourses }

func (c courseCount) Evaluate(courses []AllocatedCourse) ConstraintResult {
	count := len(inScope(courses, c.scope))
	if c.min != nil && float64(count) < *c.min {
		return failf(models.ConstraintCourses, "requires at least %d courses%s, have %d", int(*c.min), scopeSuffix(c.scope), count)
	}
	if c.max != nil && float64(count) > *c.max {
		return failf(models.ConstraintCourses, "allows at most %d courses%s, have %d", int(*c.max), scopeSuffix(c.scope), count)
	}
	return passf(models.ConstraintCourses, "%d courses%s within bounds", count, scopeSuffix(c.scope))
}

type minCoursesAtLevel struct {
	level int
	min   int
	scope []string
}

func (c minCoursesAtLevel) Kind() models.ConstraintType { return models.ConstraintMinCoursesAtLevel }

func (c minCoursesAtLevel) Evaluate(courses []AllocatedCourse) ConstraintResult {
	count := 0
	for _, course := range inScope(courses, c.scope) {
		if course.Level >= c.level {
			count++
		}
	}
	if count < c.min {
		return failf(models.ConstraintMinCoursesAtLevel, "requires at least %d courses at level %d or above%s, have %d", c.min, c.level, scopeSuffix(c.scope), count)
	}
	return passf(models.ConstraintMinCoursesAtLevel, "%d courses at level %d or above%s", count, c.level, scopeSuffix(c.scope))
}

type minTagCourses struct {
	key, value string
	min        int
	scope      []string
}

func (c minTagCourses) Kind() models.ConstraintType { return models.ConstraintMinTagCourses }

func (c minTagCourses) Evaluate(courses []AllocatedCourse) ConstraintResult {
	count := 0
	for _, course := range inScope(courses, c.scope) {
		if course.tagEquals(c.key, c.value) {
			count++
		}
	}
	if count < c.min {
		return failf(models.ConstraintMinTagCourses, "requires at least %d courses with %s=%s%s, have %d", c.min, c.key, c.value, scopeSuffix(c.scope), count)
	}
	return passf(models.ConstraintMinTagCourses, "%d courses with %s=%s%s", count, c.key, c.value, scopeSuffix(c.scope))
}

type maxTagCredits struct {
	key, value string
	max        float64
	scope      []string
}

func (c maxTagCredits) Kind() models.ConstraintType { return models.ConstraintMaxTagCredits }

func (c maxTagCredits) Evaluate(courses []AllocatedCourse) ConstraintResult {
	total := 0.0
	for _, course := range inScope(courses, c.scope) {
		if course.tagEquals(c.key, c.value) {
			total += course.Credits
		}
	}
	if total > c.max {
		return failf(models.ConstraintMaxTagCredits, "allows at most %s credits with %s=%s%s, have %s", trimFloat(c.max), c.key, c.value, scopeSuffix(c.scope), trimFloat(total))
	}
	return passf(models.ConstraintMaxTagCredits, "%s credits with %s=%s%s within bounds", trimFloat(total), c.key, c.value, scopeSuffix(c.scope))
}

func (a AllocatedCourse) tagEquals(key, value string) bool {
	if a.Catalog == nil {
		return false
	}
	return strings.EqualFold(a.Catalog.Tag(key), value)
}

func inScope(courses []AllocatedCourse, scope []string) []AllocatedCourse {
	if len(scope) == 0 {
		return courses
	}
	out := make([]AllocatedCourse, 0, len(courses))
	for _, course := range courses {
		for _, subject := range scope {
			if strings.EqualFold(course.Subject, subject) {
				out = append(out, course)
				break
			}
		}
	}
	return out
}

func scopeIntersectsOptions(scope []string, options []models.CourseOption) bool {
	for _, opt := range options {
		subject := SubjectCode(opt.CourseCode)
		for _, s := range scope {
			if strings.EqualFold(subject, s) {
				return true
			}
		}
	}
	return false
}

func normalizeScope(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scopeSuffix(scope []string) string {
	if len(scope) == 0 {
		return ""
	}
	return " in " + strings.Join(scope, "/")
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func failf(kind models.ConstraintType, format string, args ...interface{}) ConstraintResult {
	return ConstraintResult{Type: kind, Passed: false, Reason: fmt.Sprintf(format, args...)}
}

func passf(kind models.ConstraintType, format string, args ...interface{}) ConstraintResult {
	return ConstraintResult{Type: kind, Passed: true, Reason: fmt.Sprintf(format, args...)}
}
