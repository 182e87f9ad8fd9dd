package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferpath/degree-audit-api/internal/models"
)

func allocated(code string, credits float64, level int, hasLab bool) AllocatedCourse {
	parsed := ParseCourseCode(code)
	return AllocatedCourse{
		PlanCourse: models.PlanCourse{CourseCode: code, Status: models.CourseStatusCompleted, Credits: credits},
		Catalog: &models.Course{
			Code:    code,
			Subject: parsed.Subject,
			Level:   level,
			Credits: credits,
			HasLab:  hasLab,
		},
		Confidence: models.EquivalencyDirect,
		Subject:    parsed.Subject,
		Level:      level,
		Credits:    credits,
	}
}

func compileOne(t *testing.T, group models.Group) Constraint {
	t.Helper()
	compiled := CompileConstraints(group)
	require.Len(t, compiled, 1)
	return compiled[0]
}

func TestCreditConstraintBounds(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintCredits, MinValue: fptr(6), MaxValue: fptr(9)},
	}}
	c := compileOne(t, group)

	under := c.Evaluate([]AllocatedCourse{allocated("MATH 2413", 4, 2000, false)})
	assert.False(t, under.Passed)
	assert.Contains(t, under.Reason, "at least 6 credits")
	assert.Contains(t, under.Reason, "have 4")

	within := c.Evaluate([]AllocatedCourse{
		allocated("MATH 2413", 4, 2000, false),
		allocated("MATH 2414", 4, 2000, false),
	})
	assert.True(t, within.Passed)

	over := c.Evaluate([]AllocatedCourse{
		allocated("MATH 2413", 4, 2000, false),
		allocated("MATH 2414", 4, 2000, false),
		allocated("MATH 3351", 3, 3000, false),
	})
	assert.False(t, over.Passed)
	assert.Contains(t, over.Reason, "at most 9 credits")
}

func TestCreditConstraintMissingBoundIsUnlimited(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintCredits, MinValue: fptr(3)},
	}}
	c := compileOne(t, group)

	result := c.Evaluate([]AllocatedCourse{
		allocated("MATH 2413", 4, 2000, false),
		allocated("MATH 2414", 4, 2000, false),
		allocated("MATH 3351", 30, 3000, false),
	})
	assert.True(t, result.Passed)
}

func TestCourseCountConstraint(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintCourses, MinValue: fptr(2)},
	}}
	c := compileOne(t, group)

	short := c.Evaluate([]AllocatedCourse{allocated("CS 2305", 3, 2000, false)})
	assert.False(t, short.Passed)
	assert.Contains(t, short.Reason, "at least 2 courses")
	assert.Contains(t, short.Reason, "have 1")

	enough := c.Evaluate([]AllocatedCourse{
		allocated("CS 2305", 3, 2000, false),
		allocated("CS 3305", 3, 3000, false),
	})
	assert.True(t, enough.Passed)
}

func TestMinCoursesAtLevel(t *testing.T) {
	// Scenario C: needs 3 courses at level 4000+, only 2 qualify.
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintMinCoursesAtLevel, Level: iptr(4000), MinValue: fptr(3)},
	}}
	c := compileOne(t, group)

	result := c.Evaluate([]AllocatedCourse{
		allocated("CS 4341", 3, 4000, false),
		allocated("CS 4396", 3, 4000, false),
		allocated("CS 3340", 3, 3000, false),
	})
	assert.False(t, result.Passed)
	assert.Contains(t, result.Reason, "at least 3 courses at level 4000")
	assert.Contains(t, result.Reason, "have 2")
}

func TestMinTagCourses(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintMinTagCourses, TagKey: "has_lab", TagValue: "true", MinValue: fptr(1)},
	}}
	c := compileOne(t, group)

	missing := c.Evaluate([]AllocatedCourse{allocated("BIO 1010", 3, 1000, false)})
	assert.False(t, missing.Passed)

	present := c.Evaluate([]AllocatedCourse{allocated("BIO 1010", 4, 1000, true)})
	assert.True(t, present.Passed)
}

func TestMaxTagCredits(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintMaxTagCredits, TagKey: "course_type", TagValue: "research", MaxValue: fptr(6)},
	}}
	c := compileOne(t, group)

	research := allocated("BIO 4199", 4, 4000, false)
	research.Catalog.CourseType = "research"
	other := allocated("BIO 3320", 3, 3000, false)

	ok := c.Evaluate([]AllocatedCourse{research, other})
	assert.True(t, ok.Passed)

	second := allocated("BIO 4299", 4, 4000, false)
	second.Catalog.CourseType = "research"
	over := c.Evaluate([]AllocatedCourse{research, second, other})
	assert.False(t, over.Passed)
	assert.Contains(t, over.Reason, "at most 6 credits")
}

func TestSubjectScopeFiltersTallies(t *testing.T) {
	group := models.Group{
		Options: []models.CourseOption{
			option("g", "MATH 2413", "State University"),
			option("g", "PHYS 2425", "State University"),
		},
		Constraints: []models.Constraint{
			{Type: models.ConstraintCredits, MinValue: fptr(4), Subjects: []string{"MATH"}},
		},
	}
	c := compileOne(t, group)

	// PHYS credits must not count toward the MATH-scoped minimum
	result := c.Evaluate([]AllocatedCourse{allocated("PHYS 2425", 4, 2000, true)})
	assert.False(t, result.Passed)

	result = c.Evaluate([]AllocatedCourse{allocated("MATH 2413", 4, 2000, false)})
	assert.True(t, result.Passed)
}

func TestScopeMissingFromOptionsIsConfigurationError(t *testing.T) {
	group := models.Group{
		Options: []models.CourseOption{
			option("g", "MATH 2413", "State University"),
		},
		Constraints: []models.Constraint{
			{Type: models.ConstraintCredits, MinValue: fptr(3), Subjects: []string{"HIST"}},
		},
	}
	c := compileOne(t, group)

	result := c.Evaluate([]AllocatedCourse{allocated("MATH 2413", 4, 2000, false)})
	assert.False(t, result.Passed)
	assert.True(t, result.ConfigError)
	assert.Contains(t, result.Reason, "configuration error")
}

func TestUnknownConstraintTypeDegrades(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintType("min_gpa"), MinValue: fptr(3)},
	}}
	c := compileOne(t, group)

	result := c.Evaluate(nil)
	assert.False(t, result.Passed)
	assert.True(t, result.ConfigError)
}

func TestMissingCatalogRowNeverMatchesTags(t *testing.T) {
	group := models.Group{Constraints: []models.Constraint{
		{Type: models.ConstraintMinTagCourses, TagKey: "has_lab", TagValue: "true", MinValue: fptr(1)},
	}}
	c := compileOne(t, group)

	orphan := allocated("BIO 1010", 4, 1000, true)
	orphan.Catalog = nil
	result := c.Evaluate([]AllocatedCourse{orphan})
	assert.False(t, result.Passed)
}
