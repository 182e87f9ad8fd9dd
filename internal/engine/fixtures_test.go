package engine

import "github.com/transferpath/degree-audit-api/internal/models"

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func option(groupID, code, institution string) models.CourseOption {
	return models.CourseOption{GroupID: groupID, CourseCode: code, Institution: institution}
}

func planCourse(code, institution string, status models.CourseStatus, credits float64) models.PlanCourse {
	return models.PlanCourse{
		CourseCode:  code,
		Institution: institution,
		Status:      status,
		Credits:     credits,
	}
}

func catalogOf(courses ...models.Course) map[string]models.Course {
	out := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		out[c.Ref().Key()] = c
	}
	return out
}

// transferDegreeSet is a small but representative requirement set: one
// simple pool, one grouped requirement with two groups, used across the
// matcher, allocator and progress tests.
func transferDegreeSet() models.RequirementSet {
	return models.RequirementSet{
		ID:        "rs-1",
		ProgramID: "prog-1",
		Semester:  "Fall",
		Year:      2025,
		IsCurrent: true,
		Requirements: []models.Requirement{
			{
				ID:   "req-core",
				Name: "Core",
				Type: models.RequirementGrouped,
				Groups: []models.Group{
					{
						ID:   "grp-theory",
						Name: "Theory",
						Options: []models.CourseOption{
							option("grp-theory", "CS 2305", "State University"),
							option("grp-theory", "CS 3305", "State University"),
						},
						Constraints: []models.Constraint{
							{GroupID: "grp-theory", Type: models.ConstraintCourses, MinValue: fptr(2)},
						},
					},
					{
						ID:   "grp-lab",
						Name: "Lab",
						Options: []models.CourseOption{
							option("grp-lab", "BIO 1010", "State University"),
							option("grp-lab", "CHEM 1111L", "State University"),
						},
						Constraints: []models.Constraint{
							{GroupID: "grp-lab", Type: models.ConstraintCourses, MinValue: fptr(2)},
						},
					},
				},
			},
			{
				ID:         "req-math",
				Name:       "Mathematics & Analytical Reasoning",
				Type:       models.RequirementSimple,
				CreditGoal: 6,
			},
			{
				ID:         "req-elec",
				Name:       "Electives",
				Type:       models.RequirementSimple,
				CreditGoal: 15,
			},
		},
	}
}

func mustSnapshot(set models.RequirementSet, plan models.Plan, catalog map[string]models.Course, eqs []models.Equivalency) *Snapshot {
	snap, err := NewSnapshot(set, plan, catalog, eqs)
	if err != nil {
		panic(err)
	}
	return snap
}
