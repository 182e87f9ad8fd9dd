package engine

import (
	"math"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// Status is the completion state of a category or group.
type Status string

const (
	StatusNone    Status = "none"
	StatusPartial Status = "partial"
	StatusMet     Status = "met"
)

// AppliedCourse is the consumer-facing view of an allocated course.
type AppliedCourse struct {
	CourseCode  string                 `json:"course_code"`
	Institution string                 `json:"institution"`
	Status      models.CourseStatus    `json:"status"`
	Credits     float64                `json:"credits"`
	Confidence  models.EquivalencyType `json:"confidence"`
}

// GroupProgress reports one group's evaluation.
type GroupProgress struct {
	GroupID          string             `json:"group_id"`
	Name             string             `json:"name"`
	Status           Status             `json:"status"`
	CompletedCredits float64            `json:"completed_credits"`
	RequiredCredits  float64            `json:"required_credits"`
	Constraints      []ConstraintResult `json:"constraints,omitempty"`
	AppliedCourses   []AppliedCourse    `json:"applied_courses,omitempty"`
}

// CategoryProgress reports one requirement category's evaluation.
type CategoryProgress struct {
	Name             string          `json:"name"`
	Status           Status          `json:"status"`
	CompletedCredits float64         `json:"completed_credits"`
	TotalCredits     float64         `json:"total_credits"`
	Percent          float64         `json:"percent"`
	Description      string          `json:"description,omitempty"`
	Groups           []GroupProgress `json:"groups,omitempty"`
	AppliedCourses   []AppliedCourse `json:"applied_courses,omitempty"`
	Unassigned       []AppliedCourse `json:"unassigned,omitempty"`
}

// Report is the full output of one progress computation.
type Report struct {
	PlanID              string             `json:"plan_id"`
	RequirementSetID    string             `json:"requirement_set_id"`
	View                models.ViewFilter  `json:"view"`
	Categories          []CategoryProgress `json:"categories"`
	CompletedCredits    float64            `json:"completed_credits"`
	TotalCredits        float64            `json:"total_credits"`
	Percent             float64            `json:"percent"`
	Warnings            []Warning          `json:"warnings,omitempty"`
	KeywordTableVersion string             `json:"keyword_table_version"`
}

// ComputeProgress runs the full pipeline for one view. Category
// assignment is computed once per call and is view-independent; the view
// narrows only the credit and constraint tallies.
func ComputeProgress(snap *Snapshot, view models.ViewFilter) (*Report, error) {
	if view == "" {
		view = models.ViewAll
	}
	resolver := NewResolver(snap.Equivalencies)
	table := snap.KeywordTable
	if len(table.Rules) == 0 {
		table = DefaultKeywordTable
	}
	matcher := NewMatcher(snap.RequirementSet, resolver, table, make(map[string]CategoryMatch))
	allocation := Allocate(snap, matcher)
	return tally(snap, allocation, view), nil
}

// tally converts a view-independent allocation into the consumer shape
// for one view. Re-tallying another view reuses the same allocation.
func tally(snap *Snapshot, allocation *Allocation, view models.ViewFilter) *Report {
	report := &Report{
		PlanID:              snap.Plan.ID,
		RequirementSetID:    snap.RequirementSet.ID,
		View:                view,
		Warnings:            allocation.Warnings,
		KeywordTableVersion: snap.KeywordTable.Version,
	}
	if report.KeywordTableVersion == "" {
		report.KeywordTableVersion = DefaultKeywordTable.Version
	}

	var achievedSum, requiredSum float64
	for i := range allocation.Buckets {
		category := tallyCategory(snap, &allocation.Buckets[i], view)
		achievedSum += math.Min(category.CompletedCredits, category.TotalCredits)
		requiredSum += category.TotalCredits
		report.Categories = append(report.Categories, category)
	}

	report.CompletedCredits = roundTenth(achievedSum)
	report.TotalCredits = roundTenth(requiredSum)
	report.Percent = percentage(achievedSum, requiredSum)
	return report
}

func tallyCategory(snap *Snapshot, bucket *CategoryBucket, view models.ViewFilter) CategoryProgress {
	category := CategoryProgress{Name: bucket.Name}
	if bucket.Requirement != nil {
		category.Description = bucket.Requirement.Description
	}

	if bucket.Requirement != nil && bucket.Requirement.Type == models.RequirementGrouped {
		allMet, anyProgress := true, false
		for gi := range bucket.Groups {
			group := tallyGroup(snap, &bucket.Groups[gi], view)
			category.CompletedCredits += math.Min(group.CompletedCredits, group.RequiredCredits)
			category.TotalCredits += group.RequiredCredits
			if group.Status != StatusMet {
				allMet = false
			}
			if group.Status != StatusNone {
				anyProgress = true
			}
			category.Groups = append(category.Groups, group)
		}
		for _, course := range bucket.Unassigned {
			if view.Matches(course.PlanCourse.Status) {
				category.Unassigned = append(category.Unassigned, applied(course))
			}
		}
		switch {
		case allMet:
			category.Status = StatusMet
		case anyProgress:
			category.Status = StatusPartial
		default:
			category.Status = StatusNone
		}
	} else {
		// simple pool, or a synthetic bucket with no requirement backing it
		if bucket.Requirement != nil {
			category.TotalCredits = bucket.Requirement.CreditGoal
		}
		var achieved float64
		for _, course := range bucket.Pool {
			if !view.Matches(course.PlanCourse.Status) {
				continue
			}
			achieved += course.Credits
			category.AppliedCourses = append(category.AppliedCourses, applied(course))
		}
		// extra matched courses stay in the applied list but never push
		// the reported pair past the goal
		if category.TotalCredits > 0 && achieved > category.TotalCredits {
			achieved = category.TotalCredits
		}
		category.CompletedCredits = roundTenth(achieved)
		switch {
		case category.TotalCredits > 0 && achieved >= category.TotalCredits:
			category.Status = StatusMet
		case achieved > 0:
			category.Status = StatusPartial
		default:
			category.Status = StatusNone
		}
	}

	category.CompletedCredits = roundTenth(category.CompletedCredits)
	category.TotalCredits = roundTenth(category.TotalCredits)
	category.Percent = percentage(category.CompletedCredits, category.TotalCredits)
	return category
}

func tallyGroup(snap *Snapshot, bucket *GroupBucket, view models.ViewFilter) GroupProgress {
	progress := GroupProgress{
		GroupID:         bucket.Group.ID,
		Name:            bucket.Group.Name,
		RequiredCredits: GroupRequiredCredits(bucket.Group, snap.creditDefault()),
	}

	visible := make([]AllocatedCourse, 0, len(bucket.Courses))
	for _, course := range bucket.Courses {
		if view.Matches(course.PlanCourse.Status) {
			visible = append(visible, course)
			progress.CompletedCredits += course.Credits
			progress.AppliedCourses = append(progress.AppliedCourses, applied(course))
		}
	}
	progress.CompletedCredits = roundTenth(progress.CompletedCredits)

	allPassed := true
	for _, constraint := range CompileConstraints(bucket.Group) {
		result := constraint.Evaluate(visible)
		if !result.Passed {
			allPassed = false
		}
		progress.Constraints = append(progress.Constraints, result)
	}

	switch {
	case len(visible) == 0:
		progress.Status = StatusNone
	case allPassed && progress.CompletedCredits >= progress.RequiredCredits:
		progress.Status = StatusMet
	default:
		progress.Status = StatusPartial
	}
	return progress
}

// GroupRequiredCredits derives the credit requirement of a group: the
// credits-constraint minimum when stated, otherwise the courses-constraint
// minimum priced at the default course credit value, otherwise one nominal
// course.
func GroupRequiredCredits(group models.Group, creditDefault float64) float64 {
	var courseMin *float64
	for _, row := range group.Constraints {
		switch row.Type {
		case models.ConstraintCredits:
			if row.MinValue != nil {
				return *row.MinValue
			}
		case models.ConstraintCourses:
			if row.MinValue != nil && courseMin == nil {
				courseMin = row.MinValue
			}
		}
	}
	if courseMin != nil {
		return *courseMin * creditDefault
	}
	return creditDefault
}

func applied(course AllocatedCourse) AppliedCourse {
	return AppliedCourse{
		CourseCode:  course.PlanCourse.CourseCode,
		Institution: course.PlanCourse.Institution,
		Status:      course.PlanCourse.Status,
		Credits:     course.Credits,
		Confidence:  course.Confidence,
	}
}

// percentage reports capped completion: min(achieved, required)/required
// when required is positive, else zero. Values round half-to-even to one
// decimal place and never exceed 100.
func percentage(achieved, required float64) float64 {
	if required <= 0 {
		return 0
	}
	if achieved > required {
		achieved = required
	}
	return roundTenth(achieved / required * 100)
}

func roundTenth(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
