package engine

import (
	"fmt"
	"strings"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// WarningKind classifies non-fatal anomalies found during allocation.
type WarningKind string

const (
	// WarnUnmatched marks a course that fell through to Elective, or an
	// explicit category naming no requirement in the set.
	WarnUnmatched WarningKind = "unmatched_course"
	// WarnLowConfidence marks a match reached via a partial or
	// conditional equivalency. It still counts toward provisional progress.
	WarnLowConfidence WarningKind = "low_confidence_match"
	// WarnMissingCourse marks a plan course absent from the catalog snapshot.
	WarnMissingCourse WarningKind = "missing_course_data"
	// WarnUnassignedGroup marks a course matched to a grouped requirement
	// with no resolvable group.
	WarnUnassignedGroup WarningKind = "unassigned_group"
)

// Warning is a structured, non-fatal annotation on a progress result.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	CourseCode  string      `json:"course_code,omitempty"`
	Institution string      `json:"institution,omitempty"`
	Category    string      `json:"category,omitempty"`
	GroupID     string      `json:"group_id,omitempty"`
	Detail      string      `json:"detail"`
}

// GroupBucket holds the courses allocated to one group.
type GroupBucket struct {
	Group   models.Group
	Courses []AllocatedCourse
}

// CategoryBucket holds one requirement category's allocation. Requirement
// is nil for synthetic buckets: the Elective catch-all (when the set has
// no elective category) and orphaned explicit categories.
type CategoryBucket struct {
	Name        string
	Requirement *models.Requirement
	// Pool receives every course for simple requirements and synthetic
	// buckets; grouped requirements use Groups plus Unassigned.
	Pool       []AllocatedCourse
	Groups     []GroupBucket
	Unassigned []AllocatedCourse
}

// Allocation partitions a plan's course list into per-category,
// per-group buckets. It is a pure read/derive pass: plan courses are
// never mutated, and the result is view-independent; view filters apply
// at tally time.
type Allocation struct {
	Buckets  []CategoryBucket
	Warnings []Warning
}

// Allocate categorizes every plan course and buckets it. Courses the
// matcher cannot place are reported, never dropped.
func Allocate(snap *Snapshot, matcher *Matcher) *Allocation {
	alloc := &Allocation{}
	index := make(map[string]int) // lowercase category name -> bucket position

	for i := range snap.RequirementSet.Requirements {
		req := &snap.RequirementSet.Requirements[i]
		bucket := CategoryBucket{Name: req.Name, Requirement: req}
		for _, group := range req.Groups {
			bucket.Groups = append(bucket.Groups, GroupBucket{Group: group})
		}
		index[foldName(req.Name)] = len(alloc.Buckets)
		alloc.Buckets = append(alloc.Buckets, bucket)
	}

	for _, pc := range snap.Plan.Courses {
		match := matcher.Match(pc)
		course := snap.allocated(pc, match)

		if course.Catalog == nil {
			alloc.warn(Warning{
				Kind:        WarnMissingCourse,
				CourseCode:  pc.CourseCode,
				Institution: pc.Institution,
				Detail:      fmt.Sprintf("course %s @ %s is not in the catalog snapshot; using plan values only", pc.CourseCode, pc.Institution),
			})
		}
		if match.Confidence.LowConfidence() {
			alloc.warn(Warning{
				Kind:        WarnLowConfidence,
				CourseCode:  pc.CourseCode,
				Institution: pc.Institution,
				Category:    match.Category,
				GroupID:     match.GroupID,
				Detail:      fmt.Sprintf("course %s matched %q via a %s equivalency", pc.CourseCode, match.Category, match.Confidence),
			})
		}
		if match.Source == MatchElective || match.Orphan {
			alloc.warn(Warning{
				Kind:        WarnUnmatched,
				CourseCode:  pc.CourseCode,
				Institution: pc.Institution,
				Category:    match.Category,
				Detail:      fmt.Sprintf("course %s could not be matched to a requirement; counted under %q", pc.CourseCode, match.Category),
			})
		}

		pos, ok := index[foldName(match.Category)]
		if !ok || match.Orphan {
			pos = alloc.syntheticBucket(index, match.Category)
		}
		bucket := &alloc.Buckets[pos]

		if bucket.Requirement == nil || bucket.Requirement.Type == models.RequirementSimple {
			bucket.Pool = append(bucket.Pool, course)
			continue
		}

		gi := groupIndex(bucket.Groups, match.GroupID)
		if gi < 0 {
			bucket.Unassigned = append(bucket.Unassigned, course)
			alloc.warn(Warning{
				Kind:        WarnUnassignedGroup,
				CourseCode:  pc.CourseCode,
				Institution: pc.Institution,
				Category:    match.Category,
				GroupID:     match.GroupID,
				Detail:      fmt.Sprintf("course %s counts toward %q but no group could be resolved", pc.CourseCode, match.Category),
			})
			continue
		}
		bucket.Groups[gi].Courses = append(bucket.Groups[gi].Courses, course)
	}

	return alloc
}

// allocated builds the evaluated form of a plan course. Plan credits
// override the catalog value; subject and level fall back to code parsing
// when the catalog row is missing.
func (s *Snapshot) allocated(pc models.PlanCourse, match CategoryMatch) AllocatedCourse {
	catalog := s.lookup(pc)
	parsed := ParseCourseCode(pc.CourseCode)

	credits := pc.Credits
	subject := parsed.Subject
	level := parsed.Level
	if catalog != nil {
		if credits <= 0 {
			credits = catalog.Credits
		}
		if catalog.Subject != "" {
			subject = catalog.Subject
		}
		if catalog.Level > 0 {
			level = catalog.Level
		}
	}

	return AllocatedCourse{
		PlanCourse: pc,
		Catalog:    catalog,
		Confidence: match.Confidence,
		Subject:    subject,
		Level:      level,
		Credits:    credits,
	}
}

func (a *Allocation) syntheticBucket(index map[string]int, name string) int {
	if pos, ok := index[foldName(name)]; ok && a.Buckets[pos].Requirement == nil {
		return pos
	}
	index[foldName(name)] = len(a.Buckets)
	a.Buckets = append(a.Buckets, CategoryBucket{Name: name})
	return len(a.Buckets) - 1
}

func (a *Allocation) warn(w Warning) {
	a.Warnings = append(a.Warnings, w)
}

func groupIndex(groups []GroupBucket, id string) int {
	for i := range groups {
		if groups[i].Group.ID == id && id != "" {
			return i
		}
	}
	return -1
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
