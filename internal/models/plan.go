package models

import "time"

// CourseStatus tracks where a plan course sits in the student's timeline.
type CourseStatus string

const (
	CourseStatusPlanned    CourseStatus = "planned"
	CourseStatusInProgress CourseStatus = "in_progress"
	CourseStatusCompleted  CourseStatus = "completed"
)

// ViewFilter narrows progress tallies to a status slice. Category
// assignment is view-independent; only credit/constraint tallies change.
type ViewFilter string

const (
	ViewAll        ViewFilter = "all"
	ViewPlanned    ViewFilter = "planned"
	ViewInProgress ViewFilter = "in_progress"
	ViewCompleted  ViewFilter = "completed"
)

// Valid reports whether the filter is one of the recognised views.
func (v ViewFilter) Valid() bool {
	switch v {
	case ViewAll, ViewPlanned, ViewInProgress, ViewCompleted:
		return true
	}
	return false
}

// Matches reports whether a course status falls inside the view.
func (v ViewFilter) Matches(status CourseStatus) bool {
	switch v {
	case "", ViewAll:
		return true
	case ViewPlanned:
		return status == CourseStatusPlanned
	case ViewInProgress:
		return status == CourseStatusInProgress
	case ViewCompleted:
		return status == CourseStatusCompleted
	}
	return false
}

// Plan is a student's working set of courses against a target program.
// CurrentProgramID supports dual-institution views and may be empty.
type Plan struct {
	ID               string       `db:"id" json:"id"`
	StudentID        string       `db:"student_id" json:"student_id"`
	TargetProgramID  string       `db:"target_program_id" json:"target_program_id"`
	CurrentProgramID string       `db:"current_program_id" json:"current_program_id,omitempty"`
	Name             string       `db:"name" json:"name"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
	Courses          []PlanCourse `json:"courses,omitempty"`
}

// PlanCourse is one course entry inside a plan. Credits may override the
// catalog value; RequirementCategory, when set, always wins over inference.
type PlanCourse struct {
	ID                  string       `db:"id" json:"id"`
	PlanID              string       `db:"plan_id" json:"plan_id"`
	CourseCode          string       `db:"course_code" json:"course_code"`
	Institution         string       `db:"institution" json:"institution"`
	Status              CourseStatus `db:"status" json:"status"`
	Semester            string       `db:"semester" json:"semester,omitempty"`
	Year                int          `db:"year" json:"year,omitempty"`
	Credits             float64      `db:"credits" json:"credits"`
	Grade               string       `db:"grade" json:"grade,omitempty"`
	RequirementCategory string       `db:"requirement_category" json:"requirement_category,omitempty"`
	RequirementGroupID  string       `db:"requirement_group_id" json:"requirement_group_id,omitempty"`
	Position            int          `db:"position" json:"position"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at"`
}

// PlanCourseFilter narrows plan course queries.
type PlanCourseFilter struct {
	PlanID string
	Status CourseStatus
}
