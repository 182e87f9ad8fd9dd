package models

import "time"

// RequirementType distinguishes pool requirements from grouped ones.
type RequirementType string

const (
	// RequirementSimple is an open credit pool; any matching course counts
	// until the credit goal is met.
	RequirementSimple RequirementType = "simple"
	// RequirementGrouped subdivides the requirement into mandatory groups.
	RequirementGrouped RequirementType = "grouped"
)

// Program is a degree program offered by an institution.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Institution string    `db:"institution" json:"institution"`
	Name        string    `db:"name" json:"name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RequirementSet is one versioned requirement definition for a program.
// Exactly one set per program is current at a time.
type RequirementSet struct {
	ID           string        `db:"id" json:"id"`
	ProgramID    string        `db:"program_id" json:"program_id"`
	Semester     string        `db:"semester" json:"semester"`
	Year         int           `db:"year" json:"year"`
	IsCurrent    bool          `db:"is_current" json:"is_current"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	Requirements []Requirement `json:"requirements,omitempty"`
}

// Requirement is a named category of a program's course obligations.
// Simple requirements carry a credit goal and no groups; grouped
// requirements carry at least one group and no credit goal.
type Requirement struct {
	ID               string          `db:"id" json:"id"`
	RequirementSetID string          `db:"requirement_set_id" json:"requirement_set_id"`
	Name             string          `db:"name" json:"name"`
	Type             RequirementType `db:"type" json:"type"`
	CreditGoal       float64         `db:"credit_goal" json:"credit_goal,omitempty"`
	Description      string          `db:"description" json:"description,omitempty"`
	Position         int             `db:"position" json:"position"`
	Groups           []Group         `json:"groups,omitempty"`
}

// Group is a mandatory sub-pool inside a grouped requirement.
type Group struct {
	ID            string         `db:"id" json:"id"`
	RequirementID string         `db:"requirement_id" json:"requirement_id"`
	Name          string         `db:"name" json:"name"`
	Position      int            `db:"position" json:"position"`
	Options       []CourseOption `json:"options,omitempty"`
	Constraints   []Constraint   `json:"constraints,omitempty"`
}

// CourseOption is a (course code, institution) pair a group accepts.
// The preferred flag is informational and never affects satisfaction.
type CourseOption struct {
	ID          string `db:"id" json:"id"`
	GroupID     string `db:"group_id" json:"group_id"`
	CourseCode  string `db:"course_code" json:"course_code"`
	Institution string `db:"institution" json:"institution"`
	IsPreferred bool   `db:"is_preferred" json:"is_preferred"`
	Notes       string `db:"notes" json:"notes,omitempty"`
}

// ConstraintType enumerates the supported group constraint kinds.
type ConstraintType string

const (
	ConstraintCredits           ConstraintType = "credits"
	ConstraintCourses           ConstraintType = "courses"
	ConstraintMinCoursesAtLevel ConstraintType = "min_courses_at_level"
	ConstraintMinTagCourses     ConstraintType = "min_tag_courses"
	ConstraintMaxTagCredits     ConstraintType = "max_tag_credits"
)

// Constraint is the stored form of a group constraint. Which optional
// columns are meaningful depends on Type; the engine converts rows into
// typed variants before evaluation so that ambiguity stays in this layer.
type Constraint struct {
	ID          string         `db:"id" json:"id"`
	GroupID     string         `db:"group_id" json:"group_id"`
	Type        ConstraintType `db:"type" json:"type"`
	MinValue    *float64       `db:"min_value" json:"min_value,omitempty"`
	MaxValue    *float64       `db:"max_value" json:"max_value,omitempty"`
	Level       *int           `db:"level" json:"level,omitempty"`
	TagKey      string         `db:"tag_key" json:"tag_key,omitempty"`
	TagValue    string         `db:"tag_value" json:"tag_value,omitempty"`
	SubjectsCSV string         `db:"subjects" json:"-"`
	Subjects    []string       `db:"-" json:"subjects,omitempty"`
}
