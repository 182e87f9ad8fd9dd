package models

import (
	"strings"
	"time"
)

// CourseRef identifies a course across institutions.
type CourseRef struct {
	Code        string `json:"code"`
	Institution string `json:"institution"`
}

// Key returns the normalised lookup key for the reference.
func (r CourseRef) Key() string {
	return strings.ToUpper(strings.TrimSpace(r.Code)) + "@" + strings.ToUpper(strings.TrimSpace(r.Institution))
}

// Course is a catalog entry. Level and Subject are derivable from the code
// but stored denormalised for querying.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Institution string    `db:"institution" json:"institution"`
	Title       string    `db:"title" json:"title"`
	Subject     string    `db:"subject" json:"subject"`
	Level       int       `db:"level" json:"level"`
	Credits     float64   `db:"credits" json:"credits"`
	HasLab      bool      `db:"has_lab" json:"has_lab"`
	CourseType  string    `db:"course_type" json:"course_type,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Ref returns the course's cross-institution reference.
func (c Course) Ref() CourseRef {
	return CourseRef{Code: c.Code, Institution: c.Institution}
}

// Tag returns the named catalog tag as a string, or "" when absent.
// Boolean tags serialise as "true"/"false".
func (c Course) Tag(key string) string {
	switch strings.ToLower(key) {
	case "has_lab":
		if c.HasLab {
			return "true"
		}
		return "false"
	case "course_type":
		return c.CourseType
	}
	return ""
}
