package models

import "time"

// EquivalencyType grades the confidence of a transfer relation.
type EquivalencyType string

const (
	// EquivalencyDirect means the courses are fully interchangeable.
	EquivalencyDirect EquivalencyType = "direct"
	// EquivalencyPartial transfers only part of the source course.
	EquivalencyPartial EquivalencyType = "partial"
	// EquivalencyConditional transfers subject to departmental review.
	EquivalencyConditional EquivalencyType = "conditional"
)

// LowConfidence reports whether matches through this relation must be
// flagged for downstream warning.
func (t EquivalencyType) LowConfidence() bool {
	return t == EquivalencyPartial || t == EquivalencyConditional
}

// Equivalency is a directed cross-institution transfer relation. The
// resolver treats it symmetrically: A≡B implies B can find A.
type Equivalency struct {
	ID                string          `db:"id" json:"id"`
	SourceCode        string          `db:"source_code" json:"source_code"`
	SourceInstitution string          `db:"source_institution" json:"source_institution"`
	TargetCode        string          `db:"target_code" json:"target_code"`
	TargetInstitution string          `db:"target_institution" json:"target_institution"`
	Type              EquivalencyType `db:"type" json:"type"`
	Notes             string          `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// Source returns the source course reference.
func (e Equivalency) Source() CourseRef {
	return CourseRef{Code: e.SourceCode, Institution: e.SourceInstitution}
}

// Target returns the target course reference.
func (e Equivalency) Target() CourseRef {
	return CourseRef{Code: e.TargetCode, Institution: e.TargetInstitution}
}
