package engine

import (
	"strings"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// CategoryElective is the reserved catch-all category for courses no rule
// can place.
const CategoryElective = "Elective"

// MatchSource records which rule of the resolution order produced a match.
type MatchSource string

const (
	// MatchExplicit honours the category stored on the plan course.
	MatchExplicit MatchSource = "explicit"
	// MatchOption matched a group's course option (equivalency-aware).
	MatchOption MatchSource = "option"
	// MatchKeyword matched the subject keyword table.
	MatchKeyword MatchSource = "keyword"
	// MatchElective is the final fallback.
	MatchElective MatchSource = "elective"
)

// CategoryMatch is the matcher's verdict for one plan course.
type CategoryMatch struct {
	Category string
	GroupID  string
	Source   MatchSource
	// Confidence is direct unless the option match required a partial or
	// conditional equivalency hop.
	Confidence models.EquivalencyType
	// Orphan marks an explicit category that names no requirement in the
	// current set. The course is honoured verbatim but reported unmatched.
	Orphan bool
}

// Matcher resolves the requirement category for plan courses. Resolution
// is deterministic: explicit assignment, then course-option search using
// resolver identities, then the keyword table, then Elective. The memo map
// is caller-supplied and request-scoped so concurrent computations never
// share state.
type Matcher struct {
	set      models.RequirementSet
	resolver *Resolver
	table    KeywordTable
	memo     map[string]CategoryMatch
}

// NewMatcher builds a matcher over one requirement set. memo may be nil.
func NewMatcher(set models.RequirementSet, resolver *Resolver, table KeywordTable, memo map[string]CategoryMatch) *Matcher {
	if memo == nil {
		memo = make(map[string]CategoryMatch)
	}
	return &Matcher{set: set, resolver: resolver, table: table, memo: memo}
}

// Match resolves the category for one plan course.
func (m *Matcher) Match(pc models.PlanCourse) CategoryMatch {
	if pc.RequirementCategory != "" {
		return CategoryMatch{
			Category:   pc.RequirementCategory,
			GroupID:    pc.RequirementGroupID,
			Source:     MatchExplicit,
			Confidence: models.EquivalencyDirect,
			Orphan:     m.findRequirement(pc.RequirementCategory) == nil,
		}
	}

	ref := models.CourseRef{Code: pc.CourseCode, Institution: pc.Institution}
	if cached, ok := m.memo[ref.Key()]; ok {
		return cached
	}

	match := m.infer(ref)
	m.memo[ref.Key()] = match
	return match
}

func (m *Matcher) infer(ref models.CourseRef) CategoryMatch {
	identities := m.resolver.Identities(ref)

	for ri := range m.set.Requirements {
		req := &m.set.Requirements[ri]
		for gi := range req.Groups {
			group := &req.Groups[gi]
			for _, opt := range group.Options {
				optKey := models.CourseRef{Code: opt.CourseCode, Institution: opt.Institution}.Key()
				if via, ok := identities[optKey]; ok {
					return CategoryMatch{
						Category:   req.Name,
						GroupID:    group.ID,
						Source:     MatchOption,
						Confidence: via,
					}
				}
			}
		}
	}

	subject := SubjectCode(ref.Code)
	for _, keyword := range m.table.Keywords(subject) {
		for ri := range m.set.Requirements {
			if strings.Contains(strings.ToLower(m.set.Requirements[ri].Name), keyword) {
				return CategoryMatch{
					Category:   m.set.Requirements[ri].Name,
					Source:     MatchKeyword,
					Confidence: models.EquivalencyDirect,
				}
			}
		}
	}

	return CategoryMatch{
		Category:   CategoryElective,
		Source:     MatchElective,
		Confidence: models.EquivalencyDirect,
	}
}

func (m *Matcher) findRequirement(name string) *models.Requirement {
	for i := range m.set.Requirements {
		if strings.EqualFold(m.set.Requirements[i].Name, name) {
			return &m.set.Requirements[i]
		}
	}
	return nil
}
