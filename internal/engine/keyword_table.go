package engine

import "strings"

// KeywordRule maps a subject prefix to an ordered list of category-name
// substrings. Earlier keywords win.
type KeywordRule struct {
	Subject  string
	Keywords []string
}

// KeywordTable is the versioned subject-to-category fallback used when a
// plan course matches no explicit assignment and no course option. The
// table is plain data so behaviour changes are reviewable and testable.
type KeywordTable struct {
	Version string
	Rules   []KeywordRule
}

// DefaultKeywordTable is the table shipped with this release.
var DefaultKeywordTable = KeywordTable{
	Version: "2025.2",
	Rules: []KeywordRule{
		{Subject: "MATH", Keywords: []string{"math", "analytical", "reasoning", "quantitative"}},
		{Subject: "STAT", Keywords: []string{"math", "analytical", "reasoning", "quantitative"}},
		{Subject: "ENGL", Keywords: []string{"english", "composition", "writing", "communication"}},
		{Subject: "ENG", Keywords: []string{"english", "composition", "writing", "communication"}},
		{Subject: "BIOL", Keywords: []string{"science", "natural", "life"}},
		{Subject: "BIO", Keywords: []string{"science", "natural", "life"}},
		{Subject: "CHEM", Keywords: []string{"science", "natural", "physical"}},
		{Subject: "PHYS", Keywords: []string{"science", "natural", "physical"}},
		{Subject: "GEOL", Keywords: []string{"science", "natural"}},
		{Subject: "HIST", Keywords: []string{"history", "american", "social"}},
		{Subject: "GOVT", Keywords: []string{"government", "political", "social"}},
		{Subject: "POLS", Keywords: []string{"government", "political", "social"}},
		{Subject: "PSYC", Keywords: []string{"social", "behavioral"}},
		{Subject: "SOCI", Keywords: []string{"social", "behavioral"}},
		{Subject: "ECON", Keywords: []string{"social", "behavioral", "economic"}},
		{Subject: "PHIL", Keywords: []string{"humanities", "philosophy", "creative"}},
		{Subject: "ARTS", Keywords: []string{"arts", "humanities", "creative"}},
		{Subject: "MUSI", Keywords: []string{"arts", "humanities", "creative"}},
		{Subject: "DRAM", Keywords: []string{"arts", "humanities", "creative"}},
		{Subject: "SPAN", Keywords: []string{"language", "foreign", "humanities"}},
		{Subject: "FREN", Keywords: []string{"language", "foreign", "humanities"}},
		{Subject: "COSC", Keywords: []string{"computer", "computing", "technology"}},
		{Subject: "CS", Keywords: []string{"computer", "computing", "technology"}},
		{Subject: "ITSE", Keywords: []string{"computer", "computing", "technology"}},
		{Subject: "SPCH", Keywords: []string{"speech", "communication"}},
		{Subject: "COMM", Keywords: []string{"speech", "communication"}},
		{Subject: "KINE", Keywords: []string{"physical", "wellness", "kinesiology"}},
		{Subject: "PHED", Keywords: []string{"physical", "wellness", "kinesiology"}},
	},
}

// Keywords returns the ordered keyword list for a subject prefix, or nil
// when the table has no rule for it.
func (t KeywordTable) Keywords(subject string) []string {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	for _, rule := range t.Rules {
		if rule.Subject == subject {
			return rule.Keywords
		}
	}
	return nil
}
