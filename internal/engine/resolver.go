package engine

import (
	"sort"

	"github.com/transferpath/degree-audit-api/internal/models"
)

// Match is one course identity reachable from a resolved reference,
// tagged with the equivalency type that connected it.
type Match struct {
	Ref models.CourseRef
	Via models.EquivalencyType
}

type resolverEdge struct {
	to  models.CourseRef
	typ models.EquivalencyType
}

// Resolver answers equivalency-closure queries over a fixed edge set.
// Edges are indexed in both directions so A≡B implies B can find A.
// Direct edges compose transitively; partial and conditional edges are
// followed exactly one hop and are never upgraded to direct.
type Resolver struct {
	edges map[string][]resolverEdge
}

// NewResolver indexes the supplied equivalency edges.
func NewResolver(equivalencies []models.Equivalency) *Resolver {
	edges := make(map[string][]resolverEdge, len(equivalencies)*2)
	for _, eq := range equivalencies {
		src, dst := eq.Source(), eq.Target()
		edges[src.Key()] = append(edges[src.Key()], resolverEdge{to: dst, typ: eq.Type})
		edges[dst.Key()] = append(edges[dst.Key()], resolverEdge{to: src, typ: eq.Type})
	}
	return &Resolver{edges: edges}
}

// Resolve returns every course identity equivalent to ref, excluding ref
// itself. An unknown reference yields an empty set, never an error.
func (r *Resolver) Resolve(ref models.CourseRef) []Match {
	origin := ref.Key()
	visited := map[string]models.EquivalencyType{origin: models.EquivalencyDirect}
	queue := []models.CourseRef{ref}
	var matches []Match

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range r.edges[current.Key()] {
			key := edge.to.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = edge.typ
			matches = append(matches, Match{Ref: edge.to, Via: edge.typ})
			// only full-confidence links extend the closure; a partial or
			// conditional hop terminates its branch
			if edge.typ == models.EquivalencyDirect {
				queue = append(queue, edge.to)
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Ref.Key() < matches[j].Ref.Key()
	})
	return matches
}

// Identities returns ref plus its resolved matches, keyed for lookup.
func (r *Resolver) Identities(ref models.CourseRef) map[string]models.EquivalencyType {
	out := map[string]models.EquivalencyType{ref.Key(): models.EquivalencyDirect}
	for _, m := range r.Resolve(ref) {
		out[m.Ref.Key()] = m.Via
	}
	return out
}
