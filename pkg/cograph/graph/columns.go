package graph

import (
	"cmp"
	"slices"

	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Summary holds graph-wide figures for reports.
type Summary struct {
	Vertices           int
	Edges              int
	TotalCooccurrences int64
	MaxDegree          int64
	MaxCooccurrence    int64
	MeanDegree         float64
	Density            float64
	Normalized         bool
}

// Summary computes graph-wide figures.
func (g *Graph) Summary() Summary {
	s := Summary{
		Vertices:           len(g.vertices),
		Edges:              len(g.edges),
		TotalCooccurrences: g.total,
		Normalized:         g.normalized,
	}
	var degreeSum int64
	for _, v := range g.vertices {
		degreeSum += v.Degree
		s.MaxDegree = max(s.MaxDegree, v.Degree)
		s.MaxCooccurrence = max(s.MaxCooccurrence, v.Cooccurrence)
	}
	if s.Vertices > 0 {
		s.MeanDegree = float64(degreeSum) / float64(s.Vertices)
	}
	if s.Vertices > 1 {
		s.Density = 2 * float64(s.Edges) / (float64(s.Vertices) * float64(s.Vertices-1))
	}
	return s
}

// TopEdges returns up to k edges ranked by association strength, or by count
// for an unnormalized graph. Ties break on pair order.
func (g *Graph) TopEdges(k int) []Edge {
	ranked := slices.Clone(g.edges)
	slices.SortStableFunc(ranked, func(a, b Edge) int {
		if g.normalized {
			if c := cmp.Compare(b.Strength, a.Strength); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Pair().Compare(b.Pair())
	})
	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// CooccurrenceColumn returns vertex IDs and their co-occurrence totals as
// parallel columns, ordered by ID.
func (g *Graph) CooccurrenceColumn() ([]vocab.TermID, []int64) {
	ids := make([]vocab.TermID, len(g.vertices))
	vals := make([]int64, len(g.vertices))
	for i, v := range g.vertices {
		ids[i] = v.ID
		vals[i] = v.Cooccurrence
	}
	return ids, vals
}

// DegreeColumn returns vertex degrees ordered by vertex ID.
func (g *Graph) DegreeColumn() []int64 {
	out := make([]int64, len(g.vertices))
	for i, v := range g.vertices {
		out[i] = v.Degree
	}
	return out
}

// Strengths returns edge association strengths ordered like Edges. It is nil
// for an unnormalized graph.
func (g *Graph) Strengths() []float64 {
	if !g.normalized {
		return nil
	}
	out := make([]float64, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.Strength
	}
	return out
}
