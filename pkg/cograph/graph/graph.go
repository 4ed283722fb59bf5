package graph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cognicore/cograph/pkg/cograph/cooc"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Vertex is a term together with its two centrality aggregates.
type Vertex struct {
	ID           vocab.TermID
	Degree       int64 // distinct neighbors
	Cooccurrence int64 // summed count of incident edges
}

// Edge is a canonical term pair (Source < Target).
type Edge struct {
	Source, Target vocab.TermID
	Count          int64

	// Strength is the association strength. It is only meaningful when
	// HasStrength is set.
	Strength    float64
	HasStrength bool
}

// Pair returns the edge's endpoints as a cooc.Pair.
func (e Edge) Pair() cooc.Pair {
	return cooc.Pair{A: e.Source, B: e.Target}
}

// Graph is an undirected, immutable co-occurrence graph. It has no isolated
// vertices: every vertex is an endpoint of at least one edge.
type Graph struct {
	vertices    []Vertex
	edges       []Edge
	vertexIndex map[vocab.TermID]int
	edgeIndex   map[cooc.Pair]int
	total       int64
	normalized  bool
}

// AssociationStrength rescales a raw pair count by the count expected if the
// two terms co-occurred independently:
//
//	2 * n * count / (cs * ct)
//
// where n is the total number of co-occurrences in the corpus and cs, ct are
// the vertex co-occurrence totals of the endpoints.
func AssociationStrength(n, count, cs, ct int64) float64 {
	return 2 * float64(n) * float64(count) / (float64(cs) * float64(ct))
}

// Assemble builds the graph. Vertices are the keys of degree and edges are the
// keys of edges. With normalize set every edge gets its association strength.
//
// Inconsistent aggregates abort assembly with an error wrapping
// internalerr.ErrInvariant and no partial graph is returned. That covers an
// edge endpoint missing from degree or with zero co-occurrence, a
// non-canonical edge, and a vertex of degree 0.
func Assemble(edges cooc.EdgeCount, degree cooc.VertexDegree, cooccurrence cooc.VertexCooccurrence, normalize bool) (*Graph, error) {
	g := &Graph{
		vertices:    make([]Vertex, 0, len(degree)),
		edges:       make([]Edge, 0, len(edges)),
		vertexIndex: make(map[vocab.TermID]int, len(degree)),
		edgeIndex:   make(map[cooc.Pair]int, len(edges)),
		normalized:  normalize,
	}

	for id, d := range degree {
		if d < 1 {
			return nil, fmt.Errorf("%w: vertex %d has degree %d", internalerr.ErrInvariant, id, d)
		}
		g.vertices = append(g.vertices, Vertex{ID: id, Degree: d, Cooccurrence: cooccurrence[id]})
	}
	slices.SortFunc(g.vertices, func(a, b Vertex) int { return cmp.Compare(a.ID, b.ID) })
	for i, v := range g.vertices {
		g.vertexIndex[v.ID] = i
	}

	for p, n := range edges {
		if !p.Valid() || n < 1 {
			return nil, fmt.Errorf("%w: bad edge %v with count %d", internalerr.ErrInvariant, p, n)
		}
		g.edges = append(g.edges, Edge{Source: p.A, Target: p.B, Count: n})
		g.total += n
	}
	slices.SortFunc(g.edges, func(a, b Edge) int { return a.Pair().Compare(b.Pair()) })

	for i := range g.edges {
		e := &g.edges[i]
		g.edgeIndex[e.Pair()] = i

		si, sok := g.vertexIndex[e.Source]
		ti, tok := g.vertexIndex[e.Target]
		if !sok || !tok {
			return nil, fmt.Errorf("%w: edge (%d,%d) has an endpoint outside the vertex set", internalerr.ErrInvariant, e.Source, e.Target)
		}
		if !normalize {
			continue
		}
		cs, ct := g.vertices[si].Cooccurrence, g.vertices[ti].Cooccurrence
		if cs == 0 || ct == 0 {
			return nil, fmt.Errorf("%w: edge (%d,%d) has zero vertex co-occurrence (%d, %d)", internalerr.ErrInvariant, e.Source, e.Target, cs, ct)
		}
		e.Strength = AssociationStrength(g.total, e.Count, cs, ct)
		e.HasStrength = true
	}

	return g, nil
}

// FromCounter aggregates a counter's edges and assembles the graph.
func FromCounter(c *cooc.Counter, normalize bool) (*Graph, error) {
	edges := c.Snapshot()
	degree, cooccurrence := cooc.Aggregate(edges)
	return Assemble(edges, degree, cooccurrence, normalize)
}

// FromEdges rebuilds a graph from stored edge counts, recomputing the vertex
// aggregates and strengths so that a reloaded graph satisfies the same
// invariants as a freshly built one.
func FromEdges(edges []Edge, normalize bool) (*Graph, error) {
	counts := make(cooc.EdgeCount, len(edges))
	for _, e := range edges {
		p := cooc.NewPair(e.Source, e.Target)
		if _, dup := counts[p]; dup {
			return nil, fmt.Errorf("%w: duplicate edge (%d,%d)", internalerr.ErrInvalidInput, p.A, p.B)
		}
		counts[p] = e.Count
	}
	degree, cooccurrence := cooc.Aggregate(counts)
	return Assemble(counts, degree, cooccurrence, normalize)
}

// Normalized reports whether edges carry association strengths.
func (g *Graph) Normalized() bool { return g.normalized }

// TotalCooccurrences returns N, the sum of all edge counts.
func (g *Graph) TotalCooccurrences() int64 { return g.total }

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Vertices returns the vertices ordered by term ID.
func (g *Graph) Vertices() []Vertex {
	return slices.Clone(g.vertices)
}

// Edges returns the edges ordered by (Source, Target).
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Vertex looks up a vertex by term ID.
func (g *Graph) Vertex(id vocab.TermID) (Vertex, bool) {
	i, ok := g.vertexIndex[id]
	if !ok {
		return Vertex{}, false
	}
	return g.vertices[i], true
}

// Edge looks up the edge between s and t, in either order.
func (g *Graph) Edge(s, t vocab.TermID) (Edge, bool) {
	i, ok := g.edgeIndex[cooc.NewPair(s, t)]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Neighbors returns the edges incident to id, ordered by (Source, Target).
func (g *Graph) Neighbors(id vocab.TermID) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			out = append(out, e)
		}
	}
	return out
}
