package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/cograph/pkg/cograph/cooc"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
)

func scenarioGraph(t *testing.T, normalize bool) *Graph {
	t.Helper()
	c := cooc.Count(cooc.Corpus{{1, 2, 3}, {2, 3, 4}}, 3)
	g, err := FromCounter(c, normalize)
	if err != nil {
		t.Fatalf("FromCounter: %v", err)
	}
	return g
}

func TestAssembleScenario(t *testing.T) {
	g := scenarioGraph(t, true)

	if g.NumVertices() != 4 || g.NumEdges() != 5 {
		t.Fatalf("got %d vertices, %d edges; want 4, 5", g.NumVertices(), g.NumEdges())
	}
	if g.TotalCooccurrences() != 6 {
		t.Errorf("N = %d, want 6", g.TotalCooccurrences())
	}

	e, ok := g.Edge(3, 2)
	if !ok {
		t.Fatal("edge (2,3) missing")
	}
	if e.Count != 2 || !e.HasStrength {
		t.Errorf("edge (2,3) = %+v", e)
	}
	if math.Abs(e.Strength-1.5) > 1e-12 {
		t.Errorf("association strength(2,3) = %f, want 1.5", e.Strength)
	}

	// (1,2): 2*6*1 / (2*4)
	e12, _ := g.Edge(1, 2)
	if math.Abs(e12.Strength-1.5) > 1e-12 {
		t.Errorf("association strength(1,2) = %f, want 1.5", e12.Strength)
	}

	wantCooc := map[int32]int64{1: 2, 2: 4, 3: 4, 4: 2}
	wantDegree := map[int32]int64{1: 2, 2: 3, 3: 3, 4: 2}
	for _, v := range g.Vertices() {
		if v.Cooccurrence != wantCooc[int32(v.ID)] {
			t.Errorf("vertex %d cooccurrence = %d", v.ID, v.Cooccurrence)
		}
		if v.Degree != wantDegree[int32(v.ID)] {
			t.Errorf("vertex %d degree = %d", v.ID, v.Degree)
		}
	}
}

func TestAssembleUnnormalized(t *testing.T) {
	g := scenarioGraph(t, false)
	if g.Normalized() {
		t.Error("graph should not be normalized")
	}
	for _, e := range g.Edges() {
		if e.HasStrength {
			t.Errorf("edge %+v should not carry a strength", e)
		}
	}
	if g.Strengths() != nil {
		t.Error("Strengths() should be nil for an unnormalized graph")
	}
}

func TestAssembleOrdering(t *testing.T) {
	g := scenarioGraph(t, true)
	edges := g.Edges()
	for i := 1; i < len(edges); i++ {
		if edges[i-1].Pair().Compare(edges[i].Pair()) >= 0 {
			t.Errorf("edges not sorted at %d: %v then %v", i, edges[i-1], edges[i])
		}
	}
	vertices := g.Vertices()
	for i := 1; i < len(vertices); i++ {
		if vertices[i-1].ID >= vertices[i].ID {
			t.Errorf("vertices not sorted at %d", i)
		}
	}
}

func TestAssembleZeroCooccurrenceIsInvariantViolation(t *testing.T) {
	edges := cooc.EdgeCount{{A: 1, B: 2}: 3}
	degree := cooc.VertexDegree{1: 1, 2: 1}
	broken := cooc.VertexCooccurrence{1: 3}

	g, err := Assemble(edges, degree, broken, true)
	if !errors.Is(err, internalerr.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if g != nil {
		t.Error("no graph should be returned on invariant violation")
	}
}

func TestAssembleMissingEndpoint(t *testing.T) {
	edges := cooc.EdgeCount{{A: 1, B: 2}: 1}
	degree := cooc.VertexDegree{1: 1}
	_, err := Assemble(edges, degree, cooc.VertexCooccurrence{1: 1}, false)
	if !errors.Is(err, internalerr.ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}
}

func TestAssembleNonCanonicalEdge(t *testing.T) {
	edges := cooc.EdgeCount{{A: 2, B: 1}: 1}
	degree, cooccurrence := cooc.Aggregate(edges)
	_, err := Assemble(edges, degree, cooccurrence, true)
	if !errors.Is(err, internalerr.ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}
}

func TestFromEdgesRebuilds(t *testing.T) {
	orig := scenarioGraph(t, true)
	stripped := make([]Edge, 0, orig.NumEdges())
	for _, e := range orig.Edges() {
		stripped = append(stripped, Edge{Source: e.Target, Target: e.Source, Count: e.Count})
	}

	g, err := FromEdges(stripped, true)
	if err != nil {
		t.Fatalf("FromEdges: %v", err)
	}
	for _, want := range orig.Edges() {
		got, ok := g.Edge(want.Source, want.Target)
		if !ok || got != want {
			t.Errorf("edge %v: got %+v, want %+v", want.Pair(), got, want)
		}
	}

	dup := append(stripped, stripped[0])
	if _, err := FromEdges(dup, true); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for duplicate edge, got %v", err)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	a := scenarioGraph(t, true).Edges()
	b := scenarioGraph(t, true).Edges()
	if len(a) != len(b) {
		t.Fatal("edge counts differ between runs")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("edge %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestNoIsolatedVertices(t *testing.T) {
	c := cooc.Count(cooc.Corpus{{1, 1, 1}, {2, 3}, {4}}, 2)
	g, err := FromCounter(c, true)
	if err != nil {
		t.Fatalf("FromCounter: %v", err)
	}
	if g.NumVertices() != 2 {
		t.Errorf("expected only vertices 2 and 3, got %v", g.Vertices())
	}
	for _, id := range []int32{1, 4} {
		if _, ok := g.Vertex(vocabID(id)); ok {
			t.Errorf("vertex %d has no edge and must not be present", id)
		}
	}
}
