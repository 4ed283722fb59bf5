package graph

import (
	"testing"

	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

func vocabID(id int32) vocab.TermID { return vocab.TermID(id) }

func TestSummary(t *testing.T) {
	s := scenarioGraph(t, true).Summary()
	if s.Vertices != 4 || s.Edges != 5 || s.TotalCooccurrences != 6 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.MaxDegree != 3 || s.MaxCooccurrence != 4 {
		t.Errorf("max degree/cooccurrence = %d/%d, want 3/4", s.MaxDegree, s.MaxCooccurrence)
	}
	if s.MeanDegree != 2.5 {
		t.Errorf("mean degree = %f, want 2.5", s.MeanDegree)
	}
	// 5 of 6 possible edges
	if s.Density < 0.833 || s.Density > 0.834 {
		t.Errorf("density = %f", s.Density)
	}
}

func TestTopEdges(t *testing.T) {
	g := scenarioGraph(t, false)
	top := g.TopEdges(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(top))
	}
	if top[0].Source != 2 || top[0].Target != 3 {
		t.Errorf("highest count edge should be (2,3), got %+v", top[0])
	}
	if top[1].Source != 1 || top[1].Target != 2 {
		t.Errorf("ties should break on pair order, got %+v", top[1])
	}
	if len(g.TopEdges(-1)) != g.NumEdges() {
		t.Error("negative k should return every edge")
	}
}

func TestTopEdgesByStrength(t *testing.T) {
	g := scenarioGraph(t, true)
	top := g.TopEdges(0)
	if len(top) != 0 {
		t.Errorf("k=0 should return nothing, got %d", len(top))
	}
	all := g.TopEdges(10)
	for i := 1; i < len(all); i++ {
		if all[i-1].Strength < all[i].Strength {
			t.Errorf("edges not ranked by strength at %d", i)
		}
	}
}

func TestColumns(t *testing.T) {
	g := scenarioGraph(t, true)
	ids, vals := g.CooccurrenceColumn()
	if len(ids) != 4 || len(vals) != 4 {
		t.Fatalf("column lengths %d/%d", len(ids), len(vals))
	}
	var sum int64
	for _, v := range vals {
		sum += v
	}
	if sum != 2*g.TotalCooccurrences() {
		t.Errorf("sum of cooccurrence column = %d, want %d", sum, 2*g.TotalCooccurrences())
	}
	if d := g.DegreeColumn(); len(d) != 4 || d[1] != 3 {
		t.Errorf("degree column = %v", d)
	}
	if s := g.Strengths(); len(s) != g.NumEdges() {
		t.Errorf("strengths length = %d", len(s))
	}
}
