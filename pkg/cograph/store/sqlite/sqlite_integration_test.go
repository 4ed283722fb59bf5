package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/cograph/pkg/cograph/cooc"
	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/store"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func pathGraph(t *testing.T, normalize bool) *graph.Graph {
	t.Helper()
	g, err := graph.FromCounter(cooc.Count(cooc.Corpus{{0, 1, 2, 3}}, 3), normalize)
	if err != nil {
		t.Fatalf("FromCounter: %v", err)
	}
	return g
}

// TestSQLiteIntegrationRoundTrip saves a graph and reloads it
func TestSQLiteIntegrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	g := pathGraph(t, true)
	dict, _ := vocab.FromTokens([]string{"rockets", "moonshots", "blame", "nots"})
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := st.SaveGraph(ctx, store.RunMeta{
		CreatedAt:   created,
		Source:      "corpus.jsonl",
		WindowWidth: 3,
		Docs:        1,
	}, g, dict)
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	loaded, meta, err := st.LoadGraph(ctx, id)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if !meta.CreatedAt.Equal(created) || meta.Source != "corpus.jsonl" || meta.WindowWidth != 3 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if !meta.Normalized || meta.Vertices != 4 || meta.Edges != 5 || meta.Total != 5 {
		t.Errorf("graph figures mismatch: %+v", meta)
	}

	want := g.Edges()
	got := loaded.Edges()
	if len(got) != len(want) {
		t.Fatalf("got %d edges, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	for _, v := range g.Vertices() {
		lv, ok := loaded.Vertex(v.ID)
		if !ok || lv != v {
			t.Errorf("vertex %d: got %+v, want %+v", v.ID, lv, v)
		}
	}

	terms, err := st.Terms(ctx, id)
	if err != nil {
		t.Fatalf("Terms: %v", err)
	}
	if len(terms) != 4 || terms[2] != "blame" {
		t.Errorf("Terms = %v", terms)
	}
}

func TestSQLiteTopEdges(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	g := pathGraph(t, true)
	id, err := st.SaveGraph(ctx, store.RunMeta{WindowWidth: 3}, g, nil)
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	top, err := st.TopEdges(ctx, id, -1)
	if err != nil {
		t.Fatalf("TopEdges: %v", err)
	}
	want := g.TopEdges(-1)
	if len(top) != len(want) {
		t.Fatalf("got %d edges, want %d", len(top), len(want))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("rank %d: got %+v, want %+v", i, top[i], want[i])
		}
	}
	// (1,2) links the two busiest vertices and ranks last.
	if last := top[len(top)-1]; last.Source != 1 || last.Target != 2 {
		t.Errorf("lowest ranked edge = %+v, want (1,2)", last)
	}

	two, _ := st.TopEdges(ctx, id, 2)
	if len(two) != 2 {
		t.Errorf("expected 2 edges, got %d", len(two))
	}
}

func TestSQLiteUnnormalized(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.SaveGraph(ctx, store.RunMeta{WindowWidth: 3}, pathGraph(t, false), nil)
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	loaded, meta, err := st.LoadGraph(ctx, id)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if meta.Normalized || loaded.Normalized() {
		t.Error("run should stay unnormalized")
	}
	top, _ := st.TopEdges(ctx, id, 1)
	if len(top) != 1 || top[0].HasStrength {
		t.Errorf("unnormalized edges should have no strength: %+v", top)
	}
}

func TestSQLiteListAndDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	g := pathGraph(t, true)

	first, _ := st.SaveGraph(ctx, store.RunMeta{}, g, nil)
	second, _ := st.SaveGraph(ctx, store.RunMeta{}, g, nil)

	runs, err := st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("ListRuns should be newest first: %+v", runs)
	}

	if err := st.DeleteRun(ctx, first); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, _, err := st.LoadGraph(ctx, first); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("deleted run should be gone, got %v", err)
	}
	if err := st.DeleteRun(ctx, first); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
	if _, err := st.Terms(ctx, first); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Terms on deleted run should report ErrNotFound, got %v", err)
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	id, err := st.SaveGraph(ctx, store.RunMeta{}, pathGraph(t, true), nil)
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, _, err := st.LoadGraph(ctx, id); err != nil {
		t.Errorf("run should survive reopen: %v", err)
	}
}

func countRows(t *testing.T, st store.Store, table, runID string) int {
	t.Helper()
	var n int
	row := st.(*sqliteStore).db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE run_id=?`, runID)
	if err := row.Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// TestSQLiteDeleteRunRemovesChildRows keeps one pooled connection busy so the
// delete runs on a different one.
func TestSQLiteDeleteRunRemovesChildRows(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	dict, _ := vocab.FromTokens([]string{"rockets", "moonshots", "blame", "nots"})
	id, err := st.SaveGraph(ctx, store.RunMeta{}, pathGraph(t, true), dict)
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	keep, _ := st.SaveGraph(ctx, store.RunMeta{}, pathGraph(t, true), dict)

	conn, err := st.(*sqliteStore).db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer conn.Close()

	if err := st.DeleteRun(ctx, id); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	for _, table := range []string{"edges", "vertices", "terms"} {
		if n := countRows(t, st, table, id); n != 0 {
			t.Errorf("%d %s rows left after DeleteRun", n, table)
		}
	}
	if n := countRows(t, st, "edges", keep); n != 5 {
		t.Errorf("other run lost edges: %d left, want 5", n)
	}
}

func TestDSNEnablesForeignKeys(t *testing.T) {
	tests := map[string]string{
		"graphs.db":          "graphs.db?_pragma=foreign_keys(1)",
		"graphs.db?mode=rwc": "graphs.db?mode=rwc&_pragma=foreign_keys(1)",
	}
	for in, want := range tests {
		if got := dsn(in); got != want {
			t.Errorf("dsn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSQLiteForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	db := st.(*sqliteStore).db

	held, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer held.Close()
	other, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer other.Close()

	for name, c := range map[string]*sql.Conn{"held": held, "other": other} {
		var on int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if on != 1 {
			t.Errorf("%s connection has foreign_keys=%d", name, on)
		}
	}
}
