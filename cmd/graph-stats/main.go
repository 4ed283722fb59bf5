package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/logging"
	"github.com/cognicore/cograph/pkg/cograph/store"
	"github.com/cognicore/cograph/pkg/cograph/store/sqlite"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

func main() {
	var (
		dbPath = flag.String("db", "", "SQLite database written by build-graph (required)")
		runID  = flag.String("run", "", "Run ID to inspect; lists runs when empty")
		top    = flag.Int("top", 20, "Number of top edges to print")
		term   = flag.String("term", "", "Print the neighbors of this term instead of top edges")
		debug  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	logger := logging.New(logging.Options{Level: level, Prefix: "graph-stats"})

	if *dbPath == "" {
		logger.Fatal("--db is required")
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		logger.Fatal("open store", "db", *dbPath, "err", err)
	}
	defer st.Close()

	if *runID == "" {
		if err := listRuns(ctx, os.Stdout, st); err != nil {
			logger.Fatal("list runs", "err", err)
		}
		return
	}

	if err := showRun(ctx, os.Stdout, st, *runID, *term, *top); err != nil {
		if errors.Is(err, internalerr.ErrNotFound) {
			logger.Fatal("no such run", "run", *runID)
		}
		logger.Fatal("show run", "run", *runID, "err", err)
	}
}

func listRuns(ctx context.Context, w io.Writer, st store.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs stored")
		return nil
	}
	fmt.Fprintf(w, "%-26s  %-20s  %6s  %8s  %8s  %10s  %s\n", "RUN", "CREATED", "WIDTH", "VERTICES", "EDGES", "N", "SOURCE")
	for _, r := range runs {
		fmt.Fprintf(w, "%-26s  %-20s  %6d  %8d  %8d  %10d  %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.WindowWidth, r.Vertices, r.Edges, r.Total, r.Source)
	}
	return nil
}

func showRun(ctx context.Context, w io.Writer, st store.Store, runID, term string, top int) error {
	g, meta, err := st.LoadGraph(ctx, runID)
	if err != nil {
		return err
	}
	labels, err := st.Terms(ctx, runID)
	if err != nil {
		return err
	}

	s := g.Summary()
	fmt.Fprintf(w, "run:              %s\n", meta.ID)
	fmt.Fprintf(w, "source:           %s\n", meta.Source)
	fmt.Fprintf(w, "window width:     %d\n", meta.WindowWidth)
	fmt.Fprintf(w, "documents:        %d\n", meta.Docs)
	fmt.Fprintf(w, "vertices:         %d\n", s.Vertices)
	fmt.Fprintf(w, "edges:            %d\n", s.Edges)
	fmt.Fprintf(w, "N:                %d\n", s.TotalCooccurrences)
	fmt.Fprintf(w, "max degree:       %d\n", s.MaxDegree)
	fmt.Fprintf(w, "max cooccurrence: %d\n", s.MaxCooccurrence)
	fmt.Fprintf(w, "normalized:       %t\n", s.Normalized)

	var edges []graph.Edge
	if term != "" {
		id, ok := lookup(labels, term)
		if !ok {
			return fmt.Errorf("term %q: %w", term, internalerr.ErrNotFound)
		}
		v, _ := g.Vertex(id)
		fmt.Fprintf(w, "\n%s: degree=%d cooccurrence=%d\n", term, v.Degree, v.Cooccurrence)
		edges = g.Neighbors(id)
	} else {
		edges, err = st.TopEdges(ctx, runID, top)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\ntop %d edges:\n", len(edges))
	}

	for _, e := range edges {
		fmt.Fprintf(w, "  %-20s %-20s count=%-6d", name(labels, e.Source), name(labels, e.Target), e.Count)
		if e.HasStrength {
			fmt.Fprintf(w, " strength=%.4f", e.Strength)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func lookup(labels map[vocab.TermID]string, term string) (vocab.TermID, bool) {
	for id, tok := range labels {
		if tok == term {
			return id, true
		}
	}
	return vocab.Unknown, false
}

func name(labels map[vocab.TermID]string, id vocab.TermID) string {
	if tok, ok := labels[id]; ok {
		return tok
	}
	return fmt.Sprintf("#%d", id)
}
