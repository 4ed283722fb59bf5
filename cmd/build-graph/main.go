package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cognicore/cograph/internal/corpus"
	"github.com/cognicore/cograph/pkg/cograph"
	"github.com/cognicore/cograph/pkg/cograph/config"
	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/ingest"
	"github.com/cognicore/cograph/pkg/cograph/logging"
	"github.com/cognicore/cograph/pkg/cograph/store"
	"github.com/cognicore/cograph/pkg/cograph/store/sqlite"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		input      = flag.String("input", "", "Path to JSONL corpus with {\"id\",\"text\"} lines (required)")
		vocabPath  = flag.String("vocab", "", "YAML vocabulary file (optional; built from the corpus when empty)")
		vocabOut   = flag.String("vocab-out", "", "Write the vocabulary used for this run to this file (optional)")
		dbPath     = flag.String("db", "", "SQLite database for the built graph (overrides store.path)")
		window     = flag.Int("window", 0, "Window width, >= 2 (overrides window_width)")
		normalize  = flag.String("normalize", "", "true/false: compute association strength (overrides normalize)")
		workers    = flag.Int("workers", 0, "Parallel counting workers (overrides workers)")
		noBelow    = flag.Int("no-below", -1, "Drop tokens found in fewer documents (overrides vocab.no_below)")
		minLen     = flag.Int("min-token-len", 1, "Minimum token length in runes")
		stripHTML  = flag.Bool("html", false, "Strip HTML markup from document text")
		top        = flag.Int("top", 10, "Number of top edges to print")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	boot := logging.New(logging.Options{Prefix: "build-graph"})
	if *input == "" {
		boot.Fatal("--input is required")
	}

	loader := &config.Loader{
		ConfigPath: *configPath,
		VocabPath:  *vocabPath,
		Override: func(cfg *config.Config) error {
			if *debug {
				cfg.Log.Level = "debug"
			}
			return applyOverrides(cfg, *window, *normalize, *workers, *noBelow, *dbPath)
		},
	}
	comp, err := loader.Load()
	if err != nil {
		boot.Fatal("load configuration", "err", err)
	}
	cfg := comp.Config

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Prefix: "build-graph"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	items, err := corpus.LoadJSONL(*input, corpus.Options{StripHTML: *stripHTML, Logger: logger})
	if err != nil {
		logger.Fatal("load corpus", "err", err)
	}
	logger.Info("loaded corpus", "path", *input, "docs", len(items))

	tokenizer := ingest.NewTokenizer(*minLen)
	docs := tokenizer.TokenizeAll(corpus.Texts(items))

	dict := comp.Vocabulary
	if dict == nil {
		dict = vocab.Build(docs, vocab.BuildOptions{NoBelow: cfg.Vocab.NoBelow})
		logger.Info("built vocabulary", "terms", dict.Len(), "no_below", cfg.Vocab.NoBelow)
	} else {
		logger.Info("loaded vocabulary", "path", *vocabPath, "terms", dict.Len())
	}
	if *vocabOut != "" {
		if err := dict.SaveYAML(*vocabOut); err != nil {
			logger.Fatal("write vocabulary", "err", err)
		}
	}

	builder, err := cograph.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("configure builder", "err", err)
	}
	g, err := builder.BuildTokens(ctx, docs, dict)
	if err != nil {
		logger.Fatal("build graph", "err", err)
	}

	runID := ""
	if cfg.Store.Path != "" {
		runID, err = persist(ctx, cfg, *input, int64(len(docs)), g, dict)
		if err != nil {
			logger.Fatal("persist graph", "err", err)
		}
		logger.Info("stored graph", "db", cfg.Store.Path, "run", runID)
	}

	printSummary(os.Stdout, runID, g, dict, *top)
}

func applyOverrides(cfg *config.Config, window int, normalize string, workers, noBelow int, dbPath string) error {
	if window != 0 {
		cfg.WindowWidth = window
	}
	switch strings.ToLower(normalize) {
	case "":
	case "true", "1", "yes":
		cfg.SetNormalize(true)
	case "false", "0", "no":
		cfg.SetNormalize(false)
	default:
		return fmt.Errorf("--normalize must be true or false, got %q", normalize)
	}
	if workers != 0 {
		cfg.Workers = workers
	}
	if noBelow >= 0 {
		cfg.Vocab.NoBelow = noBelow
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return nil
}

func persist(ctx context.Context, cfg *config.Config, source string, docs int64, g *graph.Graph, dict vocab.Dictionary) (string, error) {
	st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	return st.SaveGraph(ctx, store.RunMeta{
		CreatedAt:   time.Now(),
		Source:      source,
		WindowWidth: cfg.WindowWidth,
		Docs:        docs,
	}, g, dict)
}

func printSummary(w io.Writer, runID string, g *graph.Graph, dict vocab.Dictionary, top int) {
	s := g.Summary()
	if runID != "" {
		fmt.Fprintf(w, "run:          %s\n", runID)
	}
	fmt.Fprintf(w, "vertices:     %d\n", s.Vertices)
	fmt.Fprintf(w, "edges:        %d\n", s.Edges)
	fmt.Fprintf(w, "N:            %d\n", s.TotalCooccurrences)
	fmt.Fprintf(w, "mean degree:  %.2f\n", s.MeanDegree)
	fmt.Fprintf(w, "density:      %.4f\n", s.Density)

	if top <= 0 || s.Edges == 0 {
		return
	}
	fmt.Fprintf(w, "\ntop %d edges:\n", top)
	for _, e := range g.TopEdges(top) {
		fmt.Fprintf(w, "  %-20s %-20s count=%-6d", label(dict, e.Source), label(dict, e.Target), e.Count)
		if e.HasStrength {
			fmt.Fprintf(w, " strength=%.4f", e.Strength)
		}
		fmt.Fprintln(w)
	}
}

func label(dict vocab.Dictionary, id vocab.TermID) string {
	if tok, ok := dict.Token(id); ok {
		return tok
	}
	return fmt.Sprintf("#%d", id)
}
