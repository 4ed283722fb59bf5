package cograph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/cograph/pkg/cograph/config"
	"github.com/cognicore/cograph/pkg/cograph/cooc"
	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/logging"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Builder turns a corpus into a co-occurrence graph. A Builder holds no state
// between runs, so building the same corpus twice yields identical graphs.
type Builder struct {
	width     int
	normalize bool
	workers   int
	logger    *log.Logger
}

// Options configures a Builder
type Options struct {
	// WindowWidth is the number of consecutive positions per window. Zero
	// selects config.DefaultWindowWidth.
	WindowWidth int
	// Normalize is off in the zero value; start from DefaultOptions to get
	// association strength by default.
	Normalize bool
	// Workers > 1 counts documents in parallel.
	Workers int
	Logger  *log.Logger
}

// DefaultOptions returns width 3 with normalization on.
func DefaultOptions() Options {
	return Options{
		WindowWidth: config.DefaultWindowWidth,
		Normalize:   true,
		Workers:     1,
	}
}

// New creates a Builder, rejecting invalid options.
func New(opts Options) (*Builder, error) {
	if opts.WindowWidth == 0 {
		opts.WindowWidth = config.DefaultWindowWidth
	}
	if opts.WindowWidth < config.MinWindowWidth {
		return nil, fmt.Errorf("%w: window width must be >= %d, got %d", internalerr.ErrInvalidConfig, config.MinWindowWidth, opts.WindowWidth)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Builder{
		width:     opts.WindowWidth,
		normalize: opts.Normalize,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}, nil
}

// NewFromConfig creates a Builder from a loaded configuration.
func NewFromConfig(cfg *config.Config, logger *log.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(Options{
		WindowWidth: cfg.WindowWidth,
		Normalize:   cfg.ShouldNormalize(),
		Workers:     cfg.Workers,
		Logger:      logger,
	})
}

// WindowWidth returns the configured window width.
func (b *Builder) WindowWidth() int { return b.width }

// Build windows every document, counts pairs across the corpus and assembles
// the graph. An empty corpus is rejected before any work is done.
func (b *Builder) Build(ctx context.Context, corpus cooc.Corpus) (*graph.Graph, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, internalerr.ErrEmptyCorpus)
	}

	start := time.Now()
	corpus, dropped := dropUnknown(corpus)
	if dropped > 0 {
		b.logger.Debug("dropped unknown positions before windowing", "positions", dropped)
	}
	short := 0
	for _, doc := range corpus {
		if len(doc) < b.width {
			short++
		}
	}
	if short > 0 {
		b.logger.Debug("documents shorter than window contribute no pairs", "skipped", short, "width", b.width)
	}

	counter, err := cooc.CountParallel(ctx, corpus, b.width, b.workers)
	if err != nil {
		return nil, fmt.Errorf("count co-occurrences: %w", err)
	}
	b.logger.Debug("counted pairs",
		"docs", counter.TotalDocs(),
		"unique_pairs", counter.UniquePairs(),
		"total", counter.Total(),
		"workers", b.workers,
		"elapsed", time.Since(start))

	g, err := graph.FromCounter(counter, b.normalize)
	if err != nil {
		return nil, fmt.Errorf("assemble graph: %w", err)
	}
	b.logger.Info("built co-occurrence graph",
		"vertices", g.NumVertices(),
		"edges", g.NumEdges(),
		"normalized", g.Normalized(),
		"elapsed", time.Since(start))
	return g, nil
}

// dropUnknown removes negative term IDs from every document. Documents
// without any are shared with the input, the input itself is never modified.
func dropUnknown(corpus cooc.Corpus) (cooc.Corpus, int) {
	var out cooc.Corpus
	dropped := 0
	for i, doc := range corpus {
		if !slices.ContainsFunc(doc, isUnknown) {
			if out != nil {
				out[i] = doc
			}
			continue
		}
		if out == nil {
			out = make(cooc.Corpus, len(corpus))
			copy(out, corpus[:i])
		}
		kept := slices.DeleteFunc(slices.Clone(doc), isUnknown)
		dropped += len(doc) - len(kept)
		out[i] = kept
	}
	if out == nil {
		return corpus, 0
	}
	return out, dropped
}

func isUnknown(id vocab.TermID) bool { return id < 0 }

// BuildTokens resolves token documents through dict, dropping unknown
// tokens, and builds the graph.
func (b *Builder) BuildTokens(ctx context.Context, docs [][]string, dict vocab.Dictionary) (*graph.Graph, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, internalerr.ErrEmptyCorpus)
	}
	corpus := make(cooc.Corpus, len(docs))
	for i, doc := range docs {
		corpus[i] = vocab.Doc2IDX(dict, doc)
	}
	return b.Build(ctx, corpus)
}
