package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/store"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

type run struct {
	meta   store.RunMeta
	graph  *graph.Graph
	labels map[vocab.TermID]string
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveGraph implements store.Store. Graphs are immutable, so the run keeps
// the caller's graph without copying.
func (s *Store) SaveGraph(ctx context.Context, meta store.RunMeta, g *graph.Graph, dict vocab.Dictionary) (string, error) {
	if g == nil {
		return "", fmt.Errorf("%w: nil graph", internalerr.ErrInvalidInput)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	if meta.ID == "" {
		meta.ID = store.NewRunID(meta.CreatedAt)
	}
	meta.FillFromGraph(g)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[meta.ID]; exists {
		return "", fmt.Errorf("run %s already exists: %w", meta.ID, internalerr.ErrInvalidInput)
	}
	s.runs[meta.ID] = run{meta: meta, graph: g, labels: store.Labels(g, dict)}
	return meta.ID, nil
}

func (s *Store) get(runID string) (run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return run{}, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return r, nil
}

// LoadGraph implements store.Store.
func (s *Store) LoadGraph(ctx context.Context, runID string) (*graph.Graph, store.RunMeta, error) {
	r, err := s.get(runID)
	if err != nil {
		return nil, store.RunMeta{}, err
	}
	return r.graph, r.meta, nil
}

// ListRuns implements store.Store, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]store.RunMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.RunMeta, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.meta)
	}
	slices.SortFunc(out, func(a, b store.RunMeta) int { return strings.Compare(b.ID, a.ID) })
	return out, nil
}

// DeleteRun implements store.Store.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	delete(s.runs, runID)
	return nil
}

// Terms implements store.Store.
func (s *Store) Terms(ctx context.Context, runID string) (map[vocab.TermID]string, error) {
	r, err := s.get(runID)
	if err != nil {
		return nil, err
	}
	return maps.Clone(r.labels), nil
}

// TopEdges implements store.Store.
func (s *Store) TopEdges(ctx context.Context, runID string, k int) ([]graph.Edge, error) {
	r, err := s.get(runID)
	if err != nil {
		return nil, err
	}
	return r.graph.TopEdges(k), nil
}
