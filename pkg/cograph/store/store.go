package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Store persists built graphs. Each saved graph is a run identified by a ULID.
type Store interface {
	Close() error

	// SaveGraph stores g and the labels of its vertices. If meta.ID is empty
	// a new run ID is generated. The stored run ID is returned.
	SaveGraph(ctx context.Context, meta RunMeta, g *graph.Graph, dict vocab.Dictionary) (string, error)
	// LoadGraph rebuilds a stored graph. Missing runs return internalerr.ErrNotFound.
	LoadGraph(ctx context.Context, runID string) (*graph.Graph, RunMeta, error)
	ListRuns(ctx context.Context) ([]RunMeta, error)
	DeleteRun(ctx context.Context, runID string) error

	// Terms returns the labels stored for a run's vertices.
	Terms(ctx context.Context, runID string) (map[vocab.TermID]string, error)
	// TopEdges returns up to k edges ranked like graph.Graph.TopEdges.
	TopEdges(ctx context.Context, runID string, k int) ([]graph.Edge, error)
}

// RunMeta describes a stored graph.
type RunMeta struct {
	ID          string
	CreatedAt   time.Time
	Source      string // free-form corpus description, e.g. an input path
	WindowWidth int
	Normalized  bool
	Docs        int64
	Vertices    int
	Edges       int
	Total       int64
}

// FillFromGraph copies the graph-derived fields into m.
func (m *RunMeta) FillFromGraph(g *graph.Graph) {
	m.Normalized = g.Normalized()
	m.Vertices = g.NumVertices()
	m.Edges = g.NumEdges()
	m.Total = g.TotalCooccurrences()
}

var (
	idMu    sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a new time-ordered run ID.
func NewRunID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Labels resolves the vertices of g through dict. Vertices the dictionary
// does not know are left out.
func Labels(g *graph.Graph, dict vocab.Dictionary) map[vocab.TermID]string {
	out := make(map[vocab.TermID]string, g.NumVertices())
	if dict == nil {
		return out
	}
	for _, v := range g.Vertices() {
		if tok, ok := dict.Token(v.ID); ok {
			out[v.ID] = tok
		}
	}
	return out
}
