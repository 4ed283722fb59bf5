package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/cograph/pkg/cograph/graph"
	"github.com/cognicore/cograph/pkg/cograph/internalerr"
	"github.com/cognicore/cograph/pkg/cograph/store"
	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn enables foreign keys on every pooled connection, not just the first.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source TEXT,
	window_width INTEGER NOT NULL,
	normalized INTEGER NOT NULL,
	docs INTEGER NOT NULL DEFAULT 0,
	vertices INTEGER NOT NULL,
	edges INTEGER NOT NULL,
	total INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS terms (
	run_id TEXT NOT NULL,
	term_id INTEGER NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(run_id, term_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS vertices (
	run_id TEXT NOT NULL,
	term_id INTEGER NOT NULL,
	degree INTEGER NOT NULL,
	cooccurrence INTEGER NOT NULL,
	PRIMARY KEY(run_id, term_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	run_id TEXT NOT NULL,
	source INTEGER NOT NULL,
	target INTEGER NOT NULL,
	count INTEGER NOT NULL CHECK(count >= 1),
	strength REAL,
	PRIMARY KEY(run_id, source, target),
	CHECK(source < target),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_edges_rank ON edges(run_id, strength DESC, count DESC);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveGraph writes a run, its vertices, edges and term labels in one transaction
func (s *sqliteStore) SaveGraph(ctx context.Context, meta store.RunMeta, g *graph.Graph, dict vocab.Dictionary) (string, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, source, window_width, normalized, docs, vertices, edges, total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID,
		meta.CreatedAt.UTC().Format(time.RFC3339Nano),
		meta.Source,
		meta.WindowWidth,
		boolToInt(meta.Normalized),
		meta.Docs,
		meta.Vertices,
		meta.Edges,
		meta.Total,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := insertVertices(ctx, tx, meta.ID, g); err != nil {
		return "", err
	}
	if err := insertEdges(ctx, tx, meta.ID, g); err != nil {
		return "", err
	}
	if err := insertTerms(ctx, tx, meta.ID, store.Labels(g, dict)); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func insertVertices(ctx context.Context, tx *sql.Tx, runID string, g *graph.Graph) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vertices (run_id, term_id, degree, cooccurrence) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range g.Vertices() {
		if _, err := stmt.ExecContext(ctx, runID, int64(v.ID), v.Degree, v.Cooccurrence); err != nil {
			return fmt.Errorf("insert vertex %d: %w", v.ID, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, runID string, g *graph.Graph) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (run_id, source, target, count, strength) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range g.Edges() {
		var strength sql.NullFloat64
		if e.HasStrength {
			strength = sql.NullFloat64{Float64: e.Strength, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, int64(e.Source), int64(e.Target), e.Count, strength); err != nil {
			return fmt.Errorf("insert edge (%d,%d): %w", e.Source, e.Target, err)
		}
	}
	return nil
}

func insertTerms(ctx context.Context, tx *sql.Tx, runID string, labels map[vocab.TermID]string) error {
	if len(labels) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO terms (run_id, term_id, token) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for id, tok := range labels {
		if _, err := stmt.ExecContext(ctx, runID, int64(id), tok); err != nil {
			return fmt.Errorf("insert term %d: %w", id, err)
		}
	}
	return nil
}

const runColumns = `id, created_at, source, window_width, normalized, docs, vertices, edges, total`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.RunMeta, error) {
	var (
		m          store.RunMeta
		createdAt  string
		source     sql.NullString
		normalized int
	)
	if err := row.Scan(&m.ID, &createdAt, &source, &m.WindowWidth, &normalized, &m.Docs, &m.Vertices, &m.Edges, &m.Total); err != nil {
		return store.RunMeta{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.RunMeta{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	m.CreatedAt = t
	m.Source = source.String
	m.Normalized = normalized != 0
	return m, nil
}

func (s *sqliteStore) getRun(ctx context.Context, runID string) (store.RunMeta, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, runID)
	m, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunMeta{}, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return m, err
}

// LoadGraph reads a run's edges and reassembles the graph
func (s *sqliteStore) LoadGraph(ctx context.Context, runID string) (*graph.Graph, store.RunMeta, error) {
	meta, err := s.getRun(ctx, runID)
	if err != nil {
		return nil, store.RunMeta{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, target, count FROM edges WHERE run_id=? ORDER BY source, target`, runID)
	if err != nil {
		return nil, store.RunMeta{}, err
	}
	defer rows.Close()

	edges := make([]graph.Edge, 0, meta.Edges)
	for rows.Next() {
		var src, dst, count int64
		if err := rows.Scan(&src, &dst, &count); err != nil {
			return nil, store.RunMeta{}, err
		}
		edges = append(edges, graph.Edge{Source: vocab.TermID(src), Target: vocab.TermID(dst), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, store.RunMeta{}, err
	}

	g, err := graph.FromEdges(edges, meta.Normalized)
	if err != nil {
		return nil, store.RunMeta{}, fmt.Errorf("rebuild run %s: %w", runID, err)
	}
	return g, meta, nil
}

// ListRuns returns all runs, newest first
func (s *sqliteStore) ListRuns(ctx context.Context) ([]store.RunMeta, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunMeta
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteRun removes a run together with its terms, vertices and edges
func (s *sqliteStore) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"edges", "vertices", "terms"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return tx.Commit()
}

// Terms returns the stored vertex labels of a run
func (s *sqliteStore) Terms(ctx context.Context, runID string) (map[vocab.TermID]string, error) {
	if _, err := s.getRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT term_id, token FROM terms WHERE run_id=?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[vocab.TermID]string)
	for rows.Next() {
		var id int64
		var tok string
		if err := rows.Scan(&id, &tok); err != nil {
			return nil, err
		}
		out[vocab.TermID(id)] = tok
	}
	return out, rows.Err()
}

// TopEdges ranks edges by strength, then count, then pair order
func (s *sqliteStore) TopEdges(ctx context.Context, runID string, k int) ([]graph.Edge, error) {
	if _, err := s.getRun(ctx, runID); err != nil {
		return nil, err
	}
	if k < 0 {
		k = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT source, target, count, strength FROM edges
WHERE run_id=?
ORDER BY COALESCE(strength, 0) DESC, count DESC, source ASC, target ASC
LIMIT ?`, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var (
			src, dst, count int64
			strength        sql.NullFloat64
		)
		if err := rows.Scan(&src, &dst, &count, &strength); err != nil {
			return nil, err
		}
		out = append(out, graph.Edge{
			Source:      vocab.TermID(src),
			Target:      vocab.TermID(dst),
			Count:       count,
			Strength:    strength.Float64,
			HasStrength: strength.Valid,
		})
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
