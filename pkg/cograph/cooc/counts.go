package cooc

import "github.com/cognicore/cograph/pkg/cograph/vocab"

// EdgeCount maps each pair to the number of times it occurred across the
// corpus. Every stored count is >= 1.
type EdgeCount map[Pair]int64

// VertexDegree maps a term to its number of distinct neighbors.
type VertexDegree map[vocab.TermID]int64

// VertexCooccurrence maps a term to the summed counts of its incident edges.
type VertexCooccurrence map[vocab.TermID]int64

// Counter tallies co-occurrence pairs. A Counter is not safe for concurrent
// use; parallel counting gives each worker its own Counter and merges them.
type Counter struct {
	docs  int64
	total int64
	edges EdgeCount
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{edges: make(EdgeCount)}
}

// AddDocument windows one document and counts its pairs.
func (c *Counter) AddDocument(doc []vocab.TermID, width int) {
	c.AddPairs(DocumentPairs(doc, width))
}

// AddPairs counts one document's pair sequence. Pairs are canonicalized;
// self pairs and pairs containing Unknown are ignored.
func (c *Counter) AddPairs(pairs []Pair) {
	c.docs++
	for _, p := range pairs {
		p = NewPair(p.A, p.B)
		if !p.Valid() {
			continue
		}
		c.edges[p]++
		c.total++
	}
}

// Merge adds every count of other into c.
func (c *Counter) Merge(other *Counter) {
	c.docs += other.docs
	c.total += other.total
	for p, n := range other.edges {
		c.edges[p] += n
	}
}

// GetPairCount returns the count for a pair in either order.
func (c *Counter) GetPairCount(x, y vocab.TermID) int64 {
	return c.edges[NewPair(x, y)]
}

// TotalDocs returns the number of documents counted.
func (c *Counter) TotalDocs() int64 {
	return c.docs
}

// Total returns the number of pair occurrences counted (the sum of all edge counts).
func (c *Counter) Total() int64 {
	return c.total
}

// UniquePairs returns the number of distinct pairs.
func (c *Counter) UniquePairs() int {
	return len(c.edges)
}

// Snapshot returns a copy of the edge counts.
func (c *Counter) Snapshot() EdgeCount {
	out := make(EdgeCount, len(c.edges))
	for p, n := range c.edges {
		out[p] = n
	}
	return out
}

// Count runs the serial pipeline over a whole corpus.
func Count(corpus Corpus, width int) *Counter {
	c := NewCounter()
	for _, doc := range corpus {
		c.AddDocument(doc, width)
	}
	return c
}

// Aggregate derives vertex degree and vertex co-occurrence from edge counts in
// a single pass. Every edge with a positive count adds 1 to the degree of
// both endpoints and its count to their co-occurrence.
func Aggregate(edges EdgeCount) (VertexDegree, VertexCooccurrence) {
	degree := make(VertexDegree)
	cooc := make(VertexCooccurrence)
	for p, n := range edges {
		if n < 1 {
			continue
		}
		degree[p.A]++
		degree[p.B]++
		cooc[p.A] += n
		cooc[p.B] += n
	}
	return degree, cooc
}

// Total returns the sum of all edge counts.
func Total(edges EdgeCount) int64 {
	var n int64
	for _, c := range edges {
		n += c
	}
	return n
}
