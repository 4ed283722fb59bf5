package cooc

import (
	"cmp"
	"slices"

	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Corpus is an ordered list of documents already resolved to term IDs.
type Corpus [][]vocab.TermID

// Pair is an unordered pair of distinct terms, stored with A < B.
type Pair struct {
	A, B vocab.TermID
}

// NewPair returns the canonical pair for x and y.
func NewPair(x, y vocab.TermID) Pair {
	if x > y {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Valid reports whether p is canonical, has two distinct terms and contains
// no Unknown sentinel.
func (p Pair) Valid() bool {
	return p.A >= 0 && p.A < p.B
}

// Has reports whether id is one of the pair's endpoints.
func (p Pair) Has(id vocab.TermID) bool {
	return p.A == id || p.B == id
}

// Compare orders pairs by A, then B.
func (p Pair) Compare(o Pair) int {
	if c := cmp.Compare(p.A, o.A); c != 0 {
		return c
	}
	return cmp.Compare(p.B, o.B)
}

// PositionPair is a pair of document positions with P < Q.
type PositionPair struct {
	P, Q int
}

// PositionPairs returns every combination of two positions in w.
func PositionPairs(w Window) []PositionPair {
	if len(w) < 2 {
		return nil
	}
	out := make([]PositionPair, 0, len(w)*(len(w)-1)/2)
	for i := 0; i < len(w); i++ {
		for j := i + 1; j < len(w); j++ {
			p, q := w[i], w[j]
			if p > q {
				p, q = q, p
			}
			out = append(out, PositionPair{P: p, Q: q})
		}
	}
	return out
}

// DocumentPairs turns one document into its co-occurrence pairs.
//
// Position pairs reachable from several overlapping windows count once. Each
// surviving position pair becomes a canonical term pair; pairs of a term with
// itself are dropped. Term pairs are not deduplicated, so two different
// position pairs over the same terms both appear in the output. The result
// is ordered by position pair.
func DocumentPairs(doc []vocab.TermID, width int) []Pair {
	seen := make(map[PositionPair]struct{})
	var positions []PositionPair
	for w := range Windows(len(doc), width) {
		for _, pp := range PositionPairs(w) {
			if _, ok := seen[pp]; ok {
				continue
			}
			seen[pp] = struct{}{}
			positions = append(positions, pp)
		}
	}

	slices.SortFunc(positions, func(a, b PositionPair) int {
		if c := cmp.Compare(a.P, b.P); c != 0 {
			return c
		}
		return cmp.Compare(a.Q, b.Q)
	})

	pairs := make([]Pair, 0, len(positions))
	for _, pp := range positions {
		s, t := doc[pp.P], doc[pp.Q]
		if s == t {
			continue
		}
		pairs = append(pairs, NewPair(s, t))
	}
	return pairs
}

// CorpusPairs returns the pair sequence of every document, in corpus order.
func CorpusPairs(corpus Corpus, width int) [][]Pair {
	out := make([][]Pair, len(corpus))
	for i, doc := range corpus {
		out[i] = DocumentPairs(doc, width)
	}
	return out
}
