package vocab

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TermID identifies a vocabulary entry. Valid IDs are non-negative.
type TermID int32

// Unknown is returned for tokens that are not in the vocabulary.
const Unknown TermID = -1

// Dictionary is a bidirectional mapping between surface tokens and term IDs.
type Dictionary interface {
	ID(token string) TermID
	Token(id TermID) (string, bool)
	Len() int
}

// Doc2IDX resolves a token document to term IDs. Tokens the dictionary does
// not know are dropped, so the result never contains Unknown.
func Doc2IDX(d Dictionary, tokens []string) []TermID {
	ids := make([]TermID, 0, len(tokens))
	for _, tok := range tokens {
		id := d.ID(tok)
		if id == Unknown {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Vocabulary is the in-memory Dictionary. IDs are assigned in first-seen order.
type Vocabulary struct {
	index  map[string]TermID
	tokens []string
}

// New creates an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{index: make(map[string]TermID)}
}

// FromTokens creates a vocabulary where tokens[i] has ID i.
// Duplicate or empty tokens are rejected.
func FromTokens(tokens []string) (*Vocabulary, error) {
	v := New()
	for i, tok := range tokens {
		if tok == "" {
			return nil, fmt.Errorf("vocab: empty token at index %d", i)
		}
		if _, ok := v.index[tok]; ok {
			return nil, fmt.Errorf("vocab: duplicate token %q at index %d", tok, i)
		}
		v.Add(tok)
	}
	return v, nil
}

// Add inserts a token and returns its ID. Adding a known token returns the
// existing ID.
func (v *Vocabulary) Add(token string) TermID {
	if id, ok := v.index[token]; ok {
		return id
	}
	id := TermID(len(v.tokens))
	v.index[token] = id
	v.tokens = append(v.tokens, token)
	return id
}

// ID implements Dictionary.
func (v *Vocabulary) ID(token string) TermID {
	if id, ok := v.index[token]; ok {
		return id
	}
	return Unknown
}

// Token implements Dictionary.
func (v *Vocabulary) Token(id TermID) (string, bool) {
	if id < 0 || int(id) >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Len implements Dictionary.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns all tokens in ID order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// BuildOptions controls vocabulary construction from a corpus.
type BuildOptions struct {
	// NoBelow drops tokens that occur in fewer documents than this.
	// Values <= 1 keep every token.
	NoBelow int
}

// Build creates a vocabulary from tokenized documents. Surviving tokens keep
// their first-seen order, so the same corpus always yields the same IDs.
func Build(docs [][]string, opts BuildOptions) *Vocabulary {
	df := make(map[string]int)
	var order []string
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			if df[tok] == 0 {
				order = append(order, tok)
			}
			df[tok]++
		}
	}

	v := New()
	for _, tok := range order {
		if opts.NoBelow > 1 && df[tok] < opts.NoBelow {
			continue
		}
		v.Add(tok)
	}
	return v
}

type vocabFile struct {
	Terms []string `yaml:"terms"`
}

// LoadYAML loads a vocabulary from a YAML file.
//
// Expected format:
//
//	terms:
//	  - rockets
//	  - moonshots
//
// The position of a term in the list is its ID.
func LoadYAML(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f vocabFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	terms := make([]string, len(f.Terms))
	for i, t := range f.Terms {
		terms[i] = strings.TrimSpace(t)
	}
	return FromTokens(terms)
}

// SaveYAML writes the vocabulary in the format read by LoadYAML.
func (v *Vocabulary) SaveYAML(path string) error {
	data, err := yaml.Marshal(vocabFile{Terms: v.Tokens()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
