package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/cograph/pkg/cograph/vocab"
)

// Tokenizer splits text into lowercase word tokens. Letters, digits and
// hyphens form words; everything else separates them. No stemming or stopword
// removal is applied.
type Tokenizer struct {
	minLen int
}

// NewTokenizer creates a tokenizer that drops tokens shorter than minLen runes.
func NewTokenizer(minLen int) *Tokenizer {
	if minLen < 1 {
		minLen = 1
	}
	return &Tokenizer{minLen: minLen}
}

// Tokenize splits text into normalized tokens in document order.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.cleanToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// cleanToken strips leading/trailing hyphens and collapses repeated ones
func (t *Tokenizer) cleanToken(token string) string {
	token = strings.Trim(token, "-")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	if len([]rune(token)) < t.minLen {
		return ""
	}
	return token
}

// TokenizeAll tokenizes every text.
func (t *Tokenizer) TokenizeAll(texts []string) [][]string {
	out := make([][]string, len(texts))
	for i, text := range texts {
		out[i] = t.Tokenize(text)
	}
	return out
}

// Pipeline resolves raw text to term IDs:
// text → tokenization → dictionary lookup (unknown tokens dropped)
type Pipeline struct {
	tokenizer *Tokenizer
	dict      vocab.Dictionary
}

// NewPipeline creates a pipeline over the given dictionary.
func NewPipeline(tokenizer *Tokenizer, dict vocab.Dictionary) *Pipeline {
	return &Pipeline{tokenizer: tokenizer, dict: dict}
}

// Process turns one text into a document of term IDs.
func (p *Pipeline) Process(text string) []vocab.TermID {
	return vocab.Doc2IDX(p.dict, p.tokenizer.Tokenize(text))
}
