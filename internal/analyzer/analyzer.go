// Package analyzer normalises raw text into index terms. It lower-cases
// input, treats every character outside [a-z0-9] as a separator, and drops
// stop-words and tokens shorter than three characters. There is deliberately
// no stemming: terms match literally after normalisation.
package analyzer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// minTokenLength is exclusive: tokens must be longer than two characters.
const minTokenLength = 3

// Analyzer normalises text against a fixed stopword set. The set is bound at
// construction and never mutated, so an Analyzer is safe for concurrent use.
type Analyzer struct {
	stopwords map[string]struct{}
}

// New creates an Analyzer with the given stopword set. A nil set falls back
// to DefaultStopwords.
func New(stopwords map[string]struct{}) *Analyzer {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &Analyzer{stopwords: stopwords}
}

// Tokens normalises text into an ordered token sequence. The transformation
// is total and deterministic: empty input yields an empty slice.
func (a *Analyzer) Tokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isIndexable(r)
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < minTokenLength {
			continue
		}
		if _, isStop := a.stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsStopword reports whether the (already lowercased) word is in the
// configured stopword set.
func (a *Analyzer) IsStopword(word string) bool {
	_, ok := a.stopwords[word]
	return ok
}

// isIndexable reports whether r may appear inside a token. Only ASCII
// lowercase letters and digits qualify; everything else, whitespace and
// punctuation included, splits tokens.
func isIndexable(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// LoadStopwords reads a stopword file with one word per line, lowercasing
// and trimming each entry. Blank lines are skipped.
func LoadStopwords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stopwords file %s: %w", path, err)
	}
	defer f.Close()

	stopwords := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		stopwords[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stopwords file %s: %w", path, err)
	}
	return stopwords, nil
}
