// Package keywords derives keyword sets from free-form opportunity text.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// Default extraction configuration constants.
const (
	defaultMaxKeywords = 10
	defaultMinLength   = 4
)

// stopWords are excluded from extraction regardless of frequency.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"with": {}, "that": {}, "this": {}, "from": {}, "your": {},
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithMaxKeywords caps the number of extracted keywords.
func WithMaxKeywords(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxKeywords = n
		}
	}
}

// WithMinLength sets the minimum token length considered a keyword.
func WithMinLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLength = n
		}
	}
}

// Extractor turns description text into a bounded keyword set.
type Extractor struct {
	maxKeywords int
	minLength   int
}

// NewExtractor creates an extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxKeywords: defaultMaxKeywords,
		minLength:   defaultMinLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tokenize lowercases text and splits it on non-letter, non-digit runes.
// Underscores and hyphens are kept so terms like "digital_art" survive.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
}

// Extract returns the most frequent non-stop-word tokens, ties broken
// alphabetically so repeated calls yield the same keyword set.
func (e *Extractor) Extract(text string) []string {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		if len(tok) < e.minLength {
			continue
		}
		if _, skip := stopWords[tok]; skip {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	ranked := make([]string, 0, len(counts))
	for w := range counts {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > e.maxKeywords {
		ranked = ranked[:e.maxKeywords]
	}
	return ranked
}

// Similarity computes Jaccard word overlap between two texts in [0,1].
func Similarity(a, b string) float64 {
	setA := toSet(Tokenize(a))
	setB := toSet(Tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
