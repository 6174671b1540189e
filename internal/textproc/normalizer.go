// Package textproc turns free-form review text into the normalized token stream
// the vector space model is fitted on.
package textproc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
)

var nonLetters = regexp.MustCompile(`[^a-z\s]`)

// extraStopWords covers contraction fragments left behind once apostrophes are stripped.
var extraStopWords = map[string]struct{}{
	"s": {}, "t": {}, "d": {}, "ll": {}, "m": {}, "o": {}, "re": {}, "ve": {}, "y": {},
	"can": {}, "will": {}, "just": {}, "now": {},
}

// Lemmatizer reduces a lowercase word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// IdentityLemmatizer returns words unchanged.
type IdentityLemmatizer struct{}

func (IdentityLemmatizer) Lemma(word string) string { return word }

type dictionaryLemmatizer struct {
	lem *golem.Lemmatizer
}

// NewDictionaryLemmatizer loads the embedded English lemma dictionary.
func NewDictionaryLemmatizer() (Lemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &dictionaryLemmatizer{lem: lem}, nil
}

func (d *dictionaryLemmatizer) Lemma(word string) string {
	lemma := d.lem.Lemma(word)
	if lemma == "" || nonLetters.MatchString(lemma) || strings.ContainsAny(lemma, " \t") {
		return word
	}
	return lemma
}

type Normalizer struct {
	lemmatizer Lemmatizer
}

func NewNormalizer(l Lemmatizer) *Normalizer {
	if l == nil {
		l = IdentityLemmatizer{}
	}
	return &Normalizer{lemmatizer: l}
}

// New returns a Normalizer backed by the dictionary lemmatizer.
func New() (*Normalizer, error) {
	l, err := NewDictionaryLemmatizer()
	if err != nil {
		return nil, err
	}
	return NewNormalizer(l), nil
}

// IsStopWord reports whether w belongs to the fixed English stopword set.
func IsStopWord(w string) bool {
	if _, ok := extraStopWords[w]; ok {
		return true
	}
	return english.IsStopWord(w)
}

// Tokens lowercases text, strips everything but ASCII letters and whitespace,
// drops stopwords and lemmatizes what is left. Relative order is preserved.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	text = nonLetters.ReplaceAllString(strings.ToLower(text), "")

	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopWord(w) {
			continue
		}
		// a lemma can itself be a stopword ("could" -> "can")
		lemma := n.lemmatizer.Lemma(w)
		if IsStopWord(lemma) {
			continue
		}
		out = append(out, lemma)
	}
	return out
}

// Clean returns the normalized tokens of text joined by single spaces.
// Empty input yields an empty string.
func (n *Normalizer) Clean(text string) string {
	return strings.Join(n.Tokens(text), " ")
}
