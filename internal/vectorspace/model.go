// Package vectorspace implements a TF-IDF vector space model over normalized text.
//
// A Model is fitted once on a corpus and is immutable afterwards: the vocabulary,
// its column order and the per-column IDF weights fully determine how any text is
// turned into a vector. Transform is safe for concurrent use.
package vectorspace

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Config struct {
	// MaxFeatures caps the vocabulary to the terms with the highest total count. 0 disables the cap.
	MaxFeatures int `json:"max_features"`
	// MinDF is the minimum number of documents a term must occur in.
	MinDF int `json:"min_df"`
	// MaxDF is the maximum fraction of documents a term may occur in.
	MaxDF    float64 `json:"max_df"`
	NGramMin int     `json:"ngram_min"`
	NGramMax int     `json:"ngram_max"`
}

func DefaultConfig() Config {
	return Config{
		MaxFeatures: 5000,
		MinDF:       2,
		MaxDF:       0.8,
		NGramMin:    1,
		NGramMax:    2,
	}
}

func (c Config) Validate() error {
	if c.MaxFeatures < 0 {
		return fmt.Errorf("%w: max_features must not be negative", ErrInvalidConfig)
	}
	if c.MinDF < 1 {
		return fmt.Errorf("%w: min_df must be at least 1", ErrInvalidConfig)
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		return fmt.Errorf("%w: max_df must be in (0, 1]", ErrInvalidConfig)
	}
	if c.NGramMin < 1 || c.NGramMax < c.NGramMin {
		return fmt.Errorf("%w: ngram range [%d, %d]", ErrInvalidConfig, c.NGramMin, c.NGramMax)
	}
	return nil
}

type Model struct {
	config     Config
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewModel rebuilds a fitted model from its column-ordered terms and IDF weights.
func NewModel(cfg Config, terms []string, idf []float64) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("%w: %d terms but %d idf weights", ErrInvalidConfig, len(terms), len(idf))
	}
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		if t == "" {
			return nil, fmt.Errorf("%w: empty term at column %d", ErrInvalidConfig, i)
		}
		if _, dup := vocab[t]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", ErrInvalidConfig, t)
		}
		if w := idf[i]; math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, fmt.Errorf("%w: bad idf weight for %q", ErrInvalidConfig, t)
		}
		vocab[t] = i
	}
	return &Model{
		config:     cfg,
		vocabulary: vocab,
		terms:      append([]string(nil), terms...),
		idf:        append([]float64(nil), idf...),
	}, nil
}

// Fit learns the vocabulary and IDF weights from normalized documents.
//
// Terms occurring in more than MaxDF*len(docs) documents or in fewer than MinDF
// documents are dropped first; the MaxFeatures most frequent of the remaining
// terms are kept and assigned columns in lexical order.
// IDF is the smoothed ln((1+n)/(1+df)) + 1.
func Fit(docs []string, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := len(docs)
	if n == 0 {
		return nil, ErrEmptyCorpus
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range docs {
		for term, c := range countTerms(analyze(doc, cfg)) {
			df[term]++
			total[term] += c
		}
	}

	maxDocs := cfg.MaxDF * float64(n)
	if maxDocs < float64(cfg.MinDF) {
		return nil, fmt.Errorf("%w: max_df covers fewer documents than min_df", ErrInvalidConfig)
	}

	kept := make([]string, 0, len(df))
	for term, d := range df {
		if float64(d) > maxDocs || d < cfg.MinDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyVocabulary
	}

	if cfg.MaxFeatures > 0 && len(kept) > cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if total[kept[i]] != total[kept[j]] {
				return total[kept[i]] > total[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	idf := make([]float64, len(kept))
	for i, term := range kept {
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return NewModel(cfg, kept, idf)
}

// FitTransform fits a model on docs and returns it with the docs' own vectors.
func FitTransform(docs []string, cfg Config) (*Model, *Matrix, error) {
	m, err := Fit(docs, cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, m.TransformAll(docs), nil
}

// Transform maps normalized text to an L2-normalized TF-IDF vector.
// Terms outside the vocabulary are ignored; text with no known term yields a zero vector.
func (m *Model) Transform(text string) SparseVector {
	counts := make(map[int]int)
	for _, term := range analyze(text, m.config) {
		if col, ok := m.vocabulary[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for col := range counts {
		indices = append(indices, col)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for k, col := range indices {
		w := float64(counts[col]) * m.idf[col]
		values[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for k := range values {
		values[k] /= norm
	}
	return SparseVector{Indices: indices, Values: values}
}

func (m *Model) TransformAll(docs []string) *Matrix {
	rows := make([]SparseVector, len(docs))
	for i, d := range docs {
		rows[i] = m.Transform(d)
	}
	return &Matrix{Cols: len(m.terms), Rows: rows}
}

func (m *Model) Config() Config { return m.config }

func (m *Model) VocabularySize() int { return len(m.terms) }

// Dim is the dimension of every vector the model produces.
func (m *Model) Dim() int { return len(m.terms) }

// Column returns the column assigned to term.
func (m *Model) Column(term string) (int, bool) {
	col, ok := m.vocabulary[term]
	return col, ok
}

// Terms returns the vocabulary in column order.
func (m *Model) Terms() []string { return append([]string(nil), m.terms...) }

func (m *Model) IDF() []float64 { return append([]float64(nil), m.idf...) }

// analyze splits normalized text into the unigrams and word n-grams the model indexes.
// Single-character tokens are skipped.
func analyze(text string, cfg Config) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	if cfg.NGramMax <= 1 {
		return tokens
	}

	var out []string
	for n := cfg.NGramMin; n <= cfg.NGramMax && n <= len(tokens); n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func countTerms(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
