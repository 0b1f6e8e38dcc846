// Package summarizer implements extractive TextRank summarization.
//
// Sentences come from a punkt-style tokenizer (neurosnap/sentences), become graph
// nodes weighted by normalised word overlap, and are ranked with a damped power
// iteration. The best sentences are returned in their original document order.
package summarizer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"lessonplan-bot-be/pkg/utils"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

const (
	damping       = 0.85
	epsilon       = 1e-4
	maxIterations = 100

	// TrainingFile is looked up inside the NLP asset directory.
	TrainingFile = "english.json"
)

// Summarizer ranks and selects representative sentences.
type Summarizer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// New builds a Summarizer. When dataDir holds english.json it is used as punkt
// training data, otherwise the training bundled with the tokenizer is used.
func New(dataDir string) (*Summarizer, error) {
	var training *sentences.Storage
	if dataDir != "" {
		b, err := os.ReadFile(filepath.Join(dataDir, TrainingFile))
		if err == nil {
			training, err = sentences.LoadTraining(b)
			if err != nil {
				return nil, fmt.Errorf("loading sentence training data: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading sentence training data: %w", err)
		}
	}

	tokenizer, err := english.NewSentenceTokenizer(training)
	if err != nil {
		return nil, fmt.Errorf("creating sentence tokenizer: %w", err)
	}
	return &Summarizer{tokenizer: tokenizer}, nil
}

// Summarize returns up to count sentences joined by newlines.
// Empty input gives "". It never panics: if tokenizing or ranking fails the first
// count lines of the raw text are returned instead.
func (s *Summarizer) Summarize(text string, count int) (summary string) {
	if strings.TrimSpace(text) == "" || count <= 0 {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			summary = fallback(text, count)
		}
	}()

	picked, err := s.rank(text, count)
	if err != nil || len(picked) == 0 {
		return fallback(text, count)
	}
	return strings.Join(picked, "\n")
}

func fallback(text string, count int) string {
	return strings.Join(utils.FirstLines(text, count), "\n")
}

func (s *Summarizer) rank(text string, count int) ([]string, error) {
	if s == nil || s.tokenizer == nil {
		return nil, fmt.Errorf("summarizer not initialised")
	}

	var sents []string
	var words [][]string
	for _, sent := range s.tokenizer.Tokenize(text) {
		clean := strings.Join(strings.Fields(sent.Text), " ")
		if clean == "" {
			continue
		}
		sents = append(sents, clean)
		words = append(words, tokenize(clean))
	}
	if len(sents) == 0 {
		return nil, fmt.Errorf("no sentences found")
	}
	if len(sents) <= count {
		return sents, nil
	}

	scores := pageRank(similarityMatrix(words))

	order := make([]int, len(sents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	best := order[:count]
	sort.Ints(best)

	out := make([]string, 0, count)
	for _, i := range best {
		out = append(out, sents[i])
	}
	return out, nil
}

func tokenize(sentence string) []string {
	fields := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}

// similarityMatrix weights an edge by the number of shared words, normalised by
// log|a| + log|b| so long sentences are not favoured.
func similarityMatrix(words [][]string) [][]float64 {
	n := len(words)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := edgeWeight(words[i], words[j])
			m[i][j] = w
			m[j][i] = w
		}
	}
	return m
}

func edgeWeight(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	counts := make(map[string]int, len(b))
	for _, w := range b {
		counts[w]++
	}
	overlap := 0
	for _, w := range a {
		overlap += counts[w]
	}
	if overlap == 0 {
		return 0
	}
	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if norm < 1e-9 {
		return float64(overlap)
	}
	return float64(overlap) / norm
}

func pageRank(m [][]float64) []float64 {
	n := len(m)
	outWeight := make([]float64, n)
	for i := range m {
		for _, w := range m[i] {
			outWeight[i] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < maxIterations; iter++ {
		next := make([]float64, n)
		delta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if m[j][i] == 0 || outWeight[j] == 0 {
					continue
				}
				sum += m[j][i] / outWeight[j] * scores[j]
			}
			next[i] = (1-damping)/float64(n) + damping*sum
			delta += math.Abs(next[i] - scores[i])
		}
		scores = next
		if delta < epsilon {
			break
		}
	}
	return scores
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "there": true,
	"has": true, "have": true, "had": true, "do": true, "does": true, "did": true,
	"not": true, "no": true, "so": true, "if": true, "then": true, "than": true,
	"we": true, "you": true, "they": true, "he": true, "she": true, "i": true,
}
