// Package generator derives lesson-plan sections from source text with simple
// keyword and summary heuristics.
package generator

import (
	"fmt"
	"strings"
	"unicode"
)

// Summarizer is the subset of the summarizer the generators rely on.
type Summarizer interface {
	Summarize(text string, count int) string
}

const (
	DefaultObjectivePoints = 5
	assessmentSentences    = 4
	minQuestionWords       = 3
	bullet                 = "• "
)

var objectiveKeywords = []string{"able to", "will", "understand", "learn", "identify", "describe"}

const (
	placeholderObjectives = "• Objective 1\n• Objective 2"
	placeholderAssessment = "Q1. What is the main idea of this lesson?\nQ2. Give one example from the text and explain it."

	activitiesTemplate = "1. Read the summary and discuss key terms.\n" +
		"2. Small-group activity: identify examples from the text.\n" +
		"3. Hands-on/demo (if applicable): follow the experiment steps.\n" +
		"4. Exit ticket: one short question to assess learning."
)

// Generator produces objectives, activities and assessment questions.
type Generator struct {
	summarizer Summarizer
}

func New(summarizer Summarizer) *Generator {
	return &Generator{summarizer: summarizer}
}

// Objectives collects sentences mentioning a learning keyword, in document order,
// capped at maxPoints and formatted as bullets. Output is never empty.
func (g *Generator) Objectives(text string, maxPoints int) string {
	if maxPoints <= 0 {
		maxPoints = DefaultObjectivePoints
	}

	var picked []string
	for _, sent := range strings.Split(text, ".") {
		s := strings.TrimSpace(sent)
		if s == "" || !hasObjectiveKeyword(s) {
			continue
		}
		picked = append(picked, s)
		if len(picked) == maxPoints {
			break
		}
	}
	if len(picked) > 0 {
		return bullets(picked)
	}

	if summary := g.summarize(text, maxPoints); summary != "" {
		var lines []string
		for _, line := range strings.Split(summary, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			return bullets(lines)
		}
	}
	return placeholderObjectives
}

// Activities returns the fixed four-step classroom sequence. The text is not used.
func (g *Generator) Activities(_ string) string {
	return activitiesTemplate
}

// Assessment turns the top summary sentences into "Explain" questions.
// Sentences under three words are dropped; output is never empty.
func (g *Generator) Assessment(text string) string {
	summary := g.summarize(text, assessmentSentences)

	var questions []string
	for _, line := range strings.Split(summary, "\n") {
		s := strings.TrimRightFunc(strings.TrimSpace(line), func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSpace(r)
		})
		if len(strings.Fields(s)) < minQuestionWords {
			continue
		}
		questions = append(questions, fmt.Sprintf("Q%d. Explain: %s?", len(questions)+1, s))
		if len(questions) == assessmentSentences {
			break
		}
	}
	if len(questions) == 0 {
		return placeholderAssessment
	}
	return strings.Join(questions, "\n")
}

func (g *Generator) summarize(text string, count int) string {
	if g.summarizer == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	return g.summarizer.Summarize(text, count)
}

func hasObjectiveKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, k := range objectiveKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = bullet + item
	}
	return strings.Join(lines, "\n")
}
