package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedSummarizer returns the first count lines of a canned summary.
type fixedSummarizer struct {
	summary string
	calls   int
}

func (f *fixedSummarizer) Summarize(_ string, count int) string {
	f.calls++
	lines := strings.Split(f.summary, "\n")
	if f.summary == "" {
		return ""
	}
	if len(lines) > count {
		lines = lines[:count]
	}
	return strings.Join(lines, "\n")
}

func TestObjectives(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		summary string
		max     int
		want    string
	}{
		{
			name: "keyword match",
			text: "Students will understand fractions. The sky is blue.",
			max:  5,
			want: "• Students will understand fractions",
		},
		{
			name: "case insensitive and capped",
			text: "Learners IDENTIFY shapes. They LEARN colours. Pupils are able to count. We Describe trees.",
			max:  2,
			want: "• Learners IDENTIFY shapes\n• They LEARN colours",
		},
		{
			name:    "falls back to summary",
			text:    "Rivers flow downhill. Lakes hold still water.",
			summary: "Rivers flow downhill.\nLakes hold still water.",
			max:     5,
			want:    "• Rivers flow downhill.\n• Lakes hold still water.",
		},
		{
			name: "placeholder when empty",
			text: "",
			max:  5,
			want: placeholderObjectives,
		},
		{
			name: "default cap",
			text: "I will a. I will b. I will c. I will d. I will e. I will f.",
			max:  0,
			want: "• I will a\n• I will b\n• I will c\n• I will d\n• I will e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fixedSummarizer{summary: tt.summary})
			assert.Equal(t, tt.want, g.Objectives(tt.text, tt.max))
		})
	}
}

func TestActivities_IgnoresInput(t *testing.T) {
	g := New(nil)

	a := g.Activities("anything")
	b := g.Activities("")

	assert.Equal(t, a, b)
	assert.Len(t, strings.Split(a, "\n"), 4)
}

func TestAssessment(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		summary string
		want    string
	}{
		{
			name:    "questions from summary",
			text:    "source",
			summary: "Plants make food from sunlight.\nRoots absorb water!\nOk.",
			want:    "Q1. Explain: Plants make food from sunlight?\nQ2. Explain: Roots absorb water?",
		},
		{
			name:    "all too short",
			text:    "source",
			summary: "Yes.\nNo way.",
			want:    placeholderAssessment,
		},
		{
			name: "empty text",
			text: "",
			want: placeholderAssessment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fixedSummarizer{summary: tt.summary})
			assert.Equal(t, tt.want, g.Assessment(tt.text))
		})
	}
}

func TestAssessment_AtMostFourQuestions(t *testing.T) {
	s := &fixedSummarizer{summary: "one two three.\nfour five six.\nseven eight nine.\nten eleven twelve.\nmore words here."}
	g := New(s)

	got := g.Assessment("text")

	assert.Len(t, strings.Split(got, "\n"), 4)
	assert.Equal(t, 1, s.calls)
}
