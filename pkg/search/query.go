package search

import (
	"strings"

	"lessonplan-bot-be/pkg/store"
)

// BuildQuery joins the collected answers into one search string, e.g.
// "Grade 6 Math Fractions lesson". Blank answers are skipped and inner whitespace squeezed.
func BuildQuery(q store.LessonQuery) string {
	var parts []string
	for _, p := range []string{q.Grade, q.Subject, q.Chapter} {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " lesson"
}
