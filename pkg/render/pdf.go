// Package render lays out lesson plan fields without a .docx template.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"lessonplan-bot-be/pkg/store"

	"github.com/jung-kurt/gofpdf"
)

// Section is one headed block of the plan, in print order.
type Section struct {
	Heading string
	Body    string
}

// Sections orders the fields the way the sample template does.
func Sections(f store.LessonPlanFields) []Section {
	return []Section{
		{Heading: "Summary", Body: f.Summary},
		{Heading: "Learning Objectives", Body: f.Objectives},
		{Heading: "Activities", Body: f.Activities},
		{Heading: "Assessment", Body: f.Assessment},
		{Heading: "References", Body: f.References},
	}
}

// PDF renders the plan on A4 pages with the core Helvetica font.
func PDF(f store.LessonPlanFields) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(f.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; bullets and quotes need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = "Lesson Plan"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(4)

	for _, s := range Sections(f) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, tr(s.Heading), "", "L", false)
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 10)
		body := strings.TrimSpace(s.Body)
		if body == "" {
			body = "-"
		}
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) == "" {
				pdf.Ln(3)
				continue
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
