// Package pipeline runs source text through summarization, content generation
// and template filling.
package pipeline

import (
	"context"
	"strings"

	"lessonplan-bot-be/pkg/generator"
	"lessonplan-bot-be/pkg/store"
	"lessonplan-bot-be/pkg/template"
	"lessonplan-bot-be/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SummarySentences = 6
	defaultTitle     = "Lesson Plan"
	maxTitleChars    = 80
)

// SourceKind records where the source text came from.
type SourceKind string

const (
	SourcePDF    SourceKind = "pdf"
	SourcePhoto  SourceKind = "photo"
	SourceText   SourceKind = "text"
	SourceSearch SourceKind = "search"
	SourceURL    SourceKind = "url"
)

// Source is the uniform input of a pipeline run.
type Source struct {
	Kind       SourceKind
	Text       string
	Title      string
	References string
}

// Pipeline builds and renders lesson plans.
type Pipeline struct {
	summarizer generator.Summarizer
	generator  *generator.Generator
	tracer     trace.Tracer
}

func New(summarizer generator.Summarizer) *Pipeline {
	return &Pipeline{
		summarizer: summarizer,
		generator:  generator.New(summarizer),
		tracer:     otel.Tracer("lessonplan-bot-be/pipeline"),
	}
}

// Build produces the lesson plan fields. It always succeeds; empty text yields
// the generators' placeholder content.
func (p *Pipeline) Build(ctx context.Context, src Source) store.LessonPlanFields {
	_, span := p.tracer.Start(ctx, "pipeline.Build", trace.WithAttributes(
		attribute.String("source.kind", string(src.Kind)),
		attribute.Int("source.chars", len(src.Text)),
	))
	defer span.End()

	text := strings.TrimSpace(src.Text)
	fields := store.LessonPlanFields{
		Title:      Title(src),
		Summary:    p.summarizer.Summarize(text, SummarySentences),
		Objectives: p.generator.Objectives(text, generator.DefaultObjectivePoints),
		Activities: p.generator.Activities(text),
		Assessment: p.generator.Assessment(text),
		References: References(src),
	}
	if fields.Summary == "" {
		fields.Summary = "No source content was available for this lesson."
	}
	return fields
}

// Render fills the template at templatePath with fields.
func (p *Pipeline) Render(ctx context.Context, fields store.LessonPlanFields, templatePath string) ([]byte, error) {
	_, span := p.tracer.Start(ctx, "pipeline.Render", trace.WithAttributes(
		attribute.String("template.path", templatePath),
	))
	defer span.End()

	doc, err := template.Fill(templatePath, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return doc, nil
}

// Title picks the explicit title, else the first line of the text.
func Title(src Source) string {
	if t := strings.TrimSpace(src.Title); t != "" {
		return utils.Excerpt(t, maxTitleChars)
	}
	if lines := utils.FirstLines(src.Text, 1); len(lines) > 0 {
		return utils.Excerpt(lines[0], maxTitleChars)
	}
	return defaultTitle
}

// References keeps explicit references, else names the kind of source.
func References(src Source) string {
	if r := strings.TrimSpace(src.References); r != "" {
		return r
	}
	switch src.Kind {
	case SourcePhoto:
		return "Scanned photo supplied by the teacher"
	case SourceText:
		return "Text supplied by the teacher"
	case SourceSearch:
		return "No web sources were found"
	}
	return "-"
}
