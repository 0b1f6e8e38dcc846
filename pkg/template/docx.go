// Package template fills placeholder tokens in a .docx lesson plan template.
//
// Substitution is literal and happens inside each <w:t> run. Word sometimes
// splits a token like {{Summary}} across runs when it is partly formatted; such a
// token is left untouched.
package template

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"lessonplan-bot-be/pkg/errs"
	"lessonplan-bot-be/pkg/store"
)

const (
	ChapterTitle       = "{{ChapterTitle}}"
	Summary            = "{{Summary}}"
	LearningObjectives = "{{LearningObjectives}}"
	Activities         = "{{Activities}}"
	Assessment         = "{{Assessment}}"
	References         = "{{References}}"
)

// Placeholders lists the closed token set in a fixed order.
var Placeholders = []string{ChapterTitle, Summary, LearningObjectives, Activities, Assessment, References}

var runText = regexp.MustCompile(`(?s)<w:t(\s[^>]*[^/>])?>(.*?)</w:t>`)

// Values maps every placeholder to its field.
func Values(f store.LessonPlanFields) map[string]string {
	return map[string]string{
		ChapterTitle:       f.Title,
		Summary:            f.Summary,
		LearningObjectives: f.Objectives,
		Activities:         f.Activities,
		Assessment:         f.Assessment,
		References:         f.References,
	}
}

// Resolve prefers the per-chat override when one is set.
func Resolve(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// Fill reads the template at path and returns the completed document.
func Fill(path string, fields store.LessonPlanFields) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("template %q: %w", path, errs.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("reading template %q: %w", path, err)
	}
	return FillBytes(data, fields)
}

// Check reports whether data is a readable .docx, and which placeholders its
// body runs contain.
func Check(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening template: %v: %w", err, errs.ErrCorruptDocument)
	}
	f := findFile(zr, "word/document.xml")
	if f == nil {
		return nil, fmt.Errorf("template has no word/document.xml: %w", errs.ErrCorruptDocument)
	}
	part, err := readFile(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", f.Name, err, errs.ErrCorruptDocument)
	}
	var found []string
	for _, p := range Placeholders {
		if bytes.Contains(part, []byte(p)) {
			found = append(found, p)
		}
	}
	return found, nil
}

// FillBytes fills an in-memory template.
func FillBytes(template []byte, fields store.LessonPlanFields) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("opening template: %v: %w", err, errs.ErrCorruptDocument)
	}
	if findFile(zr, "word/document.xml") == nil {
		return nil, fmt.Errorf("template has no word/document.xml: %w", errs.ErrCorruptDocument)
	}

	fill := newReplacer(Values(fields))
	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		part, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %v: %w", f.Name, err, errs.ErrCorruptDocument)
		}
		replaced, changed := replaceRuns(part, fill)
		if !changed {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := w.Write(replaced); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalising document: %w", err)
	}
	return out.Bytes(), nil
}

// isTextPart matches the body plus headers and footers.
func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return !strings.Contains(base, "/") && (strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer"))
}

// newReplacer substitutes every token in one pass, so a value that happens to
// contain a token is written literally.
func newReplacer(values map[string]string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(Placeholders))
	for _, token := range Placeholders {
		pairs = append(pairs, token, encode(values[token]))
	}
	return strings.NewReplacer(pairs...)
}

func replaceRuns(part []byte, fill *strings.Replacer) ([]byte, bool) {
	changed := false
	out := runText.ReplaceAllFunc(part, func(run []byte) []byte {
		m := runText.FindSubmatch(run)
		inner := string(m[2])
		if !strings.Contains(inner, "{{") {
			return run
		}
		replaced := fill.Replace(inner)
		if replaced == inner {
			return run
		}
		changed = true
		return []byte(`<w:t xml:space="preserve">` + replaced + `</w:t>`)
	})
	return out, changed
}

// encode escapes a value for run text; newlines become line breaks.
func encode(value string) string {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	for i, line := range lines {
		var b strings.Builder
		_ = xml.EscapeText(&b, []byte(line))
		lines[i] = b.String()
	}
	return strings.Join(lines, `</w:t><w:br/><w:t xml:space="preserve">`)
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
