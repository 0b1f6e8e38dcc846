package template

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lessonplan-bot-be/pkg/errs"
	"lessonplan-bot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	docOpen  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docClose = `</w:body></w:document>`
)

func paragraph(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString(`<w:r><w:t xml:space="preserve">` + r + `</w:t></w:r>`)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func table(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tr>")
	for _, c := range cells {
		b.WriteString("<w:tc>" + paragraph(c) + "</w:tc>")
	}
	b.WriteString("</w:tr></w:tbl>")
	return b.String()
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", docOpen + body + docClose},
		{"word/styles.xml", `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">{{Summary}}</w:styles>`},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// paragraphTexts decodes word/document.xml into one string per paragraph.
func paragraphTexts(t *testing.T, docx []byte) []string {
	t.Helper()
	part := readPart(t, docx, "word/document.xml")

	dec := xml.NewDecoder(bytes.NewReader(part))
	var paras []string
	var cur strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			case "br":
				cur.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				paras = append(paras, cur.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(el)
			}
		}
	}
	return paras
}

func readPart(t *testing.T, docx []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	f := findFile(zr, name)
	require.NotNil(t, f, name)
	b, err := readFile(f)
	require.NoError(t, err)
	return b
}

func TestFillBytes_ReplacesEveryOccurrence(t *testing.T) {
	tpl := buildDocx(t, paragraph("{{Summary}}")+paragraph("See {{Summary}} above"))

	out, err := FillBytes(tpl, store.LessonPlanFields{Summary: "X"})

	require.NoError(t, err)
	assert.Equal(t, []string{"X", "See X above"}, paragraphTexts(t, out))
}

func TestFillBytes_ValueContainingTokenIsLiteral(t *testing.T) {
	tpl := buildDocx(t, paragraph("{{Summary}}")+paragraph("{{References}}"))

	out, err := FillBytes(tpl, store.LessonPlanFields{
		Summary:    "Cite as {{References}} and {{ChapterTitle}}",
		References: "Book A",
		Title:      "Magnets",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Cite as {{References}} and {{ChapterTitle}}", "Book A"}, paragraphTexts(t, out))
}

func TestFillBytes_TableCellsAndAllTokens(t *testing.T) {
	body := paragraph("Title: {{ChapterTitle}}") +
		table("{{LearningObjectives}}", "{{Activities}}", "{{Summary}}") +
		paragraph("{{Assessment}}") +
		paragraph("{{References}}")
	fields := store.LessonPlanFields{
		Title:      "Fractions & Decimals",
		Summary:    "Parts of a whole",
		Objectives: "• One\n• Two",
		Activities: "1. Read",
		Assessment: "Q1. Explain: halves?",
		References: "<book>",
	}

	out, err := FillBytes(buildDocx(t, body), fields)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Title: Fractions & Decimals",
		"• One\n• Two",
		"1. Read",
		"Parts of a whole",
		"Q1. Explain: halves?",
		"<book>",
	}, paragraphTexts(t, out))
}

func TestFillBytes_SplitPlaceholderIsNotMatched(t *testing.T) {
	tpl := buildDocx(t, paragraph("{{Sum", "mary}}"))

	out, err := FillBytes(tpl, store.LessonPlanFields{Summary: "X"})

	require.NoError(t, err)
	assert.Equal(t, []string{"{{Summary}}"}, paragraphTexts(t, out))
}

func TestFillBytes_NoPlaceholdersKeepsText(t *testing.T) {
	body := paragraph("Plain lesson") + table("cell one", "cell {two}")
	tpl := buildDocx(t, body)

	out, err := FillBytes(tpl, store.LessonPlanFields{Summary: "ignored"})

	require.NoError(t, err)
	assert.Equal(t, paragraphTexts(t, tpl), paragraphTexts(t, out))
	assert.Equal(t, readPart(t, tpl, "word/document.xml"), readPart(t, out, "word/document.xml"))
}

func TestFillBytes_OnlyTouchesTextParts(t *testing.T) {
	out, err := FillBytes(buildDocx(t, paragraph("{{Summary}}")), store.LessonPlanFields{Summary: "X"})

	require.NoError(t, err)
	assert.Contains(t, string(readPart(t, out, "word/styles.xml")), "{{Summary}}")
}

func TestFillBytes_Corrupt(t *testing.T) {
	_, err := FillBytes([]byte("not a zip"), store.LessonPlanFields{})
	assert.ErrorIs(t, err, errs.ErrCorruptDocument)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("readme.txt")
	require.NoError(t, zw.Close())

	_, err = FillBytes(buf.Bytes(), store.LessonPlanFields{})
	assert.ErrorIs(t, err, errs.ErrCorruptDocument)
}

func TestFill_TemplateNotFound(t *testing.T) {
	_, err := Fill(filepath.Join(t.TempDir(), "missing.docx"), store.LessonPlanFields{})

	assert.ErrorIs(t, err, errs.ErrTemplateNotFound)
}

func TestFill_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, paragraph("{{ChapterTitle}}")), 0o644))

	out, err := Fill(path, store.LessonPlanFields{Title: "Volcanoes"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Volcanoes"}, paragraphTexts(t, out))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "/chat.docx", Resolve("/chat.docx", "/default.docx"))
	assert.Equal(t, "/default.docx", Resolve("", "/default.docx"))
}

func TestIsTextPart(t *testing.T) {
	assert.True(t, isTextPart("word/document.xml"))
	assert.True(t, isTextPart("word/header1.xml"))
	assert.True(t, isTextPart("word/footer2.xml"))
	assert.False(t, isTextPart("word/styles.xml"))
	assert.False(t, isTextPart("word/_rels/header1.xml.rels"))
}

func TestCheck(t *testing.T) {
	found, err := Check(buildDocx(t, paragraph("{{ChapterTitle}}")+table("{{Summary}}", "{{Summary}}")))
	require.NoError(t, err)
	assert.Equal(t, []string{ChapterTitle, Summary}, found)

	_, err = Check([]byte("PK not really"))
	assert.ErrorIs(t, err, errs.ErrCorruptDocument)
}
