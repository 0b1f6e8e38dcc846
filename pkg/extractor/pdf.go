package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"lessonplan-bot-be/pkg/errs"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the text of every page in order, separated by newlines.
// Pages that fail to decode are skipped; a file that cannot be opened at all
// yields errs.ErrCorruptDocument.
func (e *Extractor) PDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("opening pdf: %v: %w", r, errs.ErrCorruptDocument)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %v: %w", err, errs.ErrCorruptDocument)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		t, err := pageText(reader, i)
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return e.cap(strings.Join(parts, "\n")), nil
}

// pageText isolates decoder panics to the page they happen on.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v: %w", num, r, errs.ErrTransientExtraction)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d missing: %w", num, errs.ErrTransientExtraction)
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %v: %w", num, err, errs.ErrTransientExtraction)
	}
	return text, nil
}
