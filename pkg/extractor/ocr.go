package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lessonplan-bot-be/pkg/errs"

	"github.com/google/uuid"
)

const defaultTesseract = "tesseract"

// DetectOCR checks once whether the tesseract binary can run.
func DetectOCR(binary string) bool {
	if binary == "" {
		binary = defaultTesseract
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return false
	}
	return exec.Command(path, "--version").Run() == nil
}

// OCR runs tesseract over a whole image.
type OCR struct {
	binary    string
	available bool
}

func NewOCR(binary string, available bool) *OCR {
	if binary == "" {
		binary = defaultTesseract
	}
	return &OCR{binary: binary, available: available}
}

func (o *OCR) Available() bool {
	return o != nil && o.available
}

// Recognize writes the image to a temp file and reads tesseract's stdout.
func (o *OCR) Recognize(ctx context.Context, image []byte) (string, error) {
	if !o.Available() {
		return "", fmt.Errorf("ocr: %w", errs.ErrCapabilityUnavailable)
	}

	tmpDir, err := os.MkdirTemp("", "lessonplan-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, uuid.NewString()+".img")
	if err := os.WriteFile(input, image, 0o600); err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.binary, input, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %v (%s): %w", err, strings.TrimSpace(stderr.String()), errs.ErrCorruptDocument)
	}
	return stdout.String(), nil
}

// Image is the photo path. It refuses when OCR was not detected at startup.
func (e *Extractor) Image(ctx context.Context, data []byte) (string, error) {
	text, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		return "", err
	}
	return e.cap(strings.TrimSpace(text)), nil
}
