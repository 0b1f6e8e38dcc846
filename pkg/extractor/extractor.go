// Package extractor turns raw sources (PDF bytes, images, web pages, pasted text)
// into plain source text for the lesson pipeline.
package extractor

import (
	"net/http"
	"strings"
	"time"

	"lessonplan-bot-be/pkg/utils"
)

const (
	DefaultMaxChars = 20000
	DefaultTimeout  = 15 * time.Second

	// Browser-like agent; many sites refuse obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Options configures an Extractor.
type Options struct {
	MaxChars      int
	Timeout       time.Duration
	UserAgent     string
	OCRAvailable  bool
	TesseractPath string
	HTTPClient    *http.Client
}

// Extractor implements every source path.
type Extractor struct {
	maxChars  int
	userAgent string
	client    *http.Client
	ocr       *OCR
}

func New(opts Options) *Extractor {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Extractor{
		maxChars:  opts.MaxChars,
		userAgent: opts.UserAgent,
		client:    client,
		ocr:       NewOCR(opts.TesseractPath, opts.OCRAvailable),
	}
}

// OCRAvailable reports the capability detected at startup.
func (e *Extractor) OCRAvailable() bool {
	return e.ocr.Available()
}

// Text is the pasted-text path: trimmed and capped.
func (e *Extractor) Text(raw string) string {
	return e.cap(strings.TrimSpace(raw))
}

func (e *Extractor) cap(text string) string {
	return utils.TruncateRunes(text, e.maxChars)
}
