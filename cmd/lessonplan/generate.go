package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lessonplan-bot-be/internal/config"
	"lessonplan-bot-be/internal/pkg/logger"
	"lessonplan-bot-be/pkg/extractor"
	"lessonplan-bot-be/pkg/pipeline"
	"lessonplan-bot-be/pkg/render"
	"lessonplan-bot-be/pkg/search"
	"lessonplan-bot-be/pkg/summarizer"
	"lessonplan-bot-be/pkg/template"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	formatDocx = "docx"
	formatPDF  = "pdf"
)

type generateOptions struct {
	pdfPath   string
	imagePath string
	textPath  string
	query     string
	url       string

	templatePath string
	format       string
	out          string
	results      int
	timeout      time.Duration
	verbose      bool
}

// sources counts how many input flags were given.
func (o *generateOptions) sources() int {
	n := 0
	for _, v := range []string{o.pdfPath, o.imagePath, o.textPath, o.query, o.url} {
		if v != "" {
			n++
		}
	}
	return n
}

func (o *generateOptions) validate() error {
	if o.sources() != 1 {
		return errors.New("give exactly one of --pdf, --image, --text, --query or --url")
	}
	switch o.format {
	case formatDocx, formatPDF:
	default:
		return fmt.Errorf("unknown --format %q (want docx or pdf)", o.format)
	}
	if o.out == "" {
		o.out = "lesson_plan." + o.format
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build one lesson plan",
		Long: `Generate builds one lesson plan from exactly one source.

Examples:
  lessonplan generate --pdf chapter3.pdf
  lessonplan generate --image page.jpg --format pdf --out page.pdf
  lessonplan generate --text notes.txt --template "My Template.docx"
  lessonplan generate --query "Grade 6 Math Fractions"
  lessonplan generate --url https://example.com/fractions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.pdfPath, "pdf", "", "PDF file to read")
	f.StringVar(&opts.imagePath, "image", "", "Image to OCR (needs tesseract)")
	f.StringVar(&opts.textPath, "text", "", "Plain text file, or - for stdin")
	f.StringVar(&opts.query, "query", "", "Search the web for this topic")
	f.StringVar(&opts.url, "url", "", "Read a single web page")
	f.StringVar(&opts.templatePath, "template", "", "Template .docx (default: DEFAULT_TEMPLATE_PATH)")
	f.StringVar(&opts.format, "format", formatDocx, "Output format: docx or pdf")
	f.StringVar(&opts.out, "out", "", "Output file (default: lesson_plan.<format>)")
	f.IntVar(&opts.results, "results", 0, "Search results to read (default: SEARCH_RESULTS)")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall time limit")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func runGenerate(ctx context.Context, stdout io.Writer, opts *generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	cfg := config.Load()
	log := logger.NewConsoleLogger(opts.verbose)
	defer log.Sync()

	textRank, err := summarizer.New(cfg.NLP.DataDir)
	if err != nil {
		return err
	}
	ocrAvailable := opts.imagePath != "" && cfg.OCR.Enabled && extractor.DetectOCR(cfg.OCR.TesseractPath)
	ext := extractor.New(extractor.Options{
		MaxChars:      cfg.Search.MaxSourceChars,
		OCRAvailable:  ocrAvailable,
		TesseractPath: cfg.OCR.TesseractPath,
	})

	src, err := loadSource(ctx, opts, cfg, ext, log)
	if err != nil {
		return err
	}
	if strings.TrimSpace(src.Text) == "" {
		color.New(color.FgYellow).Fprintln(stdout, "! No text found; the plan will hold placeholder content")
	}

	lessons := pipeline.New(textRank)
	fields := lessons.Build(ctx, src)

	var doc []byte
	switch opts.format {
	case formatPDF:
		doc, err = render.PDF(fields)
	default:
		doc, err = lessons.Render(ctx, fields, template.Resolve(opts.templatePath, cfg.Template.DefaultPath))
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(opts.out, doc, 0o644); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "✓ Written: %s (%s)\n", opts.out, fields.Title)
	return nil
}

func loadSource(ctx context.Context, opts *generateOptions, cfg *config.Config, ext *extractor.Extractor, log logger.ILogger) (pipeline.Source, error) {
	switch {
	case opts.pdfPath != "":
		data, err := os.ReadFile(opts.pdfPath)
		if err != nil {
			return pipeline.Source{}, err
		}
		text, err := ext.PDF(data)
		return pipeline.Source{Kind: pipeline.SourcePDF, Text: text}, err

	case opts.imagePath != "":
		data, err := os.ReadFile(opts.imagePath)
		if err != nil {
			return pipeline.Source{}, err
		}
		text, err := ext.Image(ctx, data)
		return pipeline.Source{Kind: pipeline.SourcePhoto, Text: text}, err

	case opts.textPath != "":
		var data []byte
		var err error
		if opts.textPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(opts.textPath)
		}
		if err != nil {
			return pipeline.Source{}, err
		}
		return pipeline.Source{Kind: pipeline.SourceText, Text: ext.Text(string(data))}, nil

	case opts.url != "":
		text, err := ext.FetchURL(ctx, opts.url)
		if err != nil {
			return pipeline.Source{}, err
		}
		return pipeline.Source{Kind: pipeline.SourceURL, Text: text, References: "1. " + opts.url}, nil
	}

	n := opts.results
	if n <= 0 {
		n = cfg.Search.Results
	}
	lookup, err := search.NewLookup(search.NewDuckDuckGo(cfg.Search.Endpoint, extractor.DefaultUserAgent), ext, cfg.Search.PageCacheSize)
	if err != nil {
		return pipeline.Source{}, err
	}
	outcome := lookup.Gather(ctx, opts.query, n)
	if outcome.Err != nil {
		log.Warn("CLI", "Web search failed", map[string]interface{}{"query": opts.query, "error": outcome.Err.Error()})
	}
	log.Debug("CLI", "Web lookup finished", map[string]interface{}{"hits": len(outcome.Hits), "skipped": outcome.Skipped})

	src := pipeline.Source{Kind: pipeline.SourceSearch, Title: opts.query, Text: outcome.Text, References: outcome.References}
	if outcome.Empty() {
		src.Text = opts.query
	}
	return src, nil
}
