package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lessonplan-bot-be/pkg/errs"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraphChars = 30
	minUsefulChars    = 100
	maxBodyBytes      = 5 << 20
)

// noiseSelectors never carry lesson content.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside", "form",
	"iframe", "svg", "canvas",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// URL fetches a page and returns its main text. Any network failure or non-2xx
// status gives "" so callers degrade instead of aborting.
func (e *Extractor) URL(ctx context.Context, url string) string {
	text, err := e.FetchURL(ctx, url)
	if err != nil {
		return ""
	}
	return text
}

// FetchURL is URL with the failure reason kept, for logging.
func (e *Extractor) FetchURL(ctx context.Context, url string) (string, error) {
	html, err := e.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := ExtractHTML(html)
	if err != nil {
		return "", err
	}
	return e.cap(text), nil
}

func (e *Extractor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %v: %w", url, err, errs.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d for %s: %w", resp.StatusCode, url, errs.ErrNetworkFailure)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %v: %w", url, err, errs.ErrNetworkFailure)
	}
	return string(body), nil
}

// ExtractHTML picks the page text: an article-like container first, then long
// paragraphs, then title plus meta description.
func ExtractHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	// Read before noise removal; <title> and <meta> live in <head>.
	title := strings.TrimSpace(doc.Find("title").First().Text())
	description := metaDescription(doc)

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var text string
	for _, tag := range []string{"article", "main", "[role=main]"} {
		if sel := doc.Find(tag).First(); sel.Length() > 0 {
			text = strings.Join(textLines(sel), "\n")
			if strings.TrimSpace(text) != "" {
				break
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		var paragraphs []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := strings.Join(strings.Fields(p.Text()), " ")
			if len([]rune(t)) >= minParagraphChars {
				paragraphs = append(paragraphs, t)
			}
		})
		text = strings.Join(paragraphs, "\n\n")
	}

	if len([]rune(strings.TrimSpace(text))) < minUsefulChars {
		text = title + "\n" + description
	}
	return strings.TrimSpace(text), nil
}

func metaDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

// textLines returns every non-blank text node below sel, one per line.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.Join(strings.Fields(c.Text()), " "); t != "" {
				lines = append(lines, t)
			}
			return
		}
		lines = append(lines, textLines(c)...)
	})
	return lines
}
