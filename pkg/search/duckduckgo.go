package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lessonplan-bot-be/pkg/errs"
	"lessonplan-bot-be/pkg/store"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	defaultTimeout  = 15 * time.Second
)

// Searcher returns up to n hits for a query. Zero hits is not an error.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]store.SearchHit, error)
}

// DuckDuckGo scrapes the keyless HTML endpoint.
type DuckDuckGo struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewDuckDuckGo(endpoint, userAgent string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &DuckDuckGo{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, n int) ([]store.SearchHit, error) {
	if strings.TrimSpace(query) == "" || n <= 0 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %v: %w", query, err, errs.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search status %d: %w", resp.StatusCode, errs.ErrNetworkFailure)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}
	return parseResults(doc, n), nil
}

func parseResults(doc *goquery.Document, n int) []store.SearchHit {
	var hits []store.SearchHit
	doc.Find(".result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		if result.HasClass("result--ad") {
			return true
		}
		link := result.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveLink(href)
		if target == "" {
			return true
		}
		hits = append(hits, store.SearchHit{
			Title:   strings.Join(strings.Fields(link.Text()), " "),
			URL:     target,
			Snippet: strings.Join(strings.Fields(result.Find(".result__snippet").First().Text()), " "),
		})
		return len(hits) < n
	})
	return hits
}

// resolveLink unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
