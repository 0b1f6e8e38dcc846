package search

import (
	"context"
	"fmt"
	"strings"

	"lessonplan-bot-be/pkg/store"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 256

// PageReader returns the main text of a web page, or "" when it has none.
type PageReader interface {
	URL(ctx context.Context, url string) string
}

// Outcome is the material gathered for one query.
type Outcome struct {
	Query      string
	Hits       []store.SearchHit
	Text       string
	References string
	// Skipped counts hits whose page and snippet were both empty.
	Skipped int
	// Err is the search failure, if any. The outcome is then empty, not fatal.
	Err error
}

// Empty reports whether nothing usable was found.
func (o Outcome) Empty() bool {
	return strings.TrimSpace(o.Text) == ""
}

// Lookup searches the web and collects page text for the top hits.
type Lookup struct {
	searcher Searcher
	pages    PageReader
	cache    *lru.Cache[string, string]
}

func NewLookup(searcher Searcher, pages PageReader, cacheSize int) (*Lookup, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}
	return &Lookup{searcher: searcher, pages: pages, cache: cache}, nil
}

// Gather runs the search and reads each hit. A hit whose page yields nothing
// falls back to its snippet; a hit with neither is skipped.
func (l *Lookup) Gather(ctx context.Context, query string, n int) Outcome {
	out := Outcome{Query: query}

	hits, err := l.searcher.Search(ctx, query, n)
	if err != nil {
		out.Err = err
		return out
	}
	if len(hits) > n {
		hits = hits[:n]
	}
	out.Hits = hits

	var texts, refs []string
	for _, hit := range hits {
		text := l.page(ctx, hit.URL)
		if text == "" {
			text = hit.Snippet
		}
		if strings.TrimSpace(text) == "" {
			out.Skipped++
			continue
		}
		texts = append(texts, text)
		refs = append(refs, fmt.Sprintf("%d. %s - %s", len(refs)+1, referenceTitle(hit), hit.URL))
	}

	out.Text = strings.Join(texts, "\n\n")
	out.References = strings.Join(refs, "\n")
	return out
}

func (l *Lookup) page(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	if text, ok := l.cache.Get(url); ok {
		return text
	}
	text := strings.TrimSpace(l.pages.URL(ctx, url))
	if text != "" {
		l.cache.Add(url, text)
	}
	return text
}

func referenceTitle(hit store.SearchHit) string {
	if hit.Title != "" {
		return hit.Title
	}
	return hit.URL
}
