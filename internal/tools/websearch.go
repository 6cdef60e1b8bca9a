// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/internal/httputil"
	"github.com/pdiddy/research-council/pkg/types"
)

// duckduckgoBase is the DuckDuckGo lite endpoint, which serves plain HTML
// that is stable enough to parse. Package-level var for test substitution.
var duckduckgoBase = "https://lite.duckduckgo.com/lite/"

// Result link and snippet patterns for the lite result page.
var (
	ddgLinkRe    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>(.*?)</a>`)
	ddgLinkAltRe = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>(.*?)</a>`)
	ddgSnippetRe = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>(.*?)</td>`)
	ddgAnyAnchor = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
)

// WebSearch searches the web via DuckDuckGo. Results are cached for 24 hours
// keyed by the query and result count.
type WebSearch struct {
	Client     *http.Client
	Cache      *cache.Cache
	HTTP       types.HTTPConfig
	MaxResults int
}

// SearchHit is one search result in the documented response shape.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// SearchResponse is the documented web_search result shape.
type SearchResponse struct {
	Query        string      `json:"query"`
	Results      []SearchHit `json:"results"`
	TotalResults int         `json:"total_results"`
}

type webSearchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Description() string {
	return "Search the web for information on any topic. Returns a list of results with title, url, and snippet."
}

func (w *WebSearch) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The search query to execute"},
			"max_results": {"type": "integer", "description": "Maximum number of results to return (default 5)"}
		},
		"required": ["query"]
	}`)
}

// Call executes the search, serving from cache when a fresh entry exists.
func (w *WebSearch) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a webSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("web_search: invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Query) == "" {
		return "", fmt.Errorf("web_search: query is empty")
	}
	if a.MaxResults <= 0 {
		a.MaxResults = w.MaxResults
	}
	if a.MaxResults <= 0 {
		a.MaxResults = 5
	}

	cacheKey := fmt.Sprintf("search_%s_%d", a.Query, a.MaxResults)
	if w.Cache != nil {
		if payload, ok := w.Cache.Get(cacheKey, types.CacheSearch); ok {
			return payload, nil
		}
	}

	hits, err := w.search(ctx, a.Query, a.MaxResults)
	if err != nil {
		return "", err
	}

	payload, err := marshalResult(SearchResponse{
		Query:        a.Query,
		Results:      hits,
		TotalResults: len(hits),
	})
	if err != nil {
		return "", err
	}

	if w.Cache != nil {
		if err := w.Cache.Put(cacheKey, types.CacheSearch, payload); err != nil {
			return "", fmt.Errorf("web_search: caching results: %w", err)
		}
	}
	return payload, nil
}

func (w *WebSearch) search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	endpoint := duckduckgoBase + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if w.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", w.HTTP.UserAgent)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("web_search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web_search: duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("web_search: reading response: %w", err)
	}

	return parseResultPage(string(body), maxResults), nil
}

// parseResultPage extracts hits from the lite result HTML. When the result
// markup is not recognized it falls back to scanning bare anchors.
func parseResultPage(html string, max int) []SearchHit {
	matches := ddgLinkRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = ddgLinkAltRe.FindAllStringSubmatch(html, -1)
	}
	snippets := ddgSnippetRe.FindAllStringSubmatch(html, -1)

	var hits []SearchHit
	for i, m := range matches {
		link := strings.TrimSpace(m[1])
		title := cleanHTML(m[2])
		if link == "" || title == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = cleanHTML(snippets[i][1])
		}
		hits = append(hits, SearchHit{
			Title:   title,
			URL:     link,
			Snippet: snippet,
			Source:  hostOf(link),
		})
		if len(hits) >= max {
			break
		}
	}

	if len(hits) == 0 {
		hits = fallbackParse(html, max)
	}
	return hits
}

// fallbackParse scans all anchors for external links that look like results.
func fallbackParse(html string, max int) []SearchHit {
	seen := make(map[string]bool)
	var hits []SearchHit
	for _, m := range ddgAnyAnchor.FindAllStringSubmatch(html, -1) {
		link := strings.TrimSpace(m[1])
		title := cleanHTML(m[2])

		if !strings.HasPrefix(link, "http") ||
			strings.Contains(link, "duckduckgo.com") ||
			len(title) < 5 ||
			seen[link] {
			continue
		}
		seen[link] = true

		hits = append(hits, SearchHit{Title: title, URL: link, Source: hostOf(link)})
		if len(hits) >= max {
			break
		}
	}
	return hits
}

// hostOf returns the host part of a URL, or "unknown" when unparsable.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
