// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/internal/httputil"
	"github.com/pdiddy/research-council/pkg/types"
)

// maxContentBytes bounds extracted page text so a single page cannot
// dominate the model's context.
const maxContentBytes = 10000

// maxExtractedLinks bounds the links returned when extraction is requested.
const maxExtractedLinks = 20

// Scrape fetches a webpage and extracts readable text. Pages are cached for
// 7 days keyed by URL.
type Scrape struct {
	Client *http.Client
	Cache  *cache.Cache
	HTTP   types.HTTPConfig
}

// ScrapeMetadata carries derived page statistics.
type ScrapeMetadata struct {
	WordCount int `json:"word_count"`
}

// ScrapeResponse is the documented scrape_webpage result shape.
type ScrapeResponse struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata ScrapeMetadata `json:"metadata"`
	Links    []string       `json:"links"`
}

type scrapeArgs struct {
	URL          string `json:"url"`
	ExtractLinks bool   `json:"extract_links"`
}

func (s *Scrape) Name() string { return "scrape_webpage" }

func (s *Scrape) Description() string {
	return "Extract readable text content from a webpage. Optionally extracts outbound links."
}

func (s *Scrape) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "The URL to scrape"},
			"extract_links": {"type": "boolean", "description": "Whether to extract links from the page"}
		},
		"required": ["url"]
	}`)
}

// Call fetches and extracts the page, serving from cache when fresh.
// Link extraction shares the cache entry since links are derived from the
// same fetched document.
func (s *Scrape) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a scrapeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("scrape_webpage: invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.URL) == "" {
		return "", fmt.Errorf("scrape_webpage: url is empty")
	}

	cacheKey := fmt.Sprintf("scrape_%s_%t", a.URL, a.ExtractLinks)
	if s.Cache != nil {
		if payload, ok := s.Cache.Get(cacheKey, types.CacheScrape); ok {
			return payload, nil
		}
	}

	html, err := s.fetch(ctx, a.URL)
	if err != nil {
		return "", err
	}

	content := stripHTML(html)
	if len(content) > maxContentBytes {
		content = content[:maxContentBytes]
	}

	out := ScrapeResponse{
		URL:      a.URL,
		Title:    pageTitle(html),
		Content:  content,
		Metadata: ScrapeMetadata{WordCount: wordCount(content)},
		Links:    []string{},
	}
	if a.ExtractLinks {
		out.Links = pageLinks(html, maxExtractedLinks)
	}

	payload, err := marshalResult(out)
	if err != nil {
		return "", err
	}

	if s.Cache != nil {
		if err := s.Cache.Put(cacheKey, types.CacheScrape, payload); err != nil {
			return "", fmt.Errorf("scrape_webpage: caching page: %w", err)
		}
	}
	return payload, nil
}

func (s *Scrape) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("scrape_webpage: %w", err)
	}
	if s.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", s.HTTP.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("scrape_webpage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape_webpage: http %d fetching %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("scrape_webpage: reading body: %w", err)
	}
	return string(body), nil
}
