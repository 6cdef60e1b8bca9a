// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/pkg/types"
)

const samplePageHTML = `<html>
<head><title>Quantum Computing &amp; You</title><style>body{color:red}</style></head>
<body>
<nav><a href="https://example.com/nav">Navigation</a></nav>
<script>console.log("ignore me")</script>
<p>Quantum computers use qubits to represent state.</p>
<p>See <a href="https://example.edu/paper">the original paper</a> for details.</p>
<footer>Copyright notice</footer>
</body></html>`

func testScrape(t *testing.T, handler http.HandlerFunc) (*Scrape, string) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := cache.New(types.CacheConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return &Scrape{Client: ts.Client(), Cache: c}, ts.URL
}

func TestScrapeExtractsText(t *testing.T) {
	s, url := testScrape(t, func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(rw, samplePageHTML)
	})

	out, err := s.Call(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, url)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	var resp ScrapeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON result: %v", err)
	}
	if resp.Title != "Quantum Computing & You" {
		t.Errorf("Title = %q", resp.Title)
	}
	if !strings.Contains(resp.Content, "qubits") {
		t.Errorf("Content should contain body text, got %q", resp.Content)
	}
	if strings.Contains(resp.Content, "ignore me") {
		t.Error("Content should not contain script text")
	}
	if strings.Contains(resp.Content, "Copyright notice") {
		t.Error("Content should not contain footer text")
	}
	if resp.Metadata.WordCount == 0 {
		t.Error("WordCount should be non-zero")
	}
	if len(resp.Links) != 0 {
		t.Errorf("Links = %v, want empty without extract_links", resp.Links)
	}
}

func TestScrapeExtractLinks(t *testing.T) {
	s, url := testScrape(t, func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(rw, samplePageHTML)
	})

	out, err := s.Call(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q,"extract_links":true}`, url)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var resp ScrapeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Links) != 2 {
		t.Fatalf("len(Links) = %d, want 2", len(resp.Links))
	}
}

func TestScrapeUsesCache(t *testing.T) {
	var calls int32
	s, url := testScrape(t, func(rw http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(rw, samplePageHTML)
	})

	args := json.RawMessage(fmt.Sprintf(`{"url":%q}`, url))
	if _, err := s.Call(context.Background(), args); err != nil {
		t.Fatalf("first Call: %v", err)
	}
	if _, err := s.Call(context.Background(), args); err != nil {
		t.Fatalf("second Call: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestScrapeNotFound(t *testing.T) {
	s, url := testScrape(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	})

	_, err := s.Call(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, url)))
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the HTTP status: %v", err)
	}
}

func TestScrapeTruncatesLongContent(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("word ", 5000) + "</p></body></html>"
	s, url := testScrape(t, func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(rw, long)
	})

	out, err := s.Call(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, url)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var resp ScrapeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Content) > maxContentBytes {
		t.Errorf("len(Content) = %d, want <= %d", len(resp.Content), maxContentBytes)
	}
}

func TestScrapeEmptyURL(t *testing.T) {
	s := &Scrape{}
	_, err := s.Call(context.Background(), json.RawMessage(`{"url":""}`))
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty url error, got: %v", err)
	}
}
