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
	"time"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/internal/httputil"
	"github.com/pdiddy/research-council/pkg/types"
)

func init() {
	// Keep retry backoff negligible in tests.
	httputil.RetryBaseDelay = time.Millisecond
}

const sampleLiteHTML = `<html><body><table>
<tr><td><a rel="nofollow" class='result-link' href='https://example.edu/transformers'>Transformer Architectures Explained</a></td></tr>
<tr><td class='result-snippet'>A detailed overview of attention-based models.</td></tr>
<tr><td><a rel="nofollow" class='result-link' href='https://blog.example.com/post'>Attention in Practice</a></td></tr>
<tr><td class='result-snippet'>Practical notes on attention layers.</td></tr>
</table></body></html>`

func testWebSearch(t *testing.T, handler http.HandlerFunc) *WebSearch {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := duckduckgoBase
	duckduckgoBase = ts.URL
	t.Cleanup(func() { duckduckgoBase = old })

	c, err := cache.New(types.CacheConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return &WebSearch{Client: ts.Client(), Cache: c, MaxResults: 5}
}

func TestWebSearchParsesResults(t *testing.T) {
	w := testWebSearch(t, func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(rw, sampleLiteHTML)
	})

	out, err := w.Call(context.Background(), json.RawMessage(`{"query":"attention"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	var resp SearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON result: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("TotalResults = %d, want 2", resp.TotalResults)
	}
	r := resp.Results[0]
	if r.Title != "Transformer Architectures Explained" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Source != "example.edu" {
		t.Errorf("Source = %q, want example.edu", r.Source)
	}
	if !strings.Contains(r.Snippet, "attention-based") {
		t.Errorf("Snippet = %q", r.Snippet)
	}
}

func TestWebSearchUsesCache(t *testing.T) {
	var calls int32
	w := testWebSearch(t, func(rw http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(rw, sampleLiteHTML)
	})

	args := json.RawMessage(`{"query":"attention","max_results":5}`)
	if _, err := w.Call(context.Background(), args); err != nil {
		t.Fatalf("first Call: %v", err)
	}
	if _, err := w.Call(context.Background(), args); err != nil {
		t.Fatalf("second Call: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (second should be cached)", got)
	}
}

func TestWebSearchEmptyQuery(t *testing.T) {
	w := &WebSearch{}
	_, err := w.Call(context.Background(), json.RawMessage(`{"query":"  "}`))
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty query error, got: %v", err)
	}
}

func TestWebSearchUpstreamFailure(t *testing.T) {
	w := testWebSearch(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := w.Call(context.Background(), json.RawMessage(`{"query":"attention"}`))
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry the HTTP status: %v", err)
	}
}

func TestWebSearchMaxResultsCap(t *testing.T) {
	var rows strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&rows, `<tr><td><a class='result-link' href='https://example.com/%d'>Result Number %d</a></td></tr>`, i, i)
	}
	page := "<html><body><table>" + rows.String() + "</table></body></html>"

	w := testWebSearch(t, func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(rw, page)
	})

	out, err := w.Call(context.Background(), json.RawMessage(`{"query":"q","max_results":3}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var resp SearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(resp.Results))
	}
}

func TestParseResultPageFallback(t *testing.T) {
	// No result-link markup at all; the fallback anchor scan should fire.
	page := `<html><body>
<a href="/internal">Internal Link Here</a>
<a href="https://duckduckgo.com/about">About DuckDuckGo</a>
<a href="https://example.org/deep-learning">Deep Learning Overview</a>
</body></html>`

	hits := parseResultPage(page, 5)
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].URL != "https://example.org/deep-learning" {
		t.Errorf("URL = %q", hits[0].URL)
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.edu/page", "example.edu"},
		{"http://sub.example.com", "sub.example.com"},
		{"not a url", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := hostOf(tt.input); got != tt.want {
				t.Errorf("hostOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
