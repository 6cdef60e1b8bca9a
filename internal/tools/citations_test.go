// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractCitationsForms(t *testing.T) {
	content := `Prior work established the effect (Smith, 2020) and replication
followed [3]. Chen et al. (2022) extended the result.`

	citations := ExtractCitations(content, "https://example.edu/paper")
	if len(citations) != 3 {
		t.Fatalf("len(citations) = %d, want 3", len(citations))
	}

	byType := make(map[string]int)
	for _, c := range citations {
		byType[c.Type]++
		if c.SourceURL != "https://example.edu/paper" {
			t.Errorf("SourceURL = %q", c.SourceURL)
		}
	}
	if byType["in-text"] != 2 {
		t.Errorf("in-text count = %d, want 2", byType["in-text"])
	}
	if byType["numbered"] != 1 {
		t.Errorf("numbered count = %d, want 1", byType["numbered"])
	}
}

func TestExtractCitationsEtAlAuthors(t *testing.T) {
	citations := ExtractCitations("As shown by (Garcia et al., 2019).", "")
	if len(citations) != 1 {
		t.Fatalf("len(citations) = %d, want 1", len(citations))
	}
	if citations[0].Authors[0] != "Garcia" {
		t.Errorf("Authors[0] = %q, want Garcia (et al. suffix stripped)", citations[0].Authors[0])
	}
	if citations[0].Year != 2019 {
		t.Errorf("Year = %d, want 2019", citations[0].Year)
	}
}

func TestExtractCitationsNone(t *testing.T) {
	citations := ExtractCitations("No references appear in this text.", "")
	if len(citations) != 0 {
		t.Errorf("len(citations) = %d, want 0", len(citations))
	}
}

func TestCredibilityScore(t *testing.T) {
	tests := []struct {
		url  string
		want float64
	}{
		{"https://mit.edu/paper", 0.9},
		{"https://data.gov/report", 0.9},
		{"https://arxiv.org/abs/1706.03762", 0.8},
		{"https://nature.com/articles/1", 0.7},
		{"https://randomblog.com/post", 0.5},
		{"", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := credibilityScore(tt.url); got != tt.want {
				t.Errorf("credibilityScore(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestTrackCitationsCall(t *testing.T) {
	tool := &TrackCitations{}
	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"content":"The effect was replicated (Lee, 2021).","source_url":"https://stats.gov/study"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	var resp CitationsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON result: %v", err)
	}
	if resp.CitationsFound != 1 {
		t.Errorf("CitationsFound = %d, want 1", resp.CitationsFound)
	}
	if resp.Attribution.CredibilityScore != 0.9 {
		t.Errorf("CredibilityScore = %v, want 0.9", resp.Attribution.CredibilityScore)
	}
}

func TestTrackCitationsEmptyContent(t *testing.T) {
	tool := &TrackCitations{}
	_, err := tool.Call(context.Background(), json.RawMessage(`{"content":""}`))
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty content error, got: %v", err)
	}
}
