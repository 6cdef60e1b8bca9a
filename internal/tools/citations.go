// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Citation regex patterns.
var (
	// parenCiteRe matches parenthetical citations like (Smith, 2020) or
	// (Smith et al., 2020).
	parenCiteRe = regexp.MustCompile(`\(([A-Z][a-z]+(?:\s+et\s+al\.)?),?\s+(\d{4})\)`)

	// numericCiteRe matches numbered citations like [1], [2], [12].
	numericCiteRe = regexp.MustCompile(`\[(\d+)\]`)

	// etAlCiteRe matches narrative citations like Smith et al. (2020).
	etAlCiteRe = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+et\s+al\.\s+\((\d{4})\)`)
)

// Citation is one extracted reference.
type Citation struct {
	// Text is the citation as it appears, e.g. "(Smith, 2020)" or "[3]".
	Text string `json:"citation_text"`

	// Type is "in-text" for author-year forms or "numbered" for [N].
	Type string `json:"type"`

	// Authors lists the cited authors when the form carries them.
	Authors []string `json:"authors"`

	// Year is the cited year, or 0 for numbered citations.
	Year int `json:"year,omitempty"`

	// SourceURL attributes the citation to the document it came from.
	SourceURL string `json:"source_url,omitempty"`
}

// Attribution scores the document the citations came from.
type Attribution struct {
	URL              string  `json:"url,omitempty"`
	CredibilityScore float64 `json:"credibility_score"`
}

// CitationsResponse is the documented track_citations result shape.
type CitationsResponse struct {
	CitationsFound int         `json:"citations_found"`
	Citations      []Citation  `json:"citations"`
	Attribution    Attribution `json:"source_attribution"`
}

// TrackCitations extracts citation references from research content and
// rates the credibility of the source they came from.
type TrackCitations struct{}

type citationsArgs struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

func (t *TrackCitations) Name() string { return "track_citations" }

func (t *TrackCitations) Description() string {
	return "Extract citation references from text and rate the credibility of the source URL."
}

func (t *TrackCitations) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string", "description": "Text content to extract citations from"},
			"source_url": {"type": "string", "description": "Original source URL for attribution"}
		},
		"required": ["content"]
	}`)
}

func (t *TrackCitations) Call(_ context.Context, args json.RawMessage) (string, error) {
	var a citationsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("track_citations: invalid arguments: %w", err)
	}
	if a.Content == "" {
		return "", fmt.Errorf("track_citations: content is empty")
	}

	citations := ExtractCitations(a.Content, a.SourceURL)
	return marshalResult(CitationsResponse{
		CitationsFound: len(citations),
		Citations:      citations,
		Attribution: Attribution{
			URL:              a.SourceURL,
			CredibilityScore: credibilityScore(a.SourceURL),
		},
	})
}

// ExtractCitations scans text for parenthetical, numbered, and narrative
// citation forms.
func ExtractCitations(content, sourceURL string) []Citation {
	citations := []Citation{}

	for _, m := range parenCiteRe.FindAllStringSubmatch(content, -1) {
		author, year := m[1], m[2]
		citations = append(citations, Citation{
			Text:      fmt.Sprintf("(%s, %s)", author, year),
			Type:      "in-text",
			Authors:   []string{strings.TrimSuffix(author, " et al.")},
			Year:      atoi(year),
			SourceURL: sourceURL,
		})
	}

	for _, m := range numericCiteRe.FindAllStringSubmatch(content, -1) {
		citations = append(citations, Citation{
			Text:      fmt.Sprintf("[%s]", m[1]),
			Type:      "numbered",
			Authors:   []string{},
			SourceURL: sourceURL,
		})
	}

	for _, m := range etAlCiteRe.FindAllStringSubmatch(content, -1) {
		author, year := m[1], m[2]
		citations = append(citations, Citation{
			Text:      fmt.Sprintf("%s et al. (%s)", author, year),
			Type:      "in-text",
			Authors:   []string{author},
			Year:      atoi(year),
			SourceURL: sourceURL,
		})
	}

	return citations
}

// credibilityScore rates a source domain. Academic and government domains
// score highest, established publishers next, everything else a neutral 0.5.
func credibilityScore(sourceURL string) float64 {
	if sourceURL == "" {
		return 0.5
	}
	switch {
	case containsAny(sourceURL, ".edu", ".gov", ".ac.uk"):
		return 0.9
	case containsAny(sourceURL, ".org", "arxiv.org", "doi.org"):
		return 0.8
	case containsAny(sourceURL, "nytimes.com", "bbc.com", "nature.com", "science.org"):
		return 0.7
	default:
		return 0.5
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
