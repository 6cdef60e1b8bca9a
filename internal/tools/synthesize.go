// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Synthesis types accepted by synthesize_sources.
const (
	SynthesisComparison = "comparison"
	SynthesisTimeline   = "timeline"
	SynthesisConsensus  = "consensus"
	SynthesisConflicts  = "conflicts"
)

// themeWordRe matches candidate theme words: lowercase, four letters or more.
var themeWordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)

// themeStopwords are frequent words excluded from theme extraction.
var themeStopwords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "their": true, "which": true, "there": true,
	"about": true, "would": true, "could": true, "other": true, "these": true,
}

// Synthesize aggregates information across multiple sources: shared themes,
// a synthesis summary, and a confidence level based on source count.
type Synthesize struct{}

// SynthesisSource is one input source; a bare string is also accepted.
type SynthesisSource struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// UnmarshalJSON accepts either {"content": ...} objects or plain strings.
func (s *SynthesisSource) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Content = plain
		return nil
	}
	type alias SynthesisSource
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = SynthesisSource(a)
	return nil
}

// SynthesisResponse is the documented synthesize_sources result shape.
type SynthesisResponse struct {
	SynthesisType   string   `json:"synthesis_type"`
	SourcesAnalyzed int      `json:"sources_analyzed"`
	Synthesis       string   `json:"synthesis"`
	KeyThemes       []string `json:"key_themes"`
	ConfidenceLevel string   `json:"confidence_level"`
}

type synthesizeArgs struct {
	Sources       []SynthesisSource `json:"sources"`
	SynthesisType string            `json:"synthesis_type"`
}

func (s *Synthesize) Name() string { return "synthesize_sources" }

func (s *Synthesize) Description() string {
	return "Combine information from multiple sources into shared themes and a synthesis. " +
		"Synthesis types: comparison, timeline, consensus, conflicts."
}

func (s *Synthesize) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"sources": {
				"type": "array",
				"items": {"type": "object", "properties": {"content": {"type": "string"}, "source": {"type": "string"}}},
				"description": "Sources to synthesize, each with content and optional source label"
			},
			"synthesis_type": {"type": "string", "description": "One of: comparison, timeline, consensus, conflicts (default comparison)"}
		},
		"required": ["sources"]
	}`)
}

func (s *Synthesize) Call(_ context.Context, args json.RawMessage) (string, error) {
	var a synthesizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("synthesize_sources: invalid arguments: %w", err)
	}
	if len(a.Sources) == 0 {
		return "", fmt.Errorf("synthesize_sources: sources must be a non-empty list")
	}
	if a.SynthesisType == "" {
		a.SynthesisType = SynthesisComparison
	}

	var combined strings.Builder
	for _, src := range a.Sources {
		combined.WriteString(src.Content)
		combined.WriteString(" ")
	}

	themes := keyThemes(combined.String(), 5)
	n := len(a.Sources)

	synthesis, err := synthesisText(a.SynthesisType, n, themes)
	if err != nil {
		return "", err
	}

	return marshalResult(SynthesisResponse{
		SynthesisType:   a.SynthesisType,
		SourcesAnalyzed: n,
		Synthesis:       synthesis,
		KeyThemes:       themes,
		ConfidenceLevel: confidenceLevel(n),
	})
}

// keyThemes returns the most frequent non-stopword terms, most frequent
// first, ties broken alphabetically for determinism.
func keyThemes(text string, max int) []string {
	freq := make(map[string]int)
	for _, word := range themeWordRe.FindAllString(strings.ToLower(text), -1) {
		if !themeStopwords[word] {
			freq[word]++
		}
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > max {
		words = words[:max]
	}
	return words
}

func synthesisText(synthesisType string, n int, themes []string) (string, error) {
	themeList := strings.Join(themes, ", ")
	switch synthesisType {
	case SynthesisComparison:
		return fmt.Sprintf("Analyzed %d sources. Common themes include: %s. Sources provide varying perspectives on the topic.", n, themeList), nil
	case SynthesisTimeline:
		return fmt.Sprintf("Chronological synthesis of %d sources. Key developments and events documented across sources.", n), nil
	case SynthesisConsensus:
		return fmt.Sprintf("Consensus analysis across %d sources. Agreement on key points: %s.", n, themeList), nil
	case SynthesisConflicts:
		return fmt.Sprintf("Conflict analysis across %d sources. Identified areas of disagreement and conflicting perspectives.", n), nil
	default:
		return "", fmt.Errorf("synthesize_sources: unsupported synthesis type %q", synthesisType)
	}
}

// confidenceLevel maps source count to a coarse confidence label.
func confidenceLevel(n int) string {
	switch {
	case n >= 5:
		return "high"
	case n >= 3:
		return "medium"
	default:
		return "low"
	}
}
