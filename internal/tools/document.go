// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-council/internal/httputil"
	"github.com/pdiddy/research-council/pkg/types"
)

// Analysis types accepted by analyze_document.
const (
	AnalysisSummary   = "summary"
	AnalysisFullText  = "full_text"
	AnalysisKeyPoints = "key_points"
	AnalysisCitations = "extract_citations"
)

// maxAnalysisBytes bounds the content field of an analysis result.
const maxAnalysisBytes = 15000

// keyPointMarkers are the signal words used to pick out key sentences.
var keyPointMarkers = []string{
	"important", "significant", "concluded", "found", "demonstrated",
	"results", "showed", "indicates", "suggests",
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// Document analyzes text documents (plain text or Markdown) from a URL or a
// local path. Binary formats are out of scope; the tool reports them as a
// recoverable failure the agent can react to.
type Document struct {
	Client *http.Client
	HTTP   types.HTTPConfig
}

// DocumentMetadata carries derived document statistics.
type DocumentMetadata struct {
	WordCount      int `json:"word_count"`
	CitationsFound int `json:"citations_found"`
}

// DocumentResponse is the documented analyze_document result shape.
type DocumentResponse struct {
	Location     string           `json:"location"`
	AnalysisType string           `json:"analysis_type"`
	Content      string           `json:"content"`
	Metadata     DocumentMetadata `json:"metadata"`
}

type documentArgs struct {
	Location     string `json:"location"`
	AnalysisType string `json:"analysis_type"`
}

func (d *Document) Name() string { return "analyze_document" }

func (d *Document) Description() string {
	return "Analyze a text or Markdown document from a URL or local path. " +
		"Analysis types: summary, full_text, key_points, extract_citations."
}

func (d *Document) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"location": {"type": "string", "description": "URL or local file path of the document"},
			"analysis_type": {"type": "string", "description": "One of: summary, full_text, key_points, extract_citations (default summary)"}
		},
		"required": ["location"]
	}`)
}

func (d *Document) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a documentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("analyze_document: invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Location) == "" {
		return "", fmt.Errorf("analyze_document: location is empty")
	}
	if a.AnalysisType == "" {
		a.AnalysisType = AnalysisSummary
	}

	text, err := d.load(ctx, a.Location)
	if err != nil {
		return "", err
	}

	var content string
	switch a.AnalysisType {
	case AnalysisFullText:
		content = text
	case AnalysisSummary:
		content = summarize(text)
	case AnalysisKeyPoints:
		content = keyPoints(text)
	case AnalysisCitations:
		content = citationList(text)
	default:
		return "", fmt.Errorf("analyze_document: unsupported analysis type %q", a.AnalysisType)
	}

	if len(content) > maxAnalysisBytes {
		content = content[:maxAnalysisBytes]
	}

	return marshalResult(DocumentResponse{
		Location:     a.Location,
		AnalysisType: a.AnalysisType,
		Content:      content,
		Metadata: DocumentMetadata{
			WordCount:      wordCount(text),
			CitationsFound: len(ExtractCitations(text, "")),
		},
	})
}

// load reads document text from a URL or the local filesystem. HTML payloads
// are stripped to plain text.
func (d *Document) load(ctx context.Context, location string) (string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return "", fmt.Errorf("analyze_document: %w", err)
		}
		if d.HTTP.UserAgent != "" {
			req.Header.Set("User-Agent", d.HTTP.UserAgent)
		}

		client := d.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := httputil.DoWithRetry(ctx, client, req, 0)
		if err != nil {
			return "", fmt.Errorf("analyze_document: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("analyze_document: http %d fetching %s", resp.StatusCode, location)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("analyze_document: reading body: %w", err)
		}
		if looksBinary(body) {
			return "", fmt.Errorf("analyze_document: %s is a binary document; only text and Markdown are supported", location)
		}
		text := string(body)
		if strings.Contains(resp.Header.Get("Content-Type"), "html") {
			text = stripHTML(text)
		}
		return text, nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("analyze_document: reading %s: %w", location, err)
	}
	if looksBinary(data) {
		return "", fmt.Errorf("analyze_document: %s is a binary document; only text and Markdown are supported", location)
	}
	return string(data), nil
}

// looksBinary reports whether data is not plain text. NUL bytes and invalid
// UTF-8 both mark binary formats such as PDF or DOCX.
func looksBinary(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	return !utf8.Valid(data)
}

// summarize returns the head and tail of a long document; short documents
// pass through whole.
func summarize(text string) string {
	words := strings.Fields(text)
	if len(words) <= 700 {
		return text
	}
	head := strings.Join(words[:500], " ")
	tail := strings.Join(words[len(words)-200:], " ")
	return head + "\n\n[...]\n\n" + tail
}

// keyPoints returns up to ten sentences containing a key-point marker word.
func keyPoints(text string) string {
	sentences := sentenceSplitRe.Split(text, -1)
	var picked []string
	for _, sentence := range sentences {
		s := strings.TrimSpace(sentence)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, marker := range keyPointMarkers {
			if strings.Contains(lower, marker) {
				picked = append(picked, s)
				break
			}
		}
		if len(picked) >= 10 {
			break
		}
	}
	return strings.Join(picked, "\n\n")
}

// citationList returns the document's citation strings, one per line,
// deduplicated in first-seen order.
func citationList(text string) string {
	seen := make(map[string]bool)
	var lines []string
	for _, c := range ExtractCitations(text, "") {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		lines = append(lines, c.Text)
	}
	return strings.Join(lines, "\n")
}
