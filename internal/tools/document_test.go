// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const sampleDocument = `Introduction to the study.
The experiment demonstrated a clear effect (Smith, 2020).
Results showed a 40% improvement over baseline [1].
Further work by Jones et al. (2021) indicates the effect generalizes.
Unrelated filler sentence without markers.`

func writeTempDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func callDocument(t *testing.T, d *Document, location, analysisType string) DocumentResponse {
	t.Helper()
	args, _ := json.Marshal(documentArgs{Location: location, AnalysisType: analysisType})
	out, err := d.Call(context.Background(), args)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var resp DocumentResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON result: %v", err)
	}
	return resp
}

func TestDocumentFullText(t *testing.T) {
	d := &Document{}
	path := writeTempDoc(t, sampleDocument)

	resp := callDocument(t, d, path, AnalysisFullText)
	if resp.Content != sampleDocument {
		t.Errorf("full_text should return the document unchanged")
	}
	if resp.Metadata.CitationsFound != 3 {
		t.Errorf("CitationsFound = %d, want 3", resp.Metadata.CitationsFound)
	}
}

func TestDocumentSummaryShortDoc(t *testing.T) {
	d := &Document{}
	path := writeTempDoc(t, sampleDocument)

	resp := callDocument(t, d, path, AnalysisSummary)
	if resp.Content != sampleDocument {
		t.Error("short documents should pass through summary whole")
	}
}

func TestDocumentSummaryLongDoc(t *testing.T) {
	d := &Document{}
	long := strings.Repeat("alpha beta gamma delta ", 300) // 1200 words
	path := writeTempDoc(t, long)

	resp := callDocument(t, d, path, AnalysisSummary)
	if !strings.Contains(resp.Content, "[...]") {
		t.Error("long summary should contain the elision marker")
	}
	if wordCount(resp.Content) >= 1200 {
		t.Errorf("summary word count = %d, should be shorter than input", wordCount(resp.Content))
	}
}

func TestDocumentKeyPoints(t *testing.T) {
	d := &Document{}
	path := writeTempDoc(t, sampleDocument)

	resp := callDocument(t, d, path, AnalysisKeyPoints)
	if !strings.Contains(resp.Content, "demonstrated") {
		t.Error("key points should include sentences with marker words")
	}
	if strings.Contains(resp.Content, "filler sentence") {
		t.Error("key points should exclude sentences without markers")
	}
}

func TestDocumentExtractCitations(t *testing.T) {
	d := &Document{}
	path := writeTempDoc(t, sampleDocument)

	resp := callDocument(t, d, path, AnalysisCitations)
	for _, want := range []string{"(Smith, 2020)", "[1]", "Jones et al. (2021)"} {
		if !strings.Contains(resp.Content, want) {
			t.Errorf("citations should contain %q, got:\n%s", want, resp.Content)
		}
	}
}

func TestDocumentFromURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/html")
		fmt.Fprint(rw, "<html><body><p>The study found strong evidence.</p></body></html>")
	}))
	defer ts.Close()

	d := &Document{Client: ts.Client()}
	resp := callDocument(t, d, ts.URL, AnalysisFullText)
	if !strings.Contains(resp.Content, "strong evidence") {
		t.Errorf("Content = %q", resp.Content)
	}
	if strings.Contains(resp.Content, "<p>") {
		t.Error("HTML documents should be stripped to text")
	}
}

func TestDocumentRejectsBinaryFile(t *testing.T) {
	d := &Document{}
	path := filepath.Join(t.TempDir(), "doc.pdf")
	raw := append([]byte("%PDF-1.4\n"), 0x00, 0x89, 0x01, 0x02, 0xff, 0xfe)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	args, _ := json.Marshal(documentArgs{Location: path, AnalysisType: AnalysisFullText})
	_, err := d.Call(context.Background(), args)
	if err == nil {
		t.Fatal("expected error for a binary document")
	}
	if !strings.Contains(err.Error(), "binary") {
		t.Errorf("error should name the binary format problem: %v", err)
	}
}

func TestDocumentRejectsBinaryURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/pdf")
		rw.Write(append([]byte("%PDF-1.4\n"), 0x00, 0xff, 0xfe))
	}))
	defer ts.Close()

	d := &Document{Client: ts.Client()}
	args, _ := json.Marshal(documentArgs{Location: ts.URL, AnalysisType: AnalysisFullText})
	if _, err := d.Call(context.Background(), args); err == nil {
		t.Error("expected error for a binary payload")
	}
}

func TestDocumentRetriesTransientFetch(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(rw, "The study found strong evidence.")
	}))
	defer ts.Close()

	d := &Document{Client: ts.Client()}
	resp := callDocument(t, d, ts.URL, AnalysisFullText)
	if !strings.Contains(resp.Content, "strong evidence") {
		t.Errorf("Content = %q", resp.Content)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestDocumentMissingFile(t *testing.T) {
	d := &Document{}
	_, err := d.Call(context.Background(), json.RawMessage(`{"location":"/no/such/file.txt"}`))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "/no/such/file.txt") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestDocumentUnsupportedAnalysisType(t *testing.T) {
	d := &Document{}
	path := writeTempDoc(t, "text")
	args, _ := json.Marshal(documentArgs{Location: path, AnalysisType: "sentiment"})
	if _, err := d.Call(context.Background(), args); err == nil {
		t.Error("expected error for unsupported analysis type")
	}
}
