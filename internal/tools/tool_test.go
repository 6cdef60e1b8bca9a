// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&Synthesize{}, &Synthesize{})
	if err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestRegistryOrder(t *testing.T) {
	r, err := NewRegistry(&TrackCitations{}, &Synthesize{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []string{"track_citations", "synthesize_sources"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want registration order %v", got, want)
	}

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("len(Definitions) = %d, want 2", len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("Definitions[%d].Name = %q, want %q", i, def.Name, want[i])
		}
		if def.Description == "" {
			t.Errorf("Definitions[%d].Description is empty", i)
		}
		var schema map[string]any
		if err := json.Unmarshal(def.Parameters, &schema); err != nil {
			t.Errorf("Definitions[%d].Parameters is not valid JSON: %v", i, err)
		}
	}
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(&Synthesize{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, ok := r.Get("synthesize_sources"); !ok {
		t.Error("Get(synthesize_sources) not found")
	}
	if _, ok := r.Get("no_such_tool"); ok {
		t.Error("Get(no_such_tool) should not be found")
	}
}

func TestAllToolSchemasParse(t *testing.T) {
	all := []Tool{&WebSearch{}, &Scrape{}, &Document{}, &Synthesize{}, &TrackCitations{}}
	for _, tool := range all {
		t.Run(tool.Name(), func(t *testing.T) {
			var schema struct {
				Type       string         `json:"type"`
				Properties map[string]any `json:"properties"`
			}
			if err := json.Unmarshal(tool.Parameters(), &schema); err != nil {
				t.Fatalf("Parameters: %v", err)
			}
			if schema.Type != "object" {
				t.Errorf("schema type = %q, want object", schema.Type)
			}
			if len(schema.Properties) == 0 {
				t.Error("schema has no properties")
			}
		})
	}
}
