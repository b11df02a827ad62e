package catalog

import (
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

func TestDefault(t *testing.T) {
	c := Default()

	src, ok := c.ByName(skill.SourceEntryName)
	if !ok || src.Kind != skill.KindSource {
		t.Fatalf("source entry = %+v, %v", src, ok)
	}
	if len(src.Inputs) != 0 || len(src.Outputs) != 1 {
		t.Errorf("source routes = %v / %v", src.Inputs, src.Outputs)
	}
	for _, sub := range skill.SubKinds {
		e, ok := c.ByName(sub.CatalogName())
		if !ok {
			t.Errorf("missing entry for %s", sub)
			continue
		}
		if e.SubKind() != sub || e.Kind != sub.Kind() {
			t.Errorf("entry %s: subKind %s kind %s", e.Name, e.SubKind(), e.Kind)
		}
	}
	if got := len(c.OfKind(skill.KindExport)); got != 5 {
		t.Errorf("exports = %d, want 5", got)
	}
}

func TestMergeOverrides(t *testing.T) {
	file := NewMemory(Entry{
		ID:          1,
		Kind:        skill.KindExport,
		Name:        skill.SubKindHTTP.CatalogName(),
		DisplayName: "Webhook",
		Inputs:      []skill.Route{{Route: "in"}},
	})
	merged := Default().Merge(file)

	e, ok := merged.ByName(skill.SubKindHTTP.CatalogName())
	if !ok || e.DisplayName != "Webhook" {
		t.Fatalf("ByName = %+v, %v; want the overriding entry", e, ok)
	}
	if len(e.Inputs) != 1 || e.Inputs[0].Route != "in" {
		t.Errorf("Inputs = %v, want [in]", e.Inputs)
	}
	if e, _ := merged.ByID(1); e.Name != skill.SubKindHTTP.CatalogName() {
		t.Errorf("ByID(1) = %s, want the overriding entry", e.Name)
	}
	if merged.Len() != Default().Len() {
		t.Errorf("Len = %d, want %d (redeclared entry replaced)", merged.Len(), Default().Len())
	}
	if _, ok := merged.ByName(skill.SourceEntryName); !ok {
		t.Error("entry sharing only an id should stay listed")
	}

	second := NewMemory(Entry{ID: 50, Kind: skill.KindExport, Name: skill.SubKindHTTP.CatalogName(), DisplayName: "Later"})
	if e, _ := Default().Merge(file, second).ByName(skill.SubKindHTTP.CatalogName()); e.DisplayName != "Later" {
		t.Errorf("later catalog should win, got %q", e.DisplayName)
	}
}

func TestMemoryLookups(t *testing.T) {
	m := NewMemory(
		Entry{ID: 10, Name: "counter", KanID: "model-1", Kind: skill.KindModel},
		Entry{ID: 11, Name: "counter", KanID: "model-2", Kind: skill.KindModel},
	)
	if e, _ := m.ByName("counter"); e.ID != 10 {
		t.Errorf("ByName first wins: got id %d", e.ID)
	}
	if e, ok := m.ByKanID("model-2"); !ok || e.ID != 11 {
		t.Errorf("ByKanID = %+v, %v", e, ok)
	}
	if _, ok := m.ByID(12); ok {
		t.Error("ByID(12) should miss")
	}
	merged := Default().Merge(m)
	if merged.Len() != Default().Len()+2 {
		t.Errorf("merged Len = %d", merged.Len())
	}

	ref := m.Entries()[0].Ref()
	if ref.WireName() != "model-1" {
		t.Errorf("WireName = %q", ref.WireName())
	}
}

func TestLoadFile(t *testing.T) {
	files := map[string]string{
		"catalog.toml": `
[[entry]]
id = 12
name = "people-counter"
kan_id = "model-abc"
kind = "model"
display_name = "People"
inputs = [{ route = "f", type = "frame" }]
outputs = [{ route = "f" }]
`,
		"catalog.yaml": `
entries:
  - id: 12
    name: people-counter
    kan_id: model-abc
    kind: model
    display_name: People
    inputs: [{route: f, type: frame}]
    outputs: [{route: f}]
`,
		"catalog.json": `[{"id": 12, "name": "people-counter", "kan_id": "model-abc", "kind": "model",
  "displayName": "People", "inputs": [{"route": "f", "type": "frame"}], "outputs": [{"route": "f"}]}]`,
	}

	dir := t.TempDir()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			e, ok := c.ByKanID("model-abc")
			if !ok {
				t.Fatal("entry not found by kan_id")
			}
			if e.ID != 12 || e.Kind != skill.KindModel || e.DisplayName != "People" {
				t.Errorf("entry = %+v", e)
			}
			if len(e.Inputs) != 1 || e.Inputs[0].Route != "f" {
				t.Errorf("inputs = %v", e.Inputs)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"entries": [{"name": "x", "kind": "camera"}]}`), 0o644)

	tests := []struct {
		name string
		path string
		code errs.Code
	}{
		{"missing", filepath.Join(dir, "nope.toml"), errs.ErrCodeFileNotFound},
		{"extension", filepath.Join(dir, "catalog.ini"), errs.ErrCodeInvalidFormat},
		{"unknown kind", bad, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if !errs.Is(err, tt.code) {
				t.Errorf("LoadFile error = %v, want code %s", err, tt.code)
			}
		})
	}
}
