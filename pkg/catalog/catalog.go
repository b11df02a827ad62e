// Package catalog provides the read-only registry of models, transforms and
// export sinks that skill graph nodes reference.
//
// The catalog is owned elsewhere (a model training service, a static file,
// a MongoDB collection). This package only reads it: the codec resolves wire
// names against it and the editor copies entry fields into node references.
//
// # Sources
//
//   - [Default]: the built-in camera source, transforms and exports
//   - [LoadFile]: TOML, YAML or JSON files
//   - [MongoSource]: a MongoDB collection
//
// All sources produce a [*Memory], which implements [Catalog].
package catalog

import (
	"slices"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Entry is one catalog definition.
type Entry struct {
	ID          int           `json:"id" bson:"id" toml:"id" yaml:"id"`
	Name        string        `json:"name" bson:"name" toml:"name" yaml:"name"`
	KanID       string        `json:"kan_id,omitempty" bson:"kan_id,omitempty" toml:"kan_id" yaml:"kan_id,omitempty"`
	DisplayName string        `json:"displayName,omitempty" bson:"display_name,omitempty" toml:"display_name" yaml:"display_name,omitempty"`
	Kind        skill.Kind    `json:"kind" bson:"kind" toml:"kind" yaml:"kind"`
	ProjectType string        `json:"projectType,omitempty" bson:"project_type,omitempty" toml:"project_type" yaml:"project_type,omitempty"`
	Category    string        `json:"category,omitempty" bson:"category,omitempty" toml:"category" yaml:"category,omitempty"`
	Inputs      []skill.Route `json:"inputs,omitempty" bson:"inputs,omitempty" toml:"inputs" yaml:"inputs,omitempty"`
	Outputs     []skill.Route `json:"outputs,omitempty" bson:"outputs,omitempty" toml:"outputs" yaml:"outputs,omitempty"`
}

// Ref returns the node reference for the entry.
func (e Entry) Ref() *skill.Ref {
	return &skill.Ref{
		ID:          e.ID,
		Name:        e.Name,
		KanID:       e.KanID,
		DisplayName: e.DisplayName,
		ProjectType: e.ProjectType,
		Category:    e.Category,
		Inputs:      slices.Clone(e.Inputs),
		Outputs:     slices.Clone(e.Outputs),
	}
}

// SubKind returns the subKind implied by the entry name.
func (e Entry) SubKind() skill.SubKind {
	return skill.SubKindFromCatalogName(e.Name)
}

// Catalog looks up entries. Implementations must be safe for concurrent reads.
type Catalog interface {
	Entries() []Entry
	ByID(id int) (Entry, bool)
	ByName(name string) (Entry, bool)
	ByKanID(kanID string) (Entry, bool)
}

// Memory is an immutable in-memory catalog.
type Memory struct {
	entries []Entry
	byName  map[string]int
	byKanID map[string]int
	byID    map[int]int
}

// NewMemory indexes entries. When names collide the first entry wins.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{
		entries: slices.Clone(entries),
		byName:  make(map[string]int, len(entries)),
		byKanID: make(map[string]int),
		byID:    make(map[int]int, len(entries)),
	}
	for i, e := range m.entries {
		if _, ok := m.byName[e.Name]; !ok {
			m.byName[e.Name] = i
		}
		if e.KanID != "" {
			if _, ok := m.byKanID[e.KanID]; !ok {
				m.byKanID[e.KanID] = i
			}
		}
		if _, ok := m.byID[e.ID]; !ok {
			m.byID[e.ID] = i
		}
	}
	return m
}

// Entries returns a copy of all entries in load order.
func (m *Memory) Entries() []Entry { return slices.Clone(m.entries) }

// Len returns the number of entries.
func (m *Memory) Len() int { return len(m.entries) }

func (m *Memory) ByID(id int) (Entry, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *Memory) ByName(name string) (Entry, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *Memory) ByKanID(kanID string) (Entry, bool) {
	i, ok := m.byKanID[kanID]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// OfKind returns the entries of one kind.
func (m *Memory) OfKind(k skill.Kind) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Merge returns a catalog in which the entries of others override those of
// m, and later catalogs in others override earlier ones. An entry whose name
// is redeclared by an overriding catalog is dropped; one that only shares a
// catalog id or kan_id stays listed but loses that lookup. Overriding
// entries come first in Entries.
func (m *Memory) Merge(others ...Catalog) *Memory {
	layers := append([]Catalog{m}, others...)
	claimed := make(map[string]bool)
	var all []Entry
	for i := len(layers) - 1; i >= 0; i-- {
		n := len(all)
		for _, e := range layers[i].Entries() {
			if !claimed[e.Name] {
				all = append(all, e)
			}
		}
		for _, e := range all[n:] {
			claimed[e.Name] = true
		}
	}
	return NewMemory(all...)
}

// Default returns the built-in camera source, transforms and exports.
func Default() *Memory {
	entry := func(id int, kind skill.Kind, name, display string) Entry {
		e := Entry{
			ID:          id,
			Kind:        kind,
			Name:        name,
			DisplayName: display,
			Inputs:      []skill.Route{{Route: skill.DefaultRoute, Type: "frame"}},
			Outputs:     []skill.Route{{Route: skill.DefaultRoute, Type: "frame"}},
		}
		switch kind {
		case skill.KindSource:
			e.Inputs = nil
		case skill.KindExport:
			e.Outputs = nil
		}
		return e
	}
	return NewMemory(
		entry(1, skill.KindSource, skill.SourceEntryName, "RTSP"),
		entry(2, skill.KindTransform, skill.CatalogFilterTransform, "Filter"),
		entry(3, skill.KindTransform, skill.CatalogGrpcTransform, "gRPC Transform"),
		entry(4, skill.KindExport, skill.CatalogSnippetExport, "Video Snippet"),
		entry(5, skill.KindExport, skill.CatalogIoTHubExport, "IoT Hub"),
		entry(6, skill.KindExport, skill.CatalogIoTEdgeExport, "IoT Edge"),
		entry(7, skill.KindExport, skill.CatalogHTTPExport, "HTTP"),
		entry(8, skill.KindExport, skill.CatalogMQTTExport, "MQTT"),
	)
}
