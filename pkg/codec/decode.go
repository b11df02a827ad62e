package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/skillgraph/pkg/catalog"
	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Options controls [Decode].
type Options struct {
	// Strict fails on the first wire name the catalog cannot resolve, and
	// on the first edge into an already bound input port, instead of
	// recovering what the payload allows.
	Strict bool
}

// Unresolved records a wire node whose catalog entry was not found.
type Unresolved struct {
	NodeID string     `json:"node"`
	Kind   skill.Kind `json:"kind"`
	Name   string     `json:"name"`
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s node %s: %q not in catalog", u.Kind, u.NodeID, u.Name)
}

// DecodeResult is the outcome of [Decode].
type DecodeResult struct {
	Graph      *skill.Graph
	Unresolved []Unresolved

	// Dropped lists wire edges left out because their target port was
	// already bound by an earlier edge.
	Dropped []skill.Connection
}

// Decode rebuilds a graph from a wire payload. Model nodes are matched to
// catalog entries by catalog id (kan_id), every other kind by exact entry
// name. Decoded nodes are configured, carry empty per-field error maps and
// sit at the zero position.
//
// Display names are not on the wire. Model nodes are named
// [skill.DefaultModelNodeName], other nodes after their catalog entry;
// repeated names get a numeric suffix so a graph that validated before
// encoding validates again.
func Decode(p Payload, cat catalog.Catalog, opts Options) (*DecodeResult, error) {
	if cat == nil {
		cat = catalog.Default()
	}
	if err := checkPayload(p); err != nil {
		return nil, err
	}

	res := &DecodeResult{}
	nodes := make([]skill.Node, 0, len(p.Nodes))
	names := make(map[string]int)

	for _, wn := range p.Nodes {
		kind, err := skill.ParseKind(wn.Type)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "node %s", wn.ID)
		}

		entry, found := lookup(cat, kind, wn.Name)
		if !found {
			if opts.Strict {
				return nil, errs.New(errs.ErrCodeUnresolvedReference, "%s node %s references unknown %q",
					kind, wn.ID, wn.Name)
			}
			res.Unresolved = append(res.Unresolved, Unresolved{NodeID: wn.ID, Kind: kind, Name: wn.Name})
			entry = fallbackEntry(kind, wn.Name)
		}

		n := skill.Node{
			ID:         wn.ID,
			Kind:       kind,
			Ref:        entry.Ref(),
			Configured: true,
		}
		if kind.HasSubKind() {
			n.SubKind = entry.SubKind()
			if n.SubKind == skill.SubKindNone {
				n.SubKind = skill.SubKindFromCatalogName(wn.Name)
			}
			if n.SubKind.Kind() != kind {
				return nil, errs.New(errs.ErrCodeInvalidPayload, "%s node %s: cannot derive subKind from %q",
					kind, wn.ID, wn.Name)
			}
		}

		n.Config, err = expand(n, entry, wn.Configurations)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "node %s", wn.ID)
		}
		n.Name = uniqueName(names, displayName(kind, entry))
		nodes = append(nodes, n)
	}

	edges := make([]skill.Edge, 0, len(p.Edges))
	bound := make([]skill.Connection, 0, len(p.Edges))
	for _, we := range p.Edges {
		c := skill.Connect(we.Source.Node, we.Target.Node)
		if err := skill.CheckConnection(bound, c); err != nil {
			if opts.Strict {
				return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "edge %s -> %s", c.Source, c.Target)
			}
			res.Dropped = append(res.Dropped, c)
			continue
		}
		bound = append(bound, c)
		edges = append(edges, skill.Edge{ID: skill.EdgeID(c), Connection: c})
	}

	g, err := skill.Restore(nodes, edges)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "rebuild graph")
	}
	res.Graph = g
	return res, nil
}

func lookup(cat catalog.Catalog, kind skill.Kind, name string) (catalog.Entry, bool) {
	if kind == skill.KindModel {
		return cat.ByKanID(name)
	}
	return cat.ByName(name)
}

// fallbackEntry keeps what the wire name tells about an unresolved node.
// Routes default to the two-port route so the graph can still be encoded.
func fallbackEntry(kind skill.Kind, name string) catalog.Entry {
	e := catalog.Entry{Name: name, Kind: kind}
	if kind == skill.KindModel {
		e.KanID = name
	}
	if kind != skill.KindSource {
		e.Inputs = []skill.Route{{Route: skill.DefaultRoute}}
	}
	if kind != skill.KindExport {
		e.Outputs = []skill.Route{{Route: skill.DefaultRoute}}
	}
	return e
}

func displayName(kind skill.Kind, e catalog.Entry) string {
	if kind == skill.KindModel {
		return skill.DefaultModelNodeName
	}
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s %d", name, n)
	}
	return name
}

// expand re-derives the editor configuration from the projected wire fields.
func expand(n skill.Node, entry catalog.Entry, c map[string]string) (skill.Configuration, error) {
	get := func(k string) string { return c[k] }

	switch n.Kind {
	case skill.KindSource:
		cfg := skill.DefaultSourceConfig()
		if v := get("ip"); v != "" {
			cfg.IP = v
		}
		if v := get("fps"); v != "" {
			cfg.FPS = v
		}
		if v := get("device_name"); v != "" {
			cfg.DeviceName = v
		}
		return cfg, nil

	case skill.KindModel:
		lower, err := atoi(get("confidence_lower"), "confidence_lower")
		if err != nil {
			return nil, err
		}
		upper, err := atoi(get("confidence_upper"), "confidence_upper")
		if err != nil {
			return nil, err
		}
		maxImages, err := atoi(get("max_images"), "max_images")
		if err != nil {
			return nil, err
		}
		capture := skill.CaptureNo
		if maxImages > 0 {
			capture = skill.CaptureYes
		}
		return skill.ModelConfig{
			Model:           skill.ModelSelection{ID: entry.ID, Name: entry.Name},
			Category:        entry.Category,
			CaptureData:     capture,
			ConfidenceLower: lower,
			ConfidenceUpper: upper,
			MaxImages:       maxImages,
			Errors:          skill.ModelFieldErrors(),
		}, nil
	}

	switch n.SubKind {
	case skill.SubKindFilter:
		threshold, err := atoi(get("confidence_threshold"), "confidence_threshold")
		if err != nil {
			return nil, err
		}
		return skill.FilterConfig{Labels: ParseLabels(get("labels")), ConfidenceThreshold: threshold}, nil
	case skill.SubKindGrpc:
		port, err := atoi(get("port"), "port")
		if err != nil {
			return nil, err
		}
		return skill.GrpcConfig{
			Type:           get("type"),
			EndpointURL:    get("endpoint_url"),
			ContainerName:  get("container_name"),
			ContainerImage: get("container_image"),
			CreateOptions:  get("create_options"),
			RestartPolicy:  get("restart_policy"),
			Port:           port,
			Route:          get("route"),
		}, nil
	case skill.SubKindSnippet:
		return skill.SnippetConfig{
			FilenamePrefix:    get("filename_prefix"),
			RecordingDuration: get("recording_duration"),
			InsightsOverlay:   get("insights_overlay"),
			DelayBuffer:       get("delay_buffer"),
			Errors:            skill.ExportFieldErrors(),
		}, nil
	case skill.SubKindIoTHub:
		return skill.IoTHubConfig{DelayBuffer: get("delay_buffer"), Errors: skill.ExportFieldErrors()}, nil
	case skill.SubKindIoTEdge:
		return skill.IoTEdgeConfig{
			DelayBuffer: get("delay_buffer"),
			ModuleName:  get("module_name"),
			ModuleInput: get("module_input"),
			Errors:      skill.ExportFieldErrors(),
		}, nil
	case skill.SubKindHTTP:
		return skill.HTTPConfig{URL: get("url"), Errors: skill.ExportFieldErrors()}, nil
	case skill.SubKindMQTT:
		return skill.MQTTConfig{
			DelayBuffer:   get("delay_buffer"),
			BrokerAddress: get("broker_address"),
			Errors:        skill.ExportFieldErrors(),
		}, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "subKind %q", n.SubKind)
}

// atoi parses an optional integer field. Missing fields are zero.
func atoi(s, field string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, s)
	}
	return v, nil
}

// ParseLabels reads filter labels from either a JSON array or a comma or
// whitespace separated list.
func ParseLabels(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var labels []string
		if err := json.Unmarshal([]byte(s), &labels); err == nil {
			return labels
		}
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
