package codec

import (
	"encoding/json"
	"strconv"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Encode converts g into the wire payload. Every node must be configured
// and carry a catalog reference that declares the routes its edges use.
// Encode does not run structural validation; callers commit only graphs
// that pass it.
func Encode(g *skill.Graph) (Payload, error) {
	nodes := g.Nodes()
	p := Payload{
		Nodes:      make([]NodePayload, 0, len(nodes)),
		Edges:      make([]EdgePayload, 0, g.EdgeCount()),
		Parameters: DefaultParameters(),
	}

	refs := make(map[string]*skill.Ref, len(nodes))
	for _, n := range nodes {
		np, err := encodeNode(n)
		if err != nil {
			return Payload{}, err
		}
		refs[n.ID] = n.Ref
		p.Nodes = append(p.Nodes, np)
	}

	for _, e := range g.Edges() {
		out, ok := refs[e.Source].OutputRoute()
		if !ok {
			return Payload{}, errs.New(errs.ErrCodeInvalidGraph, "node %s declares no output route", e.Source)
		}
		in, ok := refs[e.Target].InputRoute()
		if !ok {
			return Payload{}, errs.New(errs.ErrCodeInvalidGraph, "node %s declares no input route", e.Target)
		}
		p.Edges = append(p.Edges, EdgePayload{
			Source: Endpoint{Node: e.Source, Route: out},
			Target: Endpoint{Node: e.Target, Route: in},
		})
	}
	return p, nil
}

func encodeNode(n skill.Node) (NodePayload, error) {
	if !n.Configured || n.Config == nil {
		return NodePayload{}, errs.New(errs.ErrCodeInvalidGraph, "node %s (%s) is not configured", n.ID, n.Name)
	}
	if n.Ref == nil {
		return NodePayload{}, errs.New(errs.ErrCodeInvalidGraph, "node %s (%s) has no catalog reference", n.ID, n.Name)
	}
	if n.Config.Kind() != n.Kind || n.Config.SubKind() != n.SubKind {
		return NodePayload{}, errs.New(errs.ErrCodeInvalidGraph, "node %s carries a %s/%s configuration",
			n.ID, n.Config.Kind(), n.Config.SubKind())
	}

	name := n.Ref.Name
	if n.Kind == skill.KindModel {
		name = n.Ref.WireName()
	}
	cfg, err := project(n.Config)
	if err != nil {
		return NodePayload{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "node %s", n.ID)
	}
	return NodePayload{ID: n.ID, Type: string(n.Kind), Name: name, Configurations: cfg}, nil
}

// project keeps the fields the execution engine reads for each variant.
func project(c skill.Configuration) (map[string]string, error) {
	switch cfg := c.(type) {
	case skill.SourceConfig:
		return map[string]string{
			"ip":          cfg.IP,
			"fps":         cfg.FPS,
			"device_name": cfg.DeviceName,
		}, nil
	case skill.ModelConfig:
		return map[string]string{
			"confidence_upper": strconv.Itoa(cfg.ConfidenceUpper),
			"confidence_lower": strconv.Itoa(cfg.ConfidenceLower),
			"max_images":       strconv.Itoa(cfg.MaxImages),
		}, nil
	case skill.FilterConfig:
		labels, err := json.Marshal(cfg.Labels)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"labels":               string(labels),
			"confidence_threshold": strconv.Itoa(cfg.ConfidenceThreshold),
		}, nil
	case skill.GrpcConfig:
		m := map[string]string{"type": cfg.Type, "endpoint_url": cfg.EndpointURL}
		if cfg.Type == skill.GrpcContainer {
			m["container_name"] = cfg.ContainerName
			m["container_image"] = cfg.ContainerImage
			m["create_options"] = cfg.CreateOptions
			m["restart_policy"] = cfg.RestartPolicy
			m["port"] = strconv.Itoa(cfg.Port)
			m["route"] = cfg.Route
		}
		return m, nil
	case skill.SnippetConfig:
		return map[string]string{
			"delay_buffer":         cfg.DelayBuffer,
			"filename_prefix":      cfg.FilenamePrefix,
			"instance_displayname": skill.ParamInstanceDisplayName,
			"device_displayname":   skill.ParamDeviceDisplayName,
			"skill_displayname":    skill.ParamSkillDisplayName,
			"recording_duration":   cfg.RecordingDuration,
			"insights_overlay":     cfg.InsightsOverlay,
		}, nil
	case skill.IoTHubConfig:
		return map[string]string{"delay_buffer": cfg.DelayBuffer}, nil
	case skill.IoTEdgeConfig:
		return map[string]string{
			"delay_buffer": cfg.DelayBuffer,
			"module_name":  cfg.ModuleName,
			"module_input": cfg.ModuleInput,
		}, nil
	case skill.HTTPConfig:
		return map[string]string{"url": cfg.URL}, nil
	case skill.MQTTConfig:
		return map[string]string{
			"delay_buffer":   cfg.DelayBuffer,
			"broker_address": cfg.BrokerAddress,
		}, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "configuration %T", c)
}
