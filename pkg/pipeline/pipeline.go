// Package pipeline loads skill graphs into the editor and commits them back.
//
// This package implements the flows shared by the CLI and the HTTP API so
// both behave the same way:
//
//  1. Load: restore a raw editor snapshot when one is stored, otherwise
//     decode the wire payload against the catalog and lay it out. Layouts
//     are cached by the content hash of the payload.
//  2. Commit: validate the graph and encode it for the execution engine,
//     together with a snapshot for the next load.
//  3. Render: draw a graph as DOT, SVG or one of the JSON documents.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, catalog, logger)
//	res, err := runner.Load(ctx, pipeline.LoadOptions{Payload: &payload})
//	if err != nil {
//	    return err
//	}
//	for _, u := range res.Unresolved {
//	    logger.Warn("unresolved reference", "node", u.NodeID, "name", u.Name)
//	}
//	commit, err := runner.Commit(ctx, res.Graph)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillgraph/pkg/cache"
	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/layout"
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// Format constants for rendered outputs.
const (
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatPayload  = "payload"
	FormatSnapshot = "snapshot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:      true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatPayload:  true,
	FormatSnapshot: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf, payload, snapshot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Load
// =============================================================================

// LoadOptions selects what to load. When both are set the snapshot wins,
// since it keeps positions and display names the payload drops.
type LoadOptions struct {
	Payload  *codec.Payload `json:"payload,omitempty"`
	Snapshot []byte         `json:"snapshot,omitempty"`

	// Strict fails on catalog references that cannot be resolved.
	Strict bool `json:"strict,omitempty"`

	// Relayout lays out a snapshot graph too, discarding its positions.
	Relayout bool `json:"relayout,omitempty"`

	// Refresh skips the layout cache.
	Refresh bool `json:"refresh,omitempty"`

	Layout layout.Options `json:"-"`
	Logger *log.Logger    `json:"-"`
}

// Validate checks that there is something to load and applies defaults.
func (o *LoadOptions) Validate() error {
	if o.Payload == nil && len(o.Snapshot) == 0 {
		return fmt.Errorf("payload or snapshot is required")
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// LayoutKeyOpts returns the cache key options for o.Layout.
func (o *LoadOptions) LayoutKeyOpts() cache.LayoutKeyOpts {
	l := o.Layout
	return cache.LayoutKeyOpts{
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
		RankSep:    l.RankSep,
		NodeSep:    l.NodeSep,
		MarginX:    l.MarginX,
		MarginY:    l.MarginY,
		Jitter:     l.Jitter,
		Seed:       l.Seed,
		Sweeps:     l.Sweeps,
	}
}

// LoadResult is the outcome of [Runner.Load].
type LoadResult struct {
	Graph *skill.Graph

	// Unresolved lists wire names the catalog did not know.
	Unresolved []codec.Unresolved

	// Dropped lists payload edges into input ports that were already bound.
	Dropped []skill.Connection

	// PayloadHash is the blake3 hash of the canonical payload, empty when
	// the graph came from a snapshot.
	PayloadHash string

	FromSnapshot bool
	Validation   validate.Result
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	DecodeTime time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
}

// =============================================================================
// Commit
// =============================================================================

// CommitResult is the outcome of [Runner.Commit].
type CommitResult struct {
	Payload  codec.Payload `json:"payload"`
	Snapshot []byte        `json:"snapshot"`

	// Hash is the blake3 hash of the encoded payload. Loading the payload
	// again finds its layout under the same hash.
	Hash string `json:"hash"`
}
