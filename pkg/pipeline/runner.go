package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillgraph/pkg/cache"
	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/layout"
	"github.com/matzehuels/skillgraph/pkg/observability"
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// Runner runs the load and commit flows with caching.
//
// The Runner is stateless except for the cache, catalog and logger.
// Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog catalog.Catalog
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default one and a nil catalog the built-in entries.
func NewRunner(c cache.Cache, keyer cache.Keyer, cat catalog.Catalog, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: cat,
		Logger:  logger,
	}
}

// Load rebuilds a graph from a snapshot or a payload.
func (r *Runner) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &LoadResult{}
	if len(opts.Snapshot) > 0 {
		g, err := codec.UnmarshalSnapshot(opts.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		res.Graph = g
		res.FromSnapshot = true
		r.Logger.Debug("restored snapshot", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	} else {
		start := time.Now()
		dec, hash, err := Decode(ctx, *opts.Payload, r.Catalog, codec.Options{Strict: opts.Strict})
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		res.Graph, res.Unresolved, res.Dropped, res.PayloadHash = dec.Graph, dec.Unresolved, dec.Dropped, hash
		res.Stats.DecodeTime = time.Since(start)

		for _, u := range dec.Unresolved {
			r.Logger.Warn("unresolved catalog reference", "node", u.NodeID, "kind", u.Kind, "name", u.Name)
		}
		for _, c := range dec.Dropped {
			r.Logger.Warn("dropped edge into bound port", "source", c.Source, "target", c.Target)
		}
		r.Logger.Info("decoded payload",
			"nodes", dec.Graph.NodeCount(),
			"edges", dec.Graph.EdgeCount(),
			"duration", res.Stats.DecodeTime)
	}

	if !res.FromSnapshot || opts.Relayout || layout.NeedsLayout(res.Graph) {
		start := time.Now()
		hit, err := r.LayoutWithCacheInfo(ctx, res.Graph, res.PayloadHash, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		res.Stats.LayoutTime = time.Since(start)
		res.CacheInfo.LayoutHit = hit
	}

	res.Stats.NodeCount = res.Graph.NodeCount()
	res.Stats.EdgeCount = res.Graph.EdgeCount()
	res.Validation = validate.Validate(res.Graph)
	return res, nil
}

// LayoutWithCacheInfo positions every node of g. Layouts of payload graphs
// are cached under payloadHash; an empty hash skips the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *skill.Graph, payloadHash string, opts LoadOptions) (bool, error) {
	if opts.Layout == (layout.Options{}) {
		opts.Layout = layout.DefaultOptions()
	}
	var key string
	if payloadHash != "" {
		key = r.Keyer.LayoutKey(payloadHash, opts.LayoutKeyOpts())
	}

	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if err := applyPositions(g, data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnLayout(ctx, g.NodeCount(), 0, true)
				return true, nil
			}
			// A stale entry falls through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	l, err := layout.Apply(g, opts.Layout)
	if err != nil {
		return false, err
	}
	observability.Pipeline().OnLayout(ctx, g.NodeCount(), time.Since(start), false)
	r.Logger.Debug("computed layout", "ranks", len(l.Orders), "crossings", l.Crossings)

	if key != "" {
		if data, err := marshalPositions(l.Positions); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return false, nil
}

// Commit validates g and encodes it. A graph that fails validation returns
// the INVALID_GRAPH error of its first failing check.
func (r *Runner) Commit(ctx context.Context, g *skill.Graph) (*CommitResult, error) {
	if err := validate.Validate(g).Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	p, err := codec.Encode(g)
	observability.Pipeline().OnEncode(ctx, g.NodeCount(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	data, err := codec.MarshalPayload(p)
	if err != nil {
		return nil, err
	}
	snap, err := codec.MarshalSnapshot(g)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	res := &CommitResult{Payload: p, Snapshot: snap, Hash: cache.Hash(data)}
	r.Logger.Info("committed skill", "nodes", len(p.Nodes), "edges", len(p.Edges), "hash", res.Hash[:12])
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
