// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the library packages.
// Consumers register hooks at startup to receive events about editing
// sessions, codec and layout runs, cache operations and served requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Prometheus] implements every hook interface on a private registry.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom := observability.NewPrometheus("skillgraph")
//	    prom.Install()
//	    // ... run application, serve prom.Handler() on /metrics
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	res, err := codec.Decode(p, cat, opts)
//	observability.Pipeline().OnDecode(ctx, len(p.Nodes), len(res.Unresolved), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from editing sessions.
type EditorHooks interface {
	// OnMutation records a graph mutation; err is the rejection, if any.
	OnMutation(ctx context.Context, op string, err error)

	// OnTransition records an editor state change.
	OnTransition(ctx context.Context, from, to string)

	// OnValidate records a structural validation and its result code.
	OnValidate(ctx context.Context, code string, duration time.Duration)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load and commit pipeline.
type PipelineHooks interface {
	OnDecode(ctx context.Context, nodeCount, unresolved int, duration time.Duration, err error)
	OnLayout(ctx context.Context, nodeCount int, duration time.Duration, cached bool)
	OnEncode(ctx context.Context, nodeCount int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request. route is the matched route pattern.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, error)         {}
func (NoopEditorHooks) OnTransition(context.Context, string, string)      {}
func (NoopEditorHooks) OnValidate(context.Context, string, time.Duration) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnDecode(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayout(context.Context, int, time.Duration, bool)       {}
func (NoopPipelineHooks) OnEncode(context.Context, int, time.Duration, error)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// hook holds the registered implementation of one hook interface.
type hook[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newHook[T any](noop T) *hook[T] {
	return &hook[T]{cur: noop, noop: noop}
}

func (h *hook[T]) get() T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// set registers v. A nil interface value is ignored.
func (h *hook[T]) set(v T) {
	if any(v) == nil {
		return
	}
	h.mu.Lock()
	h.cur = v
	h.mu.Unlock()
}

func (h *hook[T]) reset() {
	h.mu.Lock()
	h.cur = h.noop
	h.mu.Unlock()
}

var (
	editorHooks   = newHook[EditorHooks](NoopEditorHooks{})
	pipelineHooks = newHook[PipelineHooks](NoopPipelineHooks{})
	cacheHooks    = newHook[CacheHooks](NoopCacheHooks{})
	httpHooks     = newHook[HTTPHooks](NoopHTTPHooks{})
)

// SetEditorHooks registers editor hooks. Call it at startup.
func SetEditorHooks(h EditorHooks) { editorHooks.set(h) }

// SetPipelineHooks registers pipeline hooks. Call it at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineHooks.set(h) }

// SetCacheHooks registers cache hooks. Call it at startup.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetHTTPHooks registers HTTP hooks. Call it at startup.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Editor returns the registered editor hooks.
func Editor() EditorHooks { return editorHooks.get() }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	editorHooks.reset()
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
