// Package cli implements the skillgraph command-line interface.
//
// The commands convert skill pipelines between the engine payload and the
// editor snapshot, lay them out and render them, and run the HTTP editing
// server. The CLI is built with cobra; configuration is read from a TOML
// file (--config, default $XDG_CONFIG_HOME/skillgraph/config.toml).
//
// # Commands
//
//   - validate: Check a payload or snapshot against the structural rules
//   - encode: Turn a valid snapshot into an engine payload
//   - decode: Turn an engine payload into a snapshot
//   - layout: Compute node positions
//   - render: Draw a pipeline as DOT, SVG, PNG or PDF
//   - inspect: Browse and prune a pipeline interactively
//   - serve: Serve editing sessions over HTTP
//   - sessions: Manage stored editing sessions
//   - catalog: List the skills nodes can be built from
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels with the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w at level. Debug output
// carries the caller so -v traces point into the code.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step and logs its completion.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to the
// millisecond, e.g. "decoded nodes=12 elapsed=4ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
