package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/observability"
	"github.com/matzehuels/skillgraph/pkg/server"
	"github.com/matzehuels/skillgraph/pkg/session"
)

// cleanupInterval is how often expired sessions are swept from stores
// without native expiry.
const cleanupInterval = 10 * time.Minute

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		backend   string
		dir       string
		redisAddr string
		ttl       time.Duration
		noMetrics bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve editing sessions over HTTP.

Sessions are kept in memory, in JSON files or in Redis (session.backend in
the config file, or --backend). Prometheus metrics are served on /metrics.

Flags override the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("backend") {
				cfg.Session.Backend = backend
			}
			if flags.Changed("session-dir") {
				cfg.Session.Dir = dir
			}
			if flags.Changed("redis-addr") {
				cfg.Session.RedisAddr = redisAddr
			}
			if flags.Changed("ttl") {
				cfg.Session.TTL.Duration = ttl
			}
			if noMetrics {
				cfg.Server.Metrics = false
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&backend, "backend", "", "session store: memory, file, redis")
	cmd.Flags().StringVar(&dir, "session-dir", "", "session directory for the file backend")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the redis backend")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "idle session lifetime (0 keeps sessions)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg Config, noCache bool) error {
	store, err := openStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srvCfg := server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Store:          store,
		Runner:         runner,
		Catalog:        runner.Catalog,
		Logger:         c.Logger,
		SessionTTL:     cfg.Session.TTL.Duration,
	}
	if cfg.Server.Metrics {
		prom := observability.NewPrometheus(appName)
		prom.Install()
		defer observability.Reset()
		srvCfg.Metrics = prom.Handler()
	}

	if sweeper, ok := store.(interface{ Cleanup(context.Context) error }); ok {
		go c.sweep(ctx, sweeper.Cleanup)
	}

	c.Logger.Info("starting server", "addr", srvCfg.Addr, "sessions", cfg.Session.Backend, "metrics", cfg.Server.Metrics)
	return server.New(srvCfg).ListenAndServe(ctx)
}

// openStore opens the configured session store.
func openStore(ctx context.Context, cfg SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case BackendFile:
		return session.NewFileStore(cfg.Dir)
	case BackendRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{Addr: cfg.RedisAddr})
	}
	return session.NewMemoryStore(), nil
}

func (c *CLI) sweep(ctx context.Context, cleanup func(context.Context) error) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := cleanup(ctx); err != nil {
				c.Logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}
