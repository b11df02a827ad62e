package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillgraph/pkg/cache"
	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "skillgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Catalog and Runner Factories
// =============================================================================

// loadCatalog builds the catalog from the built-in entries, the catalog
// file and the MongoDB collection, later sources overriding earlier ones.
func (c *CLI) loadCatalog(ctx context.Context) (catalog.Catalog, error) {
	cat := catalog.Default()
	cc := c.Config.Catalog

	if cc.File != "" {
		fromFile, err := catalog.LoadFile(cc.File)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		c.Logger.Debug("catalog file loaded", "path", cc.File, "entries", fromFile.Len())
		cat = cat.Merge(fromFile)
	}

	if cc.MongoURI != "" {
		src, err := catalog.NewMongoSource(ctx, cc.MongoURI, cc.MongoDatabase, cc.MongoCollection)
		if err != nil {
			return nil, err
		}
		defer src.Close(context.WithoutCancel(ctx))
		fromMongo, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		c.Logger.Debug("catalog collection loaded", "entries", fromMongo.Len())
		cat = cat.Merge(fromMongo)
	}
	return cat, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cat, err := c.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	lc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.KeyPrefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	return pipeline.NewRunner(lc, keyer, cat, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		return cache.NewRedisCache(ctx, addr)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, layouts are not cached", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Input
// =============================================================================

// loadOptions reads a payload or snapshot file. Snapshots are recognized by
// their "version" field.
func (c *CLI) loadOptions(path string) (pipeline.LoadOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.LoadOptions{}, fmt.Errorf("read %s: %w", path, err)
	}
	opts := pipeline.LoadOptions{Layout: c.Config.LayoutOptions(), Logger: c.Logger}
	if isSnapshot(data) {
		opts.Snapshot = data
		return opts, nil
	}
	p, err := codec.UnmarshalPayload(data)
	if err != nil {
		return opts, fmt.Errorf("%s: %w", path, err)
	}
	opts.Payload = &p
	return opts, nil
}

func isSnapshot(data []byte) bool {
	var probe struct {
		Version *int `json:"version"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Version != nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG one
// (~/.cache/skillgraph/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// outputPath derives an output file next to input.
func outputPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
