package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/skillgraph/pkg/layout"
)

// Config is the contents of skillgraph.toml. Every section is optional.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Session SessionConfig `toml:"session"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Metrics        bool     `toml:"metrics"`
}

// CatalogConfig selects where catalog entries come from. File entries are
// merged over the built-in ones; MongoURI entries are merged over both.
type CatalogConfig struct {
	File            string `toml:"file"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Session store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// SessionConfig selects the session store of "serve".
type SessionConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       duration `toml:"ttl"`
}

// LayoutConfig overrides layout defaults. Zero values keep the default.
type LayoutConfig struct {
	Jitter *float64 `toml:"jitter"`
	Seed   *uint64  `toml:"seed"`
	Sweeps int      `toml:"sweeps"`
}

// CacheConfig configures the layout cache. RedisAddr selects a shared Redis
// cache instead of the cache directory; KeyPrefix separates deployments
// sharing it.
type CacheConfig struct {
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	KeyPrefix string `toml:"key_prefix"`
	Disabled  bool   `toml:"disabled"`
}

// duration reads TOML strings such as "24h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", Metrics: true},
		Session: SessionConfig{Backend: BackendMemory, TTL: duration{24 * time.Hour}},
	}
}

// LoadConfig reads path over the defaults. A missing file at the default
// location is not an error; a missing explicit path is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Session.Backend {
	case "", BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("session.backend: unknown backend %q (memory, file, redis)", c.Session.Backend)
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		return fmt.Errorf("session.redis_addr is required for the redis backend")
	}
	return nil
}

// LayoutOptions applies the layout section to the default options.
func (c Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if c.Layout.Jitter != nil {
		opts.Jitter = *c.Layout.Jitter
	}
	if c.Layout.Seed != nil {
		opts.Seed = *c.Layout.Seed
	}
	if c.Layout.Sweeps > 0 {
		opts.Sweeps = c.Layout.Sweeps
	}
	return opts
}

// configPath returns $XDG_CONFIG_HOME/skillgraph/config.toml.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
