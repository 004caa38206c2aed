// Package config loads the procsheet TOML configuration file.
//
// The file is optional. Every section falls back to the library defaults, so
// an empty or missing file yields [Default]:
//
//	[grid]
//	column_width_px = 64
//	row_height_px = 20
//
//	[export]
//	lane_lighten = 0.8
//	creator = "Process Office"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	uri = "mongodb://localhost:27017"
//
// The default location is $XDG_CONFIG_HOME/procsheet/config.toml, falling
// back to ~/.config/procsheet/config.toml.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/procsheet/pkg/layout"
	"github.com/matzehuels/procsheet/pkg/sheet"
	"github.com/matzehuels/procsheet/pkg/sheet/grid"
)

// AppName names the configuration and cache directories.
const AppName = "procsheet"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// DefaultAddr is the API listen address.
const DefaultAddr = ":8080"

// Config is the whole configuration file.
type Config struct {
	Grid   grid.Config    `toml:"grid" json:"grid"`
	Export sheet.Options  `toml:"export" json:"export"`
	Layout layout.Options `toml:"layout" json:"layout"`
	Cache  Cache          `toml:"cache" json:"cache"`
	Store  Store          `toml:"store" json:"store"`
	Server Server         `toml:"server" json:"server"`
}

// Cache selects the layout cache backend.
type Cache struct {
	Backend  string   `toml:"backend" json:"backend"`
	Dir      string   `toml:"dir" json:"dir"`
	RedisURL string   `toml:"redis_url" json:"redis_url"`
	Prefix   string   `toml:"prefix" json:"prefix"`
	TTL      Duration `toml:"ttl" json:"ttl"`
}

// Store selects the diagram record backend.
type Store struct {
	Backend    string `toml:"backend" json:"backend"`
	URI        string `toml:"uri" json:"uri"`
	Database   string `toml:"database" json:"database"`
	Collection string `toml:"collection" json:"collection"`
}

// Server configures `procsheet serve`.
type Server struct {
	Addr            string   `toml:"addr" json:"addr"`
	ReadTimeout     Duration `toml:"read_timeout" json:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" json:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" json:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Grid:   grid.Default(),
		Export: sheet.DefaultOptions(),
		Layout: layout.DefaultOptions(),
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Store: Store{Backend: StoreMemory},
		Server: Server{
			Addr:            DefaultAddr,
			ReadTimeout:     Duration{30 * time.Second},
			WriteTimeout:    Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			MaxBodyBytes:    10 << 20,
		},
	}
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Grid),
		validation.Field(&c.Export),
		validation.Field(&c.Layout),
		validation.Field(&c.Cache),
		validation.Field(&c.Store),
		validation.Field(&c.Server),
	)
}

// Validate implements validation.Validatable.
func (c Cache) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(CacheNone, CacheFile, CacheRedis)),
		validation.Field(&c.RedisURL, validation.When(c.Backend == CacheRedis, validation.Required, validation.By(redisURL))),
		validation.Field(&c.TTL, validation.By(nonNegative)),
	)
}

// Validate implements validation.Validatable.
func (s Store) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Backend, validation.Required, validation.In(StoreMemory, StoreMongo)),
		validation.Field(&s.URI, validation.When(s.Backend == StoreMongo, validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ReadTimeout, validation.By(nonNegative)),
		validation.Field(&s.WriteTimeout, validation.By(nonNegative)),
		validation.Field(&s.ShutdownTimeout, validation.By(nonNegative)),
		validation.Field(&s.MaxBodyBytes, validation.Min(int64(1024))),
	)
}

func nonNegative(value any) error {
	if d, ok := value.(Duration); ok && d.Duration < 0 {
		return validation.NewError("validation_duration_negative", "must not be negative")
	}
	return nil
}

func redisURL(value any) error {
	s, _ := value.(string)
	if _, err := redis.ParseURL(s); err != nil {
		return validation.NewError("validation_redis_url", err.Error())
	}
	return nil
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default file cache directory
// ($XDG_CACHE_HOME/procsheet or ~/.cache/procsheet).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the file at path over the defaults and validates the result.
// A missing file is not an error unless explicit is set, which the CLI does
// when --config was given.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads configuration text over the defaults and validates it.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	err := cfg.decode(r)
	return cfg, err
}

func (c *Config) decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	c.Export.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}

// CacheTTL returns the cache TTL.
func (c Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }
