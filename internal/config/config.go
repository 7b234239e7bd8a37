package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/rundown/pkg/document"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/store"
)

const (
	appName  = "rundown"
	fileName = "config.toml"

	// EnvPath overrides the configuration file location.
	EnvPath = "RUNDOWN_CONFIG"

	DefaultLogLevel   = "info"
	DefaultServerAddr = "localhost:8080"
)

// =============================================================================
// Types
// =============================================================================

// Config is the contents of the configuration file.
type Config struct {
	LogLevel string       `toml:"log_level"`
	Store    StoreConfig  `toml:"store"`
	Server   ServerConfig `toml:"server"`
}

// StoreConfig selects where the project is stored. Only the fields of the
// chosen backend are read.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Key     string `toml:"key"`

	// file, sqlite
	Path string `toml:"path"`

	// postgres
	DSN string `toml:"dsn,omitempty"`

	// redis
	Addr     string `toml:"addr,omitempty"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`

	// mongo
	URI        string `toml:"uri,omitempty"`
	Database   string `toml:"database,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// ServerConfig configures `rundown serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// =============================================================================
// Defaults & Validation
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Store.Backend == "" {
		c.Store.Backend = string(store.BackendFile)
	}
	if c.Store.Key == "" {
		c.Store.Key = document.DefaultKey
	}
	if c.Store.Path == "" {
		switch store.Backend(c.Store.Backend) {
		case store.BackendFile:
			c.Store.Path = filepath.Join(dataDir(), "projects")
		case store.BackendSQLite:
			c.Store.Path = filepath.Join(dataDir(), "rundown.db")
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return rerrors.New(rerrors.ErrCodeInvalidInput, "log_level: unknown level %q", c.LogLevel)
	}
	if err := rerrors.ValidateKey(c.Store.Key); err != nil {
		return fmt.Errorf("store.key: %w", err)
	}
	if err := c.ToStore().Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ToStore converts the store section into a store.Config.
func (c Config) ToStore() store.Config {
	s := c.Store
	return store.Config{
		Backend: store.Backend(s.Backend),
		Path:    s.Path,
		DSN:     s.DSN,
		Redis: store.RedisConfig{
			Addr:     s.Addr,
			Password: s.Password,
			DB:       s.DB,
			Prefix:   s.Prefix,
		},
		Mongo: store.MongoConfig{
			URI:        s.URI,
			Database:   s.Database,
			Collection: s.Collection,
		},
	}
}

// =============================================================================
// Loading & Saving
// =============================================================================

// Path returns the configuration file location.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the file at path and applies defaults. An empty path means
// [Path]. A missing file yields [Default].
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, rerrors.Wrap(rerrors.ErrCodeInvalidPath, err, "locate config")
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, rerrors.Wrap(rerrors.ErrCodeInvalidPath, err, "read %s", path)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, rerrors.Wrap(rerrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, rerrors.New(rerrors.ErrCodeInvalidFormat, "%s: unknown key %q", path, undecoded[0].String())
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path, replacing the file atomically.
func Save(path string, c Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInternal, err, "encode config")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	if err := atomicWriteFile(dir, path, buf.Bytes()); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

func atomicWriteFile(dir, path string, b []byte) error {
	f, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, 0o600)
	return os.Rename(tmp, path)
}

func dataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".local", "share", appName)
}
