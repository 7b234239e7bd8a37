package store

import (
	"context"
	"path/filepath"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
)

// Config selects and configures a backend for [Open].
type Config struct {
	Backend Backend

	// Path is the directory for the file backend or the database file for
	// sqlite.
	Path string

	// DSN is the postgres connection string.
	DSN string

	Redis RedisConfig
	Mongo MongoConfig
}

// SetDefaults fills in the file backend when no backend is named.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.Backend == BackendSQLite && c.Path != "" && filepath.Ext(c.Path) == "" {
		c.Path = filepath.Join(c.Path, "rundown.db")
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
		return nil
	case BackendFile, BackendSQLite:
		if c.Path == "" {
			return rerrors.New(rerrors.ErrCodeInvalidInput, "%s backend needs a path", c.Backend)
		}
		return nil
	case BackendPostgres:
		if c.DSN == "" {
			return rerrors.New(rerrors.ErrCodeInvalidInput, "postgres backend needs a dsn")
		}
		return nil
	default:
		return rerrors.New(rerrors.ErrCodeUnsupported, "unknown store backend %q", c.Backend)
	}
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		s, err = NewFileStore(cfg.Path)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.Path)
	case BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.DSN)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	default:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
