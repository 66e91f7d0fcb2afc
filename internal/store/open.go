package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/database"
	"github.com/dbsmedya/relgraph/internal/logger"
)

// Open builds the Store described by cfg: the configured backend, wrapped in
// the Redis cache when enabled.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var base Store
	switch cfg.Store.Driver {
	case "memory":
		base = NewMemoryStore()
	case "mysql":
		mgr := database.NewManager(&cfg.Store, log)
		if err := mgr.Connect(ctx); err != nil {
			return nil, unavailable("connect", err)
		}
		s, err := NewMySQLStore(mgr.DB, &cfg.Store, log)
		if err != nil {
			mgr.Close()
			return nil, err
		}
		base = s
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if !cfg.Cache.Enabled {
		return base, nil
	}
	client, err := NewRedisClient(ctx, &cfg.Cache)
	if err != nil {
		base.Close()
		return nil, unavailable("connect cache", err)
	}
	log.Infow("Edge cache enabled", "addr", cfg.Cache.Addr, "ttl_seconds", cfg.Cache.TTLSeconds)
	return NewCachedStore(base, client, &cfg.Cache, log), nil
}

// SQLDB returns the MySQL connection pool behind s, or nil when s is not
// backed by MySQL.
func SQLDB(s Store) *sql.DB {
	if m := mysqlStore(s); m != nil {
		return m.DB()
	}
	return nil
}

// InitSchema creates the relation tables when s is backed by MySQL. Other
// backends need no schema.
func InitSchema(ctx context.Context, s Store) error {
	if m := mysqlStore(s); m != nil {
		return m.InitSchema(ctx)
	}
	return nil
}

func mysqlStore(s Store) *MySQLStore {
	for s != nil {
		switch v := s.(type) {
		case *MySQLStore:
			return v
		case interface{ Unwrap() Store }:
			s = v.Unwrap()
		default:
			return nil
		}
	}
	return nil
}
