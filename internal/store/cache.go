package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/types"
)

// NewRedisClient creates a client from cache configuration and verifies the
// server answers.
func NewRedisClient(ctx context.Context, cfg *config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// CachedStore is a read-through Redis cache in front of another Store.
// Neighbor lists are kept in one hash per entity, one field per role filter,
// so writes touching an entity invalidate every filter at once. Redis
// failures degrade to direct reads.
type CachedStore struct {
	next   Store
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedStore wraps next with a cache using client.
func NewCachedStore(next Store, client *redis.Client, cfg *config.CacheConfig, log *logger.Logger) *CachedStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedStore{
		next:   next,
		client: client,
		prefix: cfg.Prefix,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		logger: log,
	}
}

func (c *CachedStore) entityKey(ref types.EntityRef) string {
	return c.prefix + "entity:" + ref.Key()
}

func (c *CachedStore) edgesKey(ref types.EntityRef) string {
	return c.prefix + "edges:" + ref.Key()
}

// GetEntity implements Reader. Misses are not cached.
func (c *CachedStore) GetEntity(ctx context.Context, ref types.EntityRef) (*types.Entity, error) {
	key := c.entityKey(ref)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var e types.Entity
		if jsonErr := json.Unmarshal(data, &e); jsonErr == nil {
			return &e, nil
		}
		c.logger.Warnw("Discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("Cache read failed", "key", key, "error", err)
	}

	e, err := c.next.GetEntity(ctx, ref)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(e); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warnw("Cache write failed", "key", key, "error", err)
		}
	}
	return e, nil
}

// EdgesTouching implements Reader.
func (c *CachedStore) EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error) {
	key := c.edgesKey(ref)
	field := RoleSignature(roles)

	data, err := c.client.HGet(ctx, key, field).Bytes()
	switch {
	case err == nil:
		var edges []types.RelationEdge
		if jsonErr := json.Unmarshal(data, &edges); jsonErr == nil {
			return edges, nil
		}
		c.logger.Warnw("Discarding corrupt cache entry", "key", key, "field", field)
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("Cache read failed", "key", key, "error", err)
	}

	edges, err := c.next.EdgesTouching(ctx, ref, roles)
	if err != nil {
		return nil, err
	}
	data, err = json.Marshal(edges)
	if err != nil {
		return edges, nil
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, data)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.logger.Warnw("Cache write failed", "key", key, "error", err)
	}
	return edges, nil
}

// PutEntities implements Writer.
func (c *CachedStore) PutEntities(ctx context.Context, entities []types.Entity) error {
	if err := c.next.PutEntities(ctx, entities); err != nil {
		return err
	}
	keys := make([]string, 0, len(entities))
	for _, e := range entities {
		keys = append(keys, c.entityKey(e.Ref))
	}
	c.invalidate(ctx, keys)
	return nil
}

// PutEdges implements Writer. Neighbor lists of every touched entity are
// dropped from the cache after the write succeeds.
func (c *CachedStore) PutEdges(ctx context.Context, edges []types.RelationEdge) error {
	if err := c.next.PutEdges(ctx, edges); err != nil {
		return err
	}
	seen := make(map[types.EntityRef]struct{}, len(edges))
	var keys []string
	for _, e := range edges {
		for _, ref := range []types.EntityRef{e.EntityOne, e.EntityTwo} {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			keys = append(keys, c.edgesKey(ref), c.entityKey(ref))
		}
	}
	c.invalidate(ctx, keys)
	return nil
}

func (c *CachedStore) invalidate(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warnw("Cache invalidation failed", "keys", len(keys), "error", err)
	}
}

// Close closes the cache client and the wrapped store.
func (c *CachedStore) Close() error {
	return errors.Join(c.client.Close(), c.next.Close())
}

// Unwrap returns the store behind the cache.
func (c *CachedStore) Unwrap() Store {
	return c.next
}
