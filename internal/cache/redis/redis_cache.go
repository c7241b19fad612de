package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

const (
	namespace = "habits:"
	// optimistic transaction attempts before Update gives up
	maxUpdateRetries = 16
)

type Cache struct {
	rdb *goredis.Client
}

func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Open connects to redis and checks the connection with a PING.
func Open(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	rdb := NewClient(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return New(rdb), nil
}

func New(rdb *goredis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.rdb.Get(ctx, namespace+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, namespace+key, data, 0).Err()
}

// Update is an optimistic WATCH/MULTI transaction, retried when another
// client writes the key between the read and the EXEC.
func (c *Cache) Update(ctx context.Context, key string, fn cache.RawUpdateFunc) error {
	k := namespace + key
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			data = nil
		} else if err != nil {
			return err
		}
		next, err := fn(data)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := c.rdb.Watch(ctx, txf, k)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("updating %s: too much contention", key)
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, namespace+key).Err()
}

func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := c.rdb.Scan(ctx, 0, namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

var _ cache.Store = (*Cache)(nil)
