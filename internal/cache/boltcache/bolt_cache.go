package boltcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/brk3/habitkeeper/internal/cache"
	"go.etcd.io/bbolt"
)

const bucketName = "cache"

// Cache stores entries in a "cache" bucket of an already open database.
// Close is a no-op; the owner of the database closes it.
type Cache struct {
	db *bbolt.DB
}

func New(db *bbolt.DB) (*Cache, error) {
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Get(_ context.Context, key string, v any) (bool, error) {
	var data []byte
	if err := c.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket([]byte(bucketName)).Get([]byte(key)); raw != nil {
			data = bytes.Clone(raw)
		}
		return nil
	}); err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// Update runs fn inside a single bbolt write transaction.
func (c *Cache) Update(_ context.Context, key string, fn cache.RawUpdateFunc) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		var current []byte
		if raw := b.Get([]byte(key)); raw != nil {
			current = bytes.Clone(raw)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), next)
	})
}

func (c *Cache) Remove(_ context.Context, key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

func (c *Cache) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := c.db.View(func(tx *bbolt.Tx) error {
		cur := tx.Bucket([]byte(bucketName)).Cursor()
		p := []byte(prefix)
		for k, _ := cur.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = cur.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

func (c *Cache) Close() error {
	return nil
}

var _ cache.Store = (*Cache)(nil)
