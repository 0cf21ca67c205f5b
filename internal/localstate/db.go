// Package localstate is the server-side replacement for browser local
// storage: per-user AI settings and the AI response cache, kept in an
// embedded badger database.
package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrKeyNotFound = errors.New("key not found")

type DB struct {
	db *badger.DB
}

type Options struct {
	// Path is the database directory. Empty means in-memory.
	Path     string
	InMemory bool
}

func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// GetJSON decodes the value at key into v. ErrKeyNotFound if absent.
func (d *DB) GetJSON(key string, v any) error {
	return d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (d *DB) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (d *DB) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// TextCache stores strings under a key prefix with a fixed TTL. Badger
// expires entries itself, so a read after the TTL is a miss.
type TextCache struct {
	db     *DB
	prefix string
	ttl    time.Duration
}

func (d *DB) TextCache(prefix string, ttl time.Duration) *TextCache {
	return &TextCache{db: d, prefix: prefix, ttl: ttl}
}

func (c *TextCache) GetText(_ context.Context, key string) (string, bool, error) {
	var out string
	err := c.db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(c.prefix + key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		out = string(val)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("state get: %w", err)
	}
	return out, true, nil
}

func (c *TextCache) SetText(_ context.Context, key, value string) error {
	err := c.db.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(c.prefix+key), []byte(value))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("state set: %w", err)
	}
	return nil
}
