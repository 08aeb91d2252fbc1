// internal/cache/history_cache.go
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"gitpanel/internal/history"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const keyPrefix = "history:"

// Options configures HistoryCache behavior
type Options struct {
	Path             string // Badger directory; empty keeps everything in memory
	Size             int    // Number of results held in the LRU tier
	CompressMinSize  int    // Payloads smaller than this are stored raw
	CompressionLevel int    // 1=fastest, 3=best
}

func DefaultOptions() Options {
	return Options{
		Size:             256,
		CompressMinSize:  512,
		CompressionLevel: 2,
	}
}

// HistoryCache is a two-tier store for walk results: an LRU in front of a
// badger database holding zstd-framed JSON. The database is opened on first
// use. If it cannot be opened, for example because another process holds the
// directory lock, the cache keeps working with the LRU tier alone.
type HistoryCache struct {
	opts   Options
	lru    *lru.Cache[string, []history.Entry]
	codec  *codec
	logger *zap.Logger

	mu     sync.Mutex
	opened bool
	db     *badger.DB
}

func Open(opts Options, logger *zap.Logger) (*HistoryCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = defaults.Size
	}
	if opts.CompressMinSize <= 0 {
		opts.CompressMinSize = defaults.CompressMinSize
	}
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = defaults.CompressionLevel
	}

	front, err := lru.New[string, []history.Entry](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}

	c, err := newCodec(opts.CompressMinSize, opts.CompressionLevel)
	if err != nil {
		return nil, err
	}

	return &HistoryCache{
		opts:   opts,
		lru:    front,
		codec:  c,
		logger: logger,
	}, nil
}

// store returns the persistent tier, opening it on the first call. It returns
// nil when the database is unavailable.
func (c *HistoryCache) store() *badger.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return c.db
	}
	c.opened = true

	var dbOpts badger.Options
	if c.opts.Path == "" {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbOpts = badger.DefaultOptions(c.opts.Path)
	}
	dbOpts = dbOpts.WithLogger(nil).WithNumVersionsToKeep(1)

	db, err := badger.Open(dbOpts)
	if err != nil {
		c.logger.Warn("history cache database unavailable, using memory only",
			zap.String("path", c.opts.Path), zap.Error(err))
		return nil
	}
	c.db = db
	return db
}

// Persistent reports whether the badger tier is in use. It opens the tier
// if that has not happened yet.
func (c *HistoryCache) Persistent() bool {
	return c.store() != nil
}

func (c *HistoryCache) Get(key string) ([]history.Entry, bool) {
	if entries, ok := c.lru.Get(key); ok {
		return entries, true
	}

	db := c.store()
	if db == nil {
		return nil, false
	}

	var entries []history.Entry
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw, err := c.codec.decode(val)
			if err != nil {
				return err
			}
			return json.Unmarshal(raw, &entries)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			c.logger.Warn("reading history cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	if entries == nil {
		entries = []history.Entry{}
	}
	c.lru.Add(key, entries)
	return entries, true
}

func (c *HistoryCache) Put(key string, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}

	c.lru.Add(key, entries)

	db := c.store()
	if db == nil {
		return nil
	}
	if err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), c.codec.encode(data))
	}); err != nil {
		return fmt.Errorf("storing entries: %w", err)
	}
	return nil
}

// Purge drops the in-memory tier only; persisted results survive.
func (c *HistoryCache) Purge() {
	c.lru.Purge()
}

func (c *HistoryCache) Close() error {
	c.codec.close()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = true
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
