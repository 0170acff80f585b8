// Package cache keeps raw upstream payloads (search results, EAN lookups) in
// a local badger store so repeated lookups skip the network.
//
// A nil *Cache is valid and behaves as an always-empty cache; callers that
// fail to open the store keep working without one.
package cache

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/hpungsan/citrus/internal/logger"
)

// DirName is the cache directory under the citrus base directory.
const DirName = "cache"

// Cache is a TTL key-value store safe for concurrent use.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
	log *logger.Logger
}

// Open opens (or creates) the cache under baseDir/cache.
func Open(baseDir string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(filepath.Join(baseDir, DirName))
	return open(opts, ttl, log)
}

// OpenInMemory creates a cache that lives only as long as the process.
func OpenInMemory(ttl time.Duration, log *logger.Logger) (*Cache, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), ttl, log)
}

// OpenOrDisable is Open, but on failure logs a warning and returns nil.
// The usual cause is another citrus process holding the directory lock.
func OpenOrDisable(baseDir string, ttl time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	c, err := Open(baseDir, ttl, log)
	if err != nil {
		log.Warn("lookup cache disabled: %v", err)
		return nil
	}
	return c
}

func open(opts badger.Options, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts = opts.
		WithLogger(badgerLogger{log}).
		WithNumVersionsToKeep(1).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl, log: log}, nil
}

// Key joins parts into a cache key. Parts are lower-cased and trimmed so
// "Banana " and "banana" share an entry.
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(norm, "|")
}

// Get returns a copy of the cached value.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			c.log.Warn("cache get %q: %v", key, err)
		}
		return nil, false
	}
	return val, true
}

// Put stores value under key with the cache TTL. Failures are logged and
// otherwise ignored.
func (c *Cache) Put(key string, value []byte) {
	if c == nil {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.log.Warn("cache put %q: %v", key, err)
	}
}

// Delete removes key.
func (c *Cache) Delete(key string) error {
	if c == nil {
		return nil
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close releases the store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// badgerLogger routes badger's internal logging through ours. Badger is
// chatty at info level, so only warnings and errors are shown normally.
type badgerLogger struct {
	log *logger.Logger
}

func (b badgerLogger) Errorf(f string, args ...interface{}) {
	b.log.Error("badger: "+strings.TrimSpace(f), args...)
}

func (b badgerLogger) Warningf(f string, args ...interface{}) {
	b.log.Warn("badger: "+strings.TrimSpace(f), args...)
}

func (b badgerLogger) Infof(f string, args ...interface{}) {
	b.log.Debug("badger: "+strings.TrimSpace(f), args...)
}

func (b badgerLogger) Debugf(f string, args ...interface{}) {
	b.log.Debug("badger: "+strings.TrimSpace(f), args...)
}
