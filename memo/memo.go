package memo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/errors"
	"github.com/kbukum/batchkit/logger"
)

// Cache is an on-disk result store rooted at one directory.
// It is safe for concurrent use.
type Cache struct {
	dir    string
	log    *logger.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger logs cache misses and write failures.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a cache that stores entries in dir. The directory is created on
// the first write.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{dir: dir, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("memo")
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Stats returns hit and miss counts since New.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key returns the entry file name for name and args. name becomes part of the
// file name and must not contain path separators.
func (c *Cache) Key(name string, args any) (string, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", errors.Cache("hash", name, err)
	}
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)) + "_" + name, nil
}

// Do returns the cached result of fn for (name, args), computing and storing
// it on a miss. Errors from fn are returned as is and never cached. A failed
// write is logged and the computed value is still returned.
func Do[R any](c *Cache, name string, args any, fn func() (R, error)) (R, error) {
	var zero R
	key, err := c.Key(name, args)
	if err != nil {
		return zero, err
	}
	path := filepath.Join(c.dir, key)

	if v, ok := load[R](c, path); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	v, err := fn()
	if err != nil {
		return zero, err
	}
	if err := store(c.dir, path, v); err != nil {
		c.log.Warn("cache write failed", logger.Fields("path", path, logger.FieldError, err.Error()))
	}
	return v, nil
}

// Wrap returns fn memoized under name.
func Wrap[A, R any](c *Cache, name string, fn func(A) (R, error)) func(A) (R, error) {
	return func(a A) (R, error) {
		return Do(c, name, a, func() (R, error) { return fn(a) })
	}
}

// Transform memoizes a batch transform keyed by the items of each batch.
func Transform[T, B any](c *Cache, name string, fn batch.Transform[T, B]) batch.Transform[T, B] {
	return func(ctx context.Context, items []T) (B, error) {
		return Do(c, name, items, func() (B, error) { return fn(ctx, items) })
	}
}

func load[R any](c *Cache, path string) (R, bool) {
	var v R
	data, err := os.ReadFile(path)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			c.log.Warn("cache read failed", logger.Fields("path", path, logger.FieldError, err.Error()))
		}
		return v, false
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		c.log.Debug("discarding unreadable cache entry", logger.Fields("path", path, logger.FieldError, err.Error()))
		var zero R
		return zero, false
	}
	return v, true
}

// store writes through a temporary file so concurrent readers never see a
// partial entry.
func store(dir, path string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return errors.Cache("encode", path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Cache("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Cache("create", dir, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return errors.Cache("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Cache("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Cache("rename", path, err)
	}
	return nil
}
