package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robinvdvleuten/beanload/analyzer"
	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/parser"
	"go.uber.org/atomic"
)

// ParseCache keeps parsed files in memory. A file is reused while its path,
// size and modification time are unchanged, so an edited file is parsed
// again on the next load. The cache is safe for concurrent use; parsed files
// are never modified after parsing.
type ParseCache struct {
	files  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewParseCache creates a cache whose entries expire ttl after they were
// last stored. A ttl of zero keeps entries until Flush.
func NewParseCache(ttl time.Duration) *ParseCache {
	if ttl <= 0 {
		return &ParseCache{files: cache.New(cache.NoExpiration, 0)}
	}
	return &ParseCache{files: cache.New(ttl, 2*ttl)}
}

// Stats returns the number of cache hits and misses so far.
func (c *ParseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached files, including expired ones not yet
// evicted.
func (c *ParseCache) Len() int {
	return c.files.ItemCount()
}

// Flush drops every cached file.
func (c *ParseCache) Flush() {
	c.files.Flush()
}

func (c *ParseCache) source(opts ...parser.Option) analyzer.Source {
	return &cachedSource{cache: c, opts: opts}
}

func cacheKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

// cachedSource is an analyzer.Source over the local filesystem that
// consults a ParseCache first.
type cachedSource struct {
	cache *ParseCache
	opts  []parser.Option
}

func (s *cachedSource) Parse(ctx context.Context, path string) (*ast.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := cacheKey(path, info)
	if cached, ok := s.cache.files.Get(key); ok {
		s.cache.hits.Inc()
		return cached.(*ast.File), nil
	}
	s.cache.misses.Inc()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	file, err := parser.ParseBytes(ctx, path, data, s.opts...)
	if err != nil {
		return nil, err
	}

	s.cache.files.Set(key, file, cache.DefaultExpiration)
	return file, nil
}

func (s *cachedSource) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
