// Package blockcache wraps a raster.Source with an LRU cache of decoded
// blocks, so an operator that revisits the same rows more than once (the
// backward and later sweep passes in sweep.GridDistance) pays for a GDAL
// decode only once per block while that block stays cached.
package blockcache

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/geostream/rasterfield/pkg/raster"
)

// Source wraps a raster.Source, caching the results of ReadBlock keyed by
// the exact window requested. Memory is bounded by MaxBytes; the least
// recently used block is evicted once that bound would be exceeded.
type Source struct {
	inner     raster.Source
	maxBytes  int64
	usedBytes int64
	entries   map[key]*list.Element
	lru       *list.List
	hits      int
	misses    int
	mu        sync.Mutex
}

type key struct {
	rowStart, nRows, colStart, nCols int
}

type cacheEntry struct {
	key   key
	data  []float64
	bytes int64
}

// Stats reports cache occupancy, mirroring the kind of counters an operator
// would log at the end of a run.
type Stats struct {
	BlockCount int
	UsedBytes  int64
	MaxBytes   int64
	HitCount   int
	MissCount  int
}

// New wraps inner with an LRU block cache bounded at maxBytes. A maxBytes
// of 0 means unlimited.
func New(inner raster.Source, maxBytes int64) *Source {
	return &Source{
		inner:    inner,
		maxBytes: maxBytes,
		entries:  make(map[key]*list.Element),
		lru:      list.New(),
	}
}

// ReadBlock returns the cached block for this exact window if present,
// otherwise reads it from inner and caches the result.
func (s *Source) ReadBlock(ctx context.Context, rowStart, nRows, colStart, nCols int) ([]float64, error) {
	k := key{rowStart, nRows, colStart, nCols}

	s.mu.Lock()
	if elem, ok := s.entries[k]; ok {
		s.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		out := make([]float64, len(entry.data))
		copy(out, entry.data)
		s.hits++
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	data, err := s.inner.ReadBlock(ctx, rowStart, nRows, colStart, nCols)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.misses++
	s.add(k, data)
	s.mu.Unlock()

	return data, nil
}

// add inserts a block into the cache, evicting least-recently-used blocks
// until the new block fits within maxBytes. Must be called with s.mu held.
func (s *Source) add(k key, data []float64) {
	size := int64(len(data)) * 8
	if s.maxBytes > 0 && size > s.maxBytes {
		return
	}
	if elem, ok := s.entries[k]; ok {
		s.lru.Remove(elem)
		s.usedBytes -= elem.Value.(*cacheEntry).bytes
		delete(s.entries, k)
	}
	if s.maxBytes > 0 {
		for s.usedBytes+size > s.maxBytes && s.lru.Len() > 0 {
			s.evictLRU()
		}
	}
	entry := &cacheEntry{key: k, data: data, bytes: size}
	elem := s.lru.PushFront(entry)
	s.entries[k] = elem
	s.usedBytes += size
}

func (s *Source) evictLRU() {
	elem := s.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	s.lru.Remove(elem)
	delete(s.entries, entry.key)
	s.usedBytes -= entry.bytes
}

// Dimensions delegates to inner.
func (s *Source) Dimensions() (int, int, int) {
	return s.inner.Dimensions()
}

// CRS delegates to inner.
func (s *Source) CRS() raster.CRSInfo {
	return s.inner.CRS()
}

// Stats reports the cache's current occupancy and lifetime hit/miss counts.
func (s *Source) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		BlockCount: s.lru.Len(),
		UsedBytes:  s.usedBytes,
		MaxBytes:   s.maxBytes,
		HitCount:   s.hits,
		MissCount:  s.misses,
	}
}

// Clear evicts every cached block.
func (s *Source) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[key]*list.Element)
	s.lru.Init()
	s.usedBytes = 0
}

var _ fmt.Stringer = key{}

func (k key) String() string {
	return fmt.Sprintf("rows[%d:%d) cols[%d:%d)", k.rowStart, k.rowStart+k.nRows, k.colStart, k.colStart+k.nCols)
}
