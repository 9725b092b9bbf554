// Package cache implements the layered cache (C11): an in-memory L1 per
// named strategy and a content-addressed L2 directory on disk, with
// single-flight de-duplication of concurrent identical keys.
//
// L1 bookkeeping (TTL-checked entries, atomic hit/miss/eviction counters,
// the Stats shape) sits on top of github.com/hashicorp/golang-lru/v2
// rather than a hand-rolled sync.Map. L2's temp-write+fsync+rename idiom
// mirrors internal/artifact's atomic write.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/tdgraph/internal/errors"
)

// Strategy names the named L1 instances.
type Strategy string

const (
	StrategyAST        Strategy = "ast"
	StrategyDAG        Strategy = "dag"
	StrategyComplexity Strategy = "complexity"
	StrategySATD       Strategy = "satd"
	StrategyDeadCode   Strategy = "deadcode"
	StrategyTDG        Strategy = "tdg"
	StrategyDuplicate  Strategy = "duplicate"
	StrategyChurn      Strategy = "churn"
)

type entry struct {
	value     []byte
	storedAt  time.Time
	sizeBytes int64
}

// Stats is a point-in-time counter snapshot, scoped to one Cache
// instance across all its named L1 strategies.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	L2Hits     int64
	L2Misses   int64
	TotalBytes int64
}

// Cache is the layered cache: one bounded LRU per strategy for L1, plus a
// shared content-addressed directory for L2. Safe for concurrent use.
type Cache struct {
	l1         map[Strategy]*lru.Cache[string, entry]
	l2Dir      string
	ttl        time.Duration
	group      singleflight.Group
	hits       int64
	misses     int64
	evictions  int64
	l2Hits     int64
	l2Misses   int64
	totalBytes int64
}

// Options configures a new Cache.
type Options struct {
	L1Capacity int           // max entries per named strategy
	L2Dir      string        // root directory for content-addressed L2 entries; empty disables L2
	TTL        time.Duration // 0 disables TTL expiry
}

// New builds a Cache with an LRU instance for every known Strategy.
func New(opts Options) (*Cache, error) {
	if opts.L1Capacity <= 0 {
		opts.L1Capacity = 1024
	}
	c := &Cache{l1: make(map[Strategy]*lru.Cache[string, entry]), l2Dir: opts.L2Dir, ttl: opts.TTL}
	for _, s := range []Strategy{StrategyAST, StrategyDAG, StrategyComplexity, StrategySATD, StrategyDeadCode, StrategyTDG, StrategyDuplicate, StrategyChurn} {
		l, err := lru.NewWithEvict[string, entry](opts.L1Capacity, func(_ string, e entry) {
			atomic.AddInt64(&c.evictions, 1)
			atomic.AddInt64(&c.totalBytes, -e.sizeBytes)
		})
		if err != nil {
			return nil, errors.New(errors.KindConfig, "cache.New", err)
		}
		c.l1[s] = l
	}
	if opts.L2Dir != "" {
		if err := os.MkdirAll(opts.L2Dir, 0o755); err != nil {
			return nil, errors.New(errors.KindCache, "cache.New", err).WithFile(opts.L2Dir)
		}
	}
	return c, nil
}

// Key derives a stable lookup key from a stage id and an input hash: the
// cache is keyed on (stage_id, input_hash) for its whole lifecycle.
func Key(stageID, inputHash string) string {
	h := sha256.Sum256([]byte(stageID + "\x00" + inputHash))
	return hex.EncodeToString(h[:16])
}

// Get checks L1 then, if enabled, L2. A TTL-expired L1 entry is treated
// as a miss and evicted. A corrupted L2 entry — its content hash no
// longer matches the sidecar recorded at write time — is deleted and
// treated as a miss so the caller recomputes it.
func (c *Cache) Get(strategy Strategy, stageID, inputHash string) ([]byte, bool) {
	key := Key(stageID, inputHash)
	l1, ok := c.l1[strategy]
	if !ok {
		return nil, false
	}
	if e, ok := l1.Get(key); ok {
		if c.ttl <= 0 || time.Since(e.storedAt) <= c.ttl {
			atomic.AddInt64(&c.hits, 1)
			return e.value, true
		}
		l1.Remove(key)
	}

	if c.l2Dir != "" {
		if data, ok := c.readL2(strategy, key); ok {
			atomic.AddInt64(&c.l2Hits, 1)
			l1.Add(key, entry{value: data, storedAt: time.Now(), sizeBytes: int64(len(data))})
			atomic.AddInt64(&c.totalBytes, int64(len(data)))
			return data, true
		}
		atomic.AddInt64(&c.l2Misses, 1)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores value in L1 and, if enabled, atomically writes it to L2
// alongside a sidecar recording stage_id, input_hash, and the content
// hash of value (output_hash), so a later Get can detect a corrupted L2
// entry instead of handing back truncated or bit-rotted bytes.
func (c *Cache) Put(strategy Strategy, stageID, inputHash string, value []byte) error {
	key := Key(stageID, inputHash)
	if l1, ok := c.l1[strategy]; ok {
		l1.Add(key, entry{value: value, storedAt: time.Now(), sizeBytes: int64(len(value))})
		atomic.AddInt64(&c.totalBytes, int64(len(value)))
	}
	if c.l2Dir == "" {
		return nil
	}
	return c.writeL2(strategy, key, stageID, inputHash, value)
}

// GetOrCompute looks up (strategy, stageID, inputHash); on miss it runs
// compute exactly once even under concurrent callers for the same key
// (golang.org/x/sync/singleflight), stores the result, and returns it.
func (c *Cache) GetOrCompute(ctx context.Context, strategy Strategy, stageID, inputHash string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(strategy, stageID, inputHash); ok {
		return v, nil
	}
	flightKey := string(strategy) + "\x00" + Key(stageID, inputHash)
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		if v, ok := c.Get(strategy, stageID, inputHash); ok {
			return v, nil
		}
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if putErr := c.Put(strategy, stageID, inputHash, data); putErr != nil {
			return nil, putErr
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate removes the (stageID, inputHash) entry from both layers,
// used by the watch-triggered re-analysis path
// (internal/pipeline/watch.go) on file change.
func (c *Cache) Invalidate(strategy Strategy, stageID, inputHash string) {
	key := Key(stageID, inputHash)
	if l1, ok := c.l1[strategy]; ok {
		l1.Remove(key)
	}
	if c.l2Dir != "" {
		os.Remove(c.l2Path(strategy, key))
		os.Remove(c.l2SidecarPath(strategy, key))
	}
}

// Stats returns a point-in-time snapshot of cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       atomic.LoadInt64(&c.hits),
		Misses:     atomic.LoadInt64(&c.misses),
		Evictions:  atomic.LoadInt64(&c.evictions),
		L2Hits:     atomic.LoadInt64(&c.l2Hits),
		L2Misses:   atomic.LoadInt64(&c.l2Misses),
		TotalBytes: atomic.LoadInt64(&c.totalBytes),
	}
}

// HitRate is (hits) / (hits + misses), used for the pipeline's
// cache_hit_rate reporting.
func (c *Cache) HitRate() float64 {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// l2Sidecar carries the metadata needed both to identify a cache entry
// independent of its hashed filename and to verify the entry hasn't
// rotted on disk: OutputHash is the SHA-256 of the .bin file's exact
// bytes at write time, re-checked on every read.
type l2Sidecar struct {
	StageID    string    `json:"stage_id"`
	InputHash  string    `json:"input_hash"`
	OutputHash string    `json:"output_hash"`
	StoredAt   time.Time `json:"stored_at"`
	Bytes      int       `json:"bytes"`
}

func (c *Cache) l2Path(strategy Strategy, key string) string {
	return filepath.Join(c.l2Dir, string(strategy), key+".bin")
}

func (c *Cache) l2SidecarPath(strategy Strategy, key string) string {
	return filepath.Join(c.l2Dir, string(strategy), key+".json")
}

// readL2 loads the content-addressed entry for key and rejects it unless
// the bytes on disk still hash to the sidecar's recorded output_hash. A
// mismatch means the entry was corrupted (truncated write, bit rot,
// manual tampering) after it was stored, so both files are deleted and
// the caller falls through to recomputing a fresh value.
func (c *Cache) readL2(strategy Strategy, key string) ([]byte, bool) {
	sidecarRaw, err := os.ReadFile(c.l2SidecarPath(strategy, key))
	if err != nil {
		return nil, false
	}
	var sidecar l2Sidecar
	if err := json.Unmarshal(sidecarRaw, &sidecar); err != nil {
		c.evictCorruptL2(strategy, key)
		return nil, false
	}

	data, err := os.ReadFile(c.l2Path(strategy, key))
	if err != nil {
		c.evictCorruptL2(strategy, key)
		return nil, false
	}

	if hashOf(data) != sidecar.OutputHash {
		c.evictCorruptL2(strategy, key)
		return nil, false
	}
	return data, true
}

func (c *Cache) evictCorruptL2(strategy Strategy, key string) {
	os.Remove(c.l2Path(strategy, key))
	os.Remove(c.l2SidecarPath(strategy, key))
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeL2 uses a temp-file + fsync + rename sequence so a concurrent
// reader never observes a partially-written entry, mirroring
// internal/artifact's atomic write for the same reason.
func (c *Cache) writeL2(strategy Strategy, key, stageID, inputHash string, value []byte) error {
	dir := filepath.Join(c.l2Dir, string(strategy))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.KindCache, "cache.writeL2", err).WithFile(dir)
	}

	if err := atomicWrite(filepath.Join(dir, key+".bin"), value); err != nil {
		return errors.New(errors.KindCache, "cache.writeL2", err)
	}

	sidecar, _ := json.Marshal(l2Sidecar{
		StageID:    stageID,
		InputHash:  inputHash,
		OutputHash: hashOf(value),
		StoredAt:   time.Now(),
		Bytes:      len(value),
	})
	if err := atomicWrite(filepath.Join(dir, key+".json"), sidecar); err != nil {
		return errors.New(errors.KindCache, "cache.writeL2", err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
