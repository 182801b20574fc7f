package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/solterm/solterm/internal/contract"
	"github.com/solterm/solterm/internal/logging"
)

// Cache keeps compiled artifacts in the OS temp directory, keyed by source
// path and modification time. Editing the source changes its mtime and the
// stale entry simply stops matching; the OS reclaims the directory
// eventually, which is the intended lifetime — artifacts are cheap to
// rebuild and never worth syncing.
type Cache struct {
	dir string
	log zerolog.Logger
}

// CacheEntry describes one cached compilation for listing.
type CacheEntry struct {
	Source     string    `json:"source"`
	Contracts  []string  `json:"contracts"`
	CompiledAt time.Time `json:"compiledAt"`
}

type cacheBlob struct {
	CacheEntry
	Result *Result `json:"result"`
}

// NewCache returns a cache rooted in the OS temp directory.
func NewCache() *Cache {
	return &Cache{
		dir: filepath.Join(os.TempDir(), "solterm-artifacts"),
		log: logging.NewLogger("artifact-cache"),
	}
}

// NewCacheAt returns a cache rooted at an explicit directory.
func NewCacheAt(dir string) *Cache {
	return &Cache{dir: dir, log: logging.NewLogger("artifact-cache")}
}

// key hashes the absolute source path together with its mtime, so a modified
// file misses naturally without any invalidation bookkeeping.
func (c *Cache) key(sourcePath string) (string, bool) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256([]byte(abs + "|" + info.ModTime().UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:16]), true
}

// Get returns the cached result for an unmodified source file.
func (c *Cache) Get(sourcePath string) (*Result, bool) {
	key, ok := c.key(sourcePath)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if err != nil {
		return nil, false
	}
	var blob cacheBlob
	if err := json.Unmarshal(data, &blob); err != nil || blob.Result == nil {
		return nil, false
	}
	if err := reparse(blob.Result); err != nil {
		return nil, false
	}
	return blob.Result, true
}

// Put stores a successful compilation. Failures are never cached and cache
// write errors are swallowed — the cache is an optimization, not a store of
// record.
func (c *Cache) Put(sourcePath string, res *Result) {
	if res == nil || !res.Success {
		return
	}
	key, ok := c.key(sourcePath)
	if !ok {
		return
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		c.log.Warn().Err(err).Msg("artifact cache unavailable")
		return
	}
	names := make([]string, 0, len(res.Contracts))
	for n := range res.Contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	abs, _ := filepath.Abs(sourcePath)
	blob := cacheBlob{
		CacheEntry: CacheEntry{Source: abs, Contracts: names, CompiledAt: time.Now().UTC()},
		Result:     res,
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+".json"), data, 0o600); err != nil {
		c.log.Warn().Err(err).Msg("artifact cache write failed")
	}
}

// Entries lists every cached compilation, newest first.
func (c *Cache) Entries() []CacheEntry {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}
	var entries []CacheEntry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, f.Name()))
		if err != nil {
			continue
		}
		var blob cacheBlob
		if err := json.Unmarshal(data, &blob); err != nil {
			continue
		}
		entries = append(entries, blob.CacheEntry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CompiledAt.After(entries[j].CompiledAt)
	})
	return entries
}

// Clear removes every cached artifact.
func (c *Cache) Clear() error {
	err := os.RemoveAll(c.dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// reparse rebuilds the non-serialized parsed ABI on each artifact after a
// cache read.
func reparse(res *Result) error {
	for _, a := range res.Contracts {
		abi, err := contract.ParseABI(a.ABIJSON)
		if err != nil {
			return err
		}
		a.ABI = abi
	}
	return nil
}
