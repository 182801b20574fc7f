package compiler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterm/solterm/internal/contract"
)

func testArtifactResult(t *testing.T) *Result {
	t.Helper()
	abiJSON := json.RawMessage(`[{"type":"constructor","inputs":[]}]`)
	abi, err := contract.ParseABI(abiJSON)
	require.NoError(t, err)
	return &Result{
		Success: true,
		Contracts: map[string]*Artifact{
			"Counter": {Name: "Counter", ABI: abi, ABIJSON: abiJSON, Bytecode: "0x6080"},
		},
	}
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Counter.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Counter {}"), 0o600))
	return path
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	src := writeSource(t)

	_, ok := c.Get(src)
	assert.False(t, ok)

	c.Put(src, testArtifactResult(t))

	res, ok := c.Get(src)
	require.True(t, ok)
	require.Contains(t, res.Contracts, "Counter")
	assert.Equal(t, "0x6080", res.Contracts["Counter"].Bytecode)
	// The parsed ABI is rebuilt on read.
	assert.NotNil(t, res.Contracts["Counter"].ABI)
}

func TestCacheMissAfterSourceEdit(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	src := writeSource(t)
	c.Put(src, testArtifactResult(t))

	// Touch the file with a clearly different mtime.
	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	_, ok := c.Get(src)
	assert.False(t, ok, "a modified source must not hit the cache")
}

func TestCacheNeverStoresFailures(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	src := writeSource(t)

	c.Put(src, &Result{Success: false, Errors: []string{"boom"}})
	_, ok := c.Get(src)
	assert.False(t, ok)
}

func TestCacheEntries(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	src := writeSource(t)
	c.Put(src, testArtifactResult(t))

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Counter"}, entries[0].Contracts)
	assert.False(t, entries[0].CompiledAt.IsZero())
}

func TestCacheClear(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	src := writeSource(t)
	c.Put(src, testArtifactResult(t))

	require.NoError(t, c.Clear())
	assert.Empty(t, c.Entries())
	_, ok := c.Get(src)
	assert.False(t, ok)

	// Clearing an already-empty cache is fine.
	require.NoError(t, c.Clear())
}

func TestCacheMissingSourceFile(t *testing.T) {
	c := NewCacheAt(t.TempDir())
	_, ok := c.Get(filepath.Join(t.TempDir(), "ghost.sol"))
	assert.False(t, ok)
}
