package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRegistry(t *testing.T) {
	path := writeRegistry(t, `
assets:
  btc:
    feed_file: data_feed5_BTC.txt
  ETH:
    feed_file: data_feed5_ETH.txt
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	// Codes are uppercased and sorted.
	assert.Equal(t, []string{"BTC", "ETH"}, r.AssetCodes())

	file, ok := r.FeedFile("btc")
	require.True(t, ok)
	assert.Equal(t, "data_feed5_BTC.txt", file)

	_, ok = r.FeedFile("DOGE")
	assert.False(t, ok)

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.NotEmpty(t, snap.RenderYAML())
}

func TestNewRegistryRejectsEmptyAssets(t *testing.T) {
	path := writeRegistry(t, "assets: {}\n")
	_, err := NewRegistry(path)
	assert.Error(t, err)
}

func TestNewRegistryMissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = NewRegistry("")
	assert.Error(t, err)
}

func TestRegistryReloadBumpsVersion(t *testing.T) {
	path := writeRegistry(t, `
assets:
  BTC:
    feed_file: data_feed5_BTC.txt
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Snapshot().Version)

	require.NoError(t, os.WriteFile(path, []byte(`
assets:
  BTC:
    feed_file: data_feed5_BTC.txt
  SOL:
    feed_file: data_feed5_SOL.txt
`), 0o644))
	require.NoError(t, r.reload())

	snap := r.Snapshot()
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, []string{"BTC", "SOL"}, r.AssetCodes())
}

func TestRegistryReloadKeepsOldOnBadFile(t *testing.T) {
	path := writeRegistry(t, `
assets:
  BTC:
    feed_file: data_feed5_BTC.txt
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("assets: {}\n"), 0o644))
	assert.Error(t, r.reload())

	// The last good snapshot survives a failed reload.
	assert.Equal(t, []string{"BTC"}, r.AssetCodes())
}

func TestDefaultSnapshot(t *testing.T) {
	snap := Default()
	require.Len(t, snap.Assets, 4)
	assert.Equal(t, "BTC", snap.Assets[0].Code)
}

func TestSubscribe(t *testing.T) {
	path := writeRegistry(t, `
assets:
  BTC:
    feed_file: data_feed5_BTC.txt
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	var got Snapshot
	r.Subscribe(func(s Snapshot) { got = s })
	require.NoError(t, r.reload())
	r.notifyListeners()
	assert.Equal(t, int64(2), got.Version)
}
