package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `# feed snapshot, written once per second
Date       | Time     | Strike     | PriceProxy | GrowingCP | Gap     | SD_max | Secs | Feeds
-----------|----------|------------|------------|-----------|---------|--------|------|------
2026-02-03 | 10:13:40 | $67,416.28 | $67,401.50 | $67,399.00 | $-14.78 | $25.10 | 80   | 3+1/4
2026-02-03 | 10:13:41 | N/A        | $67,402.00 | N/A        | N/A     | N/A    | N/A  | 4/4

2026-02-03 | 10:15:20 | $67,450.00 | $67,448.10 | $67,447.00 | $-1.90  | $20.00 | 5    | 4
`

func writeFeed(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))
	return path
}

func TestLoadFeedFile(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "data_feed5_BTC.txt")

	ticks, err := LoadFeedFile(path)
	require.NoError(t, err)
	require.Len(t, ticks, 3)

	first := ticks[0]
	assert.Equal(t, time.Date(2026, 2, 3, 10, 13, 40, 0, time.UTC), first.Time)
	require.NotNil(t, first.Strike)
	assert.InDelta(t, 67416.28, *first.Strike, 1e-9)
	require.NotNil(t, first.Gap)
	assert.InDelta(t, -14.78, *first.Gap, 1e-9)
	require.NotNil(t, first.Secs)
	assert.Equal(t, 80, *first.Secs)
	require.NotNil(t, first.Feeds)
	assert.InDelta(t, 3.25, *first.Feeds, 1e-9)

	// N/A stays absent, never zero.
	second := ticks[1]
	assert.Nil(t, second.Strike)
	assert.Nil(t, second.GrowingCP)
	assert.Nil(t, second.Secs)
	require.NotNil(t, second.PriceProxy)
	require.NotNil(t, second.Feeds)
	assert.InDelta(t, 1.0, *second.Feeds, 1e-9)
}

func TestLoadFeedFileMissing(t *testing.T) {
	_, err := LoadFeedFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestParseDollar(t *testing.T) {
	v, err := parseDollar("$67,416.28")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 67416.28, *v, 1e-9)

	v, err = parseDollar("$-34.71")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, -34.71, *v, 1e-9)

	v, err = parseDollar("N/A")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseDollar("$abc")
	assert.Error(t, err)
}

func TestParseFeeds(t *testing.T) {
	v, err := parseFeeds("3+1/4")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 3.25, *v, 1e-9)

	v, err = parseFeeds("4/4")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 1.0, *v, 1e-9)

	v, err = parseFeeds("2")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 2.0, *v, 1e-9)

	v, err = parseFeeds("N/A")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseFeeds("1/0")
	assert.Error(t, err)
}

func TestCSVSourceWindowAndSettlement(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "data_feed5_BTC.txt")

	src := NewCSVSource(dir, func(asset string) (string, bool) {
		if asset == "BTC" {
			return "data_feed5_BTC.txt", true
		}
		return "", false
	})
	ctx := context.Background()
	expiry := time.Date(2026, 2, 3, 10, 15, 0, 0, time.UTC)

	ticks, err := src.Window(ctx, "BTC", expiry, 90*time.Second)
	require.NoError(t, err)
	// Only the two 10:13 ticks fall inside [expiry-90s, expiry].
	require.Len(t, ticks, 2)

	// Settlement strike: first valid strike after expiry.
	strike, err := src.SettlementStrike(ctx, "BTC", expiry)
	require.NoError(t, err)
	require.NotNil(t, strike)
	assert.InDelta(t, 67450.00, *strike, 1e-9)

	_, err = src.Window(ctx, "DOGE", expiry, time.Minute)
	assert.Error(t, err)
}
