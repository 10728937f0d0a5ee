package publish

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradereports/internal/analytics"
	"tradereports/internal/charts"
	"tradereports/internal/event"
	"tradereports/internal/store"
)

func sampleReport() *Report {
	return &Report{
		Date: "2026-02-03",
		Events: []event.TradeEvent{
			{
				Timestamp: time.Date(2026, 2, 3, 10, 16, 0, 0, time.UTC),
				Kind:      event.KindWin,
				Bot:       "Fernando-OG",
				Asset:     "BTC",
				Timeframe: "15M",
				NetPnL:    decimal.NullDecimal{Decimal: decimal.RequireFromString("6.9"), Valid: true},
			},
		},
		Stats: analytics.OverallStats{Wins: 1, NetPnL: decimal.RequireFromString("6.9")},
		Bots:  []analytics.BotSummary{{Bot: "Fernando-OG", Wins: 1}},
		Charts: []charts.ContractChart{
			{Name: "KXBTC15M_26FEB031015_15_WIN", HTML: []byte("<html>chart</html>")},
		},
	}
}

func TestPublishWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewStore(filepath.Join(dir, "events.db"))
	require.NoError(t, err)
	defer st.Close()

	pub, err := NewPublisher(filepath.Join(dir, "out"), st)
	require.NoError(t, err)

	ctx := context.Background()
	runID, err := pub.Publish(ctx, sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	// stats.json carries all summary groups.
	statsRaw, err := os.ReadFile(filepath.Join(dir, "out", "stats.json"))
	require.NoError(t, err)
	var stats map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(statsRaw, &stats))
	assert.Contains(t, stats, "stats")
	assert.Contains(t, stats, "bots")
	assert.Contains(t, stats, "assets")
	assert.Contains(t, stats, "penny")

	// metadata.json ties the artifacts to the run.
	metaRaw, err := os.ReadFile(filepath.Join(dir, "out", "metadata.json"))
	require.NoError(t, err)
	var meta metadata
	require.NoError(t, json.Unmarshal(metaRaw, &meta))
	assert.Equal(t, runID, meta.RunID)
	assert.Equal(t, "2026-02-03", meta.ExportDate)
	assert.Equal(t, 1, meta.TotalEvents)
	assert.Equal(t, 1, meta.ChartCount)

	chartRaw, err := os.ReadFile(filepath.Join(dir, "out", "charts", "KXBTC15M_26FEB031015_15_WIN.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>chart</html>", string(chartRaw))

	// The run landed in the snapshot database too.
	loaded, err := st.LoadRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, event.KindWin, loaded[0].Kind)

	run, err := st.RunForDate(ctx, "2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
}

func TestPublishEachRunGetsFreshID(t *testing.T) {
	pub, err := NewPublisher(t.TempDir(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := pub.Publish(ctx, sampleReport())
	require.NoError(t, err)
	second, err := pub.Publish(ctx, sampleReport())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
