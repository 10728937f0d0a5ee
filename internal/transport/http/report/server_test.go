package reporthttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradereports/internal/analytics"
	"tradereports/internal/charts"
	"tradereports/internal/event"
)

func testData() *ReportData {
	side := event.SideNo
	return &ReportData{
		Date: "2026-02-03",
		Stats: analytics.OverallStats{
			Signals: 2,
			Wins:    1,
			NetPnL:  decimal.RequireFromString("6.9"),
		},
		Events: []event.TradeEvent{
			{
				Timestamp: time.Date(2026, 2, 3, 8, 54, 32, 0, time.UTC),
				Kind:      event.KindSignal,
				Bot:       "Fernando-OG",
				Asset:     "BTC",
				Timeframe: "15M",
				Side:      &side,
				Gap:       decimal.NullDecimal{Decimal: decimal.RequireFromString("-12.5"), Valid: true},
			},
			{
				Timestamp: time.Date(2026, 2, 3, 10, 16, 0, 0, time.UTC),
				Kind:      event.KindWin,
				Bot:       "Ferny 3.1",
				Asset:     "ETH",
				Timeframe: "15M",
				Fills: []event.Fill{
					{Side: event.SideYes, Quantity: 5, PriceCents: 2, PnL: decimal.RequireFromString("4.9"), IsWin: true},
				},
			},
		},
		Bots:     []analytics.BotSummary{{Bot: "Fernando-OG"}},
		Charts:   []charts.ContractChart{{Name: "KXBTC15M_26FEB031015_15_WIN", HTML: []byte("<html>chart</html>")}},
		LoadedAt: time.Now(),
	}
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestServerNoDataYet(t *testing.T) {
	s := NewServer(":0")
	rec := doGet(t, s, "/api/report/stats")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0")
	rec := doGet(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	s := NewServer(":0")
	s.SetData(testData())

	rec := doGet(t, s, "/api/report/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `"2026-02-03"`, string(body["date"]))
}

func TestEventsEndpoint(t *testing.T) {
	s := NewServer(":0")
	s.SetData(testData())

	rec := doGet(t, s, "/api/report/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	// Present optional serializes as a value, absent as null.
	assert.Equal(t, "NO", rows[0]["side"])
	assert.NotNil(t, rows[0]["gap"])
	assert.Nil(t, rows[1]["side"])
	assert.Nil(t, rows[1]["gap"])
	assert.Nil(t, rows[0]["contract"])
}

func TestEventsEndpointFilters(t *testing.T) {
	s := NewServer(":0")
	s.SetData(testData())

	rec := doGet(t, s, "/api/report/events?kind=WIN")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "WIN", rows[0]["kind"])

	rec = doGet(t, s, "/api/report/events?bot=Fernando-OG&asset=BTC")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "SIGNAL", rows[0]["kind"])
}

func TestFillsEndpoint(t *testing.T) {
	s := NewServer(":0")
	s.SetData(testData())

	rec := doGet(t, s, "/api/report/fills")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []analytics.FillRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].PriceCents)
}

func TestChartEndpoints(t *testing.T) {
	s := NewServer(":0")
	s.SetData(testData())

	rec := doGet(t, s, "/charts")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Len(t, names, 1)

	rec = doGet(t, s, "/charts/"+names[0])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>chart</html>", rec.Body.String())

	rec = doGet(t, s, "/charts/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
