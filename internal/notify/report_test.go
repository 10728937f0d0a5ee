package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tradereports/internal/analytics"
)

func TestReportMessage(t *testing.T) {
	stats := analytics.OverallStats{
		Signals: 12,
		Wins:    8,
		Losses:  2,
		WinRate: 0.8,
		NetPnL:  decimal.RequireFromString("148.98"),
	}
	msg := ReportMessage(stats, "2026-02-03", "https://example.com/report")

	assert.Contains(t, msg, "Daily Trade Report - 2026-02-03")
	assert.Contains(t, msg, "\U0001f4b0")
	assert.Contains(t, msg, "$+148.98")
	assert.Contains(t, msg, "Signals: 12")
	assert.Contains(t, msg, "Win Rate: 80.0%")
	assert.Contains(t, msg, `<a href="https://example.com/report">`)
}

func TestReportMessageNegative(t *testing.T) {
	stats := analytics.OverallStats{NetPnL: decimal.RequireFromString("-4")}
	msg := ReportMessage(stats, "2026-02-03", "")

	assert.Contains(t, msg, "\U0001f4c9")
	assert.Contains(t, msg, "$-4.00")
	assert.NotContains(t, msg, "<a href")
}
