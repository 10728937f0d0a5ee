package notify

import (
	"fmt"
	"strings"

	"tradereports/internal/analytics"
)

// ReportMessage renders the daily summary in the Bot API's HTML
// parse mode.
func ReportMessage(stats analytics.OverallStats, dateStr, appURL string) string {
	pnlGlyph := "\U0001f4b0" // 💰
	if stats.NetPnL.IsNegative() {
		pnlGlyph = "\U0001f4c9" // 📉
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Daily Trade Report - %s</b>\n\n", dateStr)
	fmt.Fprintf(&b, "%s <b>Net P&amp;L: $%s</b>\n\n", pnlGlyph, signedAmount(stats))
	fmt.Fprintf(&b, "Signals: %d\n", stats.Signals)
	fmt.Fprintf(&b, "Wins: %d | Losses: %d | Jackpots: %d\n", stats.Wins, stats.Losses, stats.Jackpots)
	fmt.Fprintf(&b, "Win Rate: %.1f%%\n", stats.WinRate*100)
	if appURL != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">View Full Dashboard</a>", appURL)
	}
	return b.String()
}

func signedAmount(stats analytics.OverallStats) string {
	s := stats.NetPnL.StringFixed(2)
	if !stats.NetPnL.IsNegative() {
		s = "+" + s
	}
	return s
}
