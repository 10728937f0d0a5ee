package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradereports/internal/event"
)

// PennyPriceCents is the fill price the penny-trade reports single out.
const PennyPriceCents = 2

// BotSummary aggregates one bot's day.
type BotSummary struct {
	Bot           string          `json:"bot"`
	Signals       int             `json:"signals"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
	Jackpots      int             `json:"jackpots"`
	WinRate       float64         `json:"win_rate"`
	Participation float64         `json:"participation_rate"`
	NetPnL        decimal.Decimal `json:"net_pnl"`
}

// AssetSummary aggregates outcomes per asset.
type AssetSummary struct {
	Asset   string          `json:"asset"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	WinRate float64         `json:"win_rate"`
	NetPnL  decimal.Decimal `json:"net_pnl"`
}

// PennySummary groups events that carried a 2¢ fill.
type PennySummary struct {
	Bot      string          `json:"bot"`
	Asset    string          `json:"asset"`
	Kind     string          `json:"kind"`
	Count    int             `json:"count"`
	PennyQty int             `json:"penny_qty"`
	PennyPnL decimal.Decimal `json:"penny_pnl"`
	NetPnL   decimal.Decimal `json:"net_pnl"`
}

// OverallStats feeds the report header and the daily notification.
type OverallStats struct {
	Signals      int             `json:"total_signals"`
	Outcomes     int             `json:"total_outcomes"`
	Wins         int             `json:"total_wins"`
	Losses       int             `json:"total_losses"`
	Jackpots     int             `json:"total_jackpots"`
	WinRate      float64         `json:"win_rate"`
	NetPnL       decimal.Decimal `json:"net_pnl"`
	UniqueBots   int             `json:"unique_bots"`
	UniqueAssets int             `json:"unique_assets"`
	DateRange    string          `json:"date_range"`
}

// FillRow is the one-row-per-fill flattening.
type FillRow struct {
	Timestamp      time.Time       `json:"timestamp"`
	Kind           string          `json:"kind"`
	Bot            string          `json:"bot"`
	Asset          string          `json:"asset"`
	Timeframe      string          `json:"timeframe"`
	Contract       string          `json:"contract,omitempty"`
	ContractExpiry *time.Time      `json:"contract_expiry,omitempty"`
	Side           string          `json:"side"`
	Quantity       int             `json:"quantity"`
	PriceCents     int             `json:"price_cents"`
	PnL            decimal.Decimal `json:"pnl"`
	IsWin          bool            `json:"is_win"`
}

// FlattenFills lists every individual fill with its event context.
func FlattenFills(events []event.TradeEvent) []FillRow {
	var rows []FillRow
	for i := range events {
		e := &events[i]
		for _, f := range e.Fills {
			rows = append(rows, FillRow{
				Timestamp:      e.Timestamp,
				Kind:           e.Kind.String(),
				Bot:            e.Bot,
				Asset:          e.Asset,
				Timeframe:      e.Timeframe,
				Contract:       e.Contract,
				ContractExpiry: e.ContractExpiry,
				Side:           f.Side.String(),
				Quantity:       f.Quantity,
				PriceCents:     f.PriceCents,
				PnL:            f.PnL,
				IsWin:          f.IsWin,
			})
		}
	}
	return rows
}

// SummarizeByBot groups signals and outcomes per bot, most profitable
// first. Wins include jackpots.
func SummarizeByBot(events []event.TradeEvent) []BotSummary {
	acc := map[string]*BotSummary{}
	order := []string{}
	get := func(bot string) *BotSummary {
		if s, ok := acc[bot]; ok {
			return s
		}
		s := &BotSummary{Bot: bot}
		acc[bot] = s
		order = append(order, bot)
		return s
	}
	for i := range events {
		e := &events[i]
		s := get(e.Bot)
		switch e.Kind {
		case event.KindSignal:
			s.Signals++
		case event.KindWin:
			s.Wins++
		case event.KindJackpot:
			s.Wins++
			s.Jackpots++
		case event.KindLoss:
			s.Losses++
		}
		if e.Kind.IsOutcome() && e.NetPnL.Valid {
			s.NetPnL = s.NetPnL.Add(e.NetPnL.Decimal)
		}
	}
	out := make([]BotSummary, 0, len(order))
	for _, bot := range order {
		s := acc[bot]
		if total := s.Wins + s.Losses; total > 0 {
			s.WinRate = float64(s.Wins) / float64(total)
			if s.Signals > 0 {
				s.Participation = float64(total) / float64(s.Signals)
			}
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetPnL.GreaterThan(out[j].NetPnL)
	})
	return out
}

// SummarizeByAsset groups outcomes per asset, most profitable first.
func SummarizeByAsset(events []event.TradeEvent) []AssetSummary {
	acc := map[string]*AssetSummary{}
	order := []string{}
	for i := range events {
		e := &events[i]
		if !e.Kind.IsOutcome() {
			continue
		}
		s, ok := acc[e.Asset]
		if !ok {
			s = &AssetSummary{Asset: e.Asset}
			acc[e.Asset] = s
			order = append(order, e.Asset)
		}
		if e.Kind == event.KindLoss {
			s.Losses++
		} else {
			s.Wins++
		}
		if e.NetPnL.Valid {
			s.NetPnL = s.NetPnL.Add(e.NetPnL.Decimal)
		}
	}
	out := make([]AssetSummary, 0, len(order))
	for _, asset := range order {
		s := acc[asset]
		if total := s.Wins + s.Losses; total > 0 {
			s.WinRate = float64(s.Wins) / float64(total)
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetPnL.GreaterThan(out[j].NetPnL)
	})
	return out
}

// SummarizePenny groups events carrying at least one fill at the penny
// price by (bot, asset, kind), largest penny pnl first.
func SummarizePenny(events []event.TradeEvent, cents int) []PennySummary {
	type key struct {
		bot, asset, kind string
	}
	acc := map[key]*PennySummary{}
	order := []key{}
	for i := range events {
		e := &events[i]
		if !e.HasPennyFill(cents) {
			continue
		}
		k := key{e.Bot, e.Asset, e.Kind.String()}
		s, ok := acc[k]
		if !ok {
			s = &PennySummary{Bot: e.Bot, Asset: e.Asset, Kind: e.Kind.String()}
			acc[k] = s
			order = append(order, k)
		}
		s.Count++
		for _, f := range e.Fills {
			if f.PriceCents != cents {
				continue
			}
			s.PennyQty += f.Quantity
			s.PennyPnL = s.PennyPnL.Add(f.PnL)
		}
		if e.NetPnL.Valid {
			s.NetPnL = s.NetPnL.Add(e.NetPnL.Decimal)
		}
	}
	out := make([]PennySummary, 0, len(order))
	for _, k := range order {
		out = append(out, *acc[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PennyPnL.GreaterThan(out[j].PennyPnL)
	})
	return out
}

// Overall computes the header stats.
func Overall(events []event.TradeEvent) OverallStats {
	var stats OverallStats
	bots := map[string]bool{}
	assets := map[string]bool{}
	var minTS, maxTS time.Time
	for i := range events {
		e := &events[i]
		bots[e.Bot] = true
		assets[e.Asset] = true
		if minTS.IsZero() || e.Timestamp.Before(minTS) {
			minTS = e.Timestamp
		}
		if e.Timestamp.After(maxTS) {
			maxTS = e.Timestamp
		}
		switch e.Kind {
		case event.KindSignal:
			stats.Signals++
		case event.KindWin:
			stats.Wins++
		case event.KindJackpot:
			stats.Wins++
			stats.Jackpots++
		case event.KindLoss:
			stats.Losses++
		}
		if e.Kind.IsOutcome() {
			stats.Outcomes++
			if e.NetPnL.Valid {
				stats.NetPnL = stats.NetPnL.Add(e.NetPnL.Decimal)
			}
		}
	}
	denom := stats.Wins + stats.Losses
	if denom < 1 {
		denom = 1
	}
	stats.WinRate = float64(stats.Wins) / float64(denom)
	stats.UniqueBots = len(bots)
	stats.UniqueAssets = len(assets)
	if len(events) > 0 {
		stats.DateRange = fmt.Sprintf("%s - %s",
			minTS.Format("2006-01-02 15:04:05"), maxTS.Format("2006-01-02 15:04:05"))
	}
	return stats
}

// RenderBotTable renders bot summaries as an aligned text block.
func RenderBotTable(rows []BotSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %8s %6s %7s %9s %8s %7s %12s\n",
		"BOT", "SIGNALS", "WINS", "LOSSES", "JACKPOTS", "WINRATE", "PART", "NET")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s %8d %6d %7d %9d %7.1f%% %6.2f %12s\n",
			r.Bot, r.Signals, r.Wins, r.Losses, r.Jackpots,
			r.WinRate*100, r.Participation, "$"+r.NetPnL.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderAssetTable renders asset summaries as an aligned text block.
func RenderAssetTable(rows []AssetSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %6s %7s %8s %12s\n", "ASSET", "WINS", "LOSSES", "WINRATE", "NET")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-8s %6d %7d %7.1f%% %12s\n",
			r.Asset, r.Wins, r.Losses, r.WinRate*100, "$"+r.NetPnL.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPennyTable renders penny-trade summaries as an aligned block.
func RenderPennyTable(rows []PennySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-8s %-8s %6s %9s %12s %12s\n",
		"BOT", "ASSET", "KIND", "COUNT", "QTY", "PENNY_PNL", "NET")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s %-8s %-8s %6d %9d %12s %12s\n",
			r.Bot, r.Asset, r.Kind, r.Count, r.PennyQty,
			"$"+r.PennyPnL.StringFixed(2), "$"+r.NetPnL.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}
