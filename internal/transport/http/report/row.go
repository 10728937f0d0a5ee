package reporthttp

import (
	"time"

	"github.com/shopspring/decimal"

	"tradereports/internal/event"
)

// eventRow is the JSON projection of a TradeEvent. Absent fields
// serialize as null rather than zero.
type eventRow struct {
	Kind           string           `json:"kind"`
	Timestamp      time.Time        `json:"timestamp"`
	Sender         string           `json:"sender"`
	Bot            string           `json:"bot"`
	Asset          string           `json:"asset"`
	Timeframe      string           `json:"timeframe"`
	Side           *string          `json:"side"`
	Tier           *int             `json:"tier"`
	Gap            *decimal.Decimal `json:"gap"`
	Hurdle         *decimal.Decimal `json:"hurdle"`
	ExpMov         *decimal.Decimal `json:"exp_mov"`
	Contract       *string          `json:"contract"`
	ContractExpiry *time.Time       `json:"contract_expiry"`
	Strike         *decimal.Decimal `json:"strike"`
	NetPnL         *decimal.Decimal `json:"net_pnl"`
	SessionPnL     *decimal.Decimal `json:"session_pnl"`
	SessionWins    *int             `json:"session_wins"`
	SessionLosses  *int             `json:"session_losses"`
	Flips          *int             `json:"flips"`
	Fills          []fillRow        `json:"fills"`
}

type fillRow struct {
	Side       string          `json:"side"`
	Quantity   int             `json:"quantity"`
	PriceCents int             `json:"price_cents"`
	PnL        decimal.Decimal `json:"pnl"`
	IsWin      bool            `json:"is_win"`
}

func toEventRow(e *event.TradeEvent) eventRow {
	row := eventRow{
		Kind:           e.Kind.String(),
		Timestamp:      e.Timestamp,
		Sender:         e.Sender,
		Bot:            e.Bot,
		Asset:          e.Asset,
		Timeframe:      e.Timeframe,
		Tier:           e.Tier,
		ContractExpiry: e.ContractExpiry,
		SessionWins:    e.SessionWins,
		SessionLosses:  e.SessionLosses,
		Flips:          e.Flips,
		Gap:            nullDec(e.Gap),
		Hurdle:         nullDec(e.Hurdle),
		ExpMov:         nullDec(e.ExpMov),
		Strike:         nullDec(e.Strike),
		NetPnL:         nullDec(e.NetPnL),
		SessionPnL:     nullDec(e.SessionPnL),
	}
	if e.Side != nil {
		s := e.Side.String()
		row.Side = &s
	}
	if e.Contract != "" {
		contract := e.Contract
		row.Contract = &contract
	}
	row.Fills = make([]fillRow, 0, len(e.Fills))
	for _, f := range e.Fills {
		row.Fills = append(row.Fills, fillRow{
			Side:       f.Side.String(),
			Quantity:   f.Quantity,
			PriceCents: f.PriceCents,
			PnL:        f.PnL,
			IsWin:      f.IsWin,
		})
	}
	return row
}

func nullDec(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
