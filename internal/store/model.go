package store

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ReportRunModel is one published parse run.
type ReportRunModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	ExportDate    string         `gorm:"column:export_date;index"`
	TotalEvents   int            `gorm:"column:total_events"`
	StatsJSON     datatypes.JSON `gorm:"column:stats_json;type:TEXT"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
}

func (ReportRunModel) TableName() string { return "report_runs" }

// TradeEventModel is the columnar snapshot of one TradeEvent.
// Optional fields are nullable columns: absence must survive the
// round trip, never collapsing to zero.
type TradeEventModel struct {
	ID             int64               `gorm:"column:id;primaryKey"`
	RunID          string              `gorm:"column:run_id;index"`
	Seq            int                 `gorm:"column:seq"`
	Timestamp      int64               `gorm:"column:timestamp"`
	Sender         string              `gorm:"column:sender"`
	Kind           string              `gorm:"column:kind;index"`
	Bot            string              `gorm:"column:bot;index"`
	Asset          string              `gorm:"column:asset;index"`
	Timeframe      string              `gorm:"column:timeframe"`
	Contract       string              `gorm:"column:contract"`
	ContractExpiry *int64              `gorm:"column:contract_expiry"`
	Side           *string             `gorm:"column:side"`
	Tier           *int                `gorm:"column:tier"`
	Gap            decimal.NullDecimal `gorm:"column:gap;type:TEXT"`
	Hurdle         decimal.NullDecimal `gorm:"column:hurdle;type:TEXT"`
	ExpMove        decimal.NullDecimal `gorm:"column:exp_move;type:TEXT"`
	Strike         decimal.NullDecimal `gorm:"column:strike;type:TEXT"`
	NetPnL         decimal.NullDecimal `gorm:"column:net_pnl;type:TEXT"`
	SessionWins    *int                `gorm:"column:session_wins"`
	SessionLosses  *int                `gorm:"column:session_losses"`
	SessionPnL     decimal.NullDecimal `gorm:"column:session_pnl;type:TEXT"`
	Flips          *int                `gorm:"column:flips"`
	RawText        string              `gorm:"column:raw_text"`
}

func (TradeEventModel) TableName() string { return "trade_events" }

// FillModel is one fill line, keyed to its event.
type FillModel struct {
	ID         int64           `gorm:"column:id;primaryKey"`
	EventID    int64           `gorm:"column:event_id;index"`
	Seq        int             `gorm:"column:seq"`
	Side       string          `gorm:"column:side"`
	Quantity   int             `gorm:"column:quantity"`
	PriceCents int             `gorm:"column:price_cents"`
	PnL        decimal.Decimal `gorm:"column:pnl;type:TEXT"`
	IsWin      bool            `gorm:"column:is_win"`
}

func (FillModel) TableName() string { return "fills" }
