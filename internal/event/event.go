package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies one parsed bot message.
type Kind int

const (
	KindUnknown Kind = 0
	KindSignal  Kind = 1
	KindWin     Kind = 2
	KindLoss    Kind = 3
	KindJackpot Kind = 4
	KindStartup Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "SIGNAL"
	case KindWin:
		return "WIN"
	case KindLoss:
		return "LOSS"
	case KindJackpot:
		return "JACKPOT"
	case KindStartup:
		return "STARTUP"
	default:
		return "UNKNOWN"
	}
}

// IsOutcome reports whether the kind settles a previously signaled contract.
func (k Kind) IsOutcome() bool {
	return k == KindWin || k == KindLoss || k == KindJackpot
}

// Side is the binary contract direction.
type Side int

const (
	SideYes Side = 1
	SideNo  Side = 2
)

func (s Side) String() string {
	switch s {
	case SideYes:
		return "YES"
	case SideNo:
		return "NO"
	default:
		return ""
	}
}

// Fill is one matched order execution reported inside an outcome message.
// IsWin comes from the leading ✅/❌ glyph on the fill line, not from the
// sign of PnL; the two are parsed independently and may disagree.
type Fill struct {
	Side       Side
	Quantity   int
	PriceCents int
	PnL        decimal.Decimal
	IsWin      bool
}

// ContractInfo is a decoded contract identifier.
type ContractInfo struct {
	Asset     string
	Timeframe string
	Expiry    time.Time
	Raw       string
}

// TradeEvent is one parsed bot message. Constructed once by the message
// parser and never mutated afterwards.
//
// Optional numeric fields use decimal.NullDecimal or pointers so that
// "absent" stays distinguishable from a genuine zero.
type TradeEvent struct {
	Timestamp time.Time
	Sender    string // carried forward from the last named message
	Kind      Kind
	Bot       string // "Unknown" when nothing survives stripping
	Asset     string // "UNKNOWN" when unresolvable
	Timeframe string // "15M" or "1HR"

	Contract       string // empty = absent
	ContractExpiry *time.Time

	Side   *Side
	Tier   *int
	Gap    decimal.NullDecimal
	Hurdle decimal.NullDecimal
	ExpMov decimal.NullDecimal
	Strike decimal.NullDecimal

	Fills []Fill

	NetPnL        decimal.NullDecimal
	SessionWins   *int
	SessionLosses *int
	SessionPnL    decimal.NullDecimal
	Flips         *int

	RawText string
}

// HasPennyFill reports whether any fill executed at the given price.
func (e *TradeEvent) HasPennyFill(cents int) bool {
	for _, f := range e.Fills {
		if f.PriceCents == cents {
			return true
		}
	}
	return false
}
