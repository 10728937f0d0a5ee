package store

import (
	"time"

	"tradereports/internal/event"
)

func toEventModel(runID string, seq int, e *event.TradeEvent) TradeEventModel {
	m := TradeEventModel{
		RunID:         runID,
		Seq:           seq,
		Timestamp:     e.Timestamp.Unix(),
		Sender:        e.Sender,
		Kind:          e.Kind.String(),
		Bot:           e.Bot,
		Asset:         e.Asset,
		Timeframe:     e.Timeframe,
		Contract:      e.Contract,
		Tier:          copyInt(e.Tier),
		Gap:           e.Gap,
		Hurdle:        e.Hurdle,
		ExpMove:       e.ExpMov,
		Strike:        e.Strike,
		NetPnL:        e.NetPnL,
		SessionWins:   copyInt(e.SessionWins),
		SessionLosses: copyInt(e.SessionLosses),
		SessionPnL:    e.SessionPnL,
		Flips:         copyInt(e.Flips),
		RawText:       e.RawText,
	}
	if e.ContractExpiry != nil {
		unix := e.ContractExpiry.Unix()
		m.ContractExpiry = &unix
	}
	if e.Side != nil {
		side := e.Side.String()
		m.Side = &side
	}
	return m
}

func fromEventModel(m *TradeEventModel, fills []FillModel) event.TradeEvent {
	e := event.TradeEvent{
		Timestamp:     time.Unix(m.Timestamp, 0).UTC(),
		Sender:        m.Sender,
		Kind:          kindFromString(m.Kind),
		Bot:           m.Bot,
		Asset:         m.Asset,
		Timeframe:     m.Timeframe,
		Contract:      m.Contract,
		Tier:          copyInt(m.Tier),
		Gap:           m.Gap,
		Hurdle:        m.Hurdle,
		ExpMov:        m.ExpMove,
		Strike:        m.Strike,
		NetPnL:        m.NetPnL,
		SessionWins:   copyInt(m.SessionWins),
		SessionLosses: copyInt(m.SessionLosses),
		SessionPnL:    m.SessionPnL,
		Flips:         copyInt(m.Flips),
		RawText:       m.RawText,
	}
	if m.ContractExpiry != nil {
		ts := time.Unix(*m.ContractExpiry, 0).UTC()
		e.ContractExpiry = &ts
	}
	if m.Side != nil {
		if side, ok := sideFromString(*m.Side); ok {
			e.Side = &side
		}
	}
	for _, fm := range fills {
		side, _ := sideFromString(fm.Side)
		e.Fills = append(e.Fills, event.Fill{
			Side:       side,
			Quantity:   fm.Quantity,
			PriceCents: fm.PriceCents,
			PnL:        fm.PnL,
			IsWin:      fm.IsWin,
		})
	}
	return e
}

func toFillModel(eventID int64, seq int, f event.Fill) FillModel {
	return FillModel{
		EventID:    eventID,
		Seq:        seq,
		Side:       f.Side.String(),
		Quantity:   f.Quantity,
		PriceCents: f.PriceCents,
		PnL:        f.PnL,
		IsWin:      f.IsWin,
	}
}

func kindFromString(s string) event.Kind {
	switch s {
	case "SIGNAL":
		return event.KindSignal
	case "WIN":
		return event.KindWin
	case "LOSS":
		return event.KindLoss
	case "JACKPOT":
		return event.KindJackpot
	case "STARTUP":
		return event.KindStartup
	default:
		return event.KindUnknown
	}
}

func sideFromString(s string) (event.Side, bool) {
	switch s {
	case "YES":
		return event.SideYes, true
	case "NO":
		return event.SideNo, true
	default:
		return 0, false
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
