package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"tradereports/internal/event"
)

// RawMessage is one message node as produced by the export reader.
// Senders carry over: membership notices omit the sender and inherit
// the previous one for bookkeeping only.
type RawMessage struct {
	TitleTimestamp string // e.g. "03.02.2026 08:54:32 UTC-06:00"
	Sender         string // empty when the node has no sender block
	Service        bool   // service/system notice, never a trade event
	HTML           string // inner markup of the text node
}

// ExportDocument is one file of a (possibly split) chat export.
type ExportDocument struct {
	Name     string
	Messages []RawMessage
}

var titleTimestampRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}:\d{2})`)

// Parser turns message nodes into trade events. The only state it
// carries between messages is the last seen sender, threaded through
// ParseMessage explicitly.
type Parser struct {
	resolver *Resolver
}

func NewParser(resolver *Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// ParseMessage parses one message node. It returns a nil event for
// service notices, undateable nodes and non-trade chatter; that is
// expected volume, not an error. A malformed numeral inside a matched
// field is an error: it signals an upstream format change.
func (p *Parser) ParseMessage(msg RawMessage, lastSender string) (*event.TradeEvent, string, error) {
	if msg.Service {
		return nil, lastSender, nil
	}

	m := titleTimestampRe.FindStringSubmatch(msg.TitleTimestamp)
	if m == nil {
		return nil, lastSender, nil
	}
	ts, err := time.ParseInLocation("02.01.2006 15:04:05", strings.Join(strings.Fields(m[1]), " "), time.UTC)
	if err != nil {
		return nil, lastSender, nil
	}

	if s := strings.TrimSpace(msg.Sender); s != "" {
		lastSender = s
	}

	if msg.HTML == "" {
		return nil, lastSender, nil
	}

	// Line-break markup becomes literal newlines. Most extraction runs
	// on tag-stripped text, but fills keep the markup because some
	// exports escape the arrow's ">".
	htmlText := normalizeBreaks(msg.HTML)
	plain := strings.TrimSpace(stripTags(htmlText))

	kind, ok := Classify(plain)
	if !ok || kind == event.KindStartup {
		return nil, lastSender, nil
	}

	bot, asset, timeframe := p.resolver.Resolve(plain)

	ev := &event.TradeEvent{
		Timestamp: ts,
		Sender:    lastSender,
		Kind:      kind,
		Bot:       bot,
		Asset:     asset,
		Timeframe: timeframe,
		Side:      extractSide(plain),
		Tier:      intField(tierRe, plain),
		Flips:     intField(flipsRe, plain),
		RawText:   plain,
	}

	if ev.Gap, err = currencyField(gapRe, plain); err != nil {
		return nil, lastSender, fmt.Errorf("gap: %w", err)
	}
	if ev.Hurdle, err = currencyField(hurdleRe, plain); err != nil {
		return nil, lastSender, fmt.Errorf("hurdle: %w", err)
	}
	if ev.ExpMov, err = currencyField(expMoveRe, plain); err != nil {
		return nil, lastSender, fmt.Errorf("expmove: %w", err)
	}
	if ev.Strike, err = currencyField(strikeRe, plain); err != nil {
		return nil, lastSender, fmt.Errorf("strike: %w", err)
	}
	if ev.NetPnL, err = currencyField(netRe, plain); err != nil {
		return nil, lastSender, fmt.Errorf("net: %w", err)
	}

	contract, info := extractContract(plain)
	ev.Contract = contract
	if info != nil {
		expiry := info.Expiry
		ev.ContractExpiry = &expiry
	}

	session, err := extractSession(plain)
	if err != nil {
		return nil, lastSender, err
	}
	if session != nil {
		wins, losses := session.Wins, session.Losses
		ev.SessionWins = &wins
		ev.SessionLosses = &losses
		ev.SessionPnL.Decimal = session.PnL
		ev.SessionPnL.Valid = true
	}

	fills, err := extractFills(htmlText)
	if err != nil {
		return nil, lastSender, err
	}
	ev.Fills = fills

	return ev, lastSender, nil
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

func normalizeBreaks(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	return s
}

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}
