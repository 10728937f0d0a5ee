package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradereports/internal/event"
)

// Field extractors are independent, stateless scans. Each returns an
// explicit optional so a missing field is never confused with zero.
var (
	sideRe     = regexp.MustCompile(`Side:\s*(YES|NO)`)
	tierRe     = regexp.MustCompile(`Tier\s*(\d+)`)
	gapRe      = regexp.MustCompile(`Gap:\s*\$([+-]?[\d,.]+)`)
	hurdleRe   = regexp.MustCompile(`Hurdle:\s*([\d.]+)x`)
	expMoveRe  = regexp.MustCompile(`ExpMove:\s*\$([\d,.]+)`)
	contractRe = regexp.MustCompile(`Contract:\s*([A-Z0-9]+-[A-Z0-9]+-[A-Z0-9]+)`)
	strikeRe   = regexp.MustCompile(`Strike:\s*([\d,.]+)`)
	netRe      = regexp.MustCompile(`Net:\s*\$([+-]?[\d,.]+)`)
	sessionRe  = regexp.MustCompile(`Session:\s*(\d+)W-(\d+)L\s*\|\s*\$([+-]?[\d,.]+)`)
	flipsRe    = regexp.MustCompile(`Flips:\s*(\d+)`)

	// Fill lines: "✅ NO 20@90¢ → $+2.00". The arrow survives three
	// spellings in the wild, and some exports HTML-escape it, which is
	// why fills are scanned on markup-preserving text.
	fillRe = regexp.MustCompile(`([✅❌])\s*(YES|NO)\s+(\d+)@(\d+)[¢c]\s*(?:→|->|&gt;)\s*\$([+-]?[\d,.]+)`)
)

// parseCurrency converts "$+1,234.56"-style captures (without the "$")
// to a decimal. Thousands separators and a leading "+" are stripped;
// the sign of a "-" is kept. A genuinely malformed numeral is an
// upstream format change and surfaces as an error instead of being
// swallowed.
func parseCurrency(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "+", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	return d, nil
}

// parseCurrencyOpt treats a bare "N/A" (or nothing at all) as absence,
// never as zero.
func parseCurrencyOpt(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseCurrency(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// currencyField runs re against text and parses the first capture.
func currencyField(re *regexp.Regexp, text string) (decimal.NullDecimal, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.NullDecimal{}, nil
	}
	return parseCurrencyOpt(m[1])
}

func intField(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// extractSide prefers an explicit "Side:" keyword; only when that is
// absent does a leading directional glyph get a say.
func extractSide(text string) *event.Side {
	if m := sideRe.FindStringSubmatch(text); m != nil {
		s := event.SideNo
		if m[1] == "YES" {
			s = event.SideYes
		}
		return &s
	}
	if s, ok := GlyphSide(text); ok {
		return &s
	}
	return nil
}

// extractContract returns the contract id field and its decoded expiry.
func extractContract(text string) (string, *event.ContractInfo) {
	m := contractRe.FindStringSubmatch(text)
	if m == nil {
		return "", nil
	}
	if info, ok := DecodeContract(m[1]); ok {
		return m[1], &info
	}
	return m[1], nil
}

// embeddedContract decodes the contract identifier referenced anywhere
// in the text, for resolver fallbacks.
func embeddedContract(text string) (event.ContractInfo, bool) {
	m := contractRe.FindStringSubmatch(text)
	if m == nil {
		return event.ContractInfo{}, false
	}
	return DecodeContract(m[1])
}

type sessionStats struct {
	Wins   int
	Losses int
	PnL    decimal.Decimal
}

func extractSession(text string) (*sessionStats, error) {
	m := sessionRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	wins, _ := strconv.Atoi(m[1])
	losses, _ := strconv.Atoi(m[2])
	pnl, err := parseCurrency(m[3])
	if err != nil {
		return nil, fmt.Errorf("session pnl: %w", err)
	}
	return &sessionStats{Wins: wins, Losses: losses, PnL: pnl}, nil
}

// extractFills scans repeated fill lines. The win flag comes solely
// from which glyph leads the line, independent of the amount's sign.
func extractFills(text string) ([]event.Fill, error) {
	var fills []event.Fill
	for _, m := range fillRe.FindAllStringSubmatch(text, -1) {
		side := event.SideNo
		if m[2] == "YES" {
			side = event.SideYes
		}
		qty, _ := strconv.Atoi(m[3])
		price, _ := strconv.Atoi(m[4])
		pnl, err := parseCurrency(m[5])
		if err != nil {
			return nil, fmt.Errorf("fill amount: %w", err)
		}
		fills = append(fills, event.Fill{
			Side:       side,
			Quantity:   qty,
			PriceCents: price,
			PnL:        pnl,
			IsWin:      m[1] == "✅",
		})
	}
	return fills, nil
}
