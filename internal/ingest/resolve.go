package ingest

import (
	"regexp"
	"strings"
)

// Sentinels used when nothing better can be recovered. Downstream
// grouping depends on these exact spellings.
const (
	UnknownBot   = "Unknown"
	UnknownAsset = "UNKNOWN"
)

// leadingGlyphRe sweeps emoji, symbols, variation selectors and ZWJ off
// the front of a line.
var leadingGlyphRe = regexp.MustCompile(`^[\s\x{1F300}-\x{1F9FF}\x{2600}-\x{2BFF}\x{FE0F}\x{200D}]+`)

// Event keywords stripped off the first line before the bot name is
// read. Multi-word keywords come first so a prefix of them is never
// stripped on its own.
var strippedKeywords = []string{
	"FLIP SIGNAL", "JACKPOT 1HR", "JACKPOT", "PARTIAL LOSS",
	"PARTIAL WIN", "LOSS", "WIN", "SIGNAL", "Started",
}

var (
	keywordStripRes []*regexp.Regexp
	strayHyphenRe   = regexp.MustCompile(`-\s+-`)
	timeframeTagRe  = regexp.MustCompile(`(?i)\s*1HR\s*`)
)

func init() {
	for _, kw := range strippedKeywords {
		keywordStripRes = append(keywordStripRes, regexp.MustCompile(`^\s*`+regexp.QuoteMeta(kw)+`\s*`))
	}
}

// Resolver recovers (bot, asset, timeframe) from message text. It never
// fails; unresolvable parts fall back to the sentinels above.
type Resolver struct {
	assets map[string]bool
}

// NewResolver builds a resolver over the given known asset codes.
func NewResolver(assets []string) *Resolver {
	set := make(map[string]bool, len(assets))
	for _, a := range assets {
		set[strings.ToUpper(strings.TrimSpace(a))] = true
	}
	return &Resolver{assets: set}
}

// Resolve extracts bot name, asset and timeframe from plain message
// text. Only the first line carries the bot name; the full text is
// still consulted for an embedded contract identifier when the asset
// is not spelled out.
func (r *Resolver) Resolve(text string) (bot, asset, timeframe string) {
	firstLine := text
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	cleaned := strings.TrimSpace(firstLine)

	cleaned = leadingGlyphRe.ReplaceAllString(cleaned, "")
	for _, re := range keywordStripRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = leadingGlyphRe.ReplaceAllString(cleaned, "")

	// Summary lines append stats after a colon ("Ferny 3.1 BTC: $+148.98 | 1W-0L").
	if idx := strings.IndexByte(cleaned, ':'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = decodeEntities(cleaned)
	cleaned = strings.TrimSpace(cleaned)

	asset = UnknownAsset
	timeframe = "15M"

	tokens := strings.Fields(cleaned)
	if n := len(tokens); n > 0 && r.assets[strings.ToUpper(tokens[n-1])] {
		asset = strings.ToUpper(tokens[n-1])
		bot = strings.Join(tokens[:n-1], " ")
	} else {
		bot = cleaned
		if info, ok := embeddedContract(text); ok {
			asset = info.Asset
		}
	}

	if strings.Contains(strings.ToUpper(bot), "1HR") {
		timeframe = "1HR"
		bot = strings.TrimSpace(timeframeTagRe.ReplaceAllString(bot, " "))
	} else if info, ok := embeddedContract(text); ok {
		timeframe = info.Timeframe
	}

	// Glyph stripping can leave "Fernando- -OG"; rejoin it.
	bot = strayHyphenRe.ReplaceAllString(bot, "-")

	if bot == "" {
		bot = UnknownBot
	}
	return bot, asset, timeframe
}

func decodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return s
}
