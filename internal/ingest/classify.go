package ingest

import (
	"regexp"
	"strings"

	"tradereports/internal/event"
)

// Directional / colour glyphs that open signal messages. Maps to the
// side the glyph implies. The bare arrows (no variation selector) show
// up in some exports.
var signalGlyphs = []struct {
	glyph string
	side  event.Side
}{
	{"\U0001f534", event.SideNo},   // 🔴
	{"\U0001f7e2", event.SideYes},  // 🟢
	{"⬇️", event.SideNo}, // ⬇️
	{"⬆️", event.SideYes}, // ⬆️
	{"⬇", event.SideNo},  // ⬇
	{"⬆", event.SideYes}, // ⬆
}

// Keyword rules in priority order. PARTIAL WIN/LOSS must come before
// the bare WIN/LOSS rules (substring relationship), and JACKPOT text
// often contains WIN-like language so it is checked first.
var keywordRules = []struct {
	re   *regexp.Regexp
	kind event.Kind
}{
	{regexp.MustCompile(`(?i)JACKPOT`), event.KindJackpot},
	{regexp.MustCompile(`(?i)PARTIAL\s+LOSS`), event.KindLoss},
	{regexp.MustCompile(`(?i)PARTIAL\s+WIN`), event.KindWin},
	{regexp.MustCompile(`\bLOSS\b`), event.KindLoss},
	{regexp.MustCompile(`\bWIN\b`), event.KindWin},
	{regexp.MustCompile(`(?i)FLIP\s+SIGNAL`), event.KindSignal},
	{regexp.MustCompile(`\bSIGNAL\b`), event.KindSignal},
}

const rocketGlyph = "\U0001f680"

// Classify determines the event kind of one message body. The second
// return is false when the text matches nothing trade-related.
func Classify(text string) (event.Kind, bool) {
	if strings.Contains(text, "Started") && strings.Contains(text, rocketGlyph) {
		return event.KindStartup, true
	}

	// A directional glyph in the opening runes marks a glyph-led
	// message: keyword rules still win, but the glyph alone is enough
	// to call it a signal.
	head := firstRunes(text, 5)
	for _, g := range signalGlyphs {
		if strings.Contains(head, g.glyph) {
			for _, rule := range keywordRules {
				if rule.re.MatchString(text) {
					return rule.kind, true
				}
			}
			return event.KindSignal, true
		}
	}

	for _, rule := range keywordRules {
		if rule.re.MatchString(text) {
			return rule.kind, true
		}
	}
	return event.KindUnknown, false
}

// GlyphSide returns the side implied by a directional glyph within the
// opening runes of text, if any.
func GlyphSide(text string) (event.Side, bool) {
	head := firstRunes(text, 5)
	for _, g := range signalGlyphs {
		if strings.Contains(head, g.glyph) {
			return g.side, true
		}
	}
	return 0, false
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
