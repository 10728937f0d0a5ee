package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradereports/internal/event"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseCurrency(t *testing.T) {
	d, err := parseCurrency("+1,234.56")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("1234.56")))

	d, err = parseCurrency("-4.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("-4")))

	_, err = parseCurrency("12.3.4")
	assert.Error(t, err)
}

func TestParseCurrencyOptAbsence(t *testing.T) {
	d, err := parseCurrencyOpt("N/A")
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = parseCurrencyOpt("")
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = parseCurrencyOpt("0.00")
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.True(t, d.Decimal.IsZero())
}

func TestCurrencyFields(t *testing.T) {
	text := "SIGNAL Fernando-OG BTC\nGap: $-12.50\nHurdle: 1.25x\nExpMove: $45.00\nNet: $+1,148.98"

	gap, err := currencyField(gapRe, text)
	require.NoError(t, err)
	require.True(t, gap.Valid)
	assert.True(t, gap.Decimal.Equal(dec("-12.5")))

	hurdle, err := currencyField(hurdleRe, text)
	require.NoError(t, err)
	require.True(t, hurdle.Valid)
	assert.True(t, hurdle.Decimal.Equal(dec("1.25")))

	expMove, err := currencyField(expMoveRe, text)
	require.NoError(t, err)
	require.True(t, expMove.Valid)
	assert.True(t, expMove.Decimal.Equal(dec("45")))

	net, err := currencyField(netRe, text)
	require.NoError(t, err)
	require.True(t, net.Valid)
	assert.True(t, net.Decimal.Equal(dec("1148.98")))

	// Missing field is absence, not zero.
	strike, err := currencyField(strikeRe, text)
	require.NoError(t, err)
	assert.False(t, strike.Valid)
}

func TestExtractSidePrefersKeyword(t *testing.T) {
	// Glyph says NO, keyword says YES: keyword wins.
	side := extractSide("🔴 SIGNAL Fernando-OG BTC\nSide: YES")
	require.NotNil(t, side)
	assert.Equal(t, event.SideYes, *side)

	// No keyword: the glyph decides.
	side = extractSide("🔴 Fernando-OG BTC")
	require.NotNil(t, side)
	assert.Equal(t, event.SideNo, *side)

	assert.Nil(t, extractSide("WIN Fernando-OG BTC"))
}

func TestExtractSession(t *testing.T) {
	session, err := extractSession("Session: 3W-1L | $+42.10")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 3, session.Wins)
	assert.Equal(t, 1, session.Losses)
	assert.True(t, session.PnL.Equal(dec("42.1")))

	session, err = extractSession("no session line here")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestExtractFills(t *testing.T) {
	text := "WIN Fernando-OG BTC\n✅ NO 20@90¢ → $+2.00\n❌ YES 83@2c -> $-1.66"
	fills, err := extractFills(text)
	require.NoError(t, err)
	require.Len(t, fills, 2)

	assert.Equal(t, event.SideNo, fills[0].Side)
	assert.Equal(t, 20, fills[0].Quantity)
	assert.Equal(t, 90, fills[0].PriceCents)
	assert.True(t, fills[0].PnL.Equal(dec("2")))
	assert.True(t, fills[0].IsWin)

	assert.Equal(t, event.SideYes, fills[1].Side)
	assert.Equal(t, 83, fills[1].Quantity)
	assert.Equal(t, 2, fills[1].PriceCents)
	assert.True(t, fills[1].PnL.Equal(dec("-1.66")))
	assert.False(t, fills[1].IsWin)
}

func TestExtractFillsEscapedArrow(t *testing.T) {
	// Some exports HTML-escape the arrow; markup text keeps it.
	fills, err := extractFills("✅ YES 10@2¢ &gt; $-0.20")
	require.NoError(t, err)
	require.Len(t, fills, 1)
	// Win flag follows the glyph, not the amount's sign.
	assert.True(t, fills[0].IsWin)
	assert.True(t, fills[0].PnL.Equal(dec("-0.2")))
}

func TestExtractContract(t *testing.T) {
	contract, info := extractContract("Contract: KXBTC15M-26FEB031015-15")
	assert.Equal(t, "KXBTC15M-26FEB031015-15", contract)
	require.NotNil(t, info)
	assert.Equal(t, "BTC", info.Asset)

	contract, info = extractContract("no contract line")
	assert.Empty(t, contract)
	assert.Nil(t, info)
}

func TestIntFields(t *testing.T) {
	tier := intField(tierRe, "SIGNAL Tier 2 Fernando-OG BTC")
	require.NotNil(t, tier)
	assert.Equal(t, 2, *tier)

	flips := intField(flipsRe, "Flips: 4")
	require.NotNil(t, flips)
	assert.Equal(t, 4, *flips)

	assert.Nil(t, intField(tierRe, "no tier"))
}
