package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContract(t *testing.T) {
	info, ok := DecodeContract("KXBTC15M-26FEB031015-15")
	require.True(t, ok)
	assert.Equal(t, "BTC", info.Asset)
	assert.Equal(t, "15M", info.Timeframe)
	assert.Equal(t, time.Date(2026, time.February, 3, 10, 15, 15, 0, time.UTC), info.Expiry)
	assert.Equal(t, "KXBTC15M-26FEB031015-15", info.Raw)
}

func TestDecodeContractHourly(t *testing.T) {
	info, ok := DecodeContract("KXETHD-26MAR151200-00")
	require.True(t, ok)
	assert.Equal(t, "ETH", info.Asset)
	assert.Equal(t, "1HR", info.Timeframe)
	assert.Equal(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC), info.Expiry)
}

func TestDecodeContractUnknownMonthFallsBackToJanuary(t *testing.T) {
	info, ok := DecodeContract("KXSOL15M-26XXX031015-15")
	require.True(t, ok)
	assert.Equal(t, time.January, info.Expiry.Month())
	assert.Equal(t, 2026, info.Expiry.Year())
}

func TestDecodeContractNoMatch(t *testing.T) {
	for _, s := range []string{
		"",
		"BTC15M-26FEB031015-15",   // missing KX prefix
		"KXBTC5M-26FEB031015-15",  // bad timeframe token
		"KXBTC15M-26FB031015-15",  // month not three letters
		"completely unrelated text",
	} {
		_, ok := DecodeContract(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestDecodeContractEmbedded(t *testing.T) {
	info, ok := DecodeContract("Contract: KXXRP15M-26AUG292359-59 settled")
	require.True(t, ok)
	assert.Equal(t, "XRP", info.Asset)
	assert.Equal(t, time.Date(2026, time.August, 29, 23, 59, 59, 0, time.UTC), info.Expiry)
}
