package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "SIGNAL", KindSignal.String())
	assert.Equal(t, "JACKPOT", KindJackpot.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}

func TestKindIsOutcome(t *testing.T) {
	assert.True(t, KindWin.IsOutcome())
	assert.True(t, KindLoss.IsOutcome())
	assert.True(t, KindJackpot.IsOutcome())
	assert.False(t, KindSignal.IsOutcome())
	assert.False(t, KindStartup.IsOutcome())
}

func TestHasPennyFill(t *testing.T) {
	e := TradeEvent{Fills: []Fill{
		{PriceCents: 90},
		{PriceCents: 2},
	}}
	assert.True(t, e.HasPennyFill(2))
	assert.False(t, e.HasPennyFill(1))
	assert.False(t, (&TradeEvent{}).HasPennyFill(2))
}
