package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"tradereports/internal/logger"
)

// BinanceSource recovers a price window from Binance spot klines when
// no local feed file exists for an asset. It only fills PriceProxy;
// strike and cumulative columns are feed-local concepts.
type BinanceSource struct {
	client *binance.Client
	quote  string
}

func NewBinanceSource(restBaseURL string) *BinanceSource {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(restBaseURL); base != "" {
		client.BaseURL = base
	}
	client.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	return &BinanceSource{client: client, quote: "USDT"}
}

func (b *BinanceSource) Window(ctx context.Context, asset string, expiry time.Time, lookback time.Duration) ([]Tick, error) {
	symbol := strings.ToUpper(strings.TrimSpace(asset)) + b.quote
	start := expiry.Add(-lookback)
	kls, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval("1s").
		StartTime(start.UnixMilli()).
		EndTime(expiry.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}
	ticks := make([]Tick, 0, len(kls))
	for _, k := range kls {
		closePx, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			logger.Warnf("binance kline close unparseable for %s: %q", symbol, k.Close)
			continue
		}
		px := closePx
		ticks = append(ticks, Tick{
			Time:       time.UnixMilli(k.CloseTime).UTC(),
			PriceProxy: &px,
		})
	}
	return ticks, nil
}

// SettlementStrike approximates settlement with the first close after
// expiry.
func (b *BinanceSource) SettlementStrike(ctx context.Context, asset string, expiry time.Time) (*float64, error) {
	ticks, err := b.Window(ctx, asset, expiry.Add(5*time.Second), 4*time.Second)
	if err != nil {
		return nil, err
	}
	for _, t := range ticks {
		if t.Time.After(expiry) && t.PriceProxy != nil {
			v := *t.PriceProxy
			return &v, nil
		}
	}
	return nil, nil
}

// Fallback tries the primary source and falls back on error or an
// empty window.
type Fallback struct {
	Primary  Source
	Fallback Source
}

func (f *Fallback) Window(ctx context.Context, asset string, expiry time.Time, lookback time.Duration) ([]Tick, error) {
	ticks, err := f.Primary.Window(ctx, asset, expiry, lookback)
	if err == nil && len(ticks) > 0 {
		return ticks, nil
	}
	if f.Fallback == nil {
		return ticks, err
	}
	if err != nil {
		logger.Debugf("primary feed unavailable for %s: %v", asset, err)
	}
	return f.Fallback.Window(ctx, asset, expiry, lookback)
}

func (f *Fallback) SettlementStrike(ctx context.Context, asset string, expiry time.Time) (*float64, error) {
	strike, err := f.Primary.SettlementStrike(ctx, asset, expiry)
	if err == nil && strike != nil {
		return strike, nil
	}
	if f.Fallback == nil {
		return strike, err
	}
	return f.Fallback.SettlementStrike(ctx, asset, expiry)
}
