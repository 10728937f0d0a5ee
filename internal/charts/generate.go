package charts

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tradereports/internal/event"
	"tradereports/internal/feed"
	"tradereports/internal/logger"
)

// Options bounds penny-chart generation.
type Options struct {
	PennyCents int           // fill price that qualifies an event
	Lookback   time.Duration // window before contract expiry
	Workers    int
}

func (o Options) withDefaults() Options {
	if o.PennyCents <= 0 {
		o.PennyCents = 2
	}
	if o.Lookback <= 0 {
		o.Lookback = 90 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// GeneratePennyCharts builds a chart for every outcome event that
// carried a penny fill. Parsing upstream is strictly ordered, but each
// chart here is independent, so the fan-out is safe; output order
// still follows the event sequence.
func GeneratePennyCharts(ctx context.Context, events []event.TradeEvent, source feed.Source, o Options) ([]ContractChart, error) {
	o = o.withDefaults()

	var candidates []int
	for i := range events {
		e := &events[i]
		if !e.Kind.IsOutcome() || !e.HasPennyFill(o.PennyCents) {
			continue
		}
		if e.Asset == "UNKNOWN" || e.Timeframe == "1HR" || e.ContractExpiry == nil {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]*ContractChart, len(candidates))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(o.Workers)
	for slot, idx := range candidates {
		slot, idx := slot, idx
		group.Go(func() error {
			e := &events[idx]
			window, err := source.Window(ctx, e.Asset, *e.ContractExpiry, o.Lookback)
			if err != nil {
				logger.Debugf("no feed window for %s (%s): %v", e.Contract, e.Asset, err)
				return nil
			}
			settlement, err := source.SettlementStrike(ctx, e.Asset, *e.ContractExpiry)
			if err != nil {
				settlement = nil
			}
			chart, err := BuildContractChart(e, window, settlement)
			if err != nil {
				return err
			}
			mu.Lock()
			results[slot] = chart
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]ContractChart, 0, len(results))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}
