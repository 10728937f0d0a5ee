package charts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"tradereports/internal/event"
	"tradereports/internal/feed"
)

const (
	colorBackground = "#060c1b"
	colorText       = "#eceff4"
	colorTextDim    = "#9ca3af"
	colorPrice      = "#3b82f6"
	colorGrowing    = "#fbbf24"
	colorSmoothed   = "#22d3ee"
	colorStrike     = "#f472b6"
	colorSettlement = "#34d399"
	colorWin        = "#34d399"
	colorLoss       = "#f87171"
	colorJackpot    = "#ffd700"

	chartWidthPx  = 1200
	chartHeightPx = 450

	smoothingPeriod = 9
)

// ContractChart is one rendered per-contract chart.
type ContractChart struct {
	Event event.TradeEvent
	Name  string
	HTML  []byte
}

// BuildContractChart draws the final seconds of a contract: PriceProxy
// and GrowingCP lines, a smoothed PriceProxy overlay, and strike /
// settlement / expiry markers. Returns nil when the window is too thin
// to draw.
func BuildContractChart(ev *event.TradeEvent, ticks []feed.Tick, settlement *float64) (*ContractChart, error) {
	if ev.ContractExpiry == nil {
		return nil, nil
	}
	if len(ticks) < 3 {
		return nil, nil
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         chartTitle(ev),
			Subtitle:      fillSummary(ev),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: outcomeColor(ev.Kind), FontSize: 14},
			SubtitleStyle: &opts.TextStyle{Color: colorTextDim},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorText}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextDim},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextDim},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextDim, Opacity: opts.Float(0.2)}},
		}),
	)

	xAxis := make([]string, len(ticks))
	proxy := make([]opts.LineData, len(ticks))
	growing := make([]opts.LineData, len(ticks))
	proxyRaw := make([]float64, 0, len(ticks))
	for i, t := range ticks {
		xAxis[i] = t.Time.Format("15:04:05")
		proxy[i] = floatPoint(t.PriceProxy)
		growing[i] = floatPoint(t.GrowingCP)
		if t.PriceProxy != nil {
			proxyRaw = append(proxyRaw, *t.PriceProxy)
		}
	}

	line.SetXAxis(xAxis)
	line.AddSeries("PriceProxy", proxy,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorPrice, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	line.AddSeries("GrowingCP", growing,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorGrowing, Width: 2, Type: "dotted"}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	if smoothed := smoothedSeries(proxyRaw, len(ticks)); smoothed != nil {
		line.AddSeries("Smoothed", smoothed,
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorSmoothed, Width: 1}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}

	markers := markerLines(ev, ticks, settlement)
	if len(markers) > 0 {
		line.SetSeriesOptions(charts.WithMarkLineNameYAxisItemOpts(markers...))
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, err
	}
	return &ContractChart{
		Event: *ev,
		Name:  ChartName(ev),
		HTML:  buf.Bytes(),
	}, nil
}

// ChartName is the stable filename stem for a contract chart.
func ChartName(ev *event.TradeEvent) string {
	return strings.ReplaceAll(ev.Contract+"_"+ev.Kind.String(), "-", "_")
}

func markerLines(ev *event.TradeEvent, ticks []feed.Tick, settlement *float64) []opts.MarkLineNameYAxisItem {
	var markers []opts.MarkLineNameYAxisItem

	// Strike from the signal wins; the feed column is often N/A.
	var strike *float64
	if ev.Strike.Valid {
		v, _ := ev.Strike.Decimal.Float64()
		strike = &v
	} else {
		for _, t := range ticks {
			if t.Strike != nil {
				strike = t.Strike
				break
			}
		}
	}
	if strike != nil {
		markers = append(markers, opts.MarkLineNameYAxisItem{
			Name:  fmt.Sprintf("Strike $%.2f", *strike),
			YAxis: *strike,
		})
	}
	if settlement != nil {
		markers = append(markers, opts.MarkLineNameYAxisItem{
			Name:  fmt.Sprintf("Settlement $%.2f", *settlement),
			YAxis: *settlement,
		})
	}
	return markers
}

func smoothedSeries(values []float64, length int) []opts.LineData {
	if len(values) <= smoothingPeriod {
		return nil
	}
	sma := talib.Sma(values, smoothingPeriod)
	out := make([]opts.LineData, length)
	offset := length - len(sma)
	if offset < 0 {
		offset = 0
	}
	for i := 0; i < offset; i++ {
		out[i] = opts.LineData{Value: nil}
	}
	for i := 0; i < len(sma) && offset+i < length; i++ {
		if i < smoothingPeriod-1 {
			out[offset+i] = opts.LineData{Value: nil}
			continue
		}
		out[offset+i] = opts.LineData{Value: sma[i]}
	}
	return out
}

func floatPoint(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: *v}
}

func outcomeColor(kind event.Kind) string {
	switch kind {
	case event.KindWin:
		return colorWin
	case event.KindJackpot:
		return colorJackpot
	case event.KindLoss:
		return colorLoss
	default:
		return colorText
	}
}

func chartTitle(ev *event.TradeEvent) string {
	side := "?"
	if ev.Side != nil {
		side = ev.Side.String()
	}
	if ev.NetPnL.Valid {
		return fmt.Sprintf("%s | %s %s | Side: %s | Net: $%s",
			ev.Kind, ev.Bot, ev.Asset, side, ev.NetPnL.Decimal.StringFixed(2))
	}
	return fmt.Sprintf("%s | %s %s | Side: %s", ev.Kind, ev.Bot, ev.Asset, side)
}

func fillSummary(ev *event.TradeEvent) string {
	if len(ev.Fills) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ev.Fills))
	for _, f := range ev.Fills {
		parts = append(parts, fmt.Sprintf("%s %d@%d¢ = $%s",
			f.Side, f.Quantity, f.PriceCents, f.PnL.StringFixed(2)))
	}
	return strings.Join(parts, "  |  ")
}
