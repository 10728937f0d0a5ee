package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tradereports/internal/analytics"
	"tradereports/internal/charts"
	"tradereports/internal/config"
	"tradereports/internal/feed"
	"tradereports/internal/ingest"
	"tradereports/internal/logger"
	"tradereports/internal/notify"
	"tradereports/internal/publish"
	"tradereports/internal/registry"
	"tradereports/internal/store"
	reporthttp "tradereports/internal/transport/http/report"
)

// App wires the export reader, parser, analytics, chart generator and
// outbound channels behind one run loop.
type App struct {
	cfg      *config.Config
	registry *registry.Registry
	source   feed.Source
	notifier notify.TextNotifier
	server   *reporthttp.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.Registry.Path != "" {
		reg, err := registry.NewRegistry(cfg.Registry.Path)
		if err != nil {
			return nil, fmt.Errorf("load asset registry: %w", err)
		}
		reg.Subscribe(func(snap registry.Snapshot) {
			logger.Infof("asset registry reloaded: %d assets (version %d)", len(snap.Assets), snap.Version)
		})
		a.registry = reg
	}

	csv := feed.NewCSVSource(cfg.Feed.Dir, a.feedFile)
	if cfg.Feed.BinanceFallback {
		a.source = &feed.Fallback{
			Primary:  csv,
			Fallback: feed.NewBinanceSource(cfg.Feed.BinanceRESTURL),
		}
	} else {
		a.source = csv
	}

	if cfg.Notify.Telegram.Enabled {
		a.notifier = notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}
	return a, nil
}

func (a *App) snapshot() registry.Snapshot {
	if a.registry != nil {
		return a.registry.Snapshot()
	}
	return registry.Default()
}

func (a *App) assetCodes() []string {
	snap := a.snapshot()
	codes := make([]string, 0, len(snap.Assets))
	for _, spec := range snap.Assets {
		codes = append(codes, spec.Code)
	}
	return codes
}

func (a *App) feedFile(asset string) (string, bool) {
	for _, spec := range a.snapshot().Assets {
		if spec.Code == asset {
			return spec.FeedFile, true
		}
	}
	return "", false
}

// RunReport parses the export for day and computes every summary. The
// resolver is rebuilt each run so registry edits apply to the next
// parse without a restart.
func (a *App) RunReport(ctx context.Context, day time.Time, withCharts bool) (*reporthttp.ReportData, error) {
	dir, err := ingest.FindExportFolder(a.cfg.Export.Root, day)
	if err != nil {
		return nil, err
	}
	docs, err := ingest.NewHTMLSource(dir).Documents()
	if err != nil {
		return nil, err
	}

	parser := ingest.NewParser(ingest.NewResolver(a.assetCodes()))
	filter := day
	events, err := ingest.NewWalker(parser).Events(docs, &filter)
	if err != nil {
		return nil, err
	}
	logger.Infof("parsed %d events from %s (%d documents)", len(events), dir, len(docs))

	data := &reporthttp.ReportData{
		Date:     day.Format("2006-01-02"),
		Events:   events,
		Stats:    analytics.Overall(events),
		Bots:     analytics.SummarizeByBot(events),
		Assets:   analytics.SummarizeByAsset(events),
		Penny:    analytics.SummarizePenny(events, a.cfg.Feed.PennyCents),
		LoadedAt: time.Now(),
	}

	if withCharts {
		opts := charts.Options{
			PennyCents: a.cfg.Feed.PennyCents,
			Lookback:   time.Duration(a.cfg.Feed.LookbackSeconds) * time.Second,
		}
		built, err := charts.GeneratePennyCharts(ctx, events, a.source, opts)
		if err != nil {
			logger.Warnf("chart generation incomplete: %v", err)
		}
		data.Charts = built
	}
	return data, nil
}

// LogReport prints the summary tables the way the CLI reports them.
func (a *App) LogReport(data *reporthttp.ReportData) {
	logger.Infof("per-bot summary (%s):", data.Date)
	logger.InfoBlock(analytics.RenderBotTable(data.Bots))
	logger.Infof("per-asset summary:")
	logger.InfoBlock(analytics.RenderAssetTable(data.Assets))
	logger.Infof("penny fills:")
	logger.InfoBlock(analytics.RenderPennyTable(data.Penny))
	logger.Infof("overall: %d signals, %d wins, %d losses, %d jackpots, net $%s",
		data.Stats.Signals, data.Stats.Wins, data.Stats.Losses,
		data.Stats.Jackpots, data.Stats.NetPnL.StringFixed(2))
}

// Publish persists the report and, when configured, pushes the summary
// to Telegram with the first chart attached.
func (a *App) Publish(ctx context.Context, data *reporthttp.ReportData) error {
	st, err := store.NewStore(a.cfg.Publish.SnapshotPath)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer st.Close()

	pub, err := publish.NewPublisher(a.cfg.Publish.Dir, st)
	if err != nil {
		return err
	}
	runID, err := pub.Publish(ctx, &publish.Report{
		Date:   data.Date,
		Events: data.Events,
		Stats:  data.Stats,
		Bots:   data.Bots,
		Assets: data.Assets,
		Penny:  data.Penny,
		Charts: data.Charts,
	})
	if err != nil {
		return err
	}

	if a.notifier == nil {
		return nil
	}
	msg := notify.ReportMessage(data.Stats, data.Date, a.cfg.Notify.AppURL)
	if err := a.sendWithChart(ctx, msg, data.Charts); err != nil {
		return fmt.Errorf("notify run %s: %w", runID, err)
	}
	return nil
}

func (a *App) sendWithChart(ctx context.Context, msg string, built []charts.ContractChart) error {
	tg, ok := a.notifier.(*notify.Telegram)
	if ok && len(built) > 0 {
		if err := charts.EnsureHeadlessAvailable(ctx); err == nil {
			png, err := charts.RenderPNG(ctx, built[0].HTML)
			if err == nil {
				return tg.SendPhoto(msg, png)
			}
			logger.Warnf("chart render failed, sending text only: %v", err)
		}
	}
	return a.notifier.SendText(msg)
}

// Serve runs the initial report, then keeps it fresh: the HTTP server
// exposes the current data while the watcher re-parses whenever the
// desktop client rewrites the export.
func (a *App) Serve(ctx context.Context, day time.Time, withCharts bool) error {
	data, err := a.RunReport(ctx, day, withCharts)
	if err != nil {
		return err
	}
	a.LogReport(data)

	a.server = reporthttp.NewServer(a.cfg.App.HTTPAddr)
	a.server.SetData(data)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Start(ctx) })
	g.Go(func() error { return a.watchExports(ctx, day, withCharts) })
	return g.Wait()
}
