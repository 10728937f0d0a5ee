package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tradereports/internal/app"
	trcfg "tradereports/internal/config"
	"tradereports/internal/logger"
)

func main() {
	var (
		cfgPath  = flag.String("config", defaultConfigPath(), "config file path")
		dateStr  = flag.String("date", "", "export date (YYYY-MM-DD, default today)")
		noCharts = flag.Bool("no-charts", false, "skip penny chart generation")
		doPub    = flag.Bool("publish", false, "write the run to the publish dir and snapshot db")
		serve    = flag.Bool("serve", false, "serve the report over HTTP and watch the export")
	)
	flag.Parse()

	cfg, err := trcfg.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)

	day, err := resolveDay(*dateStr)
	if err != nil {
		log.Fatalf("bad --date: %v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		if err := a.Serve(ctx, day, !*noCharts); err != nil && ctx.Err() == nil {
			log.Fatalf("serve: %v", err)
		}
		return
	}

	data, err := a.RunReport(ctx, day, !*noCharts)
	if err != nil {
		log.Fatalf("report: %v", err)
	}
	a.LogReport(data)
	if *doPub {
		if err := a.Publish(ctx, data); err != nil {
			log.Fatalf("publish: %v", err)
		}
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("TRADEREPORTS_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func resolveDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
