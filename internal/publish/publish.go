package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tradereports/internal/analytics"
	"tradereports/internal/charts"
	"tradereports/internal/event"
	"tradereports/internal/logger"
	"tradereports/internal/store"
)

// Publisher writes one report run to the publish directory and the
// snapshot database. Each run gets its own ID so downstream consumers
// can tell a re-publish of the same date from the original.
type Publisher struct {
	dir   string
	store *store.Store
}

// Report is everything Publish persists for one export date.
type Report struct {
	Date   string
	Events []event.TradeEvent
	Stats  analytics.OverallStats
	Bots   []analytics.BotSummary
	Assets []analytics.AssetSummary
	Penny  []analytics.PennySummary
	Charts []charts.ContractChart
}

type metadata struct {
	RunID       string `json:"run_id"`
	ExportDate  string `json:"export_date"`
	TotalEvents int    `json:"total_events"`
	ChartCount  int    `json:"chart_count"`
	PublishedAt string `json:"published_at"`
}

func NewPublisher(dir string, st *store.Store) (*Publisher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create publish dir: %w", err)
	}
	return &Publisher{dir: dir, store: st}, nil
}

// Publish persists the report and returns the run ID.
func (p *Publisher) Publish(ctx context.Context, rep *Report) (string, error) {
	runID := uuid.NewString()

	statsPayload := map[string]any{
		"stats":  rep.Stats,
		"bots":   rep.Bots,
		"assets": rep.Assets,
		"penny":  rep.Penny,
	}
	statsJSON, err := json.MarshalIndent(statsPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode stats: %w", err)
	}

	if p.store != nil {
		run := store.ReportRunModel{
			ID:            runID,
			ExportDate:    rep.Date,
			TotalEvents:   len(rep.Events),
			StatsJSON:     statsJSON,
			CreatedAtUnix: time.Now().Unix(),
		}
		if err := p.store.SaveRun(ctx, run, rep.Events); err != nil {
			return "", fmt.Errorf("save run: %w", err)
		}
	}

	if err := p.writeFile("stats.json", statsJSON); err != nil {
		return "", err
	}

	meta := metadata{
		RunID:       runID,
		ExportDate:  rep.Date,
		TotalEvents: len(rep.Events),
		ChartCount:  len(rep.Charts),
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := p.writeFile("metadata.json", metaJSON); err != nil {
		return "", err
	}

	if len(rep.Charts) > 0 {
		chartDir := filepath.Join(p.dir, "charts")
		if err := os.MkdirAll(chartDir, 0o755); err != nil {
			return "", fmt.Errorf("create chart dir: %w", err)
		}
		for i := range rep.Charts {
			ch := &rep.Charts[i]
			name := filepath.Join("charts", ch.Name+".html")
			if err := p.writeFile(name, ch.HTML); err != nil {
				return "", err
			}
		}
	}

	logger.Infof("published run %s for %s: %d events, %d charts", runID, rep.Date, len(rep.Events), len(rep.Charts))
	return runID, nil
}

func (p *Publisher) writeFile(name string, data []byte) error {
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
