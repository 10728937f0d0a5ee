package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tradereports/internal/ingest"
	"tradereports/internal/logger"
)

// debounceDelay absorbs the burst of writes the desktop client makes
// while it is still flushing an export.
const debounceDelay = 2 * time.Second

// watchExports re-parses the export whenever its message documents
// change. Both the dated folder and the export root are watched so a
// fresh "ChatExport_..." folder is picked up too.
func (a *App) watchExports(ctx context.Context, day time.Time, withCharts bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(a.cfg.Export.Root); err != nil {
		return err
	}
	if dir, err := ingest.FindExportFolder(a.cfg.Export.Root, day); err == nil {
		if err := watcher.Add(dir); err != nil {
			logger.Warnf("cannot watch export folder %s: %v", dir, err)
		}
	}
	logger.Infof("watching %s for export changes", a.cfg.Export.Root)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(ev) {
				continue
			}
			// New dated folder: start watching inside it as well.
			if ev.Op.Has(fsnotify.Create) && strings.HasPrefix(filepath.Base(ev.Name), "ChatExport_") {
				if err := watcher.Add(ev.Name); err == nil {
					logger.Infof("watching new export folder %s", ev.Name)
				}
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("export watcher error: %v", err)
		case <-fire:
			data, err := a.RunReport(ctx, day, withCharts)
			if err != nil {
				logger.Errorf("re-parse after export change failed: %v", err)
				continue
			}
			a.server.SetData(data)
			logger.Infof("report refreshed: %d events", len(data.Events))
		}
	}
}

func relevantChange(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, "ChatExport_") {
		return true
	}
	return strings.HasPrefix(base, "messages") && strings.HasSuffix(base, ".html")
}
