package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tradereports/internal/event"
)

// Store persists report runs in a sqlite snapshot database. It is the
// publishing format: the dashboard loads the same rows the publisher
// wrote, with every optional field's presence intact.
type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newStore(db)
}

func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&ReportRunModel{}, &TradeEventModel{}, &FillModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun writes one run with its full event sequence in a single
// transaction. An existing run with the same id is replaced.
func (s *Store) SaveRun(ctx context.Context, run ReportRunModel, events []event.TradeEvent) error {
	if run.ID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	run.TotalEvents = len(events)
	if run.CreatedAtUnix == 0 {
		run.CreatedAtUnix = time.Now().Unix()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staleIDs []int64
		if err := tx.Model(&TradeEventModel{}).Where("run_id = ?", run.ID).Pluck("id", &staleIDs).Error; err != nil {
			return err
		}
		if len(staleIDs) > 0 {
			if err := tx.Where("event_id IN ?", staleIDs).Delete(&FillModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("run_id = ?", run.ID).Delete(&TradeEventModel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", run.ID).Delete(&ReportRunModel{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		for seq := range events {
			model := toEventModel(run.ID, seq, &events[seq])
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			for fi, fill := range events[seq].Fills {
				fm := toFillModel(model.ID, fi, fill)
				if err := tx.Create(&fm).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadRun reads a run's event sequence back, in original order.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]event.TradeEvent, error) {
	var models []TradeEventModel
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("seq ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]event.TradeEvent, 0, len(models))
	for i := range models {
		var fills []FillModel
		if err := s.db.WithContext(ctx).
			Where("event_id = ?", models[i].ID).
			Order("seq ASC").
			Find(&fills).Error; err != nil {
			return nil, err
		}
		events = append(events, fromEventModel(&models[i], fills))
	}
	return events, nil
}

// LatestRun returns the most recently created run's metadata.
func (s *Store) LatestRun(ctx context.Context) (ReportRunModel, error) {
	var run ReportRunModel
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	return run, err
}

// RunForDate returns the newest run for one export date.
func (s *Store) RunForDate(ctx context.Context, date string) (ReportRunModel, error) {
	var run ReportRunModel
	err := s.db.WithContext(ctx).
		Where("export_date = ?", date).
		Order("created_at DESC").
		First(&run).Error
	return run, err
}
