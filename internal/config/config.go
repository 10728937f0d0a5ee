package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the YAML config file, applies defaults and environment
// overrides, and validates. A missing file is not fatal: the defaults
// plus environment are a complete configuration.
func Load(path string) (*Config, error) {
	// .env is a local-development convenience; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	var cfg Config
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
				}
			}
		}
	}
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const (
	defaultLogLevel        = "info"
	defaultHTTPAddr        = ":8091"
	defaultLookbackSeconds = 90
	defaultPennyCents      = 2
	defaultPublishDir      = "published_data"
)

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultHTTPAddr
	}
	if c.Feed.LookbackSeconds <= 0 {
		c.Feed.LookbackSeconds = defaultLookbackSeconds
	}
	if c.Feed.PennyCents <= 0 {
		c.Feed.PennyCents = defaultPennyCents
	}
	if c.Publish.Dir == "" {
		c.Publish.Dir = defaultPublishDir
	}
	if c.Publish.SnapshotPath == "" {
		c.Publish.SnapshotPath = filepath.Join(c.Publish.Dir, "events.db")
	}
}

// applyEnv lets the environment fill in what the file left empty,
// which keeps secrets out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_EXPORT_ROOT"); v != "" && c.Export.Root == "" {
		c.Export.Root = v
	}
	if v := os.Getenv("CSV_DATA_DIR"); v != "" && c.Feed.Dir == "" {
		c.Feed.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" && c.Notify.Telegram.BotToken == "" {
		c.Notify.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" && c.Notify.Telegram.ChatID == "" {
		c.Notify.Telegram.ChatID = v
	}
	if v := os.Getenv("REPORT_APP_URL"); v != "" && c.Notify.AppURL == "" {
		c.Notify.AppURL = v
	}
}

func validate(c *Config) error {
	if c.Export.Root == "" {
		return fmt.Errorf("export root is required (config export.root or TELEGRAM_EXPORT_ROOT)")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notify enabled but bot_token/chat_id missing")
		}
	}
	return nil
}
