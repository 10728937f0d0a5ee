package config

// Config is the main configuration carrier.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Export   ExportConfig   `yaml:"export"`
	Feed     FeedConfig     `yaml:"feed"`
	Registry RegistryConfig `yaml:"registry"`
	Publish  PublishConfig  `yaml:"publish"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type AppConfig struct {
	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`
	HTTPAddr string `yaml:"http_addr"`
}

// ExportConfig locates the chat export folders
// ("ChatExport_YYYY-MM-DD" under Root).
type ExportConfig struct {
	Root string `yaml:"root"`
}

type FeedConfig struct {
	Dir             string `yaml:"dir"`
	LookbackSeconds int    `yaml:"lookback_seconds"`
	PennyCents      int    `yaml:"penny_cents"`
	BinanceFallback bool   `yaml:"binance_fallback"`
	BinanceRESTURL  string `yaml:"binance_rest_url"`
}

// RegistryConfig points at the asset registry file; empty means the
// built-in BTC/ETH/SOL/XRP set.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

type PublishConfig struct {
	Dir          string `yaml:"dir"`
	SnapshotPath string `yaml:"snapshot_path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	AppURL   string         `yaml:"app_url"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}
