package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"tradereports/internal/logger"
)

// AssetSpec describes one tradable asset the resolver should recognize
// and where its local price feed lives.
type AssetSpec struct {
	Code     string `mapstructure:"-" yaml:"code"`
	FeedFile string `mapstructure:"feed_file" yaml:"feed_file"`
}

// FileConfig maps the assets.yaml layout.
type FileConfig struct {
	Assets map[string]AssetSpec `mapstructure:"assets" yaml:"assets"`
}

// Snapshot is an immutable view of the registry.
type Snapshot struct {
	Version  int64       `yaml:"version"`
	LoadedAt time.Time   `yaml:"loaded_at"`
	Assets   []AssetSpec `yaml:"assets"`
}

// ChangeListener fires after a successful reload.
type ChangeListener func(Snapshot)

const schemaJSON = `{
  "type": "object",
  "properties": {
    "assets": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "properties": {
          "feed_file": {"type": "string"}
        }
      }
    }
  },
  "required": ["assets"]
}`

var assetsSchema = jsonschema.MustCompileString("assets.schema.json", schemaJSON)

// Registry serves the known-asset set and watches its file for edits.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// Default returns the built-in asset set used when no registry file is
// configured.
func Default() Snapshot {
	return Snapshot{
		Version:  1,
		LoadedAt: time.Now(),
		Assets: []AssetSpec{
			{Code: "BTC", FeedFile: "data_feed5_btc.txt"},
			{Code: "ETH", FeedFile: "data_feed5_eth.txt"},
			{Code: "SOL", FeedFile: "data_feed5_sol.txt"},
			{Code: "XRP", FeedFile: "data_feed5_xrp.txt"},
		},
	}
}

// NewRegistry reads the registry file and keeps watching it.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("asset registry requires a path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read asset registry failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("asset registry reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the current asset set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// AssetCodes lists known asset codes, sorted.
func (r *Registry) AssetCodes() []string {
	snap := r.Snapshot()
	codes := make([]string, 0, len(snap.Assets))
	for _, a := range snap.Assets {
		codes = append(codes, a.Code)
	}
	return codes
}

// FeedFile returns the feed filename for an asset code.
func (r *Registry) FeedFile(code string) (string, bool) {
	snap := r.Snapshot()
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, a := range snap.Assets {
		if a.Code == code && a.FeedFile != "" {
			return a.FeedFile, true
		}
	}
	return "", false
}

// Subscribe registers a reload listener.
func (r *Registry) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	snap := r.snapshot
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return err
	}
	if err := assetsSchema.Validate(normalizeForSchema(r.v.AllSettings())); err != nil {
		return fmt.Errorf("asset registry schema: %w", err)
	}
	var fc FileConfig
	if err := r.v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("parse asset registry failed: %w", err)
	}
	assets := make([]AssetSpec, 0, len(fc.Assets))
	for code, spec := range fc.Assets {
		spec.Code = strings.ToUpper(strings.TrimSpace(code))
		if spec.Code == "" {
			continue
		}
		assets = append(assets, spec)
	}
	if len(assets) == 0 {
		return fmt.Errorf("asset registry defines no assets")
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Code < assets[j].Code })

	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Assets:   assets,
	}
	r.mu.Unlock()
	return nil
}

// normalizeForSchema converts viper's settings tree into plain
// JSON-compatible values the schema validator accepts.
func normalizeForSchema(node any) any {
	switch val := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalizeForSchema(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeForSchema(v)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeForSchema(v)
		}
		return out
	default:
		return val
	}
}

// RenderYAML dumps the effective registry, for startup logging.
func (s Snapshot) RenderYAML() string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return ""
	}
	return string(out)
}
