package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Tick is one row of the pipe-delimited price feed. Optional columns
// stay nil when the file reports "N/A"; a missing reading is not a
// zero price.
type Tick struct {
	Time       time.Time
	Strike     *float64
	PriceProxy *float64
	GrowingCP  *float64
	Gap        *float64
	SDMax      *float64
	Secs       *int
	Feeds      *float64
}

// Source yields the price history around a contract expiry.
type Source interface {
	// Window returns ticks in [expiry-lookback, expiry].
	Window(ctx context.Context, asset string, expiry time.Time, lookback time.Duration) ([]Tick, error)
	// SettlementStrike is the first valid strike after expiry: the
	// next contract's strike, which is the price the expired contract
	// settled at.
	SettlementStrike(ctx context.Context, asset string, expiry time.Time) (*float64, error)
}

// CSVSource reads local data_feed5_*.txt files, cached per asset.
type CSVSource struct {
	dir      string
	feedFile func(asset string) (string, bool)

	mu    sync.Mutex
	cache map[string][]Tick
}

func NewCSVSource(dir string, feedFile func(asset string) (string, bool)) *CSVSource {
	return &CSVSource{dir: dir, feedFile: feedFile, cache: map[string][]Tick{}}
}

func (s *CSVSource) Window(_ context.Context, asset string, expiry time.Time, lookback time.Duration) ([]Tick, error) {
	ticks, err := s.load(asset)
	if err != nil {
		return nil, err
	}
	start := expiry.Add(-lookback)
	var out []Tick
	for _, t := range ticks {
		if !t.Time.Before(start) && !t.Time.After(expiry) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *CSVSource) SettlementStrike(_ context.Context, asset string, expiry time.Time) (*float64, error) {
	ticks, err := s.load(asset)
	if err != nil {
		return nil, err
	}
	for _, t := range ticks {
		if t.Time.After(expiry) && t.Strike != nil {
			v := *t.Strike
			return &v, nil
		}
	}
	return nil, nil
}

func (s *CSVSource) load(asset string) ([]Tick, error) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticks, ok := s.cache[asset]; ok {
		return ticks, nil
	}
	name, ok := s.feedFile(asset)
	if !ok {
		return nil, fmt.Errorf("no feed file registered for asset %s", asset)
	}
	ticks, err := LoadFeedFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	s.cache[asset] = ticks
	return ticks, nil
}

// LoadFeedFile parses one pipe-delimited feed file. Comment lines
// (leading "#"), separator lines and blanks are skipped; the first
// remaining line is the header.
func LoadFeedFile(path string) ([]Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed file not found: %w", err)
	}
	defer f.Close()

	var (
		header []string
		cols   map[string]int
		ticks  []Tick
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		fields := splitPipe(line)
		if header == nil {
			header = fields
			cols = make(map[string]int, len(fields))
			for i, name := range fields {
				cols[name] = i
			}
			continue
		}
		if len(fields) < len(header) {
			continue
		}
		tick, err := parseTick(fields, cols)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		ticks = append(ticks, tick)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ticks, nil
}

func splitPipe(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseTick(fields []string, cols map[string]int) (Tick, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", get("Date")+" "+get("Time"), time.UTC)
	if err != nil {
		return Tick{}, fmt.Errorf("bad timestamp %q %q: %w", get("Date"), get("Time"), err)
	}

	tick := Tick{Time: ts}
	if tick.Strike, err = parseDollar(get("Strike")); err != nil {
		return Tick{}, err
	}
	if tick.PriceProxy, err = parseDollar(get("PriceProxy")); err != nil {
		return Tick{}, err
	}
	if tick.GrowingCP, err = parseDollar(get("GrowingCP")); err != nil {
		return Tick{}, err
	}
	if tick.Gap, err = parseDollar(get("Gap")); err != nil {
		return Tick{}, err
	}
	if tick.SDMax, err = parseDollar(get("SD_max")); err != nil {
		return Tick{}, err
	}
	if secs := get("Secs"); secs != "" && secs != "N/A" {
		if n, err := strconv.Atoi(secs); err == nil {
			tick.Secs = &n
		}
	}
	if tick.Feeds, err = parseFeeds(get("Feeds")); err != nil {
		return Tick{}, err
	}
	return tick, nil
}

// parseDollar converts "$67,416.28", "$-34.71" or "N/A" to a float,
// with "N/A" (and empty) meaning absent.
func parseDollar(val string) (*float64, error) {
	val = strings.TrimSpace(val)
	if val == "" || val == "N/A" {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(val, "$", ""), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed dollar value %q", val)
	}
	return &f, nil
}

var (
	mixedFractionRe = regexp.MustCompile(`^(\d+)\+(\d+)/(\d+)$`)
	plainFractionRe = regexp.MustCompile(`^(\d+)/(\d+)$`)
)

// parseFeeds converts the feed-count column: "3+1/4" is 3.25, "4/4"
// is 1.0, plain numbers pass through.
func parseFeeds(val string) (*float64, error) {
	val = strings.TrimSpace(val)
	if val == "" || val == "N/A" {
		return nil, nil
	}
	if m := mixedFractionRe.FindStringSubmatch(val); m != nil {
		whole, _ := strconv.Atoi(m[1])
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return nil, fmt.Errorf("malformed feeds value %q", val)
		}
		f := float64(whole) + float64(num)/float64(den)
		return &f, nil
	}
	if m := plainFractionRe.FindStringSubmatch(val); m != nil {
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den == 0 {
			return nil, fmt.Errorf("malformed feeds value %q", val)
		}
		f := float64(num) / float64(den)
		return &f, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed feeds value %q", val)
	}
	return &f, nil
}
