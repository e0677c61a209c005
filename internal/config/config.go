package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/jobradar/internal/match"
	"github.com/matheuskafuri/jobradar/internal/retry"
	"github.com/matheuskafuri/jobradar/internal/score"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "jobradar"

// Source types understood by the adapters.
const (
	TypeRSS    = "rss"
	TypeAtom   = "atom"
	TypeAdzuna = "adzuna"
)

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url,omitempty"`
	Enabled bool   `yaml:"enabled"`

	// Adzuna only.
	Country  string `yaml:"country,omitempty"`
	What     string `yaml:"what,omitempty"`
	Where    string `yaml:"where,omitempty"`
	MaxPages int    `yaml:"max_pages,omitempty"`
}

type Preferences struct {
	Skills             []string `yaml:"skills"`
	SalaryMin          int64    `yaml:"salary_min"`
	Locations          []string `yaml:"locations"`
	RemoteOnly         bool     `yaml:"remote_only"`
	PreferredCompanies []string `yaml:"preferred_companies"`
	BlockedCompanies   []string `yaml:"blocked_companies"`
	ResumeID           string   `yaml:"resume_id"`
}

type CacheConfig struct {
	Capacity  int    `yaml:"capacity"`
	Freshness string `yaml:"freshness"`
}

type GhostConfig struct {
	StaleAfter      string `yaml:"stale_after"`
	RepostThreshold int    `yaml:"repost_threshold"`
}

type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type Config struct {
	RefreshInterval    string         `yaml:"refresh_interval"`
	Schedule           string         `yaml:"schedule"`
	Retry              string         `yaml:"retry"`
	Concurrency        int            `yaml:"concurrency"`
	AlertThreshold     float64        `yaml:"alert_threshold"`
	HighScoreThreshold float64        `yaml:"high_score_threshold"`
	Preferences        Preferences    `yaml:"preferences"`
	Scoring            *score.Weights `yaml:"scoring,omitempty"`
	Cache              CacheConfig    `yaml:"cache"`
	Ghost              GhostConfig    `yaml:"ghost"`
	Notify             NotifyConfig   `yaml:"notify"`
	Sources            []Source       `yaml:"sources"`
}

func (c *Config) RefreshDuration() time.Duration {
	return parseDuration(c.RefreshInterval, 12*time.Hour)
}

// ScheduleSpec returns the cron spec for watch mode.
func (c *Config) ScheduleSpec() string {
	if strings.TrimSpace(c.Schedule) == "" {
		return "@every 2h"
	}
	return c.Schedule
}

// RetryConfig resolves the configured preset; validate has already
// rejected unknown names.
func (c *Config) RetryConfig() retry.Config {
	cfg, err := retry.Preset(c.Retry)
	if err != nil {
		return retry.Default()
	}
	return cfg
}

// Weights returns the configured weights, or the defaults when the file has
// no scoring section.
func (c *Config) Weights() score.Weights {
	if c.Scoring == nil {
		return score.DefaultWeights()
	}
	return *c.Scoring
}

func (c *Config) CacheFreshness() time.Duration {
	return parseDuration(c.Cache.Freshness, score.DefaultCacheFreshness)
}

func (c *Config) GhostDetector() score.GhostDetector {
	d := score.DefaultGhostDetector()
	d.StaleAfter = parseDuration(c.Ghost.StaleAfter, d.StaleAfter)
	if c.Ghost.RepostThreshold > 1 {
		d.RepostThreshold = c.Ghost.RepostThreshold
	}
	return d
}

func (c *Config) MatchPreferences() match.Preferences {
	p := c.Preferences
	return match.Preferences{
		Skills:             p.Skills,
		SalaryMin:          p.SalaryMin,
		Locations:          p.Locations,
		RemoteOnly:         p.RemoteOnly,
		PreferredCompanies: p.PreferredCompanies,
		BlockedCompanies:   p.BlockedCompanies,
	}
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// Credentials for API-backed sources. They never live in the YAML file.
type Credentials struct {
	AdzunaAppID  string
	AdzunaAppKey string
}

// LoadCredentials reads credentials from the environment after loading any
// .env files found in the working directory and the config directory.
// Variables already set in the environment win.
func LoadCredentials() Credentials {
	for _, p := range []string{".env", filepath.Join(xdg.ConfigHome, appName, ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
	return Credentials{
		AdzunaAppID:  os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey: os.Getenv("ADZUNA_APP_KEY"),
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DataPath() string {
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

// LogPath is where logs go while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, layered over the embedded defaults. A
// missing file is created from the defaults on first run.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultSources(cfg, defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDefaultSources appends default sources the user file lacks and
// refreshes the type and URL of ones it shares by name. The user's enabled
// flag always wins.
func mergeDefaultSources(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		index[s.Name] = i
	}
	for _, d := range defaults.Sources {
		i, ok := index[d.Name]
		if !ok {
			cfg.Sources = append(cfg.Sources, d)
			continue
		}
		cfg.Sources[i].Type = d.Type
		if d.URL != "" {
			cfg.Sources[i].URL = d.URL
		}
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{TypeRSS: true, TypeAtom: true, TypeAdzuna: true}
	seen := make(map[string]bool, len(cfg.Sources))
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom, adzuna)", s.Name, s.Type)
		}
		if s.Type == TypeAdzuna {
			if len(s.Country) != 2 {
				return fmt.Errorf("source %q: adzuna country must be a two-letter code, got %q", s.Name, s.Country)
			}
			if s.URL == "" {
				continue
			}
		} else if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
	}

	if cfg.Notify.WebhookURL != "" {
		u, err := url.Parse(cfg.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notify: webhook_url must be an http or https URL, got %q", cfg.Notify.WebhookURL)
		}
	}

	if cfg.Scoring != nil {
		if err := cfg.Scoring.Validate(); err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	}
	for name, v := range map[string]float64{
		"alert_threshold":      cfg.AlertThreshold,
		"high_score_threshold": cfg.HighScoreThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %.2f", name, v)
		}
	}
	if _, err := retry.Preset(cfg.Retry); err != nil {
		return err
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.Cache.Capacity < 0 {
		return fmt.Errorf("cache capacity must not be negative, got %d", cfg.Cache.Capacity)
	}
	if _, err := cron.ParseStandard(cfg.ScheduleSpec()); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return nil
}

// parseDuration accepts Go durations plus an "Nd" day suffix.
func parseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
