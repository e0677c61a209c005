package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheuskafuri/jobradar/internal/score"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected at least one default source")
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults do not validate: %v", err)
	}
	if cfg.AlertThreshold != 0.9 || cfg.HighScoreThreshold != 0.7 {
		t.Errorf("thresholds = %.2f/%.2f, want 0.90/0.70", cfg.AlertThreshold, cfg.HighScoreThreshold)
	}
	if cfg.Weights() != score.DefaultWeights() {
		t.Errorf("default scoring = %+v, want %+v", cfg.Weights(), score.DefaultWeights())
	}
}

func TestRefreshDuration(t *testing.T) {
	cfg := &Config{RefreshInterval: "30m"}
	d := cfg.RefreshDuration()
	if d.Minutes() != 30 {
		t.Errorf("expected 30m, got %v", d)
	}

	cfg.RefreshInterval = "invalid"
	d = cfg.RefreshDuration()
	if d.Hours() != 12 {
		t.Errorf("expected 12h default for invalid interval, got %v", d)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"90d", 90 * 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
		{"720h", 30 * 24 * time.Hour},
		{"45m", 45 * time.Minute},
		{"", time.Hour},
		{"invalid", time.Hour},
		{"-5m", time.Hour},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.input, time.Hour); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGhostDetectorFromConfig(t *testing.T) {
	cfg := &Config{Ghost: GhostConfig{StaleAfter: "14d", RepostThreshold: 4}}
	d := cfg.GhostDetector()
	if d.StaleAfter != 14*24*time.Hour {
		t.Errorf("stale after = %v", d.StaleAfter)
	}
	if d.RepostThreshold != 4 {
		t.Errorf("repost threshold = %d", d.RepostThreshold)
	}

	d = (&Config{}).GhostDetector()
	if d != score.DefaultGhostDetector() {
		t.Errorf("empty ghost config = %+v, want defaults", d)
	}
}

func TestRetryConfig(t *testing.T) {
	if got := (&Config{Retry: "aggressive"}).RetryConfig(); got.MaxAttempts != 2 {
		t.Errorf("aggressive attempts = %d, want 2", got.MaxAttempts)
	}
	if got := (&Config{}).RetryConfig(); got.MaxAttempts != 3 {
		t.Errorf("default attempts = %d, want 3", got.MaxAttempts)
	}
}

func TestEnabledSources(t *testing.T) {
	cfg := &Config{
		Sources: []Source{
			{Name: "A", Enabled: true},
			{Name: "B", Enabled: false},
			{Name: "C", Enabled: true},
		},
	}
	enabled := cfg.EnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", len(enabled))
	}
	if enabled[0].Name != "A" || enabled[1].Name != "C" {
		t.Errorf("unexpected enabled sources: %v", enabled)
	}
	names := cfg.SourceNames()
	if len(names) != 2 || names[0] != "A" || names[1] != "C" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `refresh_interval: 4h
alert_threshold: 0.8
preferences:
  skills: [rust]
  remote_only: false
sources:
  - name: Test
    type: rss
    url: https://example.com/feed
    enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != "4h" {
		t.Errorf("expected 4h, got %s", cfg.RefreshInterval)
	}
	if cfg.AlertThreshold != 0.8 {
		t.Errorf("alert threshold = %.2f, want 0.80", cfg.AlertThreshold)
	}
	// Keys absent from the file keep their defaults.
	if cfg.HighScoreThreshold != 0.7 {
		t.Errorf("high score threshold = %.2f, want default 0.70", cfg.HighScoreThreshold)
	}
	if len(cfg.Preferences.Skills) != 1 || cfg.Preferences.Skills[0] != "rust" {
		t.Errorf("skills = %v", cfg.Preferences.Skills)
	}
	if cfg.Sources[0].Name != "Test" {
		t.Errorf("expected first source name Test, got %s", cfg.Sources[0].Name)
	}
	if len(cfg.Sources) <= 1 {
		t.Errorf("expected default sources to be merged, got %d total", len(cfg.Sources))
	}
}

func TestLoadRejectsInvalidWeights(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `scoring:
  skills: 0.9
  salary: 0.25
  location: 0.20
  company: 0.10
  recency: 0.05
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	_, err := Load(cfgPath)
	if !errors.Is(err, score.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected default sources when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("defaults not written on first run: %v", err)
	}
}

func TestMergeDefaultSources(t *testing.T) {
	cfg := &Config{
		Sources: []Source{
			{Name: "Existing", Type: "rss", URL: "https://example.com/feed", Enabled: true},
			{Name: "Shared", Type: "rss", URL: "https://old.com/feed", Enabled: false},
		},
	}
	defaults := &Config{
		Sources: []Source{
			{Name: "Shared", Type: "atom", URL: "https://new.com/feed", Enabled: true},
			{Name: "NewSource", Type: "rss", URL: "https://new-source.com/feed", Enabled: true},
		},
	}
	mergeDefaultSources(cfg, defaults)

	if len(cfg.Sources) != 3 {
		t.Fatalf("expected 3 sources after merge, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Name != "Existing" {
		t.Errorf("expected first source Existing, got %s", cfg.Sources[0].Name)
	}
	if cfg.Sources[1].URL != "https://new.com/feed" || cfg.Sources[1].Type != "atom" {
		t.Errorf("shared source not refreshed: %+v", cfg.Sources[1])
	}
	if cfg.Sources[1].Enabled {
		t.Error("user's enabled flag should win")
	}
	if cfg.Sources[2].Name != "NewSource" {
		t.Errorf("expected NewSource appended, got %s", cfg.Sources[2].Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing name", Config{Sources: []Source{{Type: "rss", URL: "https://example.com"}}}, true},
		{"missing url", Config{Sources: []Source{{Name: "T", Type: "rss"}}}, true},
		{"invalid type", Config{Sources: []Source{{Name: "T", Type: "json", URL: "https://example.com"}}}, true},
		{"file scheme", Config{Sources: []Source{{Name: "T", Type: "rss", URL: "file:///etc/passwd"}}}, true},
		{"duplicate name", Config{Sources: []Source{
			{Name: "T", Type: "rss", URL: "https://a.example"},
			{Name: "T", Type: "atom", URL: "https://b.example"},
		}}, true},
		{"https", Config{Sources: []Source{{Name: "T", Type: "rss", URL: "https://example.com/feed"}}}, false},
		{"http", Config{Sources: []Source{{Name: "T", Type: "atom", URL: "http://example.com/feed"}}}, false},
		{"adzuna without url", Config{Sources: []Source{{Name: "A", Type: "adzuna", Country: "gb"}}}, false},
		{"adzuna bad country", Config{Sources: []Source{{Name: "A", Type: "adzuna", Country: "usa"}}}, true},
		{"threshold above one", Config{AlertThreshold: 1.5}, true},
		{"unknown retry preset", Config{Retry: "reckless"}, true},
		{"negative concurrency", Config{Concurrency: -1}, true},
		{"bad schedule", Config{Schedule: "every tuesday"}, true},
		{"cron schedule", Config{Schedule: "0 */3 * * *"}, false},
		{"webhook ftp", Config{Notify: NotifyConfig{WebhookURL: "ftp://hooks.example"}}, true},
		{"webhook https", Config{Notify: NotifyConfig{WebhookURL: "https://hooks.example/x"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.cfg)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
