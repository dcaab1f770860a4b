package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sportdash/internal/activity"
)

// withConfig points XDG_CONFIG_HOME at a temp dir and writes content as
// the config file when non-empty.
func withConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("STRAVA_CLIENT_ID", "")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("STRAVA_REFRESH_TOKEN", "")

	if content == "" {
		return tempDir
	}
	dir := filepath.Join(tempDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return tempDir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.Theme.Primary == "" {
		t.Error("Theme.Primary should have a default value")
	}
	if cfg.Leaderboards.TopN != 3 {
		t.Errorf("Leaderboards.TopN = %d, want 3", cfg.Leaderboards.TopN)
	}
	if cfg.Goals["running"] != 350 {
		t.Errorf("Goals[running] = %v, want 350", cfg.Goals["running"])
	}
	if cfg.Strava.PerPage != 30 {
		t.Errorf("Strava.PerPage = %d, want 30", cfg.Strava.PerPage)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	withConfig(t, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.Primary != "#FC4C02" {
		t.Errorf("Theme.Primary = %q, want #FC4C02", cfg.Theme.Primary)
	}
	if cfg.WeekStart != "monday" {
		t.Errorf("WeekStart = %q, want monday", cfg.WeekStart)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	withConfig(t, `
data_dir: /custom/data
timezone: Europe/Amsterdam
week_start: sunday
leaderboards:
  top_n: 5
strava:
  client_id: "123"
  per_page: 100
theme:
  primary: "#FF0000"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q, want /custom/data", cfg.DataDir)
	}
	if cfg.Timezone != "Europe/Amsterdam" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Leaderboards.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Leaderboards.TopN)
	}
	if cfg.Leaderboards.MinSpeedDistanceKm != 1 {
		t.Errorf("MinSpeedDistanceKm = %v, want default 1", cfg.Leaderboards.MinSpeedDistanceKm)
	}
	if cfg.Strava.ClientID != "123" || cfg.Strava.PerPage != 100 {
		t.Errorf("Strava = %+v", cfg.Strava)
	}
	if cfg.Strava.TokenURL == "" {
		t.Error("Strava.TokenURL default was lost")
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("Theme.Primary = %q, want #FF0000", cfg.Theme.Primary)
	}
	// Not set in file, keeps default.
	if cfg.Theme.Accent != "#10B981" {
		t.Errorf("Theme.Accent = %q, want default", cfg.Theme.Accent)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	withConfig(t, "goals: [unclosed")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_GoalsReplaceDefaults(t *testing.T) {
	withConfig(t, `
goals:
  walking: 500
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Goals) != 1 || cfg.Goals["walking"] != 500 {
		t.Errorf("Goals = %v, want only walking", cfg.Goals)
	}
}

func TestLoad_MissingBoolKeysDoesNotClobberDefaults(t *testing.T) {
	withConfig(t, `
sync:
  enabled: true
ux:
  narrow_layout_threshold: 100
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Sync.Enabled {
		t.Error("Sync.Enabled should be true")
	}
	if !cfg.Sync.AutoCommit {
		t.Error("Sync.AutoCommit default should be kept")
	}
	if !cfg.UX.ShowPace {
		t.Error("UX.ShowPace default should be kept")
	}
	if !cfg.Notifications.OnFetch {
		t.Error("Notifications.OnFetch default should be kept")
	}
	if cfg.UX.NarrowLayoutThreshold != 100 {
		t.Errorf("NarrowLayoutThreshold = %d, want 100", cfg.UX.NarrowLayoutThreshold)
	}
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	withConfig(t, `
sync:
  auto_commit: false
ux:
  show_pace: false
notifications:
  on_fetch: false
leaderboards:
  min_speed_distance_km: 0
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sync.AutoCommit {
		t.Error("Sync.AutoCommit should be false")
	}
	if cfg.UX.ShowPace {
		t.Error("UX.ShowPace should be false")
	}
	if cfg.Notifications.OnFetch {
		t.Error("Notifications.OnFetch should be false")
	}
	if cfg.Leaderboards.MinSpeedDistanceKm != 0 {
		t.Errorf("MinSpeedDistanceKm = %v, want 0", cfg.Leaderboards.MinSpeedDistanceKm)
	}
}

func TestLoad_EnvOverridesStrava(t *testing.T) {
	withConfig(t, `
strava:
  client_id: from-file
`)
	t.Setenv("STRAVA_CLIENT_ID", "from-env")
	t.Setenv("STRAVA_CLIENT_SECRET", "secret")
	t.Setenv("STRAVA_REFRESH_TOKEN", "refresh")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Strava.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want from-env", cfg.Strava.ClientID)
	}
	if !cfg.Strava.HasCredentials() {
		t.Error("HasCredentials() = false")
	}
}

func TestGetDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		dataDir string
		want    string
	}{
		{"/absolute/path", "/absolute/path"},
		{"~/sport", filepath.Join(home, "sport")},
		{"~", home},
		{"", defaultDataDir()},
	}
	for _, tt := range tests {
		cfg := &Config{DataDir: tt.dataDir}
		if got := cfg.GetDataDir(); got != tt.want {
			t.Errorf("GetDataDir(%q) = %q, want %q", tt.dataDir, got, tt.want)
		}
	}
}

func TestLogFile(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if got, want := cfg.LogFile(), filepath.Join("/data", "logs", "sportdash.log"); got != want {
		t.Errorf("LogFile() = %q, want %q", got, want)
	}
	cfg.Logging.File = "/var/log/sd.log"
	if got := cfg.LogFile(); got != "/var/log/sd.log" {
		t.Errorf("LogFile() = %q", got)
	}
}

func TestWeekStartDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"", time.Monday, false},
		{"monday", time.Monday, false},
		{"Sunday", time.Sunday, false},
		{"sat", time.Saturday, false},
		{"someday", time.Monday, true},
	}
	for _, tt := range tests {
		cfg := &Config{WeekStart: tt.in}
		got, err := cfg.WeekStartDay()
		if (err != nil) != tt.wantErr {
			t.Errorf("WeekStartDay(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("WeekStartDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v; want Local", loc, err)
	}

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestAnalyticsOptions(t *testing.T) {
	cfg := Default()
	cfg.WeekStart = "sunday"
	cfg.Leaderboards.TopN = 5
	cfg.Leaderboards.SpeedBands = map[string]SpeedBandConfig{
		"running": {Min: 5, Max: 22},
	}

	opts, err := cfg.AnalyticsOptions()
	if err != nil {
		t.Fatalf("AnalyticsOptions() error = %v", err)
	}
	if opts.TopN != 5 || opts.WeekStart != time.Sunday {
		t.Errorf("opts = %+v", opts)
	}
	if b := opts.SpeedBands[activity.CategoryRunning]; b.Min != 5 || b.Max != 22 {
		t.Errorf("running band = %+v", b)
	}
	if b := opts.SpeedBands[activity.CategoryCycling]; b.Max != 70 {
		t.Errorf("cycling band should keep default, got %+v", b)
	}
	if opts.Goals[activity.CategoryCycling] != 3000 {
		t.Errorf("cycling goal = %v", opts.Goals[activity.CategoryCycling])
	}

	cfg.Goals = map[string]float64{"yoga": 10}
	if _, err := cfg.AnalyticsOptions(); err == nil {
		t.Error("expected error for unknown goal category")
	}

	cfg.Goals = nil
	cfg.Leaderboards.SpeedBands = map[string]SpeedBandConfig{"running": {Min: 10, Max: 5}}
	if _, err := cfg.AnalyticsOptions(); err == nil {
		t.Error("expected error for inverted band")
	}
}

func TestNormalizerOptions(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "UTC"
	cfg.Normalize.SpeedUnit = "kmh"

	opts, err := cfg.NormalizerOptions()
	if err != nil {
		t.Fatalf("NormalizerOptions() error = %v", err)
	}
	if opts.SpeedUnit != activity.SpeedUnitKMH {
		t.Errorf("SpeedUnit = %q", opts.SpeedUnit)
	}
	if opts.Location.String() != "UTC" {
		t.Errorf("Location = %v", opts.Location)
	}

	cfg.Normalize.SpeedUnit = "furlongs"
	if _, err := cfg.NormalizerOptions(); err == nil {
		t.Error("expected error for unknown speed unit")
	}
}

func TestCategoryRules(t *testing.T) {
	cfg := Default()
	cfg.Categories.Rules = []CategoryRuleConfig{
		{Name: "padel", Keywords: []string{"padel"}, Category: "racquet"},
		{Keywords: []string{"bootcamp"}, Category: "strength"},
	}

	rules, err := cfg.CategoryRules()
	if err != nil {
		t.Fatalf("CategoryRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if rules[1].Name != "custom-2" {
		t.Errorf("rules[1].Name = %q, want custom-2", rules[1].Name)
	}

	c := activity.NewCategorizer(rules...)
	got := c.Categorize(activity.Record{RawType: "Workout", RawName: "Padel met Jan"})
	if got != activity.CategoryRacquet {
		t.Errorf("Categorize() = %q, want racquet", got)
	}

	cfg.Categories.Rules = []CategoryRuleConfig{{Name: "x", Category: "running"}}
	if _, err := cfg.CategoryRules(); err == nil {
		t.Error("expected error for rule without keywords")
	}
}

func TestSave(t *testing.T) {
	tempDir := withConfig(t, "")

	cfg := Default()
	cfg.Theme.Primary = "#123456"
	cfg.Sync.Enabled = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, appName, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Theme.Primary != "#123456" {
		t.Errorf("Theme.Primary = %q", loaded.Theme.Primary)
	}
	if !loaded.Sync.Enabled {
		t.Error("Sync.Enabled was not persisted")
	}
}

func TestSave_KeepsEnvCredentialsOutOfFile(t *testing.T) {
	tempDir := withConfig(t, `
strava:
  client_id: from-file
  refresh_token: file-token
`)
	t.Setenv(EnvClientSecret, "s3cr3t-from-env")
	t.Setenv(EnvRefreshToken, "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.FromEnv(EnvRefreshToken) || !cfg.FromEnv(EnvClientSecret) {
		t.Error("FromEnv() = false for variables that were set")
	}
	if cfg.FromEnv(EnvClientID) {
		t.Error("FromEnv(client id) = true, want false")
	}

	cfg.Strava.RefreshToken = "rotated-token"
	cfg.Theme.Primary = "#123456"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, appName, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cr3t-from-env") {
		t.Errorf("environment secret written to config:\n%s", data)
	}
	if strings.Contains(string(data), "env-token") || strings.Contains(string(data), "rotated-token") {
		t.Errorf("environment refresh token written to config:\n%s", data)
	}

	t.Setenv(EnvClientSecret, "")
	t.Setenv(EnvRefreshToken, "")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Strava.RefreshToken != "file-token" {
		t.Errorf("RefreshToken = %q, want file-token", loaded.Strava.RefreshToken)
	}
	if loaded.Strava.ClientSecret != "" {
		t.Errorf("ClientSecret = %q, want empty", loaded.Strava.ClientSecret)
	}
	if loaded.Theme.Primary != "#123456" {
		t.Errorf("Theme.Primary = %q", loaded.Theme.Primary)
	}
}

func TestSave_PersistsFileRefreshToken(t *testing.T) {
	withConfig(t, `
strava:
  refresh_token: old-token
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Strava.RefreshToken = "rotated-token"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Strava.RefreshToken != "rotated-token" {
		t.Errorf("RefreshToken = %q, want rotated-token", loaded.Strava.RefreshToken)
	}
}
