// Package config handles configuration loading and defaults for sportdash.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/sportdash/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/fsutil"

	"gopkg.in/yaml.v3"
)

const appName = "sportdash"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.sportdash)
	DataDir string `yaml:"data_dir,omitempty"`

	// Timezone is the IANA zone activity dates are read in ("" = local)
	Timezone string `yaml:"timezone,omitempty"`

	// WeekStart anchors week streaks (default: monday)
	WeekStart string `yaml:"week_start,omitempty"`

	// Goals maps a category to a yearly distance goal in km
	Goals map[string]float64 `yaml:"goals,omitempty"`

	Leaderboards  LeaderboardConfig  `yaml:"leaderboards,omitempty"`
	Normalize     NormalizeConfig    `yaml:"normalize,omitempty"`
	Categories    CategoriesConfig   `yaml:"categories,omitempty"`
	Strava        StravaConfig       `yaml:"strava,omitempty"`
	Logging       LoggingConfig      `yaml:"logging,omitempty"`
	Report        ReportConfig       `yaml:"report,omitempty"`
	Theme         ThemeConfig        `yaml:"theme,omitempty"`
	Keys          KeysConfig         `yaml:"keys,omitempty"`
	UX            UXConfig           `yaml:"ux,omitempty"`
	Sync          SyncConfig         `yaml:"sync,omitempty"`
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	// fileValues holds the file value of each credential an environment
	// variable replaced, keyed by variable name. Save writes these back.
	fileValues map[string]string
}

// Environment variables that override Strava credentials.
const (
	EnvClientID     = "STRAVA_CLIENT_ID"
	EnvClientSecret = "STRAVA_CLIENT_SECRET"
	EnvRefreshToken = "STRAVA_REFRESH_TOKEN"
)

// SpeedBandConfig is a plausible speed range in km/h.
type SpeedBandConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// LeaderboardConfig tunes the top-N lists.
type LeaderboardConfig struct {
	TopN               int                        `yaml:"top_n,omitempty"`                 // default: 3
	MinSpeedDistanceKm float64                    `yaml:"min_speed_distance_km,omitempty"` // default: 1
	SpeedBands         map[string]SpeedBandConfig `yaml:"speed_bands,omitempty"`
}

// NormalizeConfig controls how raw rows are read.
type NormalizeConfig struct {
	// SpeedUnit is auto, mps or kmh. Fetched rows carry m/s, so kmh only
	// suits exports that store km/h.
	SpeedUnit string `yaml:"speed_unit,omitempty"`

	// MPSThreshold: in auto mode, unverifiable speeds below this are m/s
	MPSThreshold float64 `yaml:"mps_threshold,omitempty"`
}

// CategoryRuleConfig is a user rule evaluated before the built-in ones.
type CategoryRuleConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
}

// CategoriesConfig holds extra categorization rules.
type CategoriesConfig struct {
	Rules []CategoryRuleConfig `yaml:"rules,omitempty"`
}

// StravaConfig configures the activity fetcher.
type StravaConfig struct {
	ClientID       string `yaml:"client_id,omitempty"`
	ClientSecret   string `yaml:"client_secret,omitempty"`
	RefreshToken   string `yaml:"refresh_token,omitempty"`
	PerPage        int    `yaml:"per_page,omitempty"` // default: 30
	Pages          int    `yaml:"pages,omitempty"`    // default: 1
	BaseURL        string `yaml:"base_url,omitempty"`
	TokenURL       string `yaml:"token_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // default: 30
}

// HasCredentials reports whether all OAuth values are set.
func (s StravaConfig) HasCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.RefreshToken != ""
}

// Timeout returns the HTTP timeout.
func (s StravaConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LoggingConfig configures logrus and file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"` // default: info
	File       string `yaml:"file,omitempty"`  // default: <data_dir>/logs/sportdash.log
	JSON       bool   `yaml:"json,omitempty"`
	Stdout     bool   `yaml:"stdout,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"` // default: 10
	MaxBackups int    `yaml:"max_backups,omitempty"` // default: 3
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// ReportConfig sets defaults for the report command.
type ReportConfig struct {
	Format string `yaml:"format,omitempty"` // markdown or json
	Output string `yaml:"output,omitempty"` // file path, "" for stdout
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`

	// OnFetch notifies after a fetch that added activities
	OnFetch bool `yaml:"on_fetch,omitempty"`

	Sound bool `yaml:"sound,omitempty"`
}

// SyncConfig defines git synchronization settings.
type SyncConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	AutoCommit    bool   `yaml:"auto_commit,omitempty"`
	AutoPush      bool   `yaml:"auto_push,omitempty"`
	PullOnStartup bool   `yaml:"pull_on_startup,omitempty"`
	CommitMessage string `yaml:"commit_message,omitempty"` // "auto" for generated messages
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	Primary    string `yaml:"primary,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Muted      string `yaml:"muted,omitempty"`
	Positive   string `yaml:"positive,omitempty"`
	Negative   string `yaml:"negative,omitempty"`
	Background string `yaml:"background,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"
	PrevPane string `yaml:"prev_pane,omitempty"` // default: "shift+tab"
	Pane1    string `yaml:"pane_1,omitempty"`    // default: "1"
	Pane2    string `yaml:"pane_2,omitempty"`    // default: "2"
	Pane3    string `yaml:"pane_3,omitempty"`    // default: "3"
	Pane4    string `yaml:"pane_4,omitempty"`    // default: "4"

	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g"
	Bottom string `yaml:"bottom,omitempty"` // default: "G"

	PrevYear string `yaml:"prev_year,omitempty"` // default: "h,left"
	NextYear string `yaml:"next_year,omitempty"` // default: "l,right"
	Refresh  string `yaml:"refresh,omitempty"`   // default: "r"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// NarrowLayoutThreshold is the terminal width below which panes stack
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80

	// ShowPace shows running speed as min/km
	ShowPace bool `yaml:"show_pace,omitempty"` // default: true
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:   defaultDataDir(),
		WeekStart: "monday",
		Goals: map[string]float64{
			string(activity.CategoryCycling):       3000,
			string(activity.CategoryIndoorCycling): 3000,
			string(activity.CategoryRunning):       350,
		},
		Leaderboards: LeaderboardConfig{
			TopN:               3,
			MinSpeedDistanceKm: 1,
		},
		Normalize: NormalizeConfig{
			SpeedUnit:    string(activity.SpeedUnitAuto),
			MPSThreshold: activity.DefaultMPSThreshold,
		},
		Strava: StravaConfig{
			PerPage:        30,
			Pages:          1,
			BaseURL:        "https://www.strava.com/api/v3",
			TokenURL:       "https://www.strava.com/oauth/token",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Report: ReportConfig{
			Format: "markdown",
		},
		Theme: ThemeConfig{
			Primary:  "#FC4C02", // Orange
			Accent:   "#10B981", // Emerald
			Muted:    "#6B7280", // Gray
			Positive: "#22C55E",
			Negative: "#EF4444",
		},
		UX: UXConfig{
			NarrowLayoutThreshold: 80,
			ShowPace:              true,
		},
		Sync: SyncConfig{
			AutoCommit:    true,
			CommitMessage: "auto",
		},
		Notifications: NotificationConfig{
			OnFetch: true,
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Path returns the path to the config file, or "" when it cannot be resolved.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults, then applies
// environment overrides for Strava credentials.
func Load() (*Config, error) {
	cfg := Default()

	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.MergeYAML(data); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// MergeYAML merges a YAML document over c. Booleans, maps and slices are
// only applied when present in the document.
func (c *Config) MergeYAML(data []byte) error {
	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return err
	}
	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc)
	c.mergeFromYAML(&userCfg, &doc)
	return nil
}

func (c *Config) applyEnv() {
	c.fileValues = make(map[string]string)
	c.overrideFromEnv(EnvClientID, &c.Strava.ClientID)
	c.overrideFromEnv(EnvClientSecret, &c.Strava.ClientSecret)
	c.overrideFromEnv(EnvRefreshToken, &c.Strava.RefreshToken)
}

func (c *Config) overrideFromEnv(key string, dst *string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	c.fileValues[key] = *dst
	*dst = v
}

// FromEnv reports whether the environment variable key supplied a value.
func (c *Config) FromEnv(key string) bool {
	_, ok := c.fileValues[key]
	return ok
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// mergeNonEmpty applies non-empty values from other to c.
// Booleans, maps and slices are left to the presence-aware pass.
func (c *Config) mergeNonEmpty(other *Config) {
	setString(&c.DataDir, other.DataDir)
	setString(&c.Timezone, other.Timezone)
	setString(&c.WeekStart, other.WeekStart)

	setInt(&c.Leaderboards.TopN, other.Leaderboards.TopN)
	setFloat(&c.Leaderboards.MinSpeedDistanceKm, other.Leaderboards.MinSpeedDistanceKm)

	setString(&c.Normalize.SpeedUnit, other.Normalize.SpeedUnit)
	setFloat(&c.Normalize.MPSThreshold, other.Normalize.MPSThreshold)

	setString(&c.Strava.ClientID, other.Strava.ClientID)
	setString(&c.Strava.ClientSecret, other.Strava.ClientSecret)
	setString(&c.Strava.RefreshToken, other.Strava.RefreshToken)
	setInt(&c.Strava.PerPage, other.Strava.PerPage)
	setInt(&c.Strava.Pages, other.Strava.Pages)
	setString(&c.Strava.BaseURL, other.Strava.BaseURL)
	setString(&c.Strava.TokenURL, other.Strava.TokenURL)
	setInt(&c.Strava.TimeoutSeconds, other.Strava.TimeoutSeconds)

	setString(&c.Logging.Level, other.Logging.Level)
	setString(&c.Logging.File, other.Logging.File)
	setInt(&c.Logging.MaxSizeMB, other.Logging.MaxSizeMB)
	setInt(&c.Logging.MaxBackups, other.Logging.MaxBackups)
	setInt(&c.Logging.MaxAgeDays, other.Logging.MaxAgeDays)

	setString(&c.Report.Format, other.Report.Format)
	setString(&c.Report.Output, other.Report.Output)

	setString(&c.Theme.Primary, other.Theme.Primary)
	setString(&c.Theme.Accent, other.Theme.Accent)
	setString(&c.Theme.Muted, other.Theme.Muted)
	setString(&c.Theme.Positive, other.Theme.Positive)
	setString(&c.Theme.Negative, other.Theme.Negative)
	setString(&c.Theme.Background, other.Theme.Background)
	setString(&c.Theme.Text, other.Theme.Text)

	setString(&c.Keys.Quit, other.Keys.Quit)
	setString(&c.Keys.Help, other.Keys.Help)
	setString(&c.Keys.NextPane, other.Keys.NextPane)
	setString(&c.Keys.PrevPane, other.Keys.PrevPane)
	setString(&c.Keys.Pane1, other.Keys.Pane1)
	setString(&c.Keys.Pane2, other.Keys.Pane2)
	setString(&c.Keys.Pane3, other.Keys.Pane3)
	setString(&c.Keys.Pane4, other.Keys.Pane4)
	setString(&c.Keys.Up, other.Keys.Up)
	setString(&c.Keys.Down, other.Keys.Down)
	setString(&c.Keys.Top, other.Keys.Top)
	setString(&c.Keys.Bottom, other.Keys.Bottom)
	setString(&c.Keys.PrevYear, other.Keys.PrevYear)
	setString(&c.Keys.NextYear, other.Keys.NextYear)
	setString(&c.Keys.Refresh, other.Keys.Refresh)

	setInt(&c.UX.NarrowLayoutThreshold, other.UX.NarrowLayoutThreshold)
	setString(&c.Sync.CommitMessage, other.Sync.CommitMessage)
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a node tree presence is unknown; keep the conservative merge.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "goals") {
		c.Goals = other.Goals
	}
	if yamlHasPath(doc, "leaderboards", "min_speed_distance_km") {
		c.Leaderboards.MinSpeedDistanceKm = other.Leaderboards.MinSpeedDistanceKm
	}
	if yamlHasPath(doc, "leaderboards", "speed_bands") {
		c.Leaderboards.SpeedBands = other.Leaderboards.SpeedBands
	}
	if yamlHasPath(doc, "categories", "rules") {
		c.Categories.Rules = other.Categories.Rules
	}

	if yamlHasPath(doc, "logging", "json") {
		c.Logging.JSON = other.Logging.JSON
	}
	if yamlHasPath(doc, "logging", "stdout") {
		c.Logging.Stdout = other.Logging.Stdout
	}

	if yamlHasPath(doc, "ux", "show_pace") {
		c.UX.ShowPace = other.UX.ShowPace
	}

	if yamlHasPath(doc, "sync", "enabled") {
		c.Sync.Enabled = other.Sync.Enabled
	}
	if yamlHasPath(doc, "sync", "auto_commit") {
		c.Sync.AutoCommit = other.Sync.AutoCommit
	}
	if yamlHasPath(doc, "sync", "auto_push") {
		c.Sync.AutoPush = other.Sync.AutoPush
	}
	if yamlHasPath(doc, "sync", "pull_on_startup") {
		c.Sync.PullOnStartup = other.Sync.PullOnStartup
	}

	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "notifications", "on_fetch") {
		c.Notifications.OnFetch = other.Notifications.OnFetch
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk. Credentials taken from the
// environment are written with their file values.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}
	out := *c
	restore := func(key string, dst *string) {
		if v, ok := c.fileValues[key]; ok {
			*dst = v
		}
	}
	restore(EnvClientID, &out.Strava.ClientID)
	restore(EnvClientSecret, &out.Strava.ClientSecret)
	restore(EnvRefreshToken, &out.Strava.RefreshToken)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomicMkdir(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expandHome(c.DataDir)
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	return filepath.Join(c.GetDataDir(), "logs", appName+".log")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	trimmed := strings.TrimPrefix(p, "~/")
	trimmed = strings.TrimPrefix(trimmed, `~\`)
	return filepath.Join(home, trimmed)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay parses week_start.
func (c *Config) WeekStartDay() (time.Weekday, error) {
	if c.WeekStart == "" {
		return time.Monday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(c.WeekStart, d.String()) || strings.EqualFold(c.WeekStart, d.String()[:3]) {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid week_start %q", c.WeekStart)
}

// NormalizerOptions builds the record normalizer settings.
func (c *Config) NormalizerOptions() (activity.NormalizerOptions, error) {
	loc, err := c.Location()
	if err != nil {
		return activity.NormalizerOptions{}, err
	}
	unit, err := activity.ParseSpeedUnit(c.Normalize.SpeedUnit)
	if err != nil {
		return activity.NormalizerOptions{}, err
	}
	return activity.NormalizerOptions{
		Location:     loc,
		SpeedUnit:    unit,
		MPSThreshold: c.Normalize.MPSThreshold,
	}, nil
}

// CategoryRules converts configured rules, preserving their order.
func (c *Config) CategoryRules() ([]activity.Rule, error) {
	rules := make([]activity.Rule, 0, len(c.Categories.Rules))
	for i, r := range c.Categories.Rules {
		cat, err := activity.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("categories.rules[%d]: %w", i, err)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("categories.rules[%d]: no keywords", i)
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("custom-%d", i+1)
		}
		rules = append(rules, activity.KeywordRule(name, cat, r.Keywords...))
	}
	return rules, nil
}

// AnalyticsOptions builds the engine options: leaderboards, week anchor and goals.
func (c *Config) AnalyticsOptions() (analytics.Options, error) {
	opts := analytics.DefaultOptions()

	weekStart, err := c.WeekStartDay()
	if err != nil {
		return opts, err
	}
	opts.WeekStart = weekStart
	if c.Leaderboards.TopN > 0 {
		opts.TopN = c.Leaderboards.TopN
	}
	opts.MinSpeedDistanceKm = c.Leaderboards.MinSpeedDistanceKm

	for key, band := range c.Leaderboards.SpeedBands {
		cat, err := activity.ParseCategory(key)
		if err != nil {
			return opts, fmt.Errorf("leaderboards.speed_bands: %w", err)
		}
		if band.Max < band.Min {
			return opts, fmt.Errorf("leaderboards.speed_bands.%s: max below min", key)
		}
		opts.SpeedBands[cat] = analytics.SpeedBand{Min: band.Min, Max: band.Max}
	}

	for key, km := range c.Goals {
		cat, err := activity.ParseCategory(key)
		if err != nil {
			return opts, fmt.Errorf("goals: %w", err)
		}
		opts.Goals[cat] = km
	}
	return opts, nil
}
