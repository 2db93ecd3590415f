package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"ChannelGovernor/internal/domain"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "CHANNEL_GOVERNOR_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	webhookURLEnv      = "GOVERNANCE_WEBHOOK_URL"
	analyticsAPIKeyEnv = "ANALYTICS_API_KEY"
	catalogAPIKeyEnv   = "AFFILIATE_API_KEY"
	policyPathEnv      = "GOVERNANCE_POLICY_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Policy        PolicyConfig       `yaml:"policy"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Governance    GovernanceConfig   `yaml:"governance"`
	Trends        TrendsConfig       `yaml:"trends"`
	Tools         ToolsConfig        `yaml:"tools"`
	Analytics     AnalyticsConfig    `yaml:"analytics"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PolicyConfig points at the sandbox policy document.
type PolicyConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig carries the weight vector and classification thresholds.
// Weights are decoded loosely so quoted YAML numbers still parse; anything
// non-numeric fails closed at load time.
type ScoringConfig struct {
	Weights      map[string]any   `yaml:"weights"`
	Thresholds   ThresholdsConfig `yaml:"thresholds"`
	GrowthMetric string           `yaml:"growthMetric"`

	weights map[string]float64 `yaml:"-"`
}

// WeightValues returns the numeric weight vector parsed during validation.
func (s ScoringConfig) WeightValues() map[string]float64 {
	return s.weights
}

// ThresholdsConfig holds the promote/retire cut-offs; either may be absent.
type ThresholdsConfig struct {
	Promote *float64 `yaml:"promote"`
	Retire  *float64 `yaml:"retire"`
}

// GovernanceConfig controls the cycle engine.
type GovernanceConfig struct {
	AutoActions   bool   `yaml:"autoActions"`
	OverridesPath string `yaml:"overridesPath"`
	OutputDir     string `yaml:"outputDir"`
}

// TrendsConfig parameterizes the trend scanner.
type TrendsConfig struct {
	Seeds              []string      `yaml:"seeds"`
	RPMMultiplier      float64       `yaml:"rpmMultiplier"`
	TopN               int           `yaml:"topN"`
	MaxInFlight        int           `yaml:"maxInFlight"`
	CallTimeoutSeconds int           `yaml:"callTimeoutSeconds"`
	Sources            SourcesConfig `yaml:"sources"`
}

// CallTimeout resolves the per-call timeout duration.
func (t TrendsConfig) CallTimeout() time.Duration {
	if t.CallTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.CallTimeoutSeconds) * time.Second
}

// SourcesConfig enables and configures the individual trend sources.
type SourcesConfig struct {
	Primary        PrimarySourceConfig  `yaml:"primary"`
	ShortVideo     OptionalSourceConfig `yaml:"shortVideo"`
	Feed           OptionalSourceConfig `yaml:"feed"`
	KeywordPlanner OptionalSourceConfig `yaml:"keywordPlanner"`
	Catalog        CatalogSourceConfig  `yaml:"catalog"`
}

// PrimarySourceConfig describes the interest API queried per seed.
type PrimarySourceConfig struct {
	URL           string  `yaml:"url"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
}

// OptionalSourceConfig covers sources that only need an enable flag and URL.
type OptionalSourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// CatalogSourceConfig adds bearer auth for the affiliate catalog API.
type CatalogSourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"apiKey"`
}

// ToolsConfig lists monitored external tools for the health checker.
type ToolsConfig struct {
	CostThreshold float64      `yaml:"costThreshold"`
	List          []ToolConfig `yaml:"list"`
}

// ToolConfig describes one monitored tool endpoint.
type ToolConfig struct {
	Name        string  `yaml:"name"`
	PingURL     string  `yaml:"pingUrl"`
	ExpectedMS  int64   `yaml:"expectedMs"`
	CostPerCall float64 `yaml:"costPerCall"`
}

// AnalyticsConfig describes where the channel-metrics snapshot comes from:
// a local JSON file or an HTTP collaborator.
type AnalyticsConfig struct {
	SnapshotPath string `yaml:"snapshotPath"`
	URL          string `yaml:"url"`
	APIKey       string `yaml:"apiKey"`
}

// DatabaseConfig describes the optional Postgres trend archive.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig wires the messaging-webhook collaborator.
type WebhookConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// SchedulerConfig defines the optional in-process periodic driver. When
// disabled the binary runs a single cycle and exits (external scheduling).
type SchedulerConfig struct {
	Enabled       bool           `yaml:"enabled"`
	IntervalHours int            `yaml:"intervalHours"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Interval resolves the cycle period.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present), applies environment overrides
// and validates the result. Validation failures are fatal: the engine never
// starts from a contradictory document.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the invariants the engine depends on and parses the loose
// weight map. It returns a ConfigurationError on the first contradiction.
func (c *Config) Validate() error {
	weights := make(map[string]float64, len(c.Scoring.Weights))
	for metric, raw := range c.Scoring.Weights {
		value, err := cast.ToFloat64E(raw)
		if err != nil {
			return &domain.ConfigurationError{
				Field:  "scoring.weights." + metric,
				Reason: "not numeric",
			}
		}
		weights[metric] = value
	}
	c.Scoring.weights = weights

	th := c.Scoring.Thresholds
	if th.Promote != nil && th.Retire != nil && *th.Promote <= *th.Retire {
		return &domain.ConfigurationError{
			Field:  "scoring.thresholds",
			Reason: "promote threshold must be greater than retire threshold",
		}
	}

	if c.Trends.RPMMultiplier < 0 {
		return &domain.ConfigurationError{Field: "trends.rpmMultiplier", Reason: "must not be negative"}
	}
	if c.Trends.TopN < 0 {
		return &domain.ConfigurationError{Field: "trends.topN", Reason: "must not be negative"}
	}
	if c.Trends.MaxInFlight < 0 {
		return &domain.ConfigurationError{Field: "trends.maxInFlight", Reason: "must not be negative"}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Webhook.URL = v
	}

	if v := os.Getenv(analyticsAPIKeyEnv); v != "" {
		c.Analytics.APIKey = v
	}

	if v := os.Getenv(catalogAPIKeyEnv); v != "" {
		c.Trends.Sources.Catalog.APIKey = v
	}

	if v := os.Getenv(policyPathEnv); v != "" {
		c.Policy.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Policy.Path != "" {
		base.Policy.Path = override.Policy.Path
	}

	if len(override.Scoring.Weights) > 0 {
		base.Scoring.Weights = override.Scoring.Weights
	}
	if override.Scoring.Thresholds.Promote != nil {
		base.Scoring.Thresholds.Promote = override.Scoring.Thresholds.Promote
	}
	if override.Scoring.Thresholds.Retire != nil {
		base.Scoring.Thresholds.Retire = override.Scoring.Thresholds.Retire
	}
	if override.Scoring.GrowthMetric != "" {
		base.Scoring.GrowthMetric = override.Scoring.GrowthMetric
	}

	base.Governance.AutoActions = base.Governance.AutoActions || override.Governance.AutoActions
	if override.Governance.OverridesPath != "" {
		base.Governance.OverridesPath = override.Governance.OverridesPath
	}
	if override.Governance.OutputDir != "" {
		base.Governance.OutputDir = override.Governance.OutputDir
	}

	if len(override.Trends.Seeds) > 0 {
		base.Trends.Seeds = override.Trends.Seeds
	}
	if override.Trends.RPMMultiplier != 0 {
		base.Trends.RPMMultiplier = override.Trends.RPMMultiplier
	}
	if override.Trends.TopN != 0 {
		base.Trends.TopN = override.Trends.TopN
	}
	if override.Trends.MaxInFlight != 0 {
		base.Trends.MaxInFlight = override.Trends.MaxInFlight
	}
	if override.Trends.CallTimeoutSeconds != 0 {
		base.Trends.CallTimeoutSeconds = override.Trends.CallTimeoutSeconds
	}
	base.Trends.Sources = mergeSources(base.Trends.Sources, override.Trends.Sources)

	if override.Tools.CostThreshold != 0 {
		base.Tools.CostThreshold = override.Tools.CostThreshold
	}
	if len(override.Tools.List) > 0 {
		base.Tools.List = override.Tools.List
	}

	if override.Analytics.SnapshotPath != "" {
		base.Analytics.SnapshotPath = override.Analytics.SnapshotPath
	}
	if override.Analytics.URL != "" {
		base.Analytics.URL = override.Analytics.URL
	}
	if override.Analytics.APIKey != "" {
		base.Analytics.APIKey = override.Analytics.APIKey
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Webhook.URL != "" {
		base.Notifications.Webhook.URL = override.Notifications.Webhook.URL
	}
	if override.Notifications.Webhook.Channel != "" {
		base.Notifications.Webhook.Channel = override.Notifications.Webhook.Channel
	}

	base.Scheduler.Enabled = base.Scheduler.Enabled || override.Scheduler.Enabled
	if override.Scheduler.IntervalHours != 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	return base
}

func mergeSources(base, override SourcesConfig) SourcesConfig {
	if override.Primary.URL != "" {
		base.Primary.URL = override.Primary.URL
	}
	if override.Primary.RatePerSecond != 0 {
		base.Primary.RatePerSecond = override.Primary.RatePerSecond
	}

	base.ShortVideo.Enabled = base.ShortVideo.Enabled || override.ShortVideo.Enabled
	if override.ShortVideo.URL != "" {
		base.ShortVideo.URL = override.ShortVideo.URL
	}

	base.Feed.Enabled = base.Feed.Enabled || override.Feed.Enabled
	if override.Feed.URL != "" {
		base.Feed.URL = override.Feed.URL
	}

	base.KeywordPlanner.Enabled = base.KeywordPlanner.Enabled || override.KeywordPlanner.Enabled

	base.Catalog.Enabled = base.Catalog.Enabled || override.Catalog.Enabled
	if override.Catalog.URL != "" {
		base.Catalog.URL = override.Catalog.URL
	}
	if override.Catalog.APIKey != "" {
		base.Catalog.APIKey = override.Catalog.APIKey
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	promote := 1.0
	retire := -1.0

	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Policy:  PolicyConfig{Path: "config/policy.yaml"},
		Scoring: ScoringConfig{
			Weights: map[string]any{
				"RPM":        0.4,
				"growth":     0.3,
				"engagement": 0.3,
			},
			Thresholds:   ThresholdsConfig{Promote: &promote, Retire: &retire},
			GrowthMetric: "growth",
		},
		Governance: GovernanceConfig{
			AutoActions: false,
			OutputDir:   "reports",
		},
		Trends: TrendsConfig{
			RPMMultiplier:      1.0,
			TopN:               10,
			MaxInFlight:        8,
			CallTimeoutSeconds: 10,
			Sources: SourcesConfig{
				Primary: PrimarySourceConfig{
					URL:           "https://trends.google.com/trends/api/explore",
					RatePerSecond: 4,
				},
			},
		},
		Tools:     ToolsConfig{CostThreshold: 0.002},
		Analytics: AnalyticsConfig{SnapshotPath: "config/channels.json"},
		Scheduler: SchedulerConfig{Enabled: false, IntervalHours: 24, Timezone: defaultTimezone, location: tz},
	}
}
