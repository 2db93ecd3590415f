package config

import (
	"errors"
	"testing"

	"ChannelGovernor/internal/domain"
)

func TestValidateParsesLooseWeights(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Scoring.Weights = map[string]any{
		"RPM":    0.6,
		"growth": "0.4",
		"subs":   2,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}

	weights := cfg.Scoring.WeightValues()
	if weights["RPM"] != 0.6 || weights["growth"] != 0.4 || weights["subs"] != 2 {
		t.Fatalf("unexpected parsed weights: %v", weights)
	}
}

func TestValidateRejectsNonNumericWeight(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Scoring.Weights = map[string]any{"RPM": "high"}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected configuration error for non-numeric weight")
	}

	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	t.Parallel()

	promote := -1.0
	retire := 1.0

	cfg := defaultConfig()
	cfg.Scoring.Thresholds = ThresholdsConfig{Promote: &promote, Retire: &retire}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error when promote <= retire")
	}

	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if ce.Field != "scoring.thresholds" {
		t.Fatalf("unexpected field: %s", ce.Field)
	}
}

func TestValidateAllowsSingleThreshold(t *testing.T) {
	t.Parallel()

	promote := 1.0

	cfg := defaultConfig()
	cfg.Scoring.Thresholds = ThresholdsConfig{Promote: &promote}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("single threshold must be legal: %v", err)
	}
}

func TestValidateRejectsNegativeScanParams(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Trends.RPMMultiplier = -2

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative rpm multiplier")
	}
}

func TestMergeConfigOverridesSelectively(t *testing.T) {
	t.Parallel()

	base := defaultConfig()
	override := Config{}
	override.Trends.TopN = 5
	override.Trends.Seeds = []string{"ai tools"}
	override.Notifications.Webhook.URL = "https://hooks.example.org/T123"
	override.Trends.Sources.Feed.Enabled = true
	override.Trends.Sources.Feed.URL = "https://trends.example.org/rss"

	merged := mergeConfig(base, override)

	if merged.Trends.TopN != 5 {
		t.Fatalf("topN override lost: %d", merged.Trends.TopN)
	}
	if len(merged.Trends.Seeds) != 1 || merged.Trends.Seeds[0] != "ai tools" {
		t.Fatalf("seeds override lost: %v", merged.Trends.Seeds)
	}
	if merged.Notifications.Webhook.URL != "https://hooks.example.org/T123" {
		t.Fatalf("webhook override lost")
	}
	if !merged.Trends.Sources.Feed.Enabled || merged.Trends.Sources.Feed.URL == "" {
		t.Fatalf("feed source override lost")
	}
	// Untouched defaults survive.
	if merged.Trends.RPMMultiplier != 1.0 {
		t.Fatalf("default rpm multiplier clobbered: %v", merged.Trends.RPMMultiplier)
	}
	if merged.Policy.Path != "config/policy.yaml" {
		t.Fatalf("default policy path clobbered: %s", merged.Policy.Path)
	}
}
