package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ChannelGovernor/internal/config"
	"ChannelGovernor/internal/governance"
	"ChannelGovernor/internal/infrastructure/analytics"
	"ChannelGovernor/internal/infrastructure/notify"
	"ChannelGovernor/internal/infrastructure/scheduler"
	"ChannelGovernor/internal/infrastructure/storage"
	"ChannelGovernor/internal/logging"
	"ChannelGovernor/internal/policy"
	"ChannelGovernor/internal/ports"
	"ChannelGovernor/internal/report"
	"ChannelGovernor/internal/scoring"
	"ChannelGovernor/internal/trends"
	"ChannelGovernor/internal/trends/sources"
)

// Application wires configs to the governance engine and its collaborators.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *governance.Engine
	source  ports.MetricsSource
	archive *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	enforcer, err := policy.Load(cfg.Policy.Path, baseLogger.With("component", "policy"))
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	overrides, err := governance.LoadOverrides(cfg.Governance.OverridesPath, baseLogger.With("component", "overrides"))
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	scanner := buildScanner(cfg, enforcer, baseLogger)

	var db *sql.DB
	var archive ports.TrendArchive
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open trend archive: %w", err)
		}
		archive = storage.NewPostgresArchive(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Webhook.URL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notifications.Webhook.URL, cfg.Notifications.Webhook.Channel)
	}

	tools := make([]governance.ToolConfig, 0, len(cfg.Tools.List))
	for _, tc := range cfg.Tools.List {
		tools = append(tools, governance.ToolConfig{
			Name:        tc.Name,
			PingURL:     tc.PingURL,
			ExpectedMS:  tc.ExpectedMS,
			CostPerCall: tc.CostPerCall,
		})
	}

	weights := cfg.Scoring.WeightValues()
	engine := governance.NewEngine(
		governance.Config{
			Weights: weights,
			Thresholds: scoring.Thresholds{
				Promote: cfg.Scoring.Thresholds.Promote,
				Retire:  cfg.Scoring.Thresholds.Retire,
			},
			GrowthMetric: cfg.Scoring.GrowthMetric,
			AutoActions:  cfg.Governance.AutoActions,
			Seeds:        cfg.Trends.Seeds,
			Tools:        tools,
		},
		governance.Deps{
			Scanner:   scanner,
			Generator: report.NewGenerator(weights),
			Checker:   governance.NewToolChecker(enforcer, nil, cfg.Tools.CostThreshold, baseLogger),
			Store:     storage.NewFileStore(cfg.Governance.OutputDir),
			Archive:   archive,
			Notifier:  notifier,
			Overrides: overrides,
			Logger:    baseLogger.With("component", "governance"),
		},
	)

	var source ports.MetricsSource
	if cfg.Analytics.URL != "" {
		source = analytics.NewAPISource(cfg.Analytics.URL, cfg.Analytics.APIKey, baseLogger)
	} else {
		source = analytics.NewFileSource(cfg.Analytics.SnapshotPath, baseLogger)
	}

	return &Application{
		cfg:     cfg,
		logger:  baseLogger.With("component", "app"),
		engine:  engine,
		source:  source,
		archive: db,
	}, nil
}

func buildScanner(cfg config.Config, enforcer *policy.Enforcer, logger *slog.Logger) *trends.Scanner {
	src := cfg.Trends.Sources
	primary := sources.NewInterestAPI(src.Primary.URL, src.Primary.RatePerSecond, nil)

	var optional []trends.TrendSource
	if src.ShortVideo.Enabled {
		optional = append(optional, sources.NewShortVideo(src.ShortVideo.URL, nil))
	}
	if src.Feed.Enabled {
		optional = append(optional, sources.NewFeed(src.Feed.URL))
	}
	if src.KeywordPlanner.Enabled {
		optional = append(optional, sources.NewKeywordPlanner())
	}
	if src.Catalog.Enabled {
		optional = append(optional, sources.NewCatalog(src.Catalog.URL, src.Catalog.APIKey, nil))
	}

	return trends.NewScanner(enforcer, primary, optional, trends.Config{
		RPMMultiplier: cfg.Trends.RPMMultiplier,
		TopN:          cfg.Trends.TopN,
		MaxInFlight:   cfg.Trends.MaxInFlight,
		CallTimeout:   cfg.Trends.CallTimeout(),
	}, logger.With("component", "trends"))
}

// Run executes governance cycles: once when the scheduler is disabled, or on
// the configured interval until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if !a.cfg.Scheduler.Enabled {
		return a.runCycle(ctx)
	}

	sched := scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval())
	if err := sched.Start(ctx, func(time.Time) {
		if err := a.runCycle(ctx); err != nil {
			a.logger.Error("scheduled cycle failed", "error", err)
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

func (a *Application) runCycle(ctx context.Context) error {
	channels, err := a.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load channel snapshot: %w", err)
	}

	rep, err := a.engine.RunCycle(ctx, channels)
	if err != nil {
		return err
	}

	a.logger.Info("cycle report written",
		"cycle_id", rep.CycleID,
		"date", rep.Date.Format("2006-01-02"),
		"channels", len(rep.ChannelRecommendations))
	return nil
}

func (a *Application) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("closing trend archive", "error", err)
		}
	}
}
