// Package governance orchestrates one decision cycle: score the channels,
// derive recommendations, optionally auto-act, and report.
package governance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/metrics"
	"ChannelGovernor/internal/ports"
	"ChannelGovernor/internal/report"
	"ChannelGovernor/internal/scoring"
)

// Phase names the engine's position in a cycle. Phases are strictly
// sequential; the engine is back to PhaseIdle after reporting.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseScoring      Phase = "scoring"
	PhaseRecommending Phase = "recommending"
	PhaseAutoActing   Phase = "auto_acting"
	PhaseReporting    Phase = "reporting"
)

// TrendScanner is the slice of the trend subsystem the engine needs.
type TrendScanner interface {
	Scan(ctx context.Context, seeds []string) ([]domain.TrendRecord, error)
}

// Config carries the engine parameters, read-only after construction.
type Config struct {
	Weights      map[string]float64
	Thresholds   scoring.Thresholds
	GrowthMetric string
	AutoActions  bool
	Seeds        []string
	Tools        []ToolConfig
}

// Deps wires all collaborators into the engine. Store is required; every
// other collaborator is optional and skipped when nil.
type Deps struct {
	Scanner   TrendScanner
	Generator *report.Generator
	Checker   *ToolChecker
	Store     ports.ReportStore
	Archive   ports.TrendArchive
	Notifier  ports.Notifier
	Overrides map[string]domain.Override
	Logger    *slog.Logger
}

// Engine runs governance cycles. Concurrent RunCycle calls are serialized by
// an in-process mutex so two cycles can never write the same date's report
// simultaneously.
type Engine struct {
	cfg  Config
	deps Deps

	mu    sync.Mutex
	phase Phase

	// now is swappable in tests.
	now func() time.Time
}

// NewEngine builds the cycle engine.
func NewEngine(cfg Config, deps Deps) *Engine {
	if cfg.GrowthMetric == "" {
		cfg.GrowthMetric = "growth"
	}
	return &Engine{cfg: cfg, deps: deps, phase: PhaseIdle, now: time.Now}
}

// Phase reports the engine's current cycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// RunCycle executes one governance cycle over the supplied channel batch and
// returns the persisted report. Scoring and recommending failures abort the
// cycle; auto-action problems are logged; persistence failure propagates
// (the report is the cycle's purpose); notification failure never does.
func (e *Engine) RunCycle(ctx context.Context, channels []domain.ChannelMetrics) (domain.GovernanceReport, error) {
	e.mu.Lock()
	defer func() {
		e.phase = PhaseIdle
		e.mu.Unlock()
	}()

	cycleID := uuid.NewString()
	log := e.logger().With("cycle_id", cycleID)
	log.Info("governance cycle started", "channels", len(channels))

	e.phase = PhaseScoring
	scores := scoring.ComputeScores(channels, e.cfg.Weights)
	log.Info("computed channel scores", "scored", len(scores))

	e.phase = PhaseRecommending
	recs := e.recommend(channels, scores, log)

	if e.cfg.AutoActions {
		e.phase = PhaseAutoActing
		e.autoAct(recs, log)
	}

	trendFeed, err := e.scanTrends(ctx, log)
	if err != nil {
		return domain.GovernanceReport{}, err
	}

	toolHealth := e.checkTools(ctx, log)

	e.phase = PhaseReporting
	if err := ctx.Err(); err != nil {
		// Cancelled cycles persist nothing, not even a partial report.
		return domain.GovernanceReport{}, err
	}

	rep := e.deps.Generator.Generate(e.now().UTC(), recs, trendFeed)
	rep.CycleID = cycleID
	rep.Trends = trendFeed
	rep.Tools = toolHealth

	if err := e.deps.Store.Save(ctx, rep); err != nil {
		return domain.GovernanceReport{}, err
	}

	e.archiveTrends(ctx, trendFeed, log)
	e.notify(ctx, rep, log)
	e.observe(recs, toolHealth)

	log.Info("governance cycle finished",
		"recommendations", len(recs),
		"trends", len(trendFeed),
		"insights", len(rep.InsightSummaries))
	return rep, nil
}

// recommend classifies every channel and selects its recommendation text.
// The growth-metric sign only picks the watch wording; it never feeds the
// composite score.
func (e *Engine) recommend(channels []domain.ChannelMetrics, scores map[string]float64, log *slog.Logger) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(channels))

	for _, ch := range channels {
		score := scores[ch.Name]
		status := scoring.Classify(score, e.cfg.Thresholds)

		override := e.deps.Overrides[ch.Name]
		status, applied := applyOverride(status, override)

		rec := domain.Recommendation{
			Channel:        ch.Name,
			Score:          score,
			Status:         status,
			Recommendation: e.recommendationText(ch, status),
			Override:       applied,
		}

		log.Info("channel classified",
			"channel", ch.Name,
			"score", fmt.Sprintf("%.2f", score),
			"status", status)
		recs = append(recs, rec)
	}

	return recs
}

func (e *Engine) recommendationText(ch domain.ChannelMetrics, status domain.Classification) string {
	switch status {
	case domain.StatusPromote:
		return fmt.Sprintf("Double-down on '%s': This channel is performing excellently. "+
			"Increase posting frequency or invest more resources to capitalize on growth.", ch.Name)
	case domain.StatusRetire:
		return fmt.Sprintf("Consider retiring or pausing '%s': Performance is far below threshold. "+
			"It may be resource-intensive with little return; evaluate winding down.", ch.Name)
	default:
		if ch.Metric(e.cfg.GrowthMetric) < 0 {
			return fmt.Sprintf("Pivot content for '%s': Growth is negative. Experiment with new "+
				"content formats or topics to rejuvenate this channel.", ch.Name)
		}
		return fmt.Sprintf("Maintain and watch '%s': Performance is average/stable. No major "+
			"changes needed, but monitor closely for any trend changes.", ch.Name)
	}
}

// autoAct attaches non-destructive action tokens to promoted channels.
// Retirement is destructive and always requires a separately recorded human
// approval, so it never auto-acts; watch never triggers actions.
func (e *Engine) autoAct(recs []domain.Recommendation, log *slog.Logger) {
	for i := range recs {
		switch recs[i].Status {
		case domain.StatusPromote:
			recs[i].Action = "boost_posting:" + recs[i].Channel
			log.Info("auto-executing cadence boost", "channel", recs[i].Channel)
		case domain.StatusRetire:
			log.Info("auto-action skipped, retirement requires human approval",
				"channel", recs[i].Channel)
		}
	}
}

func (e *Engine) scanTrends(ctx context.Context, log *slog.Logger) ([]domain.TrendRecord, error) {
	if e.deps.Scanner == nil {
		return nil, nil
	}

	feed, err := e.deps.Scanner.Scan(ctx, e.cfg.Seeds)
	if err != nil {
		return nil, fmt.Errorf("trend scan: %w", err)
	}
	log.Info("trend scan complete", "records", len(feed))
	return feed, nil
}

func (e *Engine) checkTools(ctx context.Context, log *slog.Logger) []domain.ToolHealth {
	if e.deps.Checker == nil || len(e.cfg.Tools) == 0 {
		return nil
	}

	health := make([]domain.ToolHealth, 0, len(e.cfg.Tools))
	for _, tool := range e.cfg.Tools {
		result := e.deps.Checker.Check(ctx, tool)
		if result.Status != toolStatusOK {
			log.Warn("tool probe unhealthy", "tool", result.Tool, "status", result.Status)
		}
		health = append(health, result)
	}
	return health
}

func (e *Engine) archiveTrends(ctx context.Context, feed []domain.TrendRecord, log *slog.Logger) {
	if e.deps.Archive == nil || len(feed) == 0 {
		return
	}
	if err := e.deps.Archive.SaveTrends(ctx, feed); err != nil {
		// The archive is a convenience feed, not the cycle's purpose.
		log.Warn("trend archive write failed", "error", err)
	}
}

func (e *Engine) notify(ctx context.Context, rep domain.GovernanceReport, log *slog.Logger) {
	if e.deps.Notifier == nil {
		return
	}

	var promoted, retired int
	for _, rec := range rep.ChannelRecommendations {
		switch rec.Status {
		case domain.StatusPromote:
			promoted++
		case domain.StatusRetire:
			retired++
		}
	}

	summary := fmt.Sprintf("Governance report %s: %d promote, %d retire, %d watch",
		rep.Date.Format("2006-01-02"), promoted, retired,
		len(rep.ChannelRecommendations)-promoted-retired)

	if err := e.deps.Notifier.NotifySummary(ctx, summary); err != nil {
		log.Warn("summary notification failed", "error", err)
	}
}

func (e *Engine) observe(recs []domain.Recommendation, health []domain.ToolHealth) {
	metrics.GovernanceRunsTotal.Inc()
	for _, rec := range recs {
		metrics.FlaggedChannelsTotal.WithLabelValues(string(rec.Status)).Inc()
	}
	for _, th := range health {
		up := 0.0
		if th.Status == toolStatusOK {
			up = 1.0
		}
		metrics.ToolHealthStatus.WithLabelValues(th.Tool).Set(up)
		metrics.ToolLatencyMS.WithLabelValues(th.Tool).Set(float64(th.LatencyMS))
	}
}

// applyOverride folds an operator directive into the automated status.
func applyOverride(status domain.Classification, override domain.Override) (domain.Classification, domain.Override) {
	switch override {
	case domain.OverrideForcePromote:
		return domain.StatusPromote, override
	case domain.OverrideForceRetire:
		return domain.StatusRetire, override
	case domain.OverrideIgnorePromote:
		if status == domain.StatusPromote {
			return domain.StatusWatch, override
		}
	case domain.OverrideIgnoreRetire:
		if status == domain.StatusRetire {
			return domain.StatusWatch, override
		}
	}
	return status, ""
}

func (e *Engine) logger() *slog.Logger {
	if e.deps.Logger != nil {
		return e.deps.Logger
	}
	return slog.Default()
}
