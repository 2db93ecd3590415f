package ports

import (
	"context"
	"time"

	"ChannelGovernor/internal/domain"
)

// MetricsSource supplies the channel-metrics snapshot for one cycle.
type MetricsSource interface {
	Snapshot(ctx context.Context) ([]domain.ChannelMetrics, error)
}

// ReportStore persists one report per run date and reads it back.
type ReportStore interface {
	Save(ctx context.Context, report domain.GovernanceReport) error
	Load(ctx context.Context, date time.Time) (domain.GovernanceReport, error)
}

// TrendArchive keeps ranked trend records for downstream consumers
// (e.g. the competitor-analysis collaborator).
type TrendArchive interface {
	SaveTrends(ctx context.Context, records []domain.TrendRecord) error
	RecentTrends(ctx context.Context, limit int) ([]domain.TrendRecord, error)
}

// Notifier pushes a short cycle summary to a messaging channel.
type Notifier interface {
	NotifySummary(ctx context.Context, summary string) error
}

// Scheduler controls when governance cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
