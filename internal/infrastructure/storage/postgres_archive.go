package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/ports"
)

// PostgresArchive keeps ranked trend records in Postgres so downstream
// consumers can query history across cycles.
type PostgresArchive struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.TrendArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveTrends appends one cycle's ranked records.
func (a *PostgresArchive) SaveTrends(ctx context.Context, records []domain.TrendRecord) error {
	if a.db == nil || len(records) == 0 {
		return nil
	}

	builder := a.sb.
		Insert("trend_records").
		Columns("keyword", "interest", "projected_rpm", "source", "scanned_on")
	for _, rec := range records {
		builder = builder.Values(rec.Keyword, rec.Interest, rec.ProjectedRPM, rec.Source, rec.ScannedOn)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert trends: %w", err)
	}
	return nil
}

// RecentTrends returns the newest records, most recent scan first.
func (a *PostgresArchive) RecentTrends(ctx context.Context, limit int) ([]domain.TrendRecord, error) {
	if a.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query, args, err := a.sb.
		Select("keyword", "interest", "projected_rpm", "source", "scanned_on").
		From("trend_records").
		OrderBy("scanned_on DESC", "projected_rpm DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trends: %w", err)
	}
	defer rows.Close()

	var records []domain.TrendRecord
	for rows.Next() {
		var rec domain.TrendRecord
		if err := rows.Scan(&rec.Keyword, &rec.Interest, &rec.ProjectedRPM, &rec.Source, &rec.ScannedOn); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
