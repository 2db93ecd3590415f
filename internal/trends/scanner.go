// Package trends implements the fan-out trend scanner: seed keywords are
// queried against a primary interest source, optional sources contribute
// their own trending records, and everything is ranked by projected RPM.
package trends

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/metrics"
	"ChannelGovernor/internal/policy"
)

// InterestSource is the primary source, queried once per seed keyword.
type InterestSource interface {
	Name() string
	Interest(ctx context.Context, keyword string) (float64, error)
}

// TrendSource is an optional source that contributes its own trending
// records independently of the seed list.
type TrendSource interface {
	Name() string
	Trending(ctx context.Context) ([]domain.TrendRecord, error)
}

// Config carries the scan parameters, read-only for the scanner lifetime.
type Config struct {
	RPMMultiplier float64
	TopN          int
	MaxInFlight   int
	CallTimeout   time.Duration
}

// Scanner aggregates trend records from the registered sources. Concurrent
// Scan calls for different seed sets are safe: the only shared state is the
// immutable config and the internally synchronized breakers.
type Scanner struct {
	enforcer *policy.Enforcer
	primary  InterestSource
	optional []TrendSource
	breakers map[string]*gobreaker.CircuitBreaker[[]domain.TrendRecord]
	cfg      Config
	logger   *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewScanner registers the source set. Optional sources get a circuit
// breaker each, so a source that keeps failing short-circuits to a zero
// contribution without further network calls.
func NewScanner(enforcer *policy.Enforcer, primary InterestSource, optional []TrendSource, cfg Config, logger *slog.Logger) *Scanner {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker[[]domain.TrendRecord], len(optional))
	for _, src := range optional {
		breakers[src.Name()] = gobreaker.NewCircuitBreaker[[]domain.TrendRecord](gobreaker.Settings{
			Name: src.Name(),
		})
	}

	return &Scanner{
		enforcer: enforcer,
		primary:  primary,
		optional: optional,
		breakers: breakers,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// sourceResult makes the degrade-gracefully contract explicit: every optional
// source produces exactly one result that is inspected and folded, a failure
// becoming a zero contribution.
type sourceResult struct {
	source  string
	records []domain.TrendRecord
	err     error
}

// Scan queries every registered source for the given seeds and returns a
// ranked, size-bounded record list. An empty seed list is legal. Only a
// policy rejection (tool or memory) fails the scan, and it does so before
// any network call; every other failure degrades to a zero contribution.
func (s *Scanner) Scan(ctx context.Context, seeds []string) ([]domain.TrendRecord, error) {
	if err := s.enforcer.EnforceTool(s.primary.Name()); err != nil {
		return nil, err
	}
	if err := s.enforcer.EnforceMemory(); err != nil {
		return nil, err
	}

	scannedOn := s.now().UTC()

	// Per-seed results land in fixed slots so the pre-sort order is
	// deterministic regardless of goroutine completion order.
	seeded := make([]domain.TrendRecord, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxInFlight > 0 {
		g.SetLimit(s.cfg.MaxInFlight)
	}

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.cfg.CallTimeout)
			defer cancel()

			interest, err := s.primary.Interest(callCtx, seed)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.swallow(s.primary.Name(), seed, err)
				interest = 0
			}

			seeded[i] = domain.TrendRecord{
				Keyword:      seed,
				Interest:     interest,
				ProjectedRPM: interest * s.cfg.RPMMultiplier,
				Source:       s.primary.Name(),
				ScannedOn:    scannedOn,
			}
			return nil
		})
	}

	results := make([]sourceResult, len(s.optional))
	var wg sync.WaitGroup
	for i, src := range s.optional {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.queryOptional(ctx, src, scannedOn)
		}()
	}

	if err := g.Wait(); err != nil {
		wg.Wait()
		return nil, err
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := seeded
	for _, res := range results {
		if res.err != nil {
			s.swallow(res.source, "", res.err)
			continue
		}
		merged = append(merged, res.records...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ProjectedRPM > merged[j].ProjectedRPM
	})
	if s.cfg.TopN > 0 && len(merged) > s.cfg.TopN {
		merged = merged[:s.cfg.TopN]
	}

	return merged, nil
}

func (s *Scanner) queryOptional(ctx context.Context, src TrendSource, scannedOn time.Time) sourceResult {
	// A policy block aborts only this source's query, never siblings.
	if err := s.enforcer.EnforceTool(src.Name()); err != nil {
		return sourceResult{source: src.Name(), err: err}
	}

	records, err := s.breakers[src.Name()].Execute(func() ([]domain.TrendRecord, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		return src.Trending(callCtx)
	})
	if err != nil {
		return sourceResult{
			source: src.Name(),
			err:    &domain.SourceUnavailableError{Source: src.Name(), Err: err},
		}
	}

	out := make([]domain.TrendRecord, 0, len(records))
	for _, rec := range records {
		if rec.Source == "" {
			rec.Source = src.Name()
		}
		rec.ProjectedRPM = rec.Interest * s.cfg.RPMMultiplier
		if rec.ScannedOn.IsZero() {
			rec.ScannedOn = scannedOn
		}
		out = append(out, rec)
	}

	return sourceResult{source: src.Name(), records: out}
}

func (s *Scanner) swallow(source, seed string, err error) {
	metrics.SourceFailuresTotal.WithLabelValues(source).Inc()
	if s.logger != nil {
		s.logger.Warn("trend source degraded to zero contribution",
			"source", source, "seed", seed, "error", err)
	}
}
