package trends

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/policy"
)

type fakePrimary struct {
	name    string
	calls   atomic.Int64
	respond func(ctx context.Context, keyword string) (float64, error)
}

func (f *fakePrimary) Name() string { return f.name }

func (f *fakePrimary) Interest(ctx context.Context, keyword string) (float64, error) {
	f.calls.Add(1)
	return f.respond(ctx, keyword)
}

type fakeOptional struct {
	name    string
	calls   atomic.Int64
	respond func(ctx context.Context) ([]domain.TrendRecord, error)
}

func (f *fakeOptional) Name() string { return f.name }

func (f *fakeOptional) Trending(ctx context.Context) ([]domain.TrendRecord, error) {
	f.calls.Add(1)
	return f.respond(ctx)
}

func allowAll() *policy.Enforcer {
	return policy.New(policy.Policy{}, nil)
}

func TestScanPerSeedFailureBecomesZero(t *testing.T) {
	t.Parallel()

	// Scenario C: "x" yields interest 5, "y" fails; multiplier 2.
	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, keyword string) (float64, error) {
			if keyword == "x" {
				return 5, nil
			}
			return 0, errors.New("upstream 500")
		},
	}

	sc := NewScanner(allowAll(), primary, nil, Config{RPMMultiplier: 2, TopN: 10}, nil)

	records, err := sc.Scan(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byKeyword := map[string]domain.TrendRecord{}
	for _, rec := range records {
		byKeyword[rec.Keyword] = rec
	}

	x := byKeyword["x"]
	if x.Interest != 5 || x.ProjectedRPM != 10 {
		t.Fatalf("unexpected x record: %+v", x)
	}
	y := byKeyword["y"]
	if y.Interest != 0 || y.ProjectedRPM != 0 {
		t.Fatalf("failed seed must fold to zero, got %+v", y)
	}
	if records[0].Keyword != "x" {
		t.Fatalf("records must be sorted by projected RPM descending, got %s first", records[0].Keyword)
	}
}

func TestScanRankedAndBounded(t *testing.T) {
	t.Parallel()

	interests := map[string]float64{"a": 1, "b": 9, "c": 5, "d": 7, "e": 3}
	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, keyword string) (float64, error) {
			return interests[keyword], nil
		},
	}
	extra := &fakeOptional{
		name: "keyword_planner",
		respond: func(context.Context) ([]domain.TrendRecord, error) {
			return []domain.TrendRecord{
				{Keyword: "ai tools", Interest: 8},
				{Keyword: "crypto", Interest: 2},
			}, nil
		},
	}

	sc := NewScanner(allowAll(), primary, []TrendSource{extra}, Config{RPMMultiplier: 1, TopN: 4, MaxInFlight: 2}, nil)

	records, err := sc.Scan(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected top_n=4 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].ProjectedRPM > records[i-1].ProjectedRPM {
			t.Fatalf("records not sorted descending at %d: %v", i, records)
		}
	}
	if records[0].Keyword != "b" || records[1].Keyword != "ai tools" {
		t.Fatalf("unexpected ranking: %s, %s", records[0].Keyword, records[1].Keyword)
	}
}

func TestScanOptionalSourceFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, _ string) (float64, error) {
			return 4, nil
		},
	}
	broken := &fakeOptional{
		name: "shortvideo",
		respond: func(context.Context) ([]domain.TrendRecord, error) {
			return nil, errors.New("scrape blocked")
		},
	}
	healthy := &fakeOptional{
		name: "affiliate",
		respond: func(context.Context) ([]domain.TrendRecord, error) {
			return []domain.TrendRecord{{Keyword: "standing desk", Interest: 6}}, nil
		},
	}

	sc := NewScanner(allowAll(), primary, []TrendSource{broken, healthy}, Config{RPMMultiplier: 1, TopN: 10}, nil)

	records, err := sc.Scan(context.Background(), []string{"go"})
	if err != nil {
		t.Fatalf("degraded scan must not error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected records from primary and healthy source, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Source == "shortvideo" {
			t.Fatalf("broken source must contribute nothing, got %+v", rec)
		}
	}
	if healthy.calls.Load() == 0 {
		t.Fatalf("sibling source was never queried")
	}
}

func TestScanPolicyDenialIssuesNoCalls(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, _ string) (float64, error) {
			return 1, nil
		},
	}
	optional := &fakeOptional{
		name: "affiliate",
		respond: func(context.Context) ([]domain.TrendRecord, error) {
			return nil, nil
		},
	}

	enforcer := policy.New(policy.Policy{AllowedTools: []string{"something_else"}}, nil)
	sc := NewScanner(enforcer, primary, []TrendSource{optional}, Config{TopN: 10}, nil)

	_, err := sc.Scan(context.Background(), []string{"x", "y"})
	if err == nil {
		t.Fatalf("expected policy violation")
	}

	var pv *domain.PolicyViolationError
	if !errors.As(err, &pv) {
		t.Fatalf("expected PolicyViolationError, got %T", err)
	}
	if primary.calls.Load() != 0 || optional.calls.Load() != 0 {
		t.Fatalf("denied scan must issue zero network calls, got primary=%d optional=%d",
			primary.calls.Load(), optional.calls.Load())
	}
}

func TestScanMemoryCeilingFailsFast(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, _ string) (float64, error) {
			return 1, nil
		},
	}

	// Any Go test process sits well above a 1 MB ceiling.
	enforcer := policy.New(policy.Policy{MemoryLimitMB: 1}, nil)
	sc := NewScanner(enforcer, primary, nil, Config{TopN: 10}, nil)

	if _, err := sc.Scan(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected memory violation before any call")
	}
	if primary.calls.Load() != 0 {
		t.Fatalf("memory-denied scan must issue zero network calls")
	}
}

func TestScanBlockedOptionalSourceSkippedOnly(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, _ string) (float64, error) {
			return 2, nil
		},
	}
	blocked := &fakeOptional{
		name: "shortvideo",
		respond: func(context.Context) ([]domain.TrendRecord, error) {
			return []domain.TrendRecord{{Keyword: "#dance", Interest: 1}}, nil
		},
	}

	enforcer := policy.New(policy.Policy{AllowedTools: []string{"google_trends"}}, nil)
	sc := NewScanner(enforcer, primary, []TrendSource{blocked}, Config{RPMMultiplier: 1, TopN: 10}, nil)

	records, err := sc.Scan(context.Background(), []string{"go"})
	if err != nil {
		t.Fatalf("blocked optional source must not fail the scan: %v", err)
	}
	if blocked.calls.Load() != 0 {
		t.Fatalf("blocked source must never be queried")
	}
	if len(records) != 1 || records[0].Keyword != "go" {
		t.Fatalf("primary records must survive, got %v", records)
	}
}

func TestScanCancellation(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(ctx context.Context, _ string) (float64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}

	sc := NewScanner(allowAll(), primary, nil, Config{TopN: 10, CallTimeout: time.Minute}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := sc.Scan(ctx, []string{"x", "y"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanEmptySeeds(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		name: "google_trends",
		respond: func(_ context.Context, _ string) (float64, error) {
			return 1, nil
		},
	}

	sc := NewScanner(allowAll(), primary, nil, Config{TopN: 10}, nil)

	records, err := sc.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty seed list must be legal: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
