package governance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ChannelGovernor/internal/policy"
)

func TestToolCheckerHealthyFastTool(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewToolChecker(policy.New(policy.Policy{}, nil), server.Client(), 0.002, nil)

	health := checker.Check(context.Background(), ToolConfig{
		Name:        "trends_api",
		PingURL:     server.URL,
		ExpectedMS:  5000,
		CostPerCall: 0.001,
	})

	if health.Status != toolStatusOK {
		t.Fatalf("expected healthy tool, got %+v", health)
	}
	if health.Score != 55 {
		t.Fatalf("fast cheap healthy tool scores 55, got %d", health.Score)
	}
}

func TestToolCheckerFailingProbe(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := NewToolChecker(policy.New(policy.Policy{}, nil), server.Client(), 0.002, nil)

	health := checker.Check(context.Background(), ToolConfig{
		Name:       "broken_api",
		PingURL:    server.URL,
		ExpectedMS: 5000,
	})

	if health.Status != toolStatusError {
		t.Fatalf("5xx probe must report error status, got %+v", health)
	}
	// 50 +5 (within latency budget) -15 (probe error).
	if health.Score != 40 {
		t.Fatalf("expected score 40, got %d", health.Score)
	}
}

func TestToolCheckerCostPenalty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewToolChecker(policy.New(policy.Policy{}, nil), server.Client(), 0.002, nil)

	health := checker.Check(context.Background(), ToolConfig{
		Name:        "pricey_api",
		PingURL:     server.URL,
		ExpectedMS:  5000,
		CostPerCall: 0.01,
	})

	if health.Score != 45 {
		t.Fatalf("expensive healthy tool scores 45, got %d", health.Score)
	}
}

func TestToolCheckerBlockedByPolicy(t *testing.T) {
	t.Parallel()

	var probed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probed = true
	}))
	defer server.Close()

	enforcer := policy.New(policy.Policy{AllowedTools: []string{"other_api"}}, nil)
	checker := NewToolChecker(enforcer, server.Client(), 0, nil)

	health := checker.Check(context.Background(), ToolConfig{
		Name:    "forbidden_api",
		PingURL: server.URL,
	})

	if health.Status != toolStatusBlocked {
		t.Fatalf("expected blocked status, got %+v", health)
	}
	if probed {
		t.Fatalf("blocked tools must never be probed")
	}
}
