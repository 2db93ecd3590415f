package governance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/policy"
)

const (
	toolStatusOK      = "ok"
	toolStatusError   = "error"
	toolStatusBlocked = "blocked"

	probeTimeout = 5 * time.Second
)

// ToolConfig describes one external tool to probe during a cycle.
type ToolConfig struct {
	Name        string
	PingURL     string
	ExpectedMS  int64
	CostPerCall float64
}

// ToolChecker probes the tools a cycle depends on and produces a health
// snapshot per tool. Probes never abort a cycle; an unreachable tool is
// reported as unhealthy instead.
type ToolChecker struct {
	enforcer      *policy.Enforcer
	client        *http.Client
	costThreshold float64
	logger        *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewToolChecker builds the probe runner. A nil client falls back to
// http.DefaultClient.
func NewToolChecker(enforcer *policy.Enforcer, client *http.Client, costThreshold float64, logger *slog.Logger) *ToolChecker {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolChecker{
		enforcer:      enforcer,
		client:        client,
		costThreshold: costThreshold,
		logger:        logger.With("component", "toolcheck"),
		now:           time.Now,
	}
}

// Check probes one tool and scores it. The score starts at a neutral 50 and
// moves with latency against expectation, probe failure, and per-call cost
// against the configured threshold.
func (c *ToolChecker) Check(ctx context.Context, tool ToolConfig) domain.ToolHealth {
	if err := c.enforcer.EnforceTool(tool.Name); err != nil {
		var violation *domain.PolicyViolationError
		if errors.As(err, &violation) {
			c.logger.Warn("tool probe denied by policy", "tool", tool.Name)
			return domain.ToolHealth{Tool: tool.Name, Status: toolStatusBlocked}
		}
		return domain.ToolHealth{Tool: tool.Name, Status: toolStatusError}
	}

	status := toolStatusOK
	start := c.now()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, tool.PingURL, nil)
	if err != nil {
		status = toolStatusError
	} else {
		resp, err := c.client.Do(req)
		if err != nil {
			status = toolStatusError
		} else {
			_ = resp.Body.Close()
			if resp.StatusCode >= http.StatusBadRequest {
				status = toolStatusError
			}
		}
	}

	latency := c.now().Sub(start).Milliseconds()

	score := 50
	if tool.ExpectedMS > 0 && latency > tool.ExpectedMS {
		score -= 10
	} else {
		score += 5
	}
	if status == toolStatusError {
		score -= 15
	}
	if c.costThreshold > 0 && tool.CostPerCall > c.costThreshold {
		score -= 10
	}

	return domain.ToolHealth{
		Tool:      tool.Name,
		LatencyMS: latency,
		Status:    status,
		Score:     score,
	}
}
