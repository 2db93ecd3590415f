// Package analytics supplies the channel-metrics snapshot that starts each
// governance cycle, either from a local JSON file or from an analytics API.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/ports"
)

// rawChannel mirrors the snapshot document: metric values arrive as arbitrary
// JSON scalars and are coerced to float64 afterwards.
type rawChannel struct {
	Name    string         `json:"name"`
	Metrics map[string]any `json:"metrics"`
}

// FileSource reads the snapshot from a JSON file on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

var _ ports.MetricsSource = (*FileSource)(nil)

// NewFileSource points the source at a snapshot file.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger.With("component", "analytics")}
}

// Snapshot loads and coerces the channel batch.
func (s *FileSource) Snapshot(_ context.Context) ([]domain.ChannelMetrics, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var raw []rawChannel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", s.path, err)
	}

	return coerce(raw, s.logger), nil
}

// APISource pulls the snapshot from an analytics HTTP endpoint.
type APISource struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.MetricsSource = (*APISource)(nil)

// NewAPISource creates a reusable HTTP client for the analytics endpoint.
func NewAPISource(endpoint, apiKey string, logger *slog.Logger) *APISource {
	if logger == nil {
		logger = slog.Default()
	}
	return &APISource{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger.With("component", "analytics"),
	}
}

// Snapshot fetches the current channel batch.
func (s *APISource) Snapshot(ctx context.Context) ([]domain.ChannelMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var raw []rawChannel
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return coerce(raw, s.logger), nil
}

// coerce converts raw metric scalars to float64, dropping values that are not
// numeric so one bad row cannot poison the whole batch.
func coerce(raw []rawChannel, logger *slog.Logger) []domain.ChannelMetrics {
	channels := make([]domain.ChannelMetrics, 0, len(raw))
	for _, rc := range raw {
		if rc.Name == "" {
			continue
		}
		metrics := make(map[string]float64, len(rc.Metrics))
		for name, value := range rc.Metrics {
			f, err := cast.ToFloat64E(value)
			if err != nil {
				logger.Warn("dropping non-numeric metric",
					"channel", rc.Name, "metric", name, "value", value)
				continue
			}
			metrics[name] = f
		}
		channels = append(channels, domain.ChannelMetrics{Name: rc.Name, Metrics: metrics})
	}
	return channels
}
