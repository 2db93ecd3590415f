package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/trends"
)

const catalogMaxItems = 10

// Catalog queries an affiliate product catalog for trending product
// keywords. The API needs a bearer key; without one the source contributes
// nothing rather than failing.
type Catalog struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ trends.TrendSource = (*Catalog)(nil)

// NewCatalog wires the catalog API client.
func NewCatalog(endpoint, apiKey string, client *http.Client) *Catalog {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Catalog{endpoint: endpoint, apiKey: apiKey, client: client}
}

// Name identifies the tool for policy enforcement.
func (c *Catalog) Name() string { return "affiliate" }

// Trending fetches trending product keywords with their scores.
func (c *Catalog) Trending(ctx context.Context) ([]domain.TrendRecord, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	var payload struct {
		Trending []struct {
			Keyword string  `json:"keyword"`
			Score   float64 `json:"score"`
		} `json:"trending"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog payload: %w", err)
	}

	records := make([]domain.TrendRecord, 0, catalogMaxItems)
	for _, item := range payload.Trending {
		if item.Keyword == "" {
			continue
		}
		records = append(records, domain.TrendRecord{
			Keyword:  item.Keyword,
			Interest: item.Score,
			Source:   c.Name(),
		})
		if len(records) >= catalogMaxItems {
			break
		}
	}

	return records, nil
}
