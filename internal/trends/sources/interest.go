package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"ChannelGovernor/internal/trends"
)

// InterestAPI is the primary trend source: an interest-over-time endpoint
// queried once per seed keyword. Requests go through a rate limiter so the
// seed fan-out cannot exceed the upstream's tolerated QPS.
type InterestAPI struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

var _ trends.InterestSource = (*InterestAPI)(nil)

// NewInterestAPI wires an HTTP client; ratePerSecond <= 0 disables limiting.
func NewInterestAPI(endpoint string, ratePerSecond float64, client *http.Client) *InterestAPI {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	return &InterestAPI{
		endpoint: endpoint,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Name identifies the tool for policy enforcement.
func (a *InterestAPI) Name() string { return "google_trends" }

// Interest returns the average interest value for one keyword over the last
// seven days. Any failure is returned to the caller, who folds it to zero.
func (a *InterestAPI) Interest(ctx context.Context, keyword string) (float64, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("hl", "en-US")
	q.Set("q", keyword)
	q.Set("date", "now 7-d")
	req.URL.RawQuery = q.Encode()

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("query interest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("interest api returned %s", resp.Status)
	}

	var payload struct {
		Default struct {
			Averages []float64 `json:"averages"`
		} `json:"default"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode interest payload: %w", err)
	}

	if len(payload.Default.Averages) == 0 {
		return 0, nil
	}
	return payload.Default.Averages[0], nil
}
