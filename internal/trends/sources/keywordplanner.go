package sources

import (
	"context"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/trends"
)

// KeywordPlanner stands in for the ad keyword planner API. Until API
// credentials exist it serves a curated list of high-volume queries with
// heuristic popularity scores, which keeps suggestions deterministic for
// development and demos.
type KeywordPlanner struct{}

var _ trends.TrendSource = (*KeywordPlanner)(nil)

// NewKeywordPlanner builds the stub planner source.
func NewKeywordPlanner() *KeywordPlanner { return &KeywordPlanner{} }

// Name identifies the tool for policy enforcement.
func (k *KeywordPlanner) Name() string { return "keyword_planner" }

var plannerTerms = []struct {
	keyword string
	score   float64
}{
	{"ai tools", 0.9},
	{"cryptocurrency", 0.85},
	{"sustainable fashion", 0.8},
	{"online education", 0.75},
	{"home workout", 0.7},
	{"virtual reality", 0.65},
	{"smart home devices", 0.6},
	{"personal finance", 0.55},
	{"plant based diet", 0.5},
	{"digital marketing", 0.45},
}

// Trending returns the curated keyword list.
func (k *KeywordPlanner) Trending(_ context.Context) ([]domain.TrendRecord, error) {
	records := make([]domain.TrendRecord, 0, len(plannerTerms))
	for _, term := range plannerTerms {
		records = append(records, domain.TrendRecord{
			Keyword:  term.keyword,
			Interest: term.score,
			Source:   k.Name(),
		})
	}
	return records, nil
}
