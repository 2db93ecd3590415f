package domain

import "time"

// Recommendation is the per-channel outcome of one governance cycle. It is
// created once and never mutated afterwards; Status is always reproducible by
// re-applying the classifier to Score.
type Recommendation struct {
	Channel        string         `json:"channel"`
	Score          float64        `json:"score"`
	Status         Classification `json:"status"`
	Recommendation string         `json:"recommendation"`
	Action         string         `json:"action,omitempty"`
	Override       Override       `json:"override,omitempty"`
}

// ToolHealth is the probe result for one monitored external tool.
type ToolHealth struct {
	Tool      string `json:"tool"`
	LatencyMS int64  `json:"latency_ms"`
	Status    string `json:"status"`
	Score     int    `json:"score"`
}

// GovernanceReport is the artifact of one cycle. New cycles create new
// reports; old reports are never edited.
type GovernanceReport struct {
	CycleID                string            `json:"cycle_id"`
	Date                   time.Time         `json:"date"`
	InsightSummaries       []string          `json:"insight_summaries"`
	ChannelRecommendations []Recommendation  `json:"channel_recommendations"`
	NewNicheSuggestions    []NicheSuggestion `json:"new_niche_suggestions"`
	Trends                 []TrendRecord     `json:"trends,omitempty"`
	Tools                  []ToolHealth      `json:"tools,omitempty"`
}
