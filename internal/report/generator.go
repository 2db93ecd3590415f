// Package report assembles the governance report artifact from channel
// recommendations and the trending-niche feed.
package report

import (
	"fmt"
	"strings"
	"time"

	"ChannelGovernor/internal/domain"
)

const maxNicheSuggestions = 3

// Generator turns one cycle's outputs into a GovernanceReport. The weight
// vector is only consulted for the monetization insight heuristic.
type Generator struct {
	weights map[string]float64
}

// NewGenerator keeps a reference to the configured metric weights.
func NewGenerator(weights map[string]float64) *Generator {
	return &Generator{weights: weights}
}

// Generate builds the report for the given run date. Reports are created
// once per cycle and never edited afterwards.
func (g *Generator) Generate(date time.Time, recs []domain.Recommendation, trendFeed []domain.TrendRecord) domain.GovernanceReport {
	var promoted, retired []string
	for _, rec := range recs {
		switch rec.Status {
		case domain.StatusPromote:
			promoted = append(promoted, rec.Channel)
		case domain.StatusRetire:
			retired = append(retired, rec.Channel)
		}
	}

	var insights []string
	if len(promoted) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Channels poised for growth: %s - showing strong momentum and high performance. "+
				"Recommend doubling down on these niches.",
			strings.Join(promoted, ", ")))
	}
	if len(retired) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Underperforming channels: %s - falling below performance thresholds. "+
				"Consider phasing out or pivoting strategy for these.",
			strings.Join(retired, ", ")))
	}
	if len(promoted) == 0 && len(retired) == 0 {
		insights = append(insights,
			"Most channels are in a stable range with no immediate extreme actions recommended. "+
				"Continue monitoring for subtle trend shifts.")
	}

	if insight, ok := g.monetizationInsight(recs); ok {
		insights = append(insights, insight)
	}

	return domain.GovernanceReport{
		Date:                   date,
		InsightSummaries:       insights,
		ChannelRecommendations: recs,
		NewNicheSuggestions:    nicheSuggestions(trendFeed),
	}
}

// monetizationInsight flags the first stable channel worth modest investment
// when RPM carries a positive weight.
func (g *Generator) monetizationInsight(recs []domain.Recommendation) (string, bool) {
	if g.weights["RPM"] <= 0 {
		return "", false
	}
	for _, rec := range recs {
		if rec.Status != domain.StatusWatch {
			continue
		}
		if !strings.Contains(rec.Recommendation, "Maintain and watch") {
			continue
		}
		return fmt.Sprintf(
			"Monetization opportunity: %s has high RPM potential. Even with average growth, "+
				"its niche could yield higher revenue - consider modest investment.",
			rec.Channel), true
	}
	return "", false
}

// nicheSuggestions derives suggestions from the top-ranked trend records.
func nicheSuggestions(trendFeed []domain.TrendRecord) []domain.NicheSuggestion {
	suggestions := make([]domain.NicheSuggestion, 0, maxNicheSuggestions)
	for _, rec := range trendFeed {
		if rec.ProjectedRPM <= 0 {
			continue
		}
		suggestions = append(suggestions, domain.NicheSuggestion{
			Niche:  rec.Keyword,
			Source: rec.Source,
			Rationale: fmt.Sprintf(
				"%q is surging on %s with projected RPM ~$%.2f and relatively few established channels.",
				rec.Keyword, rec.Source, rec.ProjectedRPM),
		})
		if len(suggestions) >= maxNicheSuggestions {
			break
		}
	}
	return suggestions
}
