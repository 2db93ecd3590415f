package sources

import (
	"context"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/trends"
)

const feedMaxItems = 10

// Feed reads a trending-searches RSS feed. Feeds that publish approximate
// traffic figures get those as interest; otherwise items carry interest 1.
type Feed struct {
	feedURL string
	parser  *gofeed.Parser
}

var _ trends.TrendSource = (*Feed)(nil)

// NewFeed builds the RSS adapter.
func NewFeed(feedURL string) *Feed {
	return &Feed{feedURL: feedURL, parser: gofeed.NewParser()}
}

// Name identifies the tool for policy enforcement.
func (f *Feed) Name() string { return "rss_trends" }

// Trending parses the feed and maps each item to one record.
func (f *Feed) Trending(ctx context.Context) ([]domain.TrendRecord, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.TrendRecord, 0, feedMaxItems)
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		records = append(records, domain.TrendRecord{
			Keyword:  title,
			Interest: itemInterest(item),
			Source:   f.Name(),
		})
		if len(records) >= feedMaxItems {
			break
		}
	}

	return records, nil
}

// itemInterest reads the ht:approx_traffic extension ("200,000+") when the
// feed carries it.
func itemInterest(item *gofeed.Item) float64 {
	exts, ok := item.Extensions["ht"]
	if !ok {
		return 1.0
	}
	traffic, ok := exts["approx_traffic"]
	if !ok || len(traffic) == 0 {
		return 1.0
	}

	raw := strings.TrimSpace(traffic[0].Value)
	raw = strings.TrimSuffix(raw, "+")
	raw = strings.ReplaceAll(raw, ",", "")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 1.0
	}
	return value
}
