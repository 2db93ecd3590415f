package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/trends"
)

const shortVideoMaxTags = 10

// ShortVideo scrapes the public trending-hashtag page of a short-video
// platform. The page exposes no numeric interest, so every tag carries a
// placeholder interest of 1.
type ShortVideo struct {
	pageURL string
	client  *http.Client
}

var _ trends.TrendSource = (*ShortVideo)(nil)

// NewShortVideo wires an HTTP client for the trending page.
func NewShortVideo(pageURL string, client *http.Client) *ShortVideo {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ShortVideo{pageURL: pageURL, client: client}
}

// Name identifies the tool for policy enforcement.
func (s *ShortVideo) Name() string { return "shortvideo" }

// Trending fetches the page and extracts up to ten unique hashtags.
func (s *ShortVideo) Trending(ctx context.Context) ([]domain.TrendRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trending page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse trending page: %w", err)
	}

	seen := map[string]struct{}{}
	var records []domain.TrendRecord

	doc.Find(`a[href*="/tag/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		tag := strings.TrimSpace(sel.Text())
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			return true
		}
		if _, ok := seen[tag]; ok {
			return true
		}
		seen[tag] = struct{}{}

		records = append(records, domain.TrendRecord{
			Keyword:  "#" + tag,
			Interest: 1.0,
			Source:   s.Name(),
		})
		return len(records) < shortVideoMaxTags
	})

	return records, nil
}
