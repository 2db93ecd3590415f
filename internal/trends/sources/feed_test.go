package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const trendingRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ht="https://trends.google.com/trending/rss">
  <channel>
    <title>Daily Search Trends</title>
    <item>
      <title>solar eclipse</title>
      <ht:approx_traffic>200,000+</ht:approx_traffic>
    </item>
    <item>
      <title>marathon results</title>
    </item>
    <item>
      <title></title>
    </item>
  </channel>
</rss>`

func TestFeedTrending(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(trendingRSS))
	}))
	defer server.Close()

	src := NewFeed(server.URL)

	records, err := src.Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(records), records)
	}
	if records[0].Keyword != "solar eclipse" || records[0].Interest != 200000 {
		t.Fatalf("traffic extension not parsed: %+v", records[0])
	}
	if records[1].Keyword != "marathon results" || records[1].Interest != 1.0 {
		t.Fatalf("missing traffic must default to 1.0: %+v", records[1])
	}
	if records[0].Source != "rss_trends" {
		t.Fatalf("unexpected source: %s", records[0].Source)
	}
}

func TestFeedUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewFeed(server.URL)

	if _, err := src.Trending(context.Background()); err == nil {
		t.Fatalf("expected error on unreachable feed")
	}
}
