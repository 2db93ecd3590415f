// Package notify pushes cycle summaries to a Slack-compatible webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/ports"
)

// WebhookNotifier posts a short text payload to an incoming-webhook URL.
type WebhookNotifier struct {
	url     string
	channel string
	client  *http.Client
}

var _ ports.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier registers the webhook endpoint and target channel name.
func NewWebhookNotifier(url, channel string) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		channel: channel,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifySummary posts the summary as a JSON message.
func (n *WebhookNotifier) NotifySummary(ctx context.Context, summary string) error {
	if n.url == "" {
		return &domain.NotificationError{Channel: n.channel, Err: fmt.Errorf("webhook notifier misconfigured")}
	}

	payload, err := json.Marshal(map[string]string{
		"channel": n.channel,
		"text":    summary,
	})
	if err != nil {
		return &domain.NotificationError{Channel: n.channel, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return &domain.NotificationError{Channel: n.channel, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &domain.NotificationError{Channel: n.channel, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.NotificationError{Channel: n.channel, Err: fmt.Errorf("webhook error: %s", resp.Status)}
	}
	return nil
}
