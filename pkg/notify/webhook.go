package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookChannel POSTs the alert as JSON to an arbitrary endpoint.
type WebhookChannel struct {
	name   string
	url    string
	client *http.Client
}

// NewWebhookChannel creates a generic webhook channel.
func NewWebhookChannel(name, url string) *WebhookChannel {
	return &WebhookChannel{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WebhookChannel) Name() string { return c.name }

func (c *WebhookChannel) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	return c.post(ctx, body)
}

func (c *WebhookChannel) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status=%d body=%s", resp.StatusCode, string(payload))
	}
	return nil
}

// SlackChannel delivers alerts to a Slack incoming webhook.
type SlackChannel struct {
	webhook *WebhookChannel
}

// NewSlackChannel creates a Slack webhook channel.
func NewSlackChannel(webhookURL string) *SlackChannel {
	return &SlackChannel{webhook: NewWebhookChannel("slack", webhookURL)}
}

func (c *SlackChannel) Name() string { return "slack" }

func (c *SlackChannel) Send(ctx context.Context, alert Alert) error {
	payload := map[string]string{
		"text": fmt.Sprintf(":rotating_light: *%s* [%s]\n%s\nalert: %s",
			alert.Title, alert.ErrorKind, alert.Message, alert.ID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}
	return c.webhook.post(ctx, body)
}
