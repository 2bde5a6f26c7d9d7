// Package notify renders accepted status transitions and validation
// results into human-readable messages and delivers them to chat webhooks.
// Delivery is fire-and-forget: failures are logged, never returned.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Sink delivers one rendered message to a channel.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// defaultHTTPClient bounds webhook round trips so a slow channel cannot
// stall event handling.
var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// DiscordWebhook posts messages to a Discord-style webhook as
// {"content": message}.
type DiscordWebhook struct {
	url    string
	client *http.Client
}

// NewDiscordWebhook creates a Discord sink for the given webhook URL.
func NewDiscordWebhook(url string) *DiscordWebhook {
	return &DiscordWebhook{url: url, client: defaultHTTPClient}
}

func (d *DiscordWebhook) Send(ctx context.Context, message string) error {
	return postJSON(ctx, d.client, d.url, map[string]string{"content": message})
}

// SlackWebhook posts messages to a Slack-style webhook as
// {"text": message}. Discord's bold markers are rewritten to Slack's.
type SlackWebhook struct {
	url    string
	client *http.Client
}

// NewSlackWebhook creates a Slack sink for the given webhook URL.
func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{url: url, client: defaultHTTPClient}
}

func (s *SlackWebhook) Send(ctx context.Context, message string) error {
	return postJSON(ctx, s.client, s.url, map[string]string{
		"text": strings.ReplaceAll(message, "**", "*"),
	})
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
