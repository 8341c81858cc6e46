package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WebhookSender posts notification payloads to per-channel webhooks.
type WebhookSender struct {
	webhooks   map[string]string
	httpClient *http.Client
}

// NewWebhookSender validates and normalizes every configured webhook URL up
// front so delivery-time failures are always transport failures.
func NewWebhookSender(webhooks map[string]string, timeout time.Duration) (*WebhookSender, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	normalized := make(map[string]string, len(webhooks))
	for channel, raw := range webhooks {
		if channel == "" {
			return nil, errors.New("webhook channel id is required")
		}
		u, err := normalizeURL(raw)
		if err != nil {
			return nil, fmt.Errorf("webhook for channel %s: %w", channel, err)
		}
		normalized[channel] = u
	}

	return &WebhookSender{
		webhooks: normalized,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithHTTPClient overrides the default http.Client. Primarily useful for testing.
func (s *WebhookSender) WithHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		s.httpClient = httpClient
	}
}

func (s *WebhookSender) Send(ctx context.Context, channelID, message string) error {
	target, ok := s.webhooks[channelID]
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, ErrUnknownChannel)
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return MarkRetryable(fmt.Errorf("execute webhook request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		failure := fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return MarkRetryable(failure)
		}
		return failure
	}

	return nil
}

func normalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("webhook URL is required")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid webhook URL: %s", raw)
	}

	return parsed.String(), nil
}
