// Package delivery posts the rendered reports to their destinations:
// the chat webhook, the SES email, and the published dashboard. Each
// deliverer is independent so one failing channel never blocks another.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook posts chat summaries to an incoming-webhook URL.
type Webhook struct {
	url        string
	httpClient *http.Client
}

// NewWebhook returns nil when no webhook URL is configured; callers
// treat a nil deliverer as "channel disabled".
func NewWebhook(url string) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Post sends the message as an incoming-webhook payload.
func (w *Webhook) Post(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
