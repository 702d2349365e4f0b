package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CrossWatch/internal/model"
	"CrossWatch/internal/registry"
)

// WebhookNotifier POSTs alerts as JSON to every registered webhook
// subscribed to the signal's ticker, plus an optional static URL from
// configuration. The {"text": ...} payload shape is accepted by Slack and
// Discord incoming webhooks.
type WebhookNotifier struct {
	StaticURL string
	Registry  *registry.Registry
	Client    *http.Client
}

func NewWebhookNotifier(staticURL string, reg *registry.Registry) *WebhookNotifier {
	return &WebhookNotifier{
		StaticURL: staticURL,
		Registry:  reg,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Notify(ctx context.Context, sig model.CrossoverSignal, _ string) error {
	urls := w.targets(sig.Ticker)
	if len(urls) == 0 {
		return nil
	}

	_, _, message := FormatSignal(sig)
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for _, u := range urls {
		if err := w.post(ctx, u, body); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (w *WebhookNotifier) targets(ticker string) []string {
	var urls []string
	if w.StaticURL != "" {
		urls = append(urls, w.StaticURL)
	}
	if w.Registry != nil {
		for _, hook := range w.Registry.Enabled(ticker) {
			if hook.URL != w.StaticURL {
				urls = append(urls, hook.URL)
			}
		}
	}
	return urls
}

func (w *WebhookNotifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
