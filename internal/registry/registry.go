// Package registry manages webhook notification targets, persisted as a
// JSON file keyed by URL.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Webhook is one registered notification target. An empty Tickers list
// means the target subscribes to all tickers.
type Webhook struct {
	ID        int      `json:"id"`
	URL       string   `json:"url"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Enabled   bool     `json:"enabled"`
	Tickers   []string `json:"tickers"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// Registry loads and saves the webhook file. All operations re-read the
// file so multiple processes (bot daemon, API server) stay consistent.
type Registry struct {
	path string
	mu   sync.Mutex
}

// New creates a registry backed by the given file path.
func New(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) load() []Webhook {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}
	var hooks []Webhook
	if err := json.Unmarshal(data, &hooks); err != nil {
		// A corrupt file is treated as empty rather than fatal.
		return nil
	}
	return hooks
}

func (r *Registry) save(hooks []Webhook) error {
	data, err := json.MarshalIndent(hooks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal webhooks: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write webhooks: %w", err)
	}
	return nil
}

// List returns all registered webhooks.
func (r *Registry) List() []Webhook {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Register adds a webhook, or updates the existing entry with the same URL.
func (r *Registry) Register(url, name, hookType string, tickers []string) (Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks := r.load()
	now := time.Now().Format(time.RFC3339)

	for i := range hooks {
		if hooks[i].URL == url {
			if name != "" {
				hooks[i].Name = name
			}
			hooks[i].Type = hookType
			if tickers != nil {
				hooks[i].Tickers = tickers
			}
			hooks[i].UpdatedAt = now
			if err := r.save(hooks); err != nil {
				return Webhook{}, err
			}
			return hooks[i], nil
		}
	}

	if name == "" {
		name = fmt.Sprintf("Webhook %d", len(hooks)+1)
	}
	if tickers == nil {
		tickers = []string{}
	}
	hook := Webhook{
		ID:        len(hooks) + 1,
		URL:       url,
		Name:      name,
		Type:      hookType,
		Enabled:   true,
		Tickers:   tickers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	hooks = append(hooks, hook)
	if err := r.save(hooks); err != nil {
		return Webhook{}, err
	}
	return hook, nil
}

// Unregister removes a webhook by URL. Returns true if one was removed.
func (r *Registry) Unregister(url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks := r.load()
	kept := hooks[:0]
	for _, h := range hooks {
		if h.URL != url {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(hooks) {
		return false, nil
	}
	if err := r.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Toggle enables or disables a webhook by URL. Returns true if found.
func (r *Registry) Toggle(url string, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks := r.load()
	for i := range hooks {
		if hooks[i].URL == url {
			hooks[i].Enabled = enabled
			hooks[i].UpdatedAt = time.Now().Format(time.RFC3339)
			if err := r.save(hooks); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Enabled returns the enabled webhooks subscribed to the given ticker.
// A webhook with no ticker filter receives every ticker's signals.
func (r *Registry) Enabled(ticker string) []Webhook {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Webhook
	for _, h := range r.load() {
		if !h.Enabled {
			continue
		}
		if len(h.Tickers) == 0 || contains(h.Tickers, ticker) {
			out = append(out, h)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
