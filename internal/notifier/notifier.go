// Package notifier fans newly recorded crossover signals out to the
// configured delivery channels. Every sink is fire-and-forget: a failing
// channel is logged and never blocks the others, and delivery never feeds
// back into signal detection or the ledger.
package notifier

import (
	"context"
	"log"

	"CrossWatch/internal/model"
)

// Notifier is the interface for a single delivery channel.
type Notifier interface {
	// Notify delivers one signal with the wall-clock timestamp of the
	// polling cycle that recorded it.
	Notify(ctx context.Context, sig model.CrossoverSignal, timestamp string) error
	Name() string
}

// Router dispatches each signal to all registered sinks.
type Router struct {
	sinks     []Notifier
	onFailure func() // metrics hook, may be nil
}

// NewRouter creates a router over the given sinks.
func NewRouter(sinks ...Notifier) *Router {
	return &Router{sinks: sinks}
}

// OnFailure registers a callback invoked once per failed delivery.
func (r *Router) OnFailure(fn func()) { r.onFailure = fn }

// Dispatch delivers every signal to every sink. Each signal is handed off
// exactly once per sink; failures are logged and counted but not retried
// here, since the ledger has already recorded the signal.
func (r *Router) Dispatch(ctx context.Context, signals []model.CrossoverSignal, timestamp string) {
	for _, sig := range signals {
		for _, sink := range r.sinks {
			if err := sink.Notify(ctx, sig, timestamp); err != nil {
				log.Printf("[WARN] %s notification failed for %s %s: %v", sink.Name(), sig.Ticker, sig.Date, err)
				if r.onFailure != nil {
					r.onFailure()
				}
			}
		}
	}
}
