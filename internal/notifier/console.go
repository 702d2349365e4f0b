package notifier

import (
	"context"
	"fmt"

	"CrossWatch/internal/model"
)

// ConsoleNotifier prints alerts to stdout.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (c *ConsoleNotifier) Name() string { return "console" }

func (c *ConsoleNotifier) Notify(_ context.Context, sig model.CrossoverSignal, timestamp string) error {
	_, _, message := FormatSignal(sig)
	fmt.Printf("\n[%s] *** CROSSOVER ALERT ***\n%s\n", timestamp, message)
	return nil
}
