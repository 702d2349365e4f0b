package notifier

import (
	"context"
	"fmt"
	"os"

	"CrossWatch/internal/model"
)

// FileLogNotifier appends alerts to the crossover events log file.
type FileLogNotifier struct {
	Path string
}

func NewFileLogNotifier(path string) *FileLogNotifier {
	return &FileLogNotifier{Path: path}
}

func (f *FileLogNotifier) Name() string { return "file" }

func (f *FileLogNotifier) Notify(_ context.Context, sig model.CrossoverSignal, timestamp string) error {
	fh, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open events log: %w", err)
	}
	defer fh.Close()

	_, err = fmt.Fprintf(fh, "[%s] %s %s on %s\n  Close: $%.2f, Short MA: $%.2f, Long MA: $%.2f\n\n",
		timestamp, sig.Ticker, sig.Kind, sig.Date, sig.Close, sig.ShortMA, sig.LongMA)
	if err != nil {
		return fmt.Errorf("append events log: %w", err)
	}
	return nil
}
