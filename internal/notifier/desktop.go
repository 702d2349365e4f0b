package notifier

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"CrossWatch/internal/model"
)

// DesktopNotifier shows a macOS notification via osascript. On other
// platforms Notify is a no-op.
type DesktopNotifier struct{}

func NewDesktopNotifier() *DesktopNotifier { return &DesktopNotifier{} }

func (d *DesktopNotifier) Name() string { return "desktop" }

func (d *DesktopNotifier) Notify(ctx context.Context, sig model.CrossoverSignal, _ string) error {
	if runtime.GOOS != "darwin" {
		return nil
	}

	_, name, _ := FormatSignal(sig)
	script := fmt.Sprintf(`display notification "%s on %s - Close: $%.2f" with title "%s Alert"`,
		name, sig.Date, sig.Close, sig.Ticker)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript: %w", err)
	}
	return nil
}
