package notifier

import (
	"fmt"

	"CrossWatch/internal/model"
)

// FormatSignal renders a signal into its alert components: an emoji, a
// human-readable signal name, and the full multi-line message body.
func FormatSignal(sig model.CrossoverSignal) (emoji, name, message string) {
	if sig.Kind == model.GoldenCross {
		emoji = "🟢"
		name = "Golden Cross (BULLISH)"
	} else {
		emoji = "🔴"
		name = "Dead Cross (BEARISH)"
	}

	message = fmt.Sprintf("%s %s %s\nDate: %s\nClose: $%.2f\nShort MA: $%.2f\nLong MA: $%.2f",
		emoji, sig.Ticker, name, sig.Date, sig.Close, sig.ShortMA, sig.LongMA)
	return emoji, name, message
}
