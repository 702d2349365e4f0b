package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"CrossWatch/internal/model"
)

// EmailNotifier sends alerts over SMTP with STARTTLS (Gmail-compatible).
type EmailNotifier struct {
	Sender    string
	Password  string
	Recipient string
	Host      string
	Port      int
}

func NewEmailNotifier(sender, password, recipient, host string, port int) *EmailNotifier {
	return &EmailNotifier{
		Sender:    sender,
		Password:  password,
		Recipient: recipient,
		Host:      host,
		Port:      port,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(_ context.Context, sig model.CrossoverSignal, _ string) error {
	if e.Sender == "" || e.Password == "" || e.Recipient == "" {
		return fmt.Errorf("email not configured - missing credentials")
	}

	_, name, message := FormatSignal(sig)
	subject := fmt.Sprintf("%s Alert: %s on %s", sig.Ticker, name, sig.Date)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", e.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(message)
	b.WriteString("\r\n")

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	auth := smtp.PlainAuth("", e.Sender, e.Password, e.Host)
	if err := smtp.SendMail(addr, auth, e.Sender, []string{e.Recipient}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
