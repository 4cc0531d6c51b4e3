// Package notify delivers creation notifications by e-mail.
package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// LogNotifier logs notifications instead of sending them. Used locally and
// whenever no mail API key is configured.
type LogNotifier struct {
	to  string
	log zerolog.Logger
}

func (n *LogNotifier) NotifyCreated(_ context.Context, e domain.BuchCreated) error {
	n.log.Info().
		Str("to", n.to).
		Str("subject", subject(e)).
		Str("buch_id", e.ID).
		Msg("creation mail (not sent)")
	return nil
}

// ResendNotifier sends notifications through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     string
}

func (n *ResendNotifier) NotifyCreated(ctx context.Context, e domain.BuchCreated) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: subject(e),
		Html:    body(e),
	}
	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// Config selects and configures the notifier.
type Config struct {
	Local  bool
	APIKey string
	From   string
	To     string
}

// New returns a LogNotifier when running locally or without an API key,
// a ResendNotifier otherwise.
func New(cfg Config, log zerolog.Logger) ports.Notifier {
	if cfg.Local || cfg.APIKey == "" {
		return &LogNotifier{to: cfg.To, log: log}
	}
	return &ResendNotifier{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
		to:     cfg.To,
	}
}

func subject(e domain.BuchCreated) string {
	return "Neues Buch " + e.ID
}

func body(e domain.BuchCreated) string {
	return fmt.Sprintf("<p>Das Buch <strong>%s</strong> mit der ID <code>%s</code> wurde angelegt.</p>",
		html.EscapeString(e.Title), e.ID)
}
