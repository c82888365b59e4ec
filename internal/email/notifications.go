package email

import (
	"log/slog"

	"socialpulse/internal/config"
	"socialpulse/internal/models"
)

// Notifier sends email notifications about ingestion runs.
type Notifier struct {
	sender     Sender
	templates  *Templates
	cfg        *config.Config
	recipients []string
}

// NewNotifier creates a notifier delivering through SMTP.
func NewNotifier(cfg *config.Config, recipients []string) *Notifier {
	var sender Sender
	if svc := NewService(cfg); svc.IsEnabled() {
		sender = svc
	}
	return NewNotifierWithSender(cfg, sender, recipients)
}

// NewNotifierWithSender creates a notifier with an explicit sender. A nil
// sender disables delivery.
func NewNotifierWithSender(cfg *config.Config, sender Sender, recipients []string) *Notifier {
	return &Notifier{
		sender:     sender,
		templates:  NewTemplates(cfg),
		cfg:        cfg,
		recipients: recipients,
	}
}

// Enabled reports whether any notification can be delivered.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && len(n.recipients) > 0
}

// NotifyIngestFailed tells operators that a file was rejected or could not
// be stored.
func (n *Notifier) NotifyIngestFailed(source, outcome string, result models.IngestResult, cause error) {
	if !n.Enabled() || !n.cfg.EmailNotifyOnFailure {
		return
	}

	subject, htmlBody, textBody := n.templates.IngestFailed(source, outcome, result, cause)
	n.send(subject, htmlBody, textBody)
}

// NotifyIngestCompleted sends the run summary of a successful ingestion.
func (n *Notifier) NotifyIngestCompleted(result models.IngestResult) {
	if !n.Enabled() || !n.cfg.EmailNotifyOnSuccess {
		return
	}

	subject, htmlBody, textBody := n.templates.IngestCompleted(result)
	n.send(subject, htmlBody, textBody)
}

func (n *Notifier) send(subject, htmlBody, textBody string) {
	if err := n.sender.Send(n.recipients, subject, htmlBody, textBody); err != nil {
		slog.Error("failed to send email", "to", n.recipients, "subject", subject, "error", err)
		return
	}
	slog.Info("email sent", "to", n.recipients, "subject", subject)
}
