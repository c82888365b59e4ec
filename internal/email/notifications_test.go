package email

import (
	"errors"
	"testing"

	"socialpulse/internal/models"
)

type recordingSender struct {
	to       [][]string
	subjects []string
	err      error
}

func (r *recordingSender) Send(to []string, subject, htmlBody, textBody string) error {
	r.to = append(r.to, to)
	r.subjects = append(r.subjects, subject)
	return r.err
}

func TestNewNotifier_DisabledWithoutSMTP(t *testing.T) {
	n := NewNotifier(testConfig(), []string{"ops@example.com"})
	if n.Enabled() {
		t.Error("Enabled() = true without SMTP settings")
	}

	// Should not panic when email is disabled
	n.NotifyIngestFailed("batch.csv", "malformed", models.IngestResult{}, errors.New("bad"))
}

func TestNotifier_NotifyIngestFailed(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifierWithSender(testConfig(), sender, []string{"ops@example.com"})

	n.NotifyIngestFailed("batch.csv", "unavailable", models.IngestResult{}, errors.New("store down"))

	if len(sender.subjects) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.subjects))
	}
	if sender.to[0][0] != "ops@example.com" {
		t.Errorf("recipient = %v", sender.to[0])
	}
}

func TestNotifier_RespectsToggles(t *testing.T) {
	cfg := testConfig()
	cfg.EmailNotifyOnFailure = false
	cfg.EmailNotifyOnSuccess = false

	sender := &recordingSender{}
	n := NewNotifierWithSender(cfg, sender, []string{"ops@example.com"})

	n.NotifyIngestFailed("batch.csv", "malformed", models.IngestResult{}, errors.New("bad"))
	n.NotifyIngestCompleted(models.IngestResult{Source: "batch.csv"})

	if len(sender.subjects) != 0 {
		t.Errorf("sent %d emails with notifications disabled", len(sender.subjects))
	}
}

func TestNotifier_NoRecipients(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifierWithSender(testConfig(), sender, nil)

	n.NotifyIngestCompleted(models.IngestResult{Source: "batch.csv"})

	if len(sender.subjects) != 0 {
		t.Error("sent email without recipients")
	}
}

func TestNotifier_SendErrorIsLogged(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewNotifierWithSender(testConfig(), sender, []string{"ops@example.com"})

	// Should not panic or propagate
	n.NotifyIngestCompleted(models.IngestResult{Source: "batch.csv"})

	if len(sender.subjects) != 1 {
		t.Errorf("attempted %d sends, want 1", len(sender.subjects))
	}
}

func TestNotifier_NilIsDisabled(t *testing.T) {
	var n *Notifier
	if n.Enabled() {
		t.Error("nil notifier reported enabled")
	}
}
