package email

import (
	"fmt"
	"html"
	"path/filepath"
	"time"

	"socialpulse/internal/config"
	"socialpulse/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .success { color: #059669; }
        .error { color: #dc2626; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s/stats">%s/stats</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// IngestFailed generates the email sent when a batch file could not be ingested.
func (t *Templates) IngestFailed(source, outcome string, result models.IngestResult, cause error) (subject, htmlBody, textBody string) {
	name := filepath.Base(source)
	subject = fmt.Sprintf("[%s] Ingestion failed: %s", t.cfg.SiteTitle, name)

	content := fmt.Sprintf(`
        <p>A batch file could not be ingested. No rows from it were stored.</p>

        <div class="info-box">
            <p><span class="label">File:</span> <code>%s</code></p>
            <p><span class="label">Outcome:</span> <span class="error">%s</span></p>
            <p><span class="label">Run:</span> <code>%s</code></p>
            <p><span class="label">Error:</span> %s</p>
        </div>
    `,
		html.EscapeString(name),
		html.EscapeString(outcome),
		html.EscapeString(result.RunID),
		html.EscapeString(cause.Error()),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Ingestion failed

File: %s
Outcome: %s
Run: %s
Error: %s

No rows from this file were stored.

--
%s`,
		name,
		outcome,
		result.RunID,
		cause,
		t.cfg.SiteTitle,
	)

	return
}

// IngestCompleted generates the summary email for a successful run.
func (t *Templates) IngestCompleted(result models.IngestResult) (subject, htmlBody, textBody string) {
	name := filepath.Base(result.Source)
	subject = fmt.Sprintf("[%s] Ingested %s", t.cfg.SiteTitle, name)
	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)

	content := fmt.Sprintf(`
        <p>A batch file was ingested <span class="success">successfully</span>.</p>

        <div class="info-box">
            <p><span class="label">File:</span> <code>%s</code></p>
            <p><span class="label">Rows read:</span> %d (%d below floor, %d without categories)</p>
            <p><span class="label">Accounts created:</span> %d</p>
            <p><span class="label">Categories created:</span> %d</p>
            <p><span class="label">Associations created:</span> %d</p>
            <p><span class="label">Observations created:</span> %d</p>
            <p><span class="label">Duration:</span> %s</p>
        </div>
    `,
		html.EscapeString(name),
		result.Load.RowsRead,
		result.Load.RowsBelowFloor,
		result.Load.RowsWithoutCategories,
		result.AccountsCreated,
		result.CategoriesCreated,
		result.AssociationsCreated,
		result.ObservationsCreated,
		elapsed,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Ingestion completed

File: %s
Rows read: %d (%d below floor, %d without categories)
Accounts created: %d
Categories created: %d
Associations created: %d
Observations created: %d
Duration: %s

--
%s`,
		name,
		result.Load.RowsRead,
		result.Load.RowsBelowFloor,
		result.Load.RowsWithoutCategories,
		result.AccountsCreated,
		result.CategoriesCreated,
		result.AssociationsCreated,
		result.ObservationsCreated,
		elapsed,
		t.cfg.SiteTitle,
	)

	return
}
