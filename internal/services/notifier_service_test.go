package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/pkg/mail"
)

type captureMailer struct {
	sent []mail.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func emailAlert() *AlertDTO {
	return &AlertDTO{
		Record: content.Record{
			ID:               "a1",
			Title:            "Planned outage",
			Description:      "<p>Servers &amp; storage go down at 22:00.</p>",
			Priority:         content.PriorityHigh,
			NotificationType: content.NotifyEmail,
			ContentType:      content.TypeAlert,
			TargetSites:      []string{"site1"},
		},
	}
}

func TestNotifierSendsEmailWithStrippedMarkup(t *testing.T) {
	mailer := &captureMailer{}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	notifier.AlertCreated(context.Background(), emailAlert())

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	require.Equal(t, []string{"ops@example.com"}, msg.To)
	require.Contains(t, msg.Subject, "Planned outage")
	require.Contains(t, msg.Subject, "High")
	require.Contains(t, msg.Body, "Servers & storage go down at 22:00.")
	require.NotContains(t, msg.Body, "<p>")
}

func TestNotifierUsesFallbackVariantForMultiLanguage(t *testing.T) {
	dto := emailAlert()
	dto.Title, dto.Description = "", ""
	dto.LanguageContent = []content.Variant{
		{Language: "fr-fr", Title: "Panne", Description: "Indisponible ce soir"},
		{Language: "en-us", Title: "Outage", Description: "Down tonight", AvailableForAll: true},
	}

	mailer := &captureMailer{}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	notifier.AlertCreated(context.Background(), dto)

	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0].Subject, "Outage")
	require.Contains(t, mailer.sent[0].Body, "Down tonight")
}

func TestNotifierSkipsIncompleteFallbackVariant(t *testing.T) {
	dto := emailAlert()
	dto.Title, dto.Description = "", ""
	dto.LanguageContent = []content.Variant{
		{Language: "fr-fr", Title: "Panne", Description: "Indisponible ce soir"},
		{Language: "en-us", Title: "Outage", Description: "", AvailableForAll: true},
	}

	mailer := &captureMailer{}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	notifier.AlertCreated(context.Background(), dto)

	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0].Subject, "Panne")
	require.Contains(t, mailer.sent[0].Body, "Indisponible ce soir")
}

func TestNotifierSkipsAlertsOutsideScheduleWindow(t *testing.T) {
	dto := emailAlert()
	start := time.Now().UTC().Add(time.Hour)
	dto.ScheduledStart = &start

	mailer := &captureMailer{}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	notifier.AlertCreated(context.Background(), dto)
	require.Empty(t, mailer.sent, "alerts are announced once their window opens")
}

func TestNotifierSkipsDraftsAndTemplates(t *testing.T) {
	mailer := &captureMailer{}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	dto := emailAlert()
	dto.ContentType = content.TypeDraft
	notifier.AlertCreated(context.Background(), dto)

	dto.ContentType = content.TypeTemplate
	notifier.AlertUpdated(context.Background(), dto)

	require.Empty(t, mailer.sent)
}

func TestNotifierSwallowsMailerFailures(t *testing.T) {
	mailer := &captureMailer{err: context.DeadlineExceeded}
	notifier := NewNotifierService(mailer, nil, []string{"ops@example.com"})

	// Must not panic or propagate the error.
	notifier.AlertCreated(context.Background(), emailAlert())
	require.Empty(t, mailer.sent)
}
