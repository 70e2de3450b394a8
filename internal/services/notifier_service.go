package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/realtime"
	"github.com/bannerworks/alertbanner/pkg/logger"
	"github.com/bannerworks/alertbanner/pkg/mail"
	"github.com/bannerworks/alertbanner/pkg/metrics"
)

// NotifierService dispatches browser and email notifications for published
// alerts. Dispatch failures are logged and counted, never returned: a failed
// notification must not fail the save that triggered it.
type NotifierService struct {
	mailer     mail.Mailer
	hub        *realtime.Hub
	recipients []string
	log        *zap.Logger
}

// NewNotifierService constructs a notifier. A nil mailer or hub disables the
// corresponding channel.
func NewNotifierService(mailer mail.Mailer, hub *realtime.Hub, recipients []string) *NotifierService {
	return &NotifierService{
		mailer:     mailer,
		hub:        hub,
		recipients: recipients,
		log:        logger.WithModule("notifier"),
	}
}

// AlertCreated announces a newly published alert on its requested channels.
func (n *NotifierService) AlertCreated(ctx context.Context, dto *AlertDTO) {
	n.dispatch(ctx, dto, realtime.EventAlertCreated)
}

// AlertUpdated announces a replaced alert on its requested channels.
func (n *NotifierService) AlertUpdated(ctx context.Context, dto *AlertDTO) {
	n.dispatch(ctx, dto, realtime.EventAlertUpdated)
}

// AlertDeleted tells subscribed banner clients to drop the alert.
func (n *NotifierService) AlertDeleted(ctx context.Context, id string, sites []string) {
	if n == nil || n.hub == nil {
		return
	}
	n.hub.BroadcastSites(sites, realtime.Message{
		Event: realtime.EventAlertDeleted,
		Data:  map[string]string{"id": id},
	})
}

func (n *NotifierService) dispatch(ctx context.Context, dto *AlertDTO, event string) {
	if n == nil || dto == nil || dto.ContentType != content.TypeAlert {
		return
	}

	// Scheduled alerts are announced once their window opens; banner clients
	// pick them up through the regular list endpoint.
	if !dto.VisibleAt(time.Now().UTC()) {
		return
	}

	if dto.NotificationType.WantsBrowser() && n.hub != nil {
		n.hub.BroadcastSites(dto.TargetSites, realtime.Message{
			Event: event,
			Data:  dto,
		})
		metrics.NotificationsSent.WithLabelValues("browser", "ok").Inc()
	}

	if dto.NotificationType.WantsEmail() && n.mailer != nil {
		if err := n.sendEmail(ctx, dto); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
			n.log.Warn("email notification failed",
				zap.String("alert_id", dto.ID),
				zap.Error(err))
			return
		}
		metrics.NotificationsSent.WithLabelValues("email", "ok").Inc()
	}
}

func (n *NotifierService) sendEmail(ctx context.Context, dto *AlertDTO) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("notifier: no recipients configured")
	}

	title, description := dto.Title, dto.Description
	if dto.MultiLanguage() {
		// Email goes out once, in the fallback language. An incomplete
		// fallback yields to the first variant with publishable content.
		for _, variant := range dto.LanguageContent {
			if variant.AvailableForAll && variant.Complete() {
				title, description = variant.Title, variant.Description
				break
			}
		}
		if title == "" {
			for _, variant := range dto.LanguageContent {
				if variant.Complete() {
					title, description = variant.Title, variant.Description
					break
				}
			}
		}
		if title == "" && len(dto.LanguageContent) > 0 {
			title = dto.LanguageContent[0].Title
			description = dto.LanguageContent[0].Description
		}
	}

	body := content.StripMarkup(description)
	if dto.LinkURL != "" {
		body += "\n\n" + strings.TrimSpace(dto.LinkDescription) + ": " + dto.LinkURL
	}

	return n.mailer.Send(ctx, mail.Message{
		To:      n.recipients,
		Subject: fmt.Sprintf("[%s] %s", dto.Priority, title),
		Body:    body,
	})
}
