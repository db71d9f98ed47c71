package services

import (
	"context"
	"fmt"
	"log"

	"github.com/trove/backend/internal/metrics"
	"github.com/trove/backend/internal/models"
)

// NotificationDispatcher turns an enforcement outcome into user-facing
// messages. Everything here is best effort: a missed notification is not a
// moderation failure, so errors are logged and absorbed, never returned.
type NotificationDispatcher struct {
	sink   NotificationSink
	mailer *ModerationMailer // optional ops alert on permanent bans
}

func NewNotificationDispatcher(sink NotificationSink, mailer *ModerationMailer) *NotificationDispatcher {
	return &NotificationDispatcher{sink: sink, mailer: mailer}
}

// ReportReceived acknowledges a newly filed report to its reporter.
func (d *NotificationDispatcher) ReportReceived(ctx context.Context, report *models.Report) {
	d.send(ctx, report.ReporterID, models.NotificationReportReceived,
		"We received your report",
		"Thanks for helping keep the marketplace safe. Our team will review your report and take any necessary action.")
}

// Notify informs both parties after an enforced decision. Dismissals send
// nothing beyond the original intake acknowledgment.
func (d *NotificationDispatcher) Notify(ctx context.Context, report *models.Report, result *EnforcementResult) {
	if result.Action == models.ActionDismiss {
		return
	}

	d.send(ctx, report.ReporterID, models.NotificationActionTaken,
		"Update on your report",
		"Thanks for your report. Our team reviewed it and took action.")

	switch result.Action {
	case models.ActionWarn:
		d.send(ctx, report.ReportedUserID, models.NotificationWarning,
			"Content removed for a guideline violation",
			fmt.Sprintf("Content you posted was reported for %q and removed after review. Repeated violations lead to suspension or permanent removal.", report.Reason))
	case models.ActionTempSuspend:
		body := "Your account has been temporarily suspended for violating our community guidelines."
		if result.SuspensionExpiry != nil {
			body = fmt.Sprintf("Your account has been temporarily suspended for violating our community guidelines. The suspension lifts on %s.",
				result.SuspensionExpiry.Format("January 2, 2006"))
		}
		d.send(ctx, report.ReportedUserID, models.NotificationTempSuspension,
			"Your account has been suspended", body)
	case models.ActionBan:
		d.send(ctx, report.ReportedUserID, models.NotificationPermanentBan,
			"Your account has been permanently closed",
			"Following a review of reported activity, your account has been permanently removed from the marketplace.")
		if d.mailer != nil {
			if err := d.mailer.SendBanAlert(ctx, report.ReportedUserID, report.ID, result.NewTotal); err != nil {
				log.Printf("[Notify] ban alert email failed user=%s report=%s: %v", report.ReportedUserID, report.ID, err)
			}
		}
	}
}

func (d *NotificationDispatcher) send(ctx context.Context, userID, typ, title, body string) {
	if d.sink == nil || userID == "" {
		return
	}
	if err := d.sink.Send(ctx, userID, typ, title, body); err != nil {
		metrics.NotificationsDropped.Inc()
		log.Printf("[Notify] dropped %s notification for user=%s: %v", typ, userID, err)
	}
}
