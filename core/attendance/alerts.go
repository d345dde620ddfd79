package attendance

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
)

const alertsTemplate = "attendance_alerts"

var ErrNoRecipients = errors.New("no alert recipients configured")

type (
	alertDigestData struct {
		Start core.Date
		End   core.Date
		Items []ReportItem
	}

	reporter interface {
		Report(ctx context.Context, q ReportQuery) ([]ReportItem, error)
	}

	// AlertNotifier emails the members flagged as needing follow-up.
	AlertNotifier struct {
		reports    reporter
		mailSvc    core.EmailService
		recipients []mail.Address
		logger     core.Logger
	}
)

// NewAlertDigest returns the digest message, or nil when nobody needs follow-up.
func NewAlertDigest(start, end core.Date, items []ReportItem, recipients []mail.Address) *core.EmailMessage {
	alerts := Alerts(items)
	if len(alerts) == 0 {
		return nil
	}
	return &core.EmailMessage{
		To:           recipients,
		Subject:      "Miembros que necesitan seguimiento",
		TemplateName: alertsTemplate,
		TemplateData: alertDigestData{Start: start, End: end, Items: alerts},
	}
}

func NewAlertNotifier(reports reporter, mailSvc core.EmailService, recipients []mail.Address, logger core.Logger) *AlertNotifier {
	return &AlertNotifier{
		reports:    reports,
		mailSvc:    mailSvc,
		recipients: recipients,
		logger:     logger,
	}
}

// Notify sends the digest for [start, end] across every group and returns the number of alerts.
func (n *AlertNotifier) Notify(ctx context.Context, start, end core.Date) (int, error) {
	if len(n.recipients) == 0 {
		return 0, ErrNoRecipients
	}
	items, err := n.reports.Report(ctx, ReportQuery{Start: start, End: end})
	if err != nil {
		return 0, err
	}
	msg := NewAlertDigest(start, end, items, n.recipients)
	if msg == nil {
		n.logger.Info("no members need follow-up", map[string]interface{}{"start": start.String(), "end": end.String()})
		return 0, nil
	}
	n.mailSvc.SendMessages(msg)
	return len(msg.TemplateData.(alertDigestData).Items), nil
}
