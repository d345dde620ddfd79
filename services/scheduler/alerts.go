package schedulersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/ministerio-jovenes/asistencia/core"
)

var (
	todayFunc  = core.Today // mockable
	jobTimeout = time.Minute
)

type Notifier interface {
	Notify(ctx context.Context, start, end core.Date) (int, error)
}

// NewAlertScheduler returns a stopped cron running the alert digest on conf.Alerts.Schedule.
// The digest covers the conf.Alerts.LookBack days up to today.
// A nil cron is returned when no schedule is configured.
func NewAlertScheduler(conf *core.Config, notifier Notifier, logger core.Logger) (*cron.Cron, error) {
	if conf.Alerts.Schedule == "" {
		return nil, nil
	}
	c := cron.New()
	if _, err := c.AddFunc(conf.Alerts.Schedule, AlertJob(conf.Alerts.LookBack, notifier, logger)); err != nil {
		return nil, errors.Wrapf(err, "scheduling alert digest %q", conf.Alerts.Schedule)
	}
	return c, nil
}

// AlertJob sends the digest of the `lookBack` days up to today.
func AlertJob(lookBack time.Duration, notifier Notifier, logger core.Logger) func() {
	days := int(lookBack / (24 * time.Hour))
	return func() {
		end := todayFunc()
		start := end.AddDays(-days)

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := notifier.Notify(ctx, start, end)
		if err != nil {
			logger.Error(fmt.Sprintf("sending alert digest: %v", err), err)
			return
		}
		logger.Info(fmt.Sprintf("alert digest sent: %d members need follow-up", n))
	}
}
