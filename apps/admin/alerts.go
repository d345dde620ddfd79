package main

import (
	"context"
	"fmt"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
)

var todayFunc = core.Today // mockable

// sendAlerts emails the follow-up digest for [start, end] and waits for it to go out.
func (cli *commandLine) sendAlerts(start, end core.Date) error {
	gw, err := cli.gateway()
	if err != nil {
		return err
	}
	notifier := attendance.NewAlertNotifier(attendance.NewService(gw.Attendance), cli.mailSvc, cli.conf.AlertRecipients(), cli.logger)
	n, err := notifier.Notify(context.Background(), start, end)
	if err != nil {
		return err
	}
	cli.mailSvc.Wait()
	fmt.Fprintf(cli.out, "%d members need follow-up between %s and %s\n", n, start, end)
	return nil
}
