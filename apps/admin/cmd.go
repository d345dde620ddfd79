package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/ministerio-jovenes/asistencia/apps"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	openGatewayFunc  = storage.Open      // mockable

	errHelp       = errors.New("help provided")
	errNoAccounts = apps.NewArgumentError("the configured gateway manages accounts itself")
)

// alertSender is what the alerts command needs from the email service.
type alertSender interface {
	core.EmailService
	Wait()
}

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	out     io.Writer
	mailSvc alertSender

	gw *storage.Gateway // opened on first use
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                      - run a goose command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-name FULL_NAME]      - create an operator account")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                  - reset an operator's password")
	fmt.Fprintln(cli.out, "  alerts [-start YYYY-MM-DD] [-end YYYY-MM-DD] - email the follow-up digest")
}

func (cli *commandLine) gateway() (*storage.Gateway, error) {
	if cli.gw != nil {
		return cli.gw, nil
	}
	gw, err := openGatewayFunc(cli.conf, cli.logger)
	if err != nil {
		return nil, err
	}
	cli.gw = gw
	return gw, nil
}

func (cli *commandLine) close() error {
	if cli.gw == nil {
		return nil
	}
	return cli.gw.Close()
}

// promptPassword reads a password without echoing it.
func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The operator's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The operator's full name. Defaults to the email's local part.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The operator's email. The password will be prompted next.")

	alertsCmd := flag.NewFlagSet("alerts", flag.ContinueOnError)
	alertsStart := alertsCmd.String("start", "", "First day of the report (YYYY-MM-DD). Defaults to one month back.")
	alertsEnd := alertsCmd.String("end", "", "Last day of the report (YYYY-MM-DD). Defaults to today.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, alertsCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, pwd, *addUserName)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "alerts":
		if err := alertsCmd.Parse(args[2:]); err != nil {
			return err
		}
		start, end, err := alertsRange(*alertsStart, *alertsEnd, todayFunc())
		if err != nil {
			return err
		}
		return cli.sendAlerts(start, end)

	default:
		cli.printUsage()
		return errHelp
	}
}

// alertsRange parses the optional bounds, defaulting to the report's range.
func alertsRange(startStr, endStr string, today core.Date) (start, end core.Date, err error) {
	start, end = attendance.DefaultReportRange(today)
	if startStr != "" {
		if start, err = core.ParseDate(startStr); err != nil {
			return start, end, apps.NewArgumentError(fmt.Sprintf("invalid start date %q", startStr))
		}
	}
	if endStr != "" {
		if end, err = core.ParseDate(endStr); err != nil {
			return start, end, apps.NewArgumentError(fmt.Sprintf("invalid end date %q", endStr))
		}
	}
	return start, end, nil
}
