package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/ministerio-jovenes/asistencia/apps/api/echo"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	"github.com/ministerio-jovenes/asistencia/core/stats"
	emailsvc "github.com/ministerio-jovenes/asistencia/services/email"
	logsvc "github.com/ministerio-jovenes/asistencia/services/logger"
	"github.com/ministerio-jovenes/asistencia/storage"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// GatewayResult spreads the gateway repositories into the container.
	GatewayResult struct {
		dig.Out
		Gateway    *storage.Gateway
		Groups     group.Repository
		Members    member.Repository
		Attendance attendance.Repository
		Stats      stats.Repository
		Profiles   session.ProfileRepository
		Auth       session.Provider
	}

	DepsParam struct {
		dig.In
		Store         *session.Store
		Groups        *group.Cache
		MemberSvc     *member.Service
		AttendanceSvc *attendance.Service
		Roster        *attendance.View
		StatsSvc      *stats.Service
		Alerts        *attendance.AlertNotifier
		Translator    ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newGateway(conf *core.Config, loggerParam DBLoggerParam) GatewayResult {
	gw, err := storage.Open(conf, loggerParam.Logger)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s gateway: %v", conf.Gateway.Driver, err), err)
	}
	return GatewayResult{
		Gateway:    gw,
		Groups:     gw.Groups,
		Members:    gw.Members,
		Attendance: gw.Attendance,
		Stats:      gw.Stats,
		Profiles:   gw.Profiles,
		Auth:       gw.Auth,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newGroupCache(svc *group.Service, logger core.Logger) *group.Cache {
	return group.NewCache(svc, logger)
}

func newRosterView(memberSvc *member.Service, attSvc *attendance.Service, logger core.Logger) *attendance.View {
	return attendance.NewView(memberSvc, attSvc, logger)
}

func newAlertNotifier(attSvc *attendance.Service, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *attendance.AlertNotifier {
	return attendance.NewAlertNotifier(attSvc, mailSvc, conf.AlertRecipients(), logger)
}

func newDeps(p DepsParam) *echoapi.Deps {
	return &echoapi.Deps{
		Store:         p.Store,
		Groups:        p.Groups,
		MemberSvc:     p.MemberSvc,
		AttendanceSvc: p.AttendanceSvc,
		Roster:        p.Roster,
		StatsSvc:      p.StatsSvc,
		Alerts:        p.Alerts,
		Translator:    p.Translator,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newGateway))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))

	must(c.Provide(group.NewService))
	must(c.Provide(newGroupCache))
	must(c.Provide(member.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newRosterView))
	must(c.Provide(stats.NewService))
	must(c.Provide(session.NewStore))
	must(c.Provide(newAlertNotifier))

	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
