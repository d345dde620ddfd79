// Package storage opens the backend selected by the configuration.
package storage

import (
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	"github.com/ministerio-jovenes/asistencia/core/stats"
	authsvc "github.com/ministerio-jovenes/asistencia/services/auth"
	"github.com/ministerio-jovenes/asistencia/storage/database"
	inmemdb "github.com/ministerio-jovenes/asistencia/storage/database/inmem"
	sqlxrepos "github.com/ministerio-jovenes/asistencia/storage/database/sqlx"
	restgw "github.com/ministerio-jovenes/asistencia/storage/rest"
)

var errUnknownDriver = errors.New("unknown gateway driver")

// Gateway gives access to the tables, procedures and auth service of one backend.
type Gateway struct {
	Groups     group.Repository
	Members    member.Repository
	Attendance attendance.Repository
	Stats      stats.Repository
	Profiles   session.ProfileRepository
	Auth       session.Provider
	Accounts   session.AccountRepository // nil when the backend manages accounts itself

	close func() error
}

// Close releases the backend connections.
func (gw *Gateway) Close() error {
	if gw.close == nil {
		return nil
	}
	return gw.close()
}

// Open connects to the backend named by conf.Gateway.Driver.
// The postgres backend is created and migrated when needed.
func Open(conf *core.Config, logger core.Logger) (*Gateway, error) {
	switch conf.Gateway.Driver {
	case core.GatewayMemory, "":
		db := inmemdb.Open()
		db.SeedGroups(inmemdb.DefaultGroups...)
		return OpenMemory(db, conf, logger), nil
	case core.GatewayPostgres:
		return openPostgres(conf, logger)
	case core.GatewayREST:
		return openREST(conf, logger)
	default:
		return nil, errors.Wrap(errUnknownDriver, conf.Gateway.Driver)
	}
}

// OpenMemory wraps an in-memory database, for development and tests.
func OpenMemory(db *inmemdb.DB, conf *core.Config, logger core.Logger) *Gateway {
	attRepo := inmemdb.NewAttendanceRepository(db)
	accRepo := inmemdb.NewAccountRepository(db)
	return &Gateway{
		Groups:     inmemdb.NewGroupRepository(db),
		Members:    inmemdb.NewMemberRepository(db),
		Attendance: attRepo,
		Stats:      attRepo,
		Profiles:   accRepo,
		Accounts:   accRepo,
		Auth:       authsvc.NewLocalProvider(accRepo, conf, logger),
	}
}

func openPostgres(conf *core.Config, logger core.Logger) (*Gateway, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}

	attRepo := database.NewAttendanceRepository(db)
	accRepo := sqlxrepos.NewAccountRepository(db)
	return &Gateway{
		Groups:     sqlxrepos.NewGroupRepository(db),
		Members:    sqlxrepos.NewMemberRepository(db),
		Attendance: attRepo,
		Stats:      attRepo,
		Profiles:   accRepo,
		Accounts:   accRepo,
		Auth:       authsvc.NewLocalProvider(accRepo, conf, logger),
		close:      db.Close,
	}, nil
}

func openREST(conf *core.Config, logger core.Logger) (*Gateway, error) {
	if conf.Gateway.URL == "" {
		return nil, errors.New("gateway.url is required by the rest gateway")
	}
	c := restgw.NewClient(conf)
	attRepo := restgw.NewAttendanceRepository(c)
	return &Gateway{
		Groups:     restgw.NewGroupRepository(c),
		Members:    restgw.NewMemberRepository(c),
		Attendance: attRepo,
		Stats:      attRepo,
		Profiles:   restgw.NewProfileRepository(c),
		Auth:       restgw.NewAuthProvider(c, logger),
	}, nil
}
