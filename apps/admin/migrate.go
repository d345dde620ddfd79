package main

import (
	"database/sql"
	"fmt"

	"github.com/ministerio-jovenes/asistencia/apps"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/storage/database"
)

var (
	migrateFunc = database.Migrate // mockable
	openDBFunc  = openDB           // mockable

	errNotPostgres = apps.NewArgumentError(fmt.Sprintf("migrations only apply to the %q gateway", core.GatewayPostgres))
)

// openDB connects to the application database, creating it when needed.
func openDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	return db.DB, nil
}

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Gateway.Driver != core.GatewayPostgres {
		return errNotPostgres
	}
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	return migrateFunc(db, args[0], args[1:]...)
}
