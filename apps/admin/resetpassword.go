package main

import (
	"context"

	"github.com/ministerio-jovenes/asistencia/core"
	authsvc "github.com/ministerio-jovenes/asistencia/services/auth"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	gw, err := cli.gateway()
	if err != nil {
		return err
	}
	if gw.Accounts == nil {
		return errNoAccounts
	}

	ctx := context.Background()
	acc, err := gw.Accounts.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	hash, err := authsvc.HashPassword(pwd)
	if err != nil {
		return err
	}
	return gw.Accounts.SetPassword(ctx, acc.ID, hash)
}
