package main

import (
	"context"
	"fmt"

	authsvc "github.com/ministerio-jovenes/asistencia/services/auth"
)

// addUser creates an operator account with its profile.
func (cli *commandLine) addUser(email, pwd, fullName string) error {
	gw, err := cli.gateway()
	if err != nil {
		return err
	}
	if gw.Accounts == nil {
		return errNoAccounts
	}
	acc, err := authsvc.CreateAccount(context.Background(), gw.Accounts, email, pwd, fullName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created operator %s (%s)\n", acc.Email, acc.ID)
	return nil
}
