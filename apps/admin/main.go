package main

import (
	"log"
	"os"

	"github.com/ministerio-jovenes/asistencia/core"
	emailsvc "github.com/ministerio-jovenes/asistencia/services/email"
	logsvc "github.com/ministerio-jovenes/asistencia/services/logger"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	core.SetEmailContext(conf)
	var mailSvc alertSender
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		conf:    conf,
		logger:  logger,
		out:     os.Stdout,
		mailSvc: mailSvc,
	}
	err := cli.run(os.Args)
	if cerr := cli.close(); cerr != nil {
		std.Printf("closing gateway: %v", cerr)
	}
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
