package main

import (
	"log"
	"os"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	logsvc "github.com/trezcool/riskwatch/services/logger"
	"github.com/trezcool/riskwatch/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	repo, err := storage.NewStudentRepository(conf)
	if err != nil {
		logger.Fatal("setting up student store", err)
	}

	// start CLI
	cli := commandLine{
		conf:    conf,
		logger:  logger,
		repo:    repo,
		riskSvc: risk.NewService(repo, logger),
		in:      os.Stdin,
		inFd:    int(os.Stdin.Fd()),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp && err != errAborted {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
