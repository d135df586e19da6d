package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/workload"
	locksvc "github.com/trezcool/ratiba/services/locker"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
	sqlxrepos "github.com/trezcool/ratiba/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// tokens need no database
	if len(os.Args) > 1 && os.Args[1] == "token" {
		cli := commandLine{conf: conf, out: os.Stdout}
		exit(cli.run(os.Args), logger)
		return
	}

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err.Error(), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer db.Close()

	locker, closeLocker, err := locksvc.New(conf.Redis, logger)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer func() { _ = closeLocker() }()

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	rosterRepo := sqlxrepos.NewRosterRepository(db)

	// start CLI
	cli := commandLine{
		conf: conf,
		migrator: func(command string, args ...string) error {
			return database.Migrate(db, command, args...)
		},
		allocSvc:  allocation.NewService(rosterRepo, locker, validate, logger),
		estimator: workload.NewService(sqlxrepos.NewWorkloadRepository(db), rosterRepo, conf.Workload, logger),
		out:       os.Stdout,
	}
	exit(cli.run(os.Args), logger)
}

func exit(err error, logger core.Logger) {
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
