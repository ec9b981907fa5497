package main

import (
	"log"
	"os"

	"github.com/girgism/khedma/core"
	emailsvc "github.com/girgism/khedma/services/email"
	"github.com/girgism/khedma/storage/kvdb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up the store
	db, err := kvdb.Open(core.Conf.Storage.Dir)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		usrRepo: kvdb.NewUserRepository(db),
		mailSvc: emailsvc.NewConsoleService(),
		db:      db,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
