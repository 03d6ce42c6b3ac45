package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/memdb"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/mongodb"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/postgres"
	docrepos "github.com/ndishimyeemilien/report-sub001/storage/repos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	appDir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	errAndDie(err)
	conf := core.NewConfig(appDir)

	// set up the document store
	cli := commandLine{}
	switch conf.Database.Engine {
	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := mongodb.Open(ctx, conf)
		cancel()
		errAndDie(err)
		defer db.Close(context.Background())
		cli.accountRepo = docrepos.NewAccountRepository(db)
	case "postgres":
		db, err := postgres.Open(conf)
		errAndDie(err)
		defer db.Close(context.Background())
		cli.sqlDB = db.SQLDB()
		cli.accountRepo = docrepos.NewAccountRepository(db)
	default:
		db, err := memdb.Open()
		errAndDie(err)
		cli.accountRepo = docrepos.NewAccountRepository(db)
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
