package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/ndishimyeemilien/report-sub001/apps/api/echo"
	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	"github.com/ndishimyeemilien/report-sub001/core/school"
	logsvc "github.com/ndishimyeemilien/report-sub001/services/logger"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/memdb"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/mongodb"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/postgres"
	docrepos "github.com/ndishimyeemilien/report-sub001/storage/repos"
)

func main() {
	appDir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	errAndDie(err)
	conf := core.NewConfig(appDir)

	stdLog := log.New(os.Stdout, conf.AppName+" ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(stdLog)
	} else {
		logger = logsvc.NewRollbarLogger(stdLog, conf)
	}

	// set up the document store
	store, closeStore, err := openStore(conf)
	errAndDie(err)
	defer closeStore()

	// set up validation
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	core.InitValidators(validate, translator)

	// set up services
	accountSvc := account.NewService(docrepos.NewAccountRepository(store))
	schoolSvc := school.NewService(docrepos.NewSchoolRepository(store), validate)
	gradingSvc := grading.NewService(docrepos.NewGradingRepository(store), validate, conf.PassMark)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       conf.Server.Address(),
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			AccountSvc: accountSvc,
			SchoolSvc:  schoolSvc,
			GradingSvc: gradingSvc,
		},
	)
	logger.Info("starting " + conf.AppName + " API on " + conf.Server.Address())
	app.Start()
}

func openStore(conf *core.Config) (core.Store, func(), error) {
	switch conf.Database.Engine {
	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close(context.Background()) }, nil
	case "postgres":
		db, err := postgres.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if err = postgres.Migrate(db); err != nil {
			_ = db.Close(context.Background())
			return nil, nil, err
		}
		return db, func() { _ = db.Close(context.Background()) }, nil
	default:
		db, err := memdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close(context.Background()) }, nil
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
