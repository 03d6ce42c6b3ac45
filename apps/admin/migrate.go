package main

import (
	"errors"

	"github.com/trezcool/goose"

	appfs "github.com/ndishimyeemilien/report-sub001/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.sqlDB == nil {
		return errors.New("migrations require the postgres engine")
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.sqlDB, appfs.FS, "migrations", arguments...)
}
