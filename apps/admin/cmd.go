package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/ndishimyeemilien/report-sub001/core/account"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	sqlDB       *sql.DB // set only for the postgres engine
	accountRepo account.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - manage schema migrations (postgres only)")
	fmt.Println("  setrole -uid UID -role ROLE - assign a role to a profile")
	fmt.Println("  listpending - list profiles awaiting role assignment")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setRoleCmd := flag.NewFlagSet("setrole", flag.ExitOnError)
	setRoleUID := setRoleCmd.String("uid", "", "The profile's identity provider UID.")
	setRoleRole := setRoleCmd.String("role", "", "The role to assign: admin | teacher | secretary | pending.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setRoleUID == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		return cli.setRole(*setRoleUID, *setRoleRole)
	case "listpending":
		return cli.listPending()
	default:
		cli.printUsage()
		return errHelp
	}
}
