package main

import (
	"context"
	"testing"

	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/memdb"
	docrepos "github.com/ndishimyeemilien/report-sub001/storage/repos"
)

func setup(t *testing.T) *commandLine {
	db, err := memdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &commandLine{accountRepo: docrepos.NewAccountRepository(db)}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "setrole: no flags", args: []string{"setrole"}, wantErr: errHelp},
		{name: "setrole: missing role", args: []string{"setrole", "-uid", "u1"}, wantErr: errHelp},
		{name: "listpending: empty store", args: []string{"listpending"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_setRole(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	// unknown uid
	if err := cli.setRole("u1", "teacher"); err == nil {
		t.Error("setRole() accepted an unknown uid")
	}

	// invalid role
	if err := cli.setRole("u1", "headmaster"); err == nil {
		t.Error("setRole() accepted an invalid role")
	}

	if _, err := cli.accountRepo.SaveProfile(ctx, account.Profile{UID: "u1", Email: "u1@test.test", Role: authz.RolePending}); err != nil {
		t.Fatalf("SaveProfile() failed: %v", err)
	}
	if err := cli.setRole("u1", "Teacher"); err != nil { // role is case-insensitive
		t.Fatalf("setRole() failed: %v", err)
	}
	prof, err := cli.accountRepo.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if prof.Role != authz.RoleTeacher {
		t.Errorf("role = %q, want %q", prof.Role, authz.RoleTeacher)
	}
}
