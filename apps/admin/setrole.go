package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

// setRole assigns a role to a stored profile. The CLI runs on trusted
// infrastructure so it writes through the repository, bypassing the
// caller gate; role validity is still enforced.
func (cli *commandLine) setRole(uid, role string) error {
	r := authz.Role(core.CleanString(role, true /* lower */))
	if !authz.ValidRole(r) {
		return fmt.Errorf("invalid role %q", role)
	}

	ctx := context.Background()
	prof, err := cli.accountRepo.GetProfile(ctx, core.CleanString(uid))
	if err != nil {
		return err
	}
	prof.Role = r
	prof.UpdatedAt = time.Now().UTC()
	if _, err := cli.accountRepo.SaveProfile(ctx, prof); err != nil {
		return err
	}
	fmt.Printf("profile %s (%s) is now %s\n", prof.UID, prof.Email, prof.Role)
	return nil
}

func (cli *commandLine) listPending() error {
	profiles, err := cli.accountRepo.QueryProfilesByRole(context.Background(), authz.RolePending)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("no pending profiles")
		return nil
	}
	for _, p := range profiles {
		fmt.Printf("%s\t%s\tfirst seen %s\n", p.UID, p.Email, p.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
