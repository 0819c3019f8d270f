package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify every stored object and everything reachable from refs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				report, err := r.Verify()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"ok: verified %d reachable object(s) from %d root(s), %d stored object(s)\n",
					report.Reachable, report.Roots, report.Stored,
				)
				return nil
			})
		},
	}
}
