package main

import (
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [path]...",
		Short: "Unstage paths, restoring their index entries from HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				return r.Reset(args)
			})
		},
	}
}
