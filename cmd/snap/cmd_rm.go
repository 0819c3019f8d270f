package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newRmCmd(a *app) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files from the index and the working tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				if err := r.Remove(args, cached); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, p := range args {
					fmt.Fprintf(out, "rm '%s'\n", p)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "only remove from the index")

	return cmd
}
