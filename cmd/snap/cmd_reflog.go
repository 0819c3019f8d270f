package main

import (
	"fmt"
	"time"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newReflogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [ref]",
		Short: "Show ref update history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}

			return a.withRepo(func(r *repo.Repo) error {
				entries, err := r.ReadReflog(ref, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, e := range entries {
					ts := time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339)
					fmt.Fprintf(out, "%s %s %s %s\n", e.NewHash.Short(), ts, e.Ref, e.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum entries to show")

	return cmd
}
