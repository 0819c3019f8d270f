package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd(a *app) *cobra.Command {
	var deleteBranch string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				out := cmd.OutOrStdout()

				if deleteBranch != "" {
					if err := r.DeleteBranch(deleteBranch); err != nil {
						return err
					}
					fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
					return nil
				}

				if len(args) == 1 {
					return r.CreateBranch(args[0])
				}

				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				for _, b := range branches {
					marker := "  "
					if b.Current {
						marker = "* "
					}
					if verbose {
						fmt.Fprintf(out, "%s%s %s\n", marker, b.Name, b.Hash.Short())
					} else {
						fmt.Fprintf(out, "%s%s\n", marker, b.Name)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the commit each branch points at")

	return cmd
}
