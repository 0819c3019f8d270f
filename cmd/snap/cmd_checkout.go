package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckoutCmd(a *app) *cobra.Command {
	var createBranch bool
	var force bool

	cmd := &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch branches or restore a commit's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			return a.withRepo(func(r *repo.Repo) error {
				out := cmd.OutOrStdout()

				if createBranch {
					// The new branch starts at HEAD, so the working tree is
					// already its snapshot and only HEAD moves.
					if err := r.CreateBranch(target); err != nil {
						return err
					}
					from, err := r.CurrentBranch()
					if err != nil {
						return err
					}
					if from == "" {
						from = "HEAD"
					}
					if err := r.SetHead("refs/heads/"+target, "checkout: moving from "+from+" to "+target); err != nil {
						return err
					}
					fmt.Fprintf(out, "switched to new branch '%s'\n", target)
					return nil
				}

				res, err := r.Checkout(target, repo.CheckoutOptions{Force: force})
				if err != nil {
					return err
				}
				a.logger.Debug("checkout complete",
					zap.String("commit", string(res.Hash)),
					zap.Int("written", len(res.Written)),
					zap.Int("removed", len(res.Removed)),
				)
				if res.Branch != "" {
					fmt.Fprintf(out, "switched to branch '%s'\n", res.Branch)
				} else {
					fmt.Fprintf(out, "HEAD is now at %s\n", res.Hash.Short())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&createBranch, "branch", "b", false, "create a branch at HEAD and switch to it")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard uncommitted changes")

	return cmd
}
