package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCommitCmd(a *app) *cobra.Command {
	var message string
	var sign bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged snapshot as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}
			if err := bindFlag(a.settings, keyAuthor, cmd.Flags(), "author"); err != nil {
				return err
			}
			if err := bindFlag(a.settings, keySigningKey, cmd.Flags(), "key"); err != nil {
				return err
			}

			return a.withRepo(func(r *repo.Repo) error {
				opts := repo.CommitOptions{
					Message: message,
					Author:  resolveAuthor(a.settings, r),
				}
				if sign {
					signer, keyPath, err := newSSHCommitSigner(a.settings.GetString(keySigningKey))
					if err != nil {
						return err
					}
					a.logger.Debug("signing commit", zap.String("key", keyPath))
					opts.Signer = signer
				}

				res, err := r.CommitWithOptions(opts)
				if err != nil {
					return err
				}

				branch := res.Branch
				if branch == "" {
					branch = "HEAD detached"
				}
				if res.Parent == "" {
					branch += " (root-commit)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, res.Hash.Short(), subject(message))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().String("author", "", "override author (default: settings, repo [user] name, then $USER)")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with an SSH key")
	cmd.Flags().String("key", "", "SSH private key used with --sign (default: ~/.ssh/id_ed25519, id_ecdsa, id_rsa)")

	return cmd
}
