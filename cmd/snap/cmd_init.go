package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var store string
	var userName string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty snap repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			switch store {
			case repo.StoreFile, repo.StoreSQLite:
			default:
				return fmt.Errorf("unknown store %q (want %q or %q)", store, repo.StoreFile, repo.StoreSQLite)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			cfg := repo.DefaultConfig()
			cfg.Core.Store = store
			cfg.User.Name = userName

			r, err := repo.Init(abs, repo.WithLogger(a.logger), repo.WithConfig(cfg))
			if err != nil {
				return err
			}
			if err := r.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty snap repository in %s\n", r.SnapDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&store, "store", repo.StoreFile, "object store backend [file,sqlite]")
	cmd.Flags().StringVar(&userName, "user", "", "default commit author recorded in the repository config")

	return cmd
}
