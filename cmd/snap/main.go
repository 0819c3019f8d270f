package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const version = "0.1.0-dev"

// app is the state shared by every subcommand once the root command's
// pre-run has loaded settings and built the logger.
type app struct {
	settings *viper.Viper
	logger   *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{settings: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "snap",
		Short:         "Content-addressed snapshots of a working directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSettings(a.settings, cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), a.settings.GetString(keyLogLevel), a.settings.GetString(keyLogFormat))
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "", "log level [debug,info,warn,error] (default info)")
	root.PersistentFlags().String("log-format", "", "log format [text,color,json] (default color)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newRmCmd(a))
	root.AddCommand(newResetCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newBranchCmd(a))
	root.AddCommand(newCheckoutCmd(a))
	root.AddCommand(newDiffCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newCatObjectCmd(a))
	root.AddCommand(newReflogCmd(a))
	root.AddCommand(newVerifyCmd(a))

	return root
}

// withRepo opens the repository containing the current directory, runs fn
// and closes the repository, merging any close error into the result.
func (a *app) withRepo(fn func(r *repo.Repo) error) (retErr error) {
	r, err := repo.Open(".", repo.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, r.Close())
	}()
	return fn(r)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snap %s\n", version)
		},
	}
}
