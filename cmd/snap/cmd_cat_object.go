package main

import (
	"fmt"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatObjectCmd(a *app) *cobra.Command {
	var showType bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "cat-object (-t | -p) <object>",
		Short: "Print the type or content of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType == pretty {
				return fmt.Errorf("cat-object: exactly one of -t or -p is required")
			}

			return a.withRepo(func(r *repo.Repo) error {
				h, err := r.ResolveRevision(args[0])
				if err != nil {
					return err
				}
				objType, data, err := r.Store.Read(h)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if showType {
					fmt.Fprintln(out, objType)
					return nil
				}
				_, err = out.Write(data)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&pretty, "print", "p", false, "print the object content")

	return cmd
}
