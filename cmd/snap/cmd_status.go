package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				st, err := r.Status()
				if err != nil {
					return err
				}
				writeStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func writeStatus(out io.Writer, st *repo.Status) {
	switch {
	case st.Branch == "":
		fmt.Fprintf(out, "HEAD detached at %s\n", st.Head.Short())
	case st.Head == "":
		fmt.Fprintf(out, "on %s (no commits yet)\n", st.Branch)
	default:
		fmt.Fprintf(out, "on %s\n", st.Branch)
	}

	var staged, unstaged, untracked []string
	for _, e := range st.Changes() {
		if e.Kind == repo.StatusUntracked {
			untracked = append(untracked, "  "+e.Path)
			continue
		}

		// Index against HEAD.
		if e.Staged {
			switch {
			case e.HeadHash == "":
				staged = append(staged, "  + "+e.Path)
			case e.IndexHash == "":
				staged = append(staged, "  - "+e.Path)
			default:
				staged = append(staged, "  ~ "+e.Path)
			}
		}

		// Working tree against index.
		switch {
		case e.IndexHash == "":
		case e.WorkHash == "":
			unstaged = append(unstaged, "  - "+e.Path)
		case e.WorkHash != e.IndexHash:
			unstaged = append(unstaged, "  ~ "+e.Path)
		}
	}

	writeSection(out, "staged:", staged)
	writeSection(out, "unstaged:", unstaged)
	writeSection(out, "untracked:", untracked)
	if len(staged)+len(unstaged)+len(untracked) == 0 {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
	}
}

func writeSection(out io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, title)
	for _, s := range lines {
		fmt.Fprintln(out, s)
	}
}
