package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/odvcencio/snap/pkg/object"
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04:05"

func newLogCmd(a *app) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				rev := "HEAD"
				if len(args) == 1 {
					rev = args[0]
				}
				start, err := r.ResolveRevision(rev)
				if err != nil {
					if rev == "HEAD" && errors.Is(err, repo.ErrUnbornBranch) {
						fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
						return nil
					}
					return err
				}

				headHash, _ := r.ResolveHead()
				branch, _ := r.CurrentBranch()

				out := cmd.OutOrStdout()
				n := 0
				for entry, err := range r.Log(start) {
					if err != nil {
						return err
					}
					if limit > 0 && n >= limit {
						break
					}
					n++
					decoration := buildDecoration(entry.Hash, headHash, branch)
					if oneline {
						writeOneline(out, entry.Hash, decoration, entry.Commit)
					} else {
						writeCommitHeader(out, entry.Hash, decoration, entry.Commit)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 for all)")

	return cmd
}

func writeOneline(out io.Writer, h object.Hash, decoration string, c *object.CommitObj) {
	if decoration != "" {
		fmt.Fprintf(out, "%s %s %s\n", h.Short(), decoration, subject(c.Message))
		return
	}
	fmt.Fprintf(out, "%s %s\n", h.Short(), subject(c.Message))
}

func writeCommitHeader(out io.Writer, h object.Hash, decoration string, c *object.CommitObj) {
	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", h, decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", h)
	}
	fmt.Fprintf(out, "Author: %s\n", c.Author)
	fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format(dateLayout))
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}

// buildDecoration returns "(HEAD -> main)" or "(HEAD)" for the commit HEAD
// points at, and "" otherwise.
func buildDecoration(commitHash, headHash object.Hash, branch string) string {
	if commitHash != headHash {
		return ""
	}
	if branch != "" {
		return "(HEAD -> " + branch + ")"
	}
	return "(HEAD)"
}

func subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}
