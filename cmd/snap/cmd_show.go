package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/snap/pkg/diff"
	"github.com/odvcencio/snap/pkg/object"
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var patch bool

	cmd := &cobra.Command{
		Use:   "show [revision]",
		Short: "Show commit metadata and changed files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "HEAD"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				target = strings.TrimSpace(args[0])
			}

			return a.withRepo(func(r *repo.Repo) error {
				h, err := r.ResolveRevision(target)
				if err != nil {
					return err
				}
				commit, err := r.Store.ReadCommit(h)
				if err != nil {
					return fmt.Errorf("show: %w", err)
				}

				out := cmd.OutOrStdout()
				writeCommitHeader(out, h, "", commit)
				if commit.Signature != "" {
					fp, err := verifySSHCommitSignature(commit.Signature, object.CommitSigningPayload(commit))
					if err != nil {
						fmt.Fprintf(out, "Signature: invalid (%v)\n\n", err)
					} else {
						fmt.Fprintf(out, "Signature: good %s\n\n", fp)
					}
				}

				before := map[string]object.Hash{}
				if commit.Parent != "" {
					parent, err := r.Store.ReadCommit(commit.Parent)
					if err != nil {
						return fmt.Errorf("show: parent: %w", err)
					}
					if before, err = flattenToMap(r, parent.TreeHash); err != nil {
						return fmt.Errorf("show: %w", err)
					}
				}
				after, err := flattenToMap(r, commit.TreeHash)
				if err != nil {
					return fmt.Errorf("show: %w", err)
				}

				changes := summarizeTreeChanges(before, after)
				if len(changes) == 0 {
					return nil
				}
				fmt.Fprintln(out, "Changes:")
				for _, line := range changes {
					fmt.Fprintf(out, "  %s\n", line)
				}
				if !patch {
					return nil
				}
				fmt.Fprintln(out)
				for _, line := range changes {
					p := line[2:]
					if err := writeBlobDiff(out, r, p, before[p], after[p], diff.DefaultContext); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&patch, "patch", "p", false, "include line diffs of changed files")

	return cmd
}

func flattenToMap(r *repo.Repo, tree object.Hash) (map[string]object.Hash, error) {
	entries, err := r.FlattenTree(tree)
	if err != nil {
		return nil, err
	}
	m := make(map[string]object.Hash, len(entries))
	for _, e := range entries {
		m[e.Path] = e.BlobHash
	}
	return m, nil
}

func summarizeTreeChanges(before, after map[string]object.Hash) []string {
	paths := make([]string, 0, len(before)+len(after))
	for p := range before {
		paths = append(paths, p)
	}
	for p := range after {
		if _, ok := before[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		b, inBefore := before[p]
		a, inAfter := after[p]
		switch {
		case !inBefore:
			out = append(out, "A "+p)
		case !inAfter:
			out = append(out, "D "+p)
		case b != a:
			out = append(out, "M "+p)
		}
	}
	return out
}
