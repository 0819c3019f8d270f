package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/odvcencio/snap/pkg/diff"
	"github.com/odvcencio/snap/pkg/object"
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd(a *app) *cobra.Command {
	var staged bool
	var context int

	cmd := &cobra.Command{
		Use:   "diff [path]...",
		Short: "Show line changes between the working tree and the index, or the index and HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(func(r *repo.Repo) error {
				st, err := r.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range st.Changes() {
					if !matchesPathspec(e.Path, args) {
						continue
					}
					if staged {
						if !e.Staged {
							continue
						}
						if err := writeBlobDiff(out, r, e.Path, e.HeadHash, e.IndexHash, context); err != nil {
							return err
						}
						continue
					}
					if e.IndexHash == "" || e.WorkHash == e.IndexHash {
						continue
					}
					if err := writeWorktreeDiff(out, r, e, context); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "compare the index with HEAD")
	cmd.Flags().IntVarP(&context, "unified", "U", diff.DefaultContext, "lines of context around each change")

	return cmd
}

// matchesPathspec reports whether p equals or lies under one of specs.
// Specs are repository-relative; an empty list matches everything.
func matchesPathspec(p string, specs []string) bool {
	if len(specs) == 0 {
		return true
	}
	for _, s := range specs {
		s = path.Clean(filepath.ToSlash(s))
		if s == "." || p == s || strings.HasPrefix(p, s+"/") {
			return true
		}
	}
	return false
}

func writeBlobDiff(out io.Writer, r *repo.Repo, p string, oldHash, newHash object.Hash, context int) error {
	oldData, err := readBlobData(r, oldHash)
	if err != nil {
		return err
	}
	newData, err := readBlobData(r, newHash)
	if err != nil {
		return err
	}
	return writeFileDiff(out, p, oldHash != "", newHash != "", oldData, newData, context)
}

func writeWorktreeDiff(out io.Writer, r *repo.Repo, e repo.StatusEntry, context int) error {
	oldData, err := readBlobData(r, e.IndexHash)
	if err != nil {
		return err
	}
	var newData []byte
	if e.WorkHash != "" {
		newData, err = os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(e.Path)))
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}
	}
	return writeFileDiff(out, e.Path, true, e.WorkHash != "", oldData, newData, context)
}

func writeFileDiff(out io.Writer, p string, hasOld, hasNew bool, oldData, newData []byte, context int) error {
	oldName, newName := "a/"+p, "b/"+p
	if !hasOld {
		oldName = "/dev/null"
	}
	if !hasNew {
		newName = "/dev/null"
	}
	fmt.Fprintf(out, "diff --snap a/%s b/%s\n", p, p)
	return diff.WriteUnified(out, oldName, newName, oldData, newData, context)
}

func readBlobData(r *repo.Repo, h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	b, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return b.Data, nil
}
