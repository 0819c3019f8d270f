package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName is the per-repository ignore file at the working-tree root.
const IgnoreFileName = ".snapignore"

// IgnoreChecker decides whether working-tree paths are ignored. It
// implements a subset of gitignore: comments, "!" negation, trailing "/"
// for directories, and the "*", "?" and "**" wildcards. The last matching
// pattern wins, and a path inside an ignored directory is always ignored.
// The .snap directory is ignored unconditionally.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	source   string
	negated  bool
	dirOnly  bool
	hasSlash bool // matched against the full path rather than the base name
	regex    *regexp.Regexp
}

// NewIgnoreChecker loads .snapignore from repoRoot. A missing file yields a
// checker that only ignores .snap.
func NewIgnoreChecker(repoRoot string) (*IgnoreChecker, error) {
	ignorePath := filepath.Join(repoRoot, IgnoreFileName)
	f, err := os.Open(ignorePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIgnoreCheckerFromPatterns(), nil
		}
		return nil, fmt.Errorf("load ignore rules: %w", ioErr("open", ignorePath, err))
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load ignore rules: %w", ioErr("read", ignorePath, err))
	}
	return NewIgnoreCheckerFromPatterns(lines...), nil
}

// NewIgnoreCheckerFromPatterns builds a checker from in-memory pattern lines.
func NewIgnoreCheckerFromPatterns(lines ...string) *IgnoreChecker {
	ic := &IgnoreChecker{}
	for _, line := range lines {
		if p, ok := parseIgnoreLine(line); ok {
			ic.patterns = append(ic.patterns, p)
		}
	}
	return ic
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}
	p := ignorePattern{source: line}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.Contains(line, "/") {
		p.hasSlash = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" {
		return ignorePattern{}, false
	}
	re, err := regexp.Compile(globToRegex(line))
	if err != nil {
		return ignorePattern{}, false
	}
	p.regex = re
	return p, true
}

// IsIgnored reports whether the file at the slash-separated, repo-relative
// path is ignored.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	return ic.isIgnored(filepath.ToSlash(rel), false)
}

// IsIgnoredDir reports whether the directory at rel is ignored. Walks skip
// ignored directories entirely.
func (ic *IgnoreChecker) IsIgnoredDir(rel string) bool {
	return ic.isIgnored(filepath.ToSlash(rel), true)
}

func (ic *IgnoreChecker) isIgnored(rel string, isDir bool) bool {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return false
	}
	if rel == MetaDirName || strings.HasPrefix(rel, MetaDirName+"/") {
		return true
	}
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' && ic.matchLast(rel[:i], true) {
			return true
		}
	}
	return ic.matchLast(rel, isDir)
}

// matchLast applies the patterns in order; the last one that matches
// decides.
func (ic *IgnoreChecker) matchLast(rel string, isDir bool) bool {
	ignored := false
	base := path.Base(rel)
	for i := range ic.patterns {
		p := &ic.patterns[i]
		if p.dirOnly && !isDir {
			continue
		}
		target := base
		if p.hasSlash {
			target = rel
		}
		if p.regex.MatchString(target) {
			ignored = !p.negated
		}
	}
	return ignored
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				// "**/" spans zero or more directories.
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return b.String()
}
