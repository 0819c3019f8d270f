// Package diff renders line-level differences between two file revisions.
// It is used for display only; change detection elsewhere compares content
// hashes.
package diff

import "strings"

// Op classifies a line in an edit script.
type Op int

const (
	Equal  Op = iota // line present in both revisions
	Insert           // line present only in the new revision
	Delete           // line present only in the old revision
)

// Edit is one line of an edit script. Line keeps its trailing newline, if
// any, so a missing final newline is itself a change.
type Edit struct {
	Op   Op
	Line string
}

// SplitLines splits s after each newline. A final line without a newline is
// kept as is; an empty string yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// MaxEdits bounds the edit distance WriteUnified will compute. Tracing
// costs O(D²) memory, so larger rewrites are reported without hunks.
const MaxEdits = 4000

// Lines returns the shortest edit script turning a into b (Myers, O((N+M)D)).
func Lines(a, b []string) []Edit {
	edits, _ := linesWithin(a, b, len(a)+len(b))
	return edits
}

// linesWithin is Lines with an edit distance bound. It reports false, with
// no edits, when a and b are more than maxD edits apart.
func linesWithin(a, b []string, maxD int) ([]Edit, bool) {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil, true
	case n+m > maxD && (n == 0 || m == 0):
		return nil, false
	case n == 0:
		return uniform(Insert, b), true
	case m == 0:
		return uniform(Delete, a), true
	}

	offset := n + m
	v := make([]int, 2*offset+1)
	// trace[d] holds v for diagonals -d..d after step d.
	var trace [][]int

	for d := 0; d <= min(offset, maxD); d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				trace = append(trace, append([]int(nil), v[offset-d:offset+d+1]...))
				return walkBack(trace, a, b), true
			}
		}
		trace = append(trace, append([]int(nil), v[offset-d:offset+d+1]...))
	}
	return nil, false
}

// walkBack rebuilds the edit script from the per-step snapshots of v.
func walkBack(trace [][]int, a, b []string) []Edit {
	x, y := len(a), len(b)
	var rev []Edit

	for d := len(trace) - 1; d > 0; d-- {
		prev := trace[d-1]
		po := d - 1 // index of diagonal 0 in prev
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[po+k-1] < prev[po+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[po+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, Edit{Op: Equal, Line: a[x]})
		}
		if prevK == k-1 {
			x--
			rev = append(rev, Edit{Op: Delete, Line: a[x]})
		} else {
			y--
			rev = append(rev, Edit{Op: Insert, Line: b[y]})
		}
	}
	for x > 0 && y > 0 {
		x--
		y--
		rev = append(rev, Edit{Op: Equal, Line: a[x]})
	}

	out := make([]Edit, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}

func uniform(op Op, lines []string) []Edit {
	out := make([]Edit, len(lines))
	for i, l := range lines {
		out[i] = Edit{Op: op, Line: l}
	}
	return out
}
