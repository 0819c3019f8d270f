package diff

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

// Hunk is a contiguous run of edits with surrounding context. Start lines
// are 1-based; a zero-length side reports the line before the hunk.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Edits              []Edit
}

// Hunks groups an edit script into hunks, merging changes separated by at
// most 2*context unchanged lines.
func Hunks(edits []Edit, context int) []Hunk {
	if context < 0 {
		context = 0
	}
	oldPos := make([]int, len(edits)+1)
	newPos := make([]int, len(edits)+1)
	for i, e := range edits {
		oldPos[i+1], newPos[i+1] = oldPos[i], newPos[i]
		if e.Op != Insert {
			oldPos[i+1]++
		}
		if e.Op != Delete {
			newPos[i+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < len(edits); {
		if edits[i].Op == Equal {
			i++
			continue
		}
		start := max(0, i-context)
		end := i
		for end < len(edits) {
			if edits[end].Op != Equal {
				end++
				continue
			}
			run := end
			for run < len(edits) && edits[run].Op == Equal {
				run++
			}
			if run == len(edits) || run-end > 2*context {
				end = min(end+context, len(edits))
				break
			}
			end = run
		}

		h := Hunk{
			OldLines: oldPos[end] - oldPos[start],
			NewLines: newPos[end] - newPos[start],
			Edits:    edits[start:end],
		}
		h.OldStart = hunkStart(oldPos[start], h.OldLines)
		h.NewStart = hunkStart(newPos[start], h.NewLines)
		hunks = append(hunks, h)
		i = end
	}
	return hunks
}

func hunkStart(pos, lines int) int {
	if lines == 0 {
		return pos
	}
	return pos + 1
}

// IsBinary reports whether data looks like binary content.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// WriteUnified writes a unified diff of a and b labelled with oldName and
// newName. Nothing is written when the contents are equal. Binary content,
// or revisions more than MaxEdits line edits apart, get a one-line notice
// instead of hunks.
func WriteUnified(w io.Writer, oldName, newName string, a, b []byte, context int) error {
	if bytes.Equal(a, b) {
		return nil
	}
	if IsBinary(a) || IsBinary(b) {
		_, err := fmt.Fprintf(w, "Binary files %s and %s differ\n", oldName, newName)
		return err
	}

	edits, ok := linesWithin(SplitLines(string(a)), SplitLines(string(b)), MaxEdits)
	if !ok {
		_, err := fmt.Fprintf(w, "Files %s and %s differ (more than %d line edits)\n", oldName, newName, MaxEdits)
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range Hunks(edits, context) {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, e := range h.Edits {
			buf.WriteByte(" +-"[e.Op])
			buf.WriteString(e.Line)
			if !strings.HasSuffix(e.Line, "\n") {
				buf.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
