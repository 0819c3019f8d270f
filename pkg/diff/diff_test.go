package diff

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\n\nb\n", []string{"a\n", "\n", "b\n"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitLines(tt.in)); diff != "" {
			t.Errorf("SplitLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestLines(t *testing.T) {
	a := SplitLines("a\nb\nc\nd\n")
	b := SplitLines("a\nc\nd\ne\n")

	got := Lines(a, b)
	want := []Edit{
		{Equal, "a\n"},
		{Delete, "b\n"},
		{Equal, "c\n"},
		{Equal, "d\n"},
		{Insert, "e\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLinesEdgeCases(t *testing.T) {
	if got := Lines(nil, nil); got != nil {
		t.Fatalf("Lines(nil, nil) = %v, want nil", got)
	}
	got := Lines(nil, []string{"x\n"})
	if diff := cmp.Diff([]Edit{{Insert, "x\n"}}, got); diff != "" {
		t.Fatalf("insert-only mismatch (-want +got):\n%s", diff)
	}
	got = Lines([]string{"x\n"}, nil)
	if diff := cmp.Diff([]Edit{{Delete, "x\n"}}, got); diff != "" {
		t.Fatalf("delete-only mismatch (-want +got):\n%s", diff)
	}
}

// applyEdits replays an edit script and returns both sides.
func applyEdits(edits []Edit) (old, new []string) {
	for _, e := range edits {
		if e.Op != Insert {
			old = append(old, e.Line)
		}
		if e.Op != Delete {
			new = append(new, e.Line)
		}
	}
	return old, new
}

func TestLinesReconstructsBothSides(t *testing.T) {
	pairs := [][2]string{
		{"x\ny\nz\n", "y\nz\nx\n"},
		{"1\n2\n3\n4\n5\n", "0\n2\n3\n5\n6\n"},
		{"same\n", "same\n"},
		{"no newline", "no newline\n"},
	}
	for _, p := range pairs {
		a, b := SplitLines(p[0]), SplitLines(p[1])
		old, new := applyEdits(Lines(a, b))
		if diff := cmp.Diff(a, old); diff != "" {
			t.Errorf("old side for %q mismatch (-want +got):\n%s", p[0], diff)
		}
		if diff := cmp.Diff(b, new); diff != "" {
			t.Errorf("new side for %q mismatch (-want +got):\n%s", p[1], diff)
		}
	}
}

func TestHunksSplitsDistantChanges(t *testing.T) {
	var a, b []string
	for i := 0; i < 20; i++ {
		line := strings.Repeat("x", i+1) + "\n"
		a = append(a, line)
		b = append(b, line)
	}
	b[1] = "changed early\n"
	b[17] = "changed late\n"

	hunks := Hunks(Lines(a, b), 3)
	if len(hunks) != 2 {
		t.Fatalf("len(hunks) = %d, want 2", len(hunks))
	}
	if h := hunks[0]; h.OldStart != 1 || h.OldLines != 5 || h.NewStart != 1 || h.NewLines != 5 {
		t.Fatalf("first hunk = -%d,%d +%d,%d; want -1,5 +1,5", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	}
	if h := hunks[1]; h.OldStart != 15 || h.OldLines != 6 {
		t.Fatalf("second hunk = -%d,%d; want -15,6", h.OldStart, h.OldLines)
	}

	if got := Hunks(Lines(a, b), 10); len(got) != 1 {
		t.Fatalf("with wide context len(hunks) = %d, want 1", len(got))
	}
}

func TestWriteUnified(t *testing.T) {
	var buf bytes.Buffer
	err := WriteUnified(&buf, "a/f.txt", "b/f.txt", []byte("one\ntwo\nthree\n"), []byte("one\n2\nthree\n"), DefaultContext)
	if err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	want := "--- a/f.txt\n+++ b/f.txt\n@@ -1,3 +1,3 @@\n one\n-two\n+2\n three\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUnifiedNewAndMissingNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUnified(&buf, "/dev/null", "b/f.txt", nil, []byte("hello"), DefaultContext); err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	want := "--- /dev/null\n+++ b/f.txt\n@@ -0,0 +1,1 @@\n+hello\n\\ No newline at end of file\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUnifiedEqualAndBinary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUnified(&buf, "a", "b", []byte("x\n"), []byte("x\n"), DefaultContext); err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("equal inputs wrote %q", buf.String())
	}

	if err := WriteUnified(&buf, "a/bin", "b/bin", []byte{0, 1}, []byte{0, 2}, DefaultContext); err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	if got := buf.String(); got != "Binary files a/bin and b/bin differ\n" {
		t.Fatalf("binary output = %q", got)
	}
}

func TestLinesWithinBound(t *testing.T) {
	a := SplitLines("1\n2\n3\n")
	b := SplitLines("1\nx\n3\n")
	if edits, ok := linesWithin(a, b, 2); !ok || len(edits) != 4 {
		t.Fatalf("linesWithin(d=2) = %v, %v; want 4 edits", edits, ok)
	}
	if edits, ok := linesWithin(a, b, 1); ok || edits != nil {
		t.Fatalf("linesWithin(d=1) = %v, %v; want nil, false", edits, ok)
	}
	if _, ok := linesWithin(nil, b, 2); ok {
		t.Fatal("insert-only script over the bound reported ok")
	}
}

func numbered(prefix string, n int) []byte {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s %d\n", prefix, i)
	}
	return []byte(sb.String())
}

func TestWriteUnifiedTooManyEdits(t *testing.T) {
	var buf bytes.Buffer
	a, b := numbered("old", MaxEdits), numbered("new", MaxEdits)
	if err := WriteUnified(&buf, "a/big", "b/big", a, b, DefaultContext); err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	want := fmt.Sprintf("Files a/big and b/big differ (more than %d line edits)\n", MaxEdits)
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUnifiedLargeFileSmallChange(t *testing.T) {
	a := numbered("line", 3*MaxEdits)
	b := bytes.Replace(a, []byte("line 7\n"), []byte("seven\n"), 1)
	var buf bytes.Buffer
	if err := WriteUnified(&buf, "a/big", "b/big", a, b, DefaultContext); err != nil {
		t.Fatalf("WriteUnified: %v", err)
	}
	want := "--- a/big\n+++ b/big\n@@ -5,7 +5,7 @@\n line 4\n line 5\n line 6\n-line 7\n+seven\n line 8\n line 9\n line 10\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkLines(b *testing.B) {
	var x, y []string
	for i := 0; i < 2000; i++ {
		line := strings.Repeat("l", i%50) + "\n"
		x = append(x, line)
		if i%37 != 0 {
			y = append(y, line)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Lines(x, y)
	}
}
