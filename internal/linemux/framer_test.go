package linemux

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFramerSingleChunk(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("IR scan complete\n"))
	want := []string{"IR scan complete"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Feed lines mismatch (-want +got):\n%s", diff)
	}
	if f.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.Pending())
	}
}

func TestFramerMultipleLinesOneChunk(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("45\t120.5\t881\n90\t80.0\t904\n135\t"))
	want := []string{"45\t120.5\t881", "90\t80.0\t904"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Feed lines mismatch (-want +got):\n%s", diff)
	}
	if f.Pending() != 4 {
		t.Errorf("Pending() = %d, want 4", f.Pending())
	}
}

// A message split across two reads must frame identically to the message
// arriving whole.
func TestFramerFragmentationInvariance(t *testing.T) {
	whole := NewFramer()
	wholeLine := whole.Feed([]byte("Movement complete: Moving forward 50 mm\n"))

	split := NewFramer()
	first := split.Feed([]byte("Movement comple"))
	if len(first) != 0 {
		t.Fatalf("partial chunk emitted %d lines, want 0", len(first))
	}
	second := split.Feed([]byte("te: Moving forward 50 mm\n"))

	if diff := cmp.Diff(wholeLine, second); diff != "" {
		t.Errorf("fragmented feed differs from whole feed (-whole +split):\n%s", diff)
	}
}

func TestFramerPartialSurvivesManyChunks(t *testing.T) {
	f := NewFramer()
	for _, fragment := range []string{"IR O", "bject Dete", "ction ", "Results"} {
		if lines := f.Feed([]byte(fragment)); len(lines) != 0 {
			t.Fatalf("fragment %q emitted lines early: %v", fragment, lines)
		}
	}
	lines := f.Feed([]byte("\n"))
	if len(lines) != 1 || lines[0] != "IR Object Detection Results" {
		t.Errorf("Feed = %v, want single reassembled header", lines)
	}
}

func TestFramerEmptyChunk(t *testing.T) {
	f := NewFramer()
	f.Feed([]byte("partial"))
	if lines := f.Feed(nil); lines != nil {
		t.Errorf("Feed(nil) = %v, want nil", lines)
	}
	if lines := f.Feed([]byte{}); lines != nil {
		t.Errorf("Feed(empty) = %v, want nil", lines)
	}
	if f.Pending() != len("partial") {
		t.Errorf("empty chunk disturbed pending buffer: %d", f.Pending())
	}
}

func TestFramerStripsCarriageReturn(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("PING scan complete\r\n"))
	if len(lines) != 1 || lines[0] != "PING scan complete" {
		t.Errorf("Feed = %v, want CR stripped", lines)
	}
}

func TestFramerEmptyLines(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("\n\nfoo\n"))
	want := []string{"", "", "foo"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Feed lines mismatch (-want +got):\n%s", diff)
	}
}
