package hotkeys

import (
	"slices"
	"testing"
)

func TestIgnoreMasks(t *testing.T) {
	got := IgnoreMasks([]uint16{2, 16})
	want := []uint16{0, 2, 16, 18}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := IgnoreMasks(nil); !slices.Equal(got, []uint16{0}) {
		t.Fatalf("expected only the empty mask, got %v", got)
	}
}
