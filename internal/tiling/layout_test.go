package tiling

import (
	"math/rand"
	"testing"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
)

func ids(n int) []stack.WindowID {
	out := make([]stack.WindowID, n)
	for i := range out {
		out[i] = stack.WindowID(i + 1)
	}
	return out
}

func tall(count int, ratio float64, gap int) Layout {
	return Layout{Kind: KindTall, Tall: Tall{MasterCount: count, MasterRatio: ratio, Gap: gap}}
}

func TestArrange_EmptyStackYieldsNoPlacements(t *testing.T) {
	area := Area{Screen: geom.Rect{Width: 1000, Height: 800}, Margin: 8, Border: geom.Uniform(2)}
	for _, l := range []Layout{tall(1, 0.5, 4), {Kind: KindFull}} {
		if got := Arrange(l, nil, -1, area); len(got) != 0 {
			t.Fatalf("%s: expected no placements, got %v", l.Kind, got)
		}
	}
}

func TestArrange_TallThreeWindows(t *testing.T) {
	area := Area{Screen: geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}}
	got := Arrange(tall(1, 0.6, 0), ids(3), 0, area)

	want := []Placement{
		{Window: 1, Rect: geom.Rect{X: 0, Y: 0, Width: 600, Height: 800}},
		{Window: 2, Rect: geom.Rect{X: 600, Y: 0, Width: 400, Height: 400}},
		{Window: 3, Rect: geom.Rect{X: 600, Y: 400, Width: 400, Height: 400}},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d placements, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("placement %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestArrange_MasterWidthRounds(t *testing.T) {
	area := Area{Screen: geom.Rect{Width: 1000, Height: 800}}
	got := Arrange(tall(1, 0.39999999999999997, 0), ids(2), 0, area)
	if got[0].Rect.Width != 400 || got[1].Rect != (geom.Rect{X: 400, Width: 600, Height: 800}) {
		t.Fatalf("expected a 400/600 split, got %+v", got)
	}
}

func TestArrange_GapThenBorder(t *testing.T) {
	area := Area{
		Screen: geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800},
		Margin: 10,
		Border: geom.Thickness{Top: 1, Right: 2, Bottom: 3, Left: 4},
	}
	got := Arrange(tall(1, 0.5, 5), ids(1), 0, area)
	if len(got) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(got))
	}
	// Outer: 10,10 980x780. Gap 5: 15,15 970x770. Border: x+4 y+1 w-6 h-4.
	want := geom.Rect{X: 19, Y: 16, Width: 964, Height: 766}
	if got[0].Rect != want {
		t.Fatalf("got %+v, want %+v", got[0].Rect, want)
	}
}

func TestArrange_DegenerateMasterCounts(t *testing.T) {
	outer := geom.Rect{X: 5, Y: 7, Width: 300, Height: 301}
	area := Area{Screen: outer}
	column := geom.SplitEvenlyVertical(outer, 4)

	for _, count := range []int{0, 4, 9} {
		got := Arrange(tall(count, 0.7, 0), ids(4), 0, area)
		if len(got) != 4 {
			t.Fatalf("master_count=%d: expected 4 placements, got %d", count, len(got))
		}
		for i, p := range got {
			if p.Rect != column[i] {
				t.Fatalf("master_count=%d: slot %d = %+v, want %+v", count, i, p.Rect, column[i])
			}
		}
	}
}

func TestArrange_FullPlacesOnlyFocused(t *testing.T) {
	area := Area{Screen: geom.Rect{Width: 640, Height: 480}, Margin: 10, Border: geom.Uniform(1)}
	got := Arrange(Layout{Kind: KindFull}, ids(3), 1, area)
	if len(got) != 1 || got[0].Window != 2 {
		t.Fatalf("expected only window 2, got %v", got)
	}
	want := geom.Rect{X: 11, Y: 11, Width: 618, Height: 458}
	if got[0].Rect != want {
		t.Fatalf("got %+v, want %+v", got[0].Rect, want)
	}
}

func TestArrange_TinyScreenNeverNegative(t *testing.T) {
	area := Area{Screen: geom.Rect{Width: 3, Height: 2}, Margin: 4, Border: geom.Uniform(3)}
	for _, p := range Arrange(tall(2, 0.5, 6), ids(5), 0, area) {
		if p.Rect.Width < 0 || p.Rect.Height < 0 {
			t.Fatalf("negative size: %+v", p)
		}
	}
}

// With zero gap and border the slots tile the outer rectangle exactly.
func TestCalculateTallSlots_CoverWithoutOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 300; iter++ {
		outer := geom.Rect{
			X:      rng.Intn(50),
			Y:      rng.Intn(50),
			Width:  rng.Intn(400),
			Height: rng.Intn(400),
		}
		n := rng.Intn(12)
		l := Tall{MasterCount: rng.Intn(6), MasterRatio: rng.Float64()}
		slots := CalculateTallSlots(l, n, outer)
		if len(slots) != n {
			t.Fatalf("expected %d slots, got %d", n, len(slots))
		}
		if n == 0 {
			continue
		}

		area := 0
		for i, s := range slots {
			if !outer.Contains(s) {
				t.Fatalf("iter %d: slot %+v escapes %+v", iter, s, outer)
			}
			area += s.Area()
			for j := i + 1; j < len(slots); j++ {
				if s.Intersects(slots[j]) {
					t.Fatalf("iter %d: slots %d and %d overlap: %+v %+v", iter, i, j, s, slots[j])
				}
			}
		}
		if area != outer.Area() {
			t.Fatalf("iter %d: covered %d px, want %d (layout %+v, n=%d)", iter, area, outer.Area(), l, n)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"default", DefaultLayout(), false},
		{"full", Layout{Kind: KindFull}, false},
		{"unknown kind", Layout{Kind: "spiral"}, true},
		{"negative count", tall(-1, 0.5, 0), true},
		{"ratio above one", tall(1, 1.5, 0), true},
		{"negative gap", tall(1, 0.5, -2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutNext_CyclesAndKeepsParameters(t *testing.T) {
	l := tall(2, 0.3, 4)
	n := l.Next(1)
	if n.Kind != KindFull || n.Tall != l.Tall {
		t.Fatalf("Next(1) = %+v", n)
	}
	if back := n.Next(1); back.Kind != KindTall {
		t.Fatalf("expected wrap to tall, got %s", back.Kind)
	}
	if prev := l.Next(-1); prev.Kind != KindFull {
		t.Fatalf("Next(-1) = %s, want full", prev.Kind)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Tall "); err != nil || k != KindTall {
		t.Fatalf("ParseKind = %q, %v", k, err)
	}
	if _, err := ParseKind("grid"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
