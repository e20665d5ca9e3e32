package x11

import (
	"testing"

	"github.com/1broseidon/sabini/internal/geom"
)

func TestUsableArea(t *testing.T) {
	left := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := geom.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	const rootW, rootH = 3200, 1080

	tests := []struct {
		name    string
		monitor geom.Rect
		struts  []Strut
		root    [2]int
		want    geom.Rect
	}{
		{
			name:    "no docks",
			monitor: left,
			want:    left,
		},
		{
			name:    "top bar across the left monitor",
			monitor: left,
			struts:  []Strut{{Top: 30, TopStartX: 0, TopEndX: 1919}},
			want:    geom.Rect{X: 0, Y: 30, Width: 1920, Height: 1050},
		},
		{
			name:    "top bar on left monitor leaves right monitor alone",
			monitor: right,
			struts:  []Strut{{Top: 30, TopStartX: 0, TopEndX: 1919}},
			want:    right,
		},
		{
			name:    "full-width bottom strut counts only the overlapping rows",
			monitor: right,
			struts:  []Strut{FullStrut(0, 0, 0, 80, rootW, rootH)},
			want:    geom.Rect{X: 1920, Y: 0, Width: 1280, Height: 1000},
		},
		{
			name:    "left and right docks",
			monitor: left,
			struts: []Strut{
				{Left: 48, LeftStartY: 0, LeftEndY: 1079},
				{Right: 1300, RightStartY: 0, RightEndY: 1079},
			},
			want: geom.Rect{X: 48, Y: 0, Width: 1852, Height: 1080},
		},
		{
			name:    "deepest strut on an edge wins",
			monitor: left,
			struts: []Strut{
				{Top: 20, TopStartX: 0, TopEndX: 1919},
				{Top: 32, TopStartX: 100, TopEndX: 400},
			},
			want: geom.Rect{X: 0, Y: 32, Width: 1920, Height: 1048},
		},
		{
			name:    "never collapses to zero",
			monitor: geom.Rect{Width: 100, Height: 100},
			struts:  []Strut{FullStrut(60, 60, 0, 0, 100, 100)},
			root:    [2]int{100, 100},
			want:    geom.Rect{X: 60, Y: 0, Width: 1, Height: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := rootW, rootH
			if tt.root != [2]int{} {
				w, h = tt.root[0], tt.root[1]
			}
			got := UsableArea(tt.monitor, w, h, tt.struts)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPickMonitor(t *testing.T) {
	mons := []Monitor{
		{ID: 0, Name: "HDMI-1"},
		{ID: 1, Name: "eDP-1", Primary: true},
	}
	if got := PickMonitor(mons); got.Name != "eDP-1" {
		t.Fatalf("expected primary monitor, got %s", got.Name)
	}
	if got := PickMonitor(mons[:1]); got.Name != "HDMI-1" {
		t.Fatalf("expected first monitor, got %s", got.Name)
	}
}
