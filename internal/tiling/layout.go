package tiling

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
)

// Kind selects a layout algorithm.
type Kind string

const (
	KindTall Kind = "tall" // Master column left, evenly split stack column right.
	KindFull Kind = "full" // Focused window covers the whole area.
)

// Master ratio bounds enforced when the ratio is adjusted at runtime.
const (
	MinMasterRatio = 0.1
	MaxMasterRatio = 0.9
)

var kinds = []Kind{KindTall, KindFull}

// Kinds returns the known layout kinds in cycle order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind converts a config string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown layout kind: %q", s)
}

// Tall holds the parameters of the tall layout.
type Tall struct {
	MasterCount int     `yaml:"master_count" json:"master_count"` // Windows in the master column (>= 0)
	MasterRatio float64 `yaml:"master_ratio" json:"master_ratio"` // Master column share of the width (0-1)
	Gap         int     `yaml:"gap" json:"gap"`                   // Inset applied to every slot in pixels
}

// Layout is a layout algorithm together with its parameters. Only the
// parameters of the selected Kind are consulted.
type Layout struct {
	Kind Kind `yaml:"kind" json:"kind"`
	Tall Tall `yaml:",inline" json:"tall"`
}

// DefaultLayout returns a tall layout with one master taking half the width.
func DefaultLayout() Layout {
	return Layout{
		Kind: KindTall,
		Tall: Tall{MasterCount: 1, MasterRatio: 0.5},
	}
}

// Validate checks that the layout is well formed.
func (l Layout) Validate() error {
	if _, err := ParseKind(string(l.Kind)); err != nil {
		return err
	}
	if l.Tall.MasterCount < 0 {
		return fmt.Errorf("master_count must be >= 0, got %d", l.Tall.MasterCount)
	}
	if l.Tall.MasterRatio < 0 || l.Tall.MasterRatio > 1 {
		return fmt.Errorf("master_ratio must be between 0 and 1, got %g", l.Tall.MasterRatio)
	}
	if l.Tall.Gap < 0 {
		return fmt.Errorf("gap must be >= 0, got %d", l.Tall.Gap)
	}
	return nil
}

// Next returns l switched to the kind delta steps away in cycle order.
func (l Layout) Next(delta int) Layout {
	i := 0
	for j, k := range kinds {
		if k == l.Kind {
			i = j
			break
		}
	}
	n := len(kinds)
	l.Kind = kinds[((i+delta)%n+n)%n]
	return l
}

// Area is the screen region and decoration for a single layout request.
type Area struct {
	Screen geom.Rect      `json:"screen"`
	Margin int            `json:"margin"` // Global inset applied to Screen first
	Border geom.Thickness `json:"border"` // Applied to every slot after the gap
}

// Outer returns the screen reduced by the global margin.
func (a Area) Outer() geom.Rect {
	return geom.ShrinkByMargin(a.Screen, a.Margin)
}

// Placement is the target rectangle for one window.
type Placement struct {
	Window stack.WindowID `json:"window"`
	Rect   geom.Rect      `json:"rect"`
}

// Arrange computes placements for windows, given in stack order with focus
// indexing the focused window. An empty window list yields no placements.
func Arrange(l Layout, windows []stack.WindowID, focus int, area Area) []Placement {
	if len(windows) == 0 {
		return nil
	}

	outer := area.Outer()

	var ids []stack.WindowID
	var slots []geom.Rect
	gap := 0

	switch l.Kind {
	case KindFull:
		if focus < 0 || focus >= len(windows) {
			focus = 0
		}
		ids = windows[focus : focus+1]
		slots = []geom.Rect{outer}
	default:
		ids = windows
		slots = CalculateTallSlots(l.Tall, len(windows), outer)
		gap = l.Tall.Gap
	}

	placements := make([]Placement, 0, len(ids))
	for i, id := range ids {
		r := geom.ShrinkByMargin(slots[i], gap)
		r = geom.ShrinkByThickness(r, area.Border)
		placements = append(placements, Placement{Window: id, Rect: r})
	}
	return placements
}

// CalculateTallSlots returns n undecorated slots for the tall layout inside
// outer. Slot i belongs to the window at stack-order index i.
func CalculateTallSlots(t Tall, n int, outer geom.Rect) []geom.Rect {
	if n <= 0 {
		return nil
	}

	masters := t.MasterCount
	if masters < 0 {
		masters = 0
	}
	if masters > n {
		masters = n
	}
	rest := n - masters

	// One side empty: the other column owns the whole area.
	if rest == 0 {
		return geom.SplitEvenlyVertical(outer, masters)
	}
	if masters == 0 {
		return geom.SplitEvenlyVertical(outer, rest)
	}

	ratio := t.MasterRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	masterRect, stackRect := geom.SplitVertical(outer, int(math.Round(float64(outer.Width)*ratio)))

	slots := make([]geom.Rect, 0, n)
	slots = append(slots, geom.SplitEvenlyVertical(masterRect, masters)...)
	slots = append(slots, geom.SplitEvenlyVertical(stackRect, rest)...)
	return slots
}
