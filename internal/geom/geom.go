package geom

// Rect is a rectangle in screen-pixel coordinates. A zero Width or Height is a
// legal value meaning "not visible".
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Thickness is a per-edge inset, used for window borders.
type Thickness struct {
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Left   int `json:"left" yaml:"left"`
}

// Uniform returns a Thickness with every edge set to n.
func Uniform(n int) Thickness {
	return Thickness{Top: n, Right: n, Bottom: n, Left: n}
}

// Zero reports whether every edge is zero.
func (t Thickness) Zero() bool {
	return t == Thickness{}
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether o lies entirely inside r. Empty rectangles are
// contained in any rectangle whose bounds include their origin.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// SplitVertical cuts r with a vertical line leftWidth pixels from its left
// edge. leftWidth is clamped to [0, r.Width].
func SplitVertical(r Rect, leftWidth int) (left, right Rect) {
	w := clamp(leftWidth, 0, nonNegative(r.Width))
	left = Rect{X: r.X, Y: r.Y, Width: w, Height: r.Height}
	right = Rect{X: r.X + w, Y: r.Y, Width: nonNegative(r.Width) - w, Height: r.Height}
	return left, right
}

// SplitEvenlyVertical stacks n bands of equal height on top of each other.
// The last band absorbs the leftover pixels so the bands cover r exactly.
func SplitEvenlyVertical(r Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	sizes := evenSizes(nonNegative(r.Height), n)
	out := make([]Rect, n)
	y := r.Y
	for i, h := range sizes {
		out[i] = Rect{X: r.X, Y: y, Width: r.Width, Height: h}
		y += h
	}
	return out
}

// SplitEvenlyHorizontal places n columns of equal width side by side, with the
// same remainder rule as SplitEvenlyVertical.
func SplitEvenlyHorizontal(r Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	sizes := evenSizes(nonNegative(r.Width), n)
	out := make([]Rect, n)
	x := r.X
	for i, w := range sizes {
		out[i] = Rect{X: x, Y: r.Y, Width: w, Height: r.Height}
		x += w
	}
	return out
}

// ShrinkByMargin insets all four sides of r by margin.
func ShrinkByMargin(r Rect, margin int) Rect {
	return ShrinkByThickness(r, Uniform(margin))
}

// ShrinkByThickness insets each side of r by the matching edge of t. The
// result never has negative size and never moves past r's far edges.
func ShrinkByThickness(r Rect, t Thickness) Rect {
	top, right := nonNegative(t.Top), nonNegative(t.Right)
	bottom, left := nonNegative(t.Bottom), nonNegative(t.Left)
	w, h := nonNegative(r.Width), nonNegative(r.Height)

	dx := clamp(left, 0, w)
	dy := clamp(top, 0, h)
	return Rect{
		X:      r.X + dx,
		Y:      r.Y + dy,
		Width:  nonNegative(w - left - right),
		Height: nonNegative(h - top - bottom),
	}
}

func evenSizes(total, n int) []int {
	base := total / n
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = base
	}
	sizes[n-1] += total - base*n
	return sizes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
