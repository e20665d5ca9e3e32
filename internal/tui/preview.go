package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	lightBox = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxRunes{'━', '┃', '┏', '┓', '┗', '┛'}
)

// renderPreview draws placements on a width x height character canvas that
// stands for screen. The focused window gets a heavy border.
func renderPreview(placements []tiling.Placement, screen geom.Rect, focused stack.WindowID, width, height int) []string {
	if width < 5 || height < 3 || screen.Empty() {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	drawBorder(canvas, width, height)

	// Focused tile last so its border wins on shared edges.
	var focusedTile *tiling.Placement
	for i := range placements {
		p := placements[i]
		if p.Window == focused {
			focusedTile = &placements[i]
			continue
		}
		x1, y1, x2, y2 := toCanvas(p.Rect, screen, width, height)
		drawTile(canvas, x1, y1, x2, y2, fmt.Sprintf("%d", p.Window), lightBox)
	}
	if focusedTile != nil {
		x1, y1, x2, y2 := toCanvas(focusedTile.Rect, screen, width, height)
		drawTile(canvas, x1, y1, x2, y2, fmt.Sprintf("*%d", focusedTile.Window), heavyBox)
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// toCanvas maps a screen rectangle onto canvas cells as inclusive corners.
func toCanvas(r geom.Rect, screen geom.Rect, canvasW, canvasH int) (x1, y1, x2, y2 int) {
	x1 = (r.X - screen.X) * canvasW / screen.Width
	y1 = (r.Y - screen.Y) * canvasH / screen.Height
	x2 = (r.Right() - screen.X) * canvasW / screen.Width
	y2 = (r.Bottom() - screen.Y) * canvasH / screen.Height

	// Keep inside the outer border
	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)
	return x1, y1, x2, y2
}

func drawTile(canvas [][]rune, x1, y1, x2, y2 int, label string, box boxRunes) {
	// Need at least 2x2 for a tile
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = box.h
		canvas[y2][x] = box.h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = box.v
		canvas[y][x2] = box.v
	}
	canvas[y1][x1] = box.tl
	canvas[y1][x2] = box.tr
	canvas[y2][x1] = box.bl
	canvas[y2][x2] = box.br

	// Label in the center when it fits
	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY <= y1 || centerY >= y2 {
		return
	}
	startX := centerX - len(label)/2
	for i, r := range label {
		if startX+i > x1 && startX+i < x2 {
			canvas[centerY][startX+i] = r
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
