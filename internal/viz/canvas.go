package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// SubPixels is the drawable size in dots.
func (c *Canvas) SubPixels() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set lights the dot at (x, y) in sub-pixel coordinates; out of range is a
// no-op.
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= bit
		c.Grid[row][col] |= brailleBlank
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dot fills a (2r+1)² block centred on (x, y).
func (c *Canvas) Dot(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates (y up) onto canvas dots with a uniform
// scale, centring the world box.
type Viewport struct {
	scale      float64
	offX, offY float64
	h          int
}

func NewViewport(minX, minY, maxX, maxY float64, w, h int) Viewport {
	sx := float64(w-1) / (maxX - minX)
	sy := float64(h-1) / (maxY - minY)
	scale := math.Min(sx, sy)
	return Viewport{
		scale: scale,
		offX:  (float64(w-1)-(maxX-minX)*scale)/2 - minX*scale,
		offY:  (float64(h-1)-(maxY-minY)*scale)/2 - minY*scale,
		h:     h,
	}
}

// LoopViewport frames a loop of the given radius with room for the ground
// and a ballistic arc on either side.
func LoopViewport(radius float64, c *Canvas) Viewport {
	w, h := c.SubPixels()
	return NewViewport(-1.6*radius, -0.15*radius, 1.6*radius, 2.15*radius, w, h)
}

func (v Viewport) Map(x, y float64) (int, int) {
	px := x*v.scale + v.offX
	py := float64(v.h-1) - (y*v.scale + v.offY)
	return int(math.Round(px)), int(math.Round(py))
}

func (v Viewport) Scale() float64 { return v.scale }
