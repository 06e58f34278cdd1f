package viz

import (
	"math"
	"sort"

	"github.com/san-kum/loopsim/internal/dynamo"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Camera orbits the origin and projects onto the canvas plane.
type Camera struct {
	Distance   float64
	Near       float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 5, Near: 0.1, RotX: -0.35, RotY: 0.6, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project returns dot coordinates, depth and whether the point lands on a
// sw x sh surface.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.rotate(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := math.Min(float64(sw), float64(sh)) / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe         { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) AddPolyline(pts []Vec3) {
	for i := 1; i < len(pts); i++ {
		w.AddEdge(pts[i-1], pts[i])
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.SubPixels()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// LoopWireframe builds the loop, a ground cross and the trail in normalised
// units: the loop centre sits at the origin with unit radius.
func LoopWireframe(track *dynamo.Track, trail []dynamo.Sample) *Wireframe {
	r := track.Radius
	toVec := func(x, y float64) Vec3 { return Vec3{x / r, y/r - 1, 0} }

	w := NewWireframe()
	outline := track.Outline()
	pts := make([]Vec3, len(outline))
	for i, p := range outline {
		pts[i] = toVec(p.X, p.Y)
	}
	w.AddPolyline(pts)

	w.AddEdge(Vec3{-1.6, -1, 0}, Vec3{1.6, -1, 0})
	w.AddEdge(Vec3{0, -1, -0.8}, Vec3{0, -1, 0.8})

	for _, s := range trail {
		w.AddPoint(toVec(s.X, s.Y))
	}
	if len(trail) > 0 {
		cur := trail[len(trail)-1]
		c := toVec(cur.X, cur.Y)
		const d = 0.04
		w.AddEdge(c.Add(Vec3{-d, 0, 0}), c.Add(Vec3{d, 0, 0}))
		w.AddEdge(c.Add(Vec3{0, -d, 0}), c.Add(Vec3{0, d, 0}))
		w.AddEdge(c.Add(Vec3{0, 0, -d}), c.Add(Vec3{0, 0, d}))
	}
	return w
}
