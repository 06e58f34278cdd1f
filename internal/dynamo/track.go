package dynamo

import "math"

// Point is a position in the loop plane, y up, origin at the loop bottom.
type Point struct {
	X, Y float64
}

// Track holds a precomputed outline of the loop. Renderers draw from it
// every frame, so the sin/cos tables are built once.
type Track struct {
	Radius float64
	sin    []float64
	cos    []float64
	n      int
}

// DefaultTrackResolution matches a 0.01 rad sweep of the full circle.
const DefaultTrackResolution = 629

// NewTrack precomputes n points around a loop of the given radius.
func NewTrack(radius float64, n int) *Track {
	if n < 3 {
		n = 3
	}
	t := &Track{
		Radius: radius,
		sin:    make([]float64, n),
		cos:    make([]float64, n),
		n:      n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

func (t *Track) Len() int { return t.n }

// Outline returns the closed loop, first point repeated at the end.
func (t *Track) Outline() []Point {
	pts := make([]Point, 0, t.n+1)
	for i := 0; i < t.n; i++ {
		pts = append(pts, Point{X: t.Radius * t.sin[i], Y: t.Radius * (1 - t.cos[i])})
	}
	return append(pts, pts[0])
}

// Position is the exact point on the loop at angle theta from the bottom.
func (t *Track) Position(theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{X: t.Radius * sin, Y: t.Radius * (1 - cos)}
}

// Center of the loop.
func (t *Track) Center() Point {
	return Point{X: 0, Y: t.Radius}
}

// InwardNormal is the unit vector from a point on the loop toward its center.
func (t *Track) InwardNormal(p Point) Point {
	return Point{X: -p.X / t.Radius, Y: (t.Radius - p.Y) / t.Radius}
}

// ForceArrow returns the tip of the normal-force indicator drawn at a sample,
// scaled so that a force of maxForce spans length.
func (t *Track) ForceArrow(s Sample, maxForce, length float64) (Point, bool) {
	if s.Phase != OnTrack || s.NormalForce <= 0 || maxForce <= 0 {
		return Point{}, false
	}
	n := t.InwardNormal(Point{X: s.X, Y: s.Y})
	scale := s.NormalForce / maxForce * length
	return Point{X: s.X + n.X*scale, Y: s.Y + n.Y*scale}, true
}

// MaxNormalForce scans samples for the largest on-track force.
func MaxNormalForce(samples []Sample) float64 {
	maxF := 0.0
	for _, s := range samples {
		if s.Phase == OnTrack && s.NormalForce > maxF {
			maxF = s.NormalForce
		}
	}
	return maxF
}

// PeakNormalForce is F at the bottom of the loop, where both force models
// reach their maximum. It is 0 when the mass leaves the track immediately.
func PeakNormalForce(p Params) float64 {
	return math.Max(p.Model.NormalForce(p.V0, 1, p.Radius, p.Gravity), 0)
}
