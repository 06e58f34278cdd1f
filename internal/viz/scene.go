package viz

import (
	"github.com/san-kum/loopsim/internal/dynamo"
)

// Scene draws the loop, its ground line, a trail of samples and the mass
// with its normal-force arrow.
type Scene struct {
	Track    *dynamo.Track
	View     Viewport
	MaxForce float64
	// ArrowLength is the world length of the arrow at MaxForce.
	ArrowLength float64
}

func NewScene(p dynamo.Params, c *Canvas) *Scene {
	return &Scene{
		Track:       dynamo.NewTrack(p.Radius, dynamo.DefaultTrackResolution),
		View:        LoopViewport(p.Radius, c),
		MaxForce:    dynamo.PeakNormalForce(p),
		ArrowLength: 0.5 * p.Radius,
	}
}

func (s *Scene) Draw(c *Canvas, trail []dynamo.Sample) {
	c.Clear()

	w, _ := c.SubPixels()
	_, gy := s.View.Map(0, 0)
	for x := 0; x < w; x += 2 {
		c.Set(x, gy+1)
	}

	outline := s.Track.Outline()
	for i := 1; i < len(outline); i++ {
		x0, y0 := s.View.Map(outline[i-1].X, outline[i-1].Y)
		x1, y1 := s.View.Map(outline[i].X, outline[i].Y)
		c.DrawLine(x0, y0, x1, y1)
	}

	if len(trail) == 0 {
		return
	}
	for _, smp := range trail {
		x, y := s.View.Map(smp.X, smp.Y)
		c.Set(x, y)
	}

	cur := trail[len(trail)-1]
	mx, my := s.View.Map(cur.X, cur.Y)
	c.Dot(mx, my, 1)

	if tip, ok := s.Track.ForceArrow(cur, s.MaxForce, s.ArrowLength); ok {
		tx, ty := s.View.Map(tip.X, tip.Y)
		c.DrawLine(mx, my, tx, ty)
		c.Dot(tx, ty, 0)
	}
}
