package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/viz"
)

const (
	colorBackground = "#0a0a0a"
	colorTrack      = "#808080"
	colorOnTrack    = "#00c853"
	colorFalling    = "#ff1744"
	colorGround     = "#5d4037"
)

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.SubPixels()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, colorBackground, colorOnTrack)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func (f frame) py(y float64) float64 {
	return float64(f.height) - (y-f.minY)/f.rangeY*float64(f.height)
}

func (f frame) point(x, y float64) string {
	px := (x - f.minX) / f.rangeX * float64(f.width)
	return fmt.Sprintf("%.1f,%.1f", px, f.py(y))
}

// TrajectoryToSVG draws the loop outline dashed, the path of the mass with
// one polyline per contiguous phase, and the ground line.
func TrajectoryToSVG(res *dynamo.Result, width, height int) string {
	if res == nil || len(res.Samples) == 0 {
		return ""
	}

	r := res.Params.Radius
	minX, maxX := -r, r
	minY, maxY := 0.0, 2*r
	for _, s := range res.Samples {
		minX, maxX = math.Min(minX, s.X), math.Max(maxX, s.X)
		maxY = math.Max(maxY, s.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2
	f := frame{minX: minX, minY: minY, rangeX: rangeX, rangeY: rangeY, width: width, height: height}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, colorBackground)

	gy := f.py(0)
	fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"2\"/>\n",
		gy, width, gy, colorGround)

	track := dynamo.NewTrack(r, dynamo.DefaultTrackResolution)
	sb.WriteString(`<polyline fill="none" stroke="` + colorTrack + `" stroke-width="1" stroke-dasharray="4 3" points="`)
	for i, p := range track.Outline() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.point(p.X, p.Y))
	}
	sb.WriteString("\"/>\n")

	for _, seg := range segments(res.Samples) {
		color := colorFalling
		if seg[0].Phase == dynamo.OnTrack {
			color = colorOnTrack
		}
		sb.WriteString(`<polyline fill="none" stroke="` + color + `" stroke-width="1.5" points="`)
		for i, s := range seg {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.point(s.X, s.Y))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// segments splits samples at contact changes. Landed samples join the
// falling segment and the first falling sample also closes the on-track
// one, so the drawn path has no gaps.
func segments(samples []dynamo.Sample) [][]dynamo.Sample {
	var out [][]dynamo.Sample
	start := 0
	for i := 1; i < len(samples); i++ {
		if onTrack(samples[i]) != onTrack(samples[start]) {
			out = append(out, samples[start:i+1])
			start = i
		}
	}
	return append(out, samples[start:])
}

func onTrack(s dynamo.Sample) bool { return s.Phase == dynamo.OnTrack }
