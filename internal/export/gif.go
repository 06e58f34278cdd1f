package export

import (
	"errors"
	"image"
	"io"
	"math"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/viz"
)

const (
	gifCols = 80
	gifRows = 24
)

var ErrEmptyResult = errors.New("export: result has no samples")

// AnimationGIF renders one frame every k samples, plus the final sample,
// through the Braille scene used by the live view. Frame delay follows
// simulated time.
func AnimationGIF(w io.Writer, res *dynamo.Result, every int) error {
	if res == nil || len(res.Samples) == 0 {
		return ErrEmptyResult
	}
	if every <= 0 {
		every = 1
	}

	canvas := viz.NewCanvas(gifCols, gifRows)
	scene := viz.NewScene(res.Params, canvas)

	n := len(res.Samples)
	frames := make([]*image.Paletted, 0, n/every+1)
	for i := 0; i < n; i += every {
		scene.Draw(canvas, res.Samples[:i+1])
		frames = append(frames, viz.Rasterize(canvas))
	}
	if (n-1)%every != 0 {
		scene.Draw(canvas, res.Samples)
		frames = append(frames, viz.Rasterize(canvas))
	}

	delay := int(math.Round(float64(every) * res.Params.Dt * 100))
	return viz.EncodeGIF(w, frames, max(delay, 1))
}
