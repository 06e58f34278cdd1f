package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
)

const (
	charW = 8
	charH = 16
)

var framePalette = color.Palette{
	color.RGBA{0x0a, 0x0a, 0x0a, 0xff},
	color.RGBA{0x00, 0xff, 0x88, 0xff},
}

// Rasterize paints every lit Braille dot as a block, one 8x16 cell per
// character.
func Rasterize(c *Canvas) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), framePalette)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - brailleBlank)
			if pattern <= 0 {
				continue
			}
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	return img
}

// EncodeGIF writes a looping animation; delay is in 100ths of a second.
func EncodeGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
