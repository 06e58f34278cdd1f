package viz

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/loopsim/internal/dynamo"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Fatal("expected dot to be set")
	}
	if c.Grid[1][1] == brailleBlank {
		t.Error("expected non-blank cell")
	}
	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != brailleBlank {
		t.Error("expected cleared cell")
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	if strings.Count(c.String(), "\n") != 2 {
		t.Errorf("unexpected rendering %q", c.String())
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	if !c.IsSet(0, 0) || !c.IsSet(19, 19) {
		t.Error("expected both endpoints set")
	}
}

func TestViewportKeepsLoopInside(t *testing.T) {
	c := NewCanvas(width, height)
	v := LoopViewport(5, c)
	w, h := c.SubPixels()

	for _, pt := range dynamo.NewTrack(5, 64).Outline() {
		x, y := v.Map(pt.X, pt.Y)
		if x < 0 || x >= w || y < 0 || y >= h {
			t.Fatalf("point %+v mapped outside canvas: (%d, %d)", pt, x, y)
		}
	}

	_, bottom := v.Map(0, 0)
	_, top := v.Map(0, 10)
	if top >= bottom {
		t.Errorf("expected y up: top %d, bottom %d", top, bottom)
	}
}

func TestRasterize(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	img := Rasterize(c)
	if img.Bounds().Dx() != 2*charW || img.Bounds().Dy() != charH {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if img.ColorIndexAt(0, 0) != 1 {
		t.Error("expected lit top-left dot")
	}
	if img.ColorIndexAt(charW+1, 1) != 0 {
		t.Error("expected dark second cell")
	}

	var buf bytes.Buffer
	if err := EncodeGIF(&buf, []*image.Paletted{img, img}, 2); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Errorf("expected 2 frames, got %d", len(decoded.Image))
	}
}

func TestSceneDrawsMassAndArrow(t *testing.T) {
	p := dynamo.DefaultParams()
	res, err := dynamo.Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCanvas(width, height)
	scene := NewScene(p, c)
	scene.Draw(c, res.Samples[:1])

	x, y := scene.View.Map(0, 0)
	if !c.IsSet(x, y) {
		t.Error("expected the mass at the bottom of the loop")
	}
	// The arrow points up toward the centre at the bottom.
	_, ty := scene.View.Map(0, scene.ArrowLength*0.5)
	if !c.IsSet(x, ty) {
		t.Error("expected the force arrow above the mass")
	}
}

func TestLoopWireframe(t *testing.T) {
	track := dynamo.NewTrack(5, 32)
	w := LoopWireframe(track, []dynamo.Sample{{X: 0, Y: 0}})
	// outline edges + two ground edges + trail point + mass cross
	if got, want := len(w.Edges), 32+2+1+3; got != want {
		t.Errorf("expected %d edges, got %d", want, got)
	}

	c := NewCanvas(width, height)
	Render3D(c, w, NewCamera())
	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected the wireframe to light some cells")
	}
}

func TestModelStepsAndStops(t *testing.T) {
	p := dynamo.DefaultParams()
	p.V0 = 0
	p.Termination = dynamo.UntilLanded
	sim, err := dynamo.New(p)
	if err != nil {
		t.Fatal(err)
	}

	m := NewModel(sim, Options{Title: "test", StepsPerFrame: 5})
	next, _ := m.Update(TickMsg{})
	m = next.(Model)

	if len(m.trail) != 2 {
		t.Errorf("expected 2 samples, got %d", len(m.trail))
	}
	if !sim.Done() || !strings.Contains(m.message, "ground_contact") {
		t.Errorf("expected stop message, got %q", m.message)
	}
	if !strings.Contains(m.View(), "LANDED") {
		t.Error("expected the landed phase in the panel")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	if len(m.trail) != 0 || sim.Done() {
		t.Error("expected restart to clear the run")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}, 4); got != "▁█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
}

func TestMenuChoice(t *testing.T) {
	m := NewMenu([]MenuItem{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp},
	} {
		next, _ := m.Update(k)
		m = next.(Menu)
	}
	if !strings.Contains(m.View(), "▸") {
		t.Error("expected a cursor marker")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got := next.(Menu).Choice(); got != "b" {
		t.Errorf("expected b, got %q", got)
	}

	next, _ = NewMenu([]MenuItem{{Name: "a"}}).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := next.(Menu).Choice(); got != "" {
		t.Errorf("expected no choice after esc, got %q", got)
	}
}
