package viz

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/dynamo"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 400
)

type TickMsg time.Time

type Options struct {
	Title         string
	FPS           int
	StepsPerFrame int
	// GIFPath is where a recording is written when G is pressed again.
	GIFPath string
	Logger  *zap.Logger
}

// Model pulls StepsPerFrame samples from the simulator on every tick and
// renders the loop next to a statistics panel.
type Model struct {
	sim      *dynamo.Simulator
	opts     Options
	canvas   *Canvas
	scene    *Scene
	camera   *Camera
	trail    []dynamo.Sample
	speeds   []float64
	running  bool
	view3D   bool
	frames   []*image.Paletted
	record   bool
	message  string
	showHelp bool
}

func NewModel(sim *dynamo.Simulator, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "loopsim.gif"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	canvas := NewCanvas(width, height)
	return Model{
		sim:     sim,
		opts:    opts,
		canvas:  canvas,
		scene:   NewScene(sim.Params(), canvas),
		camera:  NewCamera(),
		trail:   make([]dynamo.Sample, 0, trailCapacity),
		speeds:  make([]float64, 0, historyCapacity),
		running: true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.record {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "g":
			if m.record {
				m.saveGIF()
				m.record = false
				m.frames = nil
			} else {
				m.record = true
				m.frames = make([]*image.Paletted, 0)
				m.message = ""
			}
		case "v":
			m.view3D = !m.view3D
		case "t":
			NextTheme()
		case "left", "h":
			m.camera.RotateY(-0.1)
		case "right", "l":
			m.camera.RotateY(0.1)
		case "up", "k":
			m.camera.RotateX(-0.1)
		case "down", "j":
			m.camera.RotateX(0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.record {
			m.frames = append(m.frames, Rasterize(m.canvas))
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the simulator by one frame's worth of samples.
func (m *Model) step() {
	for i := 0; i < m.opts.StepsPerFrame; i++ {
		smp, ok := m.sim.Next()
		if !ok {
			if m.message == "" {
				m.message = "stopped: " + m.sim.Reason().String()
				m.opts.Logger.Info("live run stopped",
					zap.Stringer("reason", m.sim.Reason()),
					zap.Float64("t", m.sim.State().T))
			}
			return
		}
		m.trail = append(m.trail, smp)
		if len(m.trail) > trailCapacity {
			m.trail = m.trail[1:]
		}
		m.speeds = append(m.speeds, smp.Speed)
		if len(m.speeds) > historyCapacity {
			m.speeds = m.speeds[1:]
		}
	}
}

func (m *Model) reset() {
	m.sim.Reset()
	m.trail = m.trail[:0]
	m.speeds = m.speeds[:0]
	m.message = ""
	m.running = true
}

func (m *Model) draw() {
	if m.view3D {
		m.canvas.Clear()
		Render3D(m.canvas, LoopWireframe(m.scene.Track, m.trail), m.camera)
		return
	}
	m.scene.Draw(m.canvas, m.trail)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	f, err := os.Create(m.opts.GIFPath)
	if err != nil {
		m.message = "gif: " + err.Error()
		m.opts.Logger.Error("create gif", zap.Error(err))
		return
	}
	defer f.Close()
	if err := EncodeGIF(f, m.frames, max(1, 100/m.opts.FPS)); err != nil {
		m.message = "gif: " + err.Error()
		m.opts.Logger.Error("encode gif", zap.Error(err))
		return
	}
	m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.opts.GIFPath)
	m.opts.Logger.Info("saved recording", zap.String("path", m.opts.GIFPath), zap.Int("frames", len(m.frames)))
}

func (m Model) View() string {
	theme := CurrentTheme
	p := m.sim.Params()

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).MarginBottom(1)
	s.WriteString(title.Render(strings.ToUpper(m.opts.Title)) + "\n")

	switch {
	case m.record:
		s.WriteString(StatusRecording.Render("● REC") + "\n\n")
	case m.sim.Done():
		s.WriteString(StatusPaused.Render("DONE") + "\n\n")
	case !m.running:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("|v|"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	var cur dynamo.Sample
	if len(m.trail) > 0 {
		cur = m.trail[len(m.trail)-1]
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("t", fmt.Sprintf("%.3f s", cur.T))
	row("|v|", fmt.Sprintf("%.3f m/s", cur.Speed))
	row("F", fmt.Sprintf("%.3f m/s²", cur.NormalForce))
	row("θ", fmt.Sprintf("%.3f rad", cur.Theta))
	s.WriteString(labelStyle.Render("phase") + theme.Phase(cur.Phase) + "\n")
	if cur.Clamped {
		s.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("energy term clamped") + "\n")
	}
	if p.Termination == dynamo.FixedDuration {
		s.WriteString("\n" + ProgressBar(cur.T/p.Duration, 24) + "\n")
	}
	s.WriteString("\n" + labelStyle.Render("v0") + valueStyle.Render(fmt.Sprintf("%.2f (crit %.2f)", p.V0, p.CriticalSpeed())) + "\n")
	row("model", p.Model.String())
	row("speed", Sparkline(m.speeds, 24))

	if m.message != "" {
		s.WriteString("\n" + valueStyle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Restart G:Record\nV:3D T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space    pause / resume
  R        restart from the bottom of the loop
  G        start / stop GIF recording
  V        toggle the 3D wireframe view
  ←→↑↓     orbit the 3D camera
  + -      zoom the 3D camera
  T        cycle themes
  Q        quit
` + "\n" + mainView
	}
	return mainView
}

// Run starts the full-screen program and blocks until it exits.
func Run(sim *dynamo.Simulator, opts Options) error {
	_, err := tea.NewProgram(NewModel(sim, opts), tea.WithAltScreen()).Run()
	return err
}
