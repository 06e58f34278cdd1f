package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/dynamo"
)

var (
	ColBg      = rl.NewColor(245, 245, 245, 255)
	ColTrack   = rl.NewColor(128, 128, 128, 255)
	ColBall    = rl.Red
	ColTrail   = rl.Orange
	ColForce   = rl.Blue
	ColGround  = rl.NewColor(200, 200, 200, 255)
	ColText    = rl.NewColor(40, 40, 40, 255)
	ColTextDim = rl.NewColor(140, 140, 140, 255)
)

const (
	screenWidth  = 800
	screenHeight = 600
	ballRadius   = 0.3
	// forceScale turns F (m/s²) into arrow length (m).
	forceScale = 0.3
	maxTrail   = 4000
	maxSpeeds  = 400
)

type Options struct {
	Title         string
	FPS           int
	StepsPerFrame int
	Logger        *zap.Logger
}

// App is the raylib window. Each frame pulls StepsPerFrame samples from the
// simulator, so 16 steps of 1 ms at 60 FPS is roughly real time.
type App struct {
	Sim     *dynamo.Simulator
	Track   *dynamo.Track
	Camera  rl.Camera3D
	Opts    Options
	Running bool

	Current dynamo.Sample
	Trail   []rl.Vector3
	Speeds  []float64
	Status  string
}

func NewApp(sim *dynamo.Simulator, opts Options) *App {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := float32(sim.Params().Radius)
	return &App{
		Sim:   sim,
		Track: dynamo.NewTrack(sim.Params().Radius, dynamo.DefaultTrackResolution),
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, r, 4*r),
			rl.NewVector3(0, r, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		Opts:    opts,
		Running: true,
		Trail:   make([]rl.Vector3, 0, maxTrail),
		Speeds:  make([]float64, 0, maxSpeeds),
	}
}

// Run opens the window and blocks until it is closed.
func Run(sim *dynamo.Simulator, opts Options) {
	app := NewApp(sim, opts)
	title := opts.Title
	if title == "" {
		title = "Looping Roller Coaster"
	}
	rl.InitWindow(screenWidth, screenHeight, title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(app.Opts.FPS))
	rl.SetExitKey(0)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}
	rl.UpdateCamera(&a.Camera, rl.CameraOrbital)

	if a.Running {
		a.step()
	}
}

func (a *App) step() {
	for i := 0; i < a.Opts.StepsPerFrame; i++ {
		smp, ok := a.Sim.Next()
		if !ok {
			if a.Status == "" {
				a.Status = a.Sim.Reason().String()
				a.Opts.Logger.Info("window run stopped",
					zap.Stringer("reason", a.Sim.Reason()),
					zap.Float64("t", a.Current.T))
			}
			return
		}
		a.Current = smp
		a.Trail = append(a.Trail, vec(smp.X, smp.Y))
		if len(a.Trail) > maxTrail {
			a.Trail = a.Trail[1:]
		}
	}
	a.Speeds = append(a.Speeds, a.Current.Speed)
	if len(a.Speeds) > maxSpeeds {
		a.Speeds = a.Speeds[1:]
	}
}

func (a *App) reset() {
	a.Sim.Reset()
	a.Current = dynamo.Sample{}
	a.Trail = a.Trail[:0]
	a.Speeds = a.Speeds[:0]
	a.Status = ""
	a.Running = true
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.drawGround()
	a.drawLoop()
	a.drawTrail()
	a.drawBall()
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	rl.DrawText("loopsim", 20, 20, 24, ColText)
	rl.DrawText(fmt.Sprintf("t = %.3f s", a.Current.T), 20, 56, 18, ColText)
	rl.DrawText(fmt.Sprintf("|v| = %.3f m/s", a.Current.Speed), 20, 80, 18, ColText)
	rl.DrawText(fmt.Sprintf("F = %.3f m/s²", a.Current.NormalForce), 20, 104, 18, ColText)
	rl.DrawText(a.Current.Phase.String(), 20, 128, 18, ColForce)

	status := "RUNNING"
	if a.Status != "" {
		status = a.Status
	} else if !a.Running {
		status = "PAUSED"
	}
	rl.DrawText(status, screenWidth-160, 20, 16, ColTextDim)

	a.DrawTelemetry()
	rl.DrawText("[SPACE] PAUSE  [R] RESTART  [Q] QUIT", 20, screenHeight-30, 14, ColTextDim)
}

// DrawTelemetry plots recent speeds as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Speeds) < 2 {
		return
	}

	rectX, rectY := float32(20), float32(screenHeight-110)
	w, h := float32(300), float32(60)

	lo, hi := a.Speeds[0], a.Speeds[0]
	for _, v := range a.Speeds {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(a.Speeds))
	for i, v := range a.Speeds {
		px := rectX + float32(i)/float32(len(a.Speeds))*w
		py := rectY + h - float32((v-lo)/(hi-lo))*h
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColTrail)
}
