package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

func vec(x, y float64) rl.Vector3 {
	return rl.NewVector3(float32(x), float32(y), 0)
}

func (a *App) drawGround() {
	r := float32(a.Track.Radius)
	rl.DrawLine3D(rl.NewVector3(-2*r, 0, 0), rl.NewVector3(2*r, 0, 0), ColGround)
	rl.DrawLine3D(rl.NewVector3(0, 0, -r), rl.NewVector3(0, 0, r), ColGround)
}

func (a *App) drawLoop() {
	outline := a.Track.Outline()
	for i := 1; i < len(outline); i++ {
		rl.DrawLine3D(vec(outline[i-1].X, outline[i-1].Y), vec(outline[i].X, outline[i].Y), ColTrack)
	}
}

func (a *App) drawTrail() {
	for i := 1; i < len(a.Trail); i++ {
		rl.DrawLine3D(a.Trail[i-1], a.Trail[i], ColTrail)
	}
}

func (a *App) drawBall() {
	pos := vec(a.Current.X, a.Current.Y)
	rl.DrawSphere(pos, ballRadius, ColBall)

	// Unit maxForce makes the arrow length forceScale·F.
	if tip, ok := a.Track.ForceArrow(a.Current, 1, forceScale); ok {
		end := vec(tip.X, tip.Y)
		rl.DrawCylinderEx(pos, end, 0.05, 0.05, 8, ColForce)
		rl.DrawSphere(end, 0.1, ColForce)
	}
}
