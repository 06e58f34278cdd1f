// Package viz renders a loop run in the terminal.
//
//   - [Canvas]: Braille dot canvas, 2x4 dots per character
//   - [Scene]: loop outline, ground, trail, mass and normal-force arrow
//   - [Model]: Bubble Tea program that pulls samples from a
//     [dynamo.Simulator] on every frame
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the run
//	G     - Toggle GIF recording
//	V     - Toggle the 3D wireframe view
//	T     - Cycle color themes
//	?     - Show help overlay
//
// # Recording
//
// Frames are captured through [Rasterize] while recording and written with
// [EncodeGIF] when recording stops or the program quits.
package viz
