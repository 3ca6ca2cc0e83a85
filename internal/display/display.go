// Package display shows annotated frames in a preview window.
package display

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// BoxColor is the outline colour for detected faces (blue).
var BoxColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}

// BoxThickness is the outline width in pixels.
const BoxThickness = 2

// NoKey is what WaitKey returns when nothing was pressed.
const NoKey = -1

// Window is a single preview window.
type Window struct {
	title  string
	window *gocv.Window

	closeOnce sync.Once
	closeErr  error
}

// Open creates the preview window.
func Open(title string) *Window {
	return &Window{title: title, window: gocv.NewWindow(title)}
}

// Title is the window caption.
func (w *Window) Title() string { return w.title }

// Draw outlines every region on the colour frame in place.
func (w *Window) Draw(frame gocv.Mat, regions []image.Rectangle) {
	DrawRegions(&frame, regions)
}

// Show displays the frame.
func (w *Window) Show(frame gocv.Mat) {
	w.window.IMShow(frame)
}

// WaitKey pumps window events for up to ms milliseconds and returns the
// key code, or NoKey.
func (w *Window) WaitKey(ms int) int {
	return w.window.WaitKey(ms)
}

// Close destroys the window.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.window.Close()
	})
	return w.closeErr
}

// DrawRegions draws one outline per region at the region's coordinates.
func DrawRegions(frame *gocv.Mat, regions []image.Rectangle) {
	for _, r := range regions {
		gocv.Rectangle(frame, r, BoxColor, BoxThickness)
	}
}
