package cmd

import (
	"fmt"
	"io"

	"github.com/andresmejia3/facelight/internal/loop"
	"github.com/schollz/progressbar/v3"
)

// statusLine is the live spinner on stderr: frame count, rate and the
// signal last sent.
type statusLine struct {
	bar        *progressbar.ProgressBar
	w          io.Writer
	faceFrames int
}

func newStatusLine(w io.Writer, quiet bool) *statusLine {
	if quiet {
		return &statusLine{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("👁️  Watching"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSpinnerType(14),
	)
	return &statusLine{bar: bar, w: w}
}

// Update records one processed frame.
func (s *statusLine) Update(it loop.Iteration) {
	if it.Faces > 0 {
		s.faceFrames++
	}
	if s.bar == nil {
		return
	}
	s.bar.Describe(fmt.Sprintf("👁️  LED %-3s | faces %d", it.Signal, it.Faces))
	_ = s.bar.Add(1)
}

// FaceFrames is how many processed frames contained at least one face.
func (s *statusLine) FaceFrames() int { return s.faceFrames }

// Finish ends the spinner line.
func (s *statusLine) Finish() {
	if s.bar == nil {
		return
	}
	_ = s.bar.Finish()
	fmt.Fprintln(s.w)
}
