// Package loop runs the capture → detect → signal → render cycle.
//
// The loop has two states. It is RUNNING from the first call to Run until
// the operator presses 'q' (or the context is cancelled, or a fatal error
// occurs), after which it is STOPPED. Every iteration writes exactly one
// signal byte for the frame it processed.
package loop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/andresmejia3/facelight/internal/log"
	"github.com/andresmejia3/facelight/internal/types"
)

// ErrCameraLost is returned after too many consecutive failed reads.
var ErrCameraLost = errors.New("camera stopped delivering frames")

// QuitKey stops the loop when pressed in the preview window.
const QuitKey = 'q'

// KeyPollMillis is how long each iteration waits for a key press.
const KeyPollMillis = 1

// State of the loop.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

// Source yields frames. ok is false when a read failed.
type Source[F any] interface {
	ReadFrame() (frame F, ok bool)
}

// Detector finds face regions in a frame.
type Detector[F any] interface {
	Detect(frame F) ([]image.Rectangle, error)
}

// View renders frames and reports key presses.
type View[F any] interface {
	Draw(frame F, regions []image.Rectangle)
	Show(frame F)
	WaitKey(ms int) int
}

// Sink receives one signal per processed frame.
type Sink interface {
	Write(sig types.Signal) error
}

// Iteration summarises one processed frame.
type Iteration struct {
	Index  int
	Faces  int
	Signal types.Signal
}

// Config tunes failure handling and observation.
type Config struct {
	// RetryDelay is the pause after a failed read.
	RetryDelay time.Duration
	// MaxReadFailures stops the loop after this many consecutive failed
	// reads. Zero retries forever.
	MaxReadFailures int
	// OnIteration, if set, is called after each processed frame.
	OnIteration func(Iteration)
	Logger      *slog.Logger
}

// Loop wires a frame source, detector, view and sink together.
type Loop[F any] struct {
	source   Source[F]
	detector Detector[F]
	view     View[F]
	sink     Sink
	cfg      Config
	logger   *slog.Logger

	state  State
	frames int
}

// New builds a loop in the STOPPED state.
func New[F any](source Source[F], detector Detector[F], view View[F], sink Sink, cfg Config) *Loop[F] {
	logger := cfg.Logger
	if logger == nil {
		logger = log.L()
	}
	return &Loop[F]{
		source:   source,
		detector: detector,
		view:     view,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
	}
}

// State reports whether the loop is running.
func (l *Loop[F]) State() State { return l.state }

// Frames is the number of frames processed so far.
func (l *Loop[F]) Frames() int { return l.frames }

// Run processes frames until 'q' is pressed or ctx is cancelled, both of
// which return nil. Detection and signal failures are returned wrapped.
func (l *Loop[F]) Run(ctx context.Context) error {
	l.state = Running
	defer func() { l.state = Stopped }()

	failures := 0
	for {
		if ctx.Err() != nil {
			l.logger.Info("loop interrupted", "frames", l.frames)
			return nil
		}

		frame, ok := l.source.ReadFrame()
		if !ok {
			failures++
			l.logger.Warn("frame read failed", "consecutive", failures)
			if l.cfg.MaxReadFailures > 0 && failures >= l.cfg.MaxReadFailures {
				return fmt.Errorf("%w: %d consecutive failed reads", ErrCameraLost, failures)
			}
			if !sleep(ctx, l.cfg.RetryDelay) {
				l.logger.Info("loop interrupted", "frames", l.frames)
				return nil
			}
			continue
		}
		failures = 0

		quit, err := l.Step(frame)
		if err != nil {
			return err
		}
		if quit {
			l.logger.Info("quit requested", "frames", l.frames)
			return nil
		}
	}
}

// Step handles one frame: detect, signal, draw, show, then poll the
// keyboard. It reports whether the quit key was pressed.
func (l *Loop[F]) Step(frame F) (bool, error) {
	regions, err := l.detector.Detect(frame)
	if err != nil {
		return false, fmt.Errorf("detect faces in frame %d: %w", l.frames, err)
	}

	sig := types.SignalFor(len(regions))
	if err := l.sink.Write(sig); err != nil {
		return false, fmt.Errorf("send signal for frame %d: %w", l.frames, err)
	}

	l.view.Draw(frame, regions)
	l.view.Show(frame)

	it := Iteration{Index: l.frames, Faces: len(regions), Signal: sig}
	l.frames++
	if l.cfg.OnIteration != nil {
		l.cfg.OnIteration(it)
	}
	l.logger.Debug("frame processed", "index", it.Index, "faces", it.Faces, "signal", it.Signal)

	key := l.view.WaitKey(KeyPollMillis)
	return key&0xFF == QuitKey, nil
}

// sleep waits d or until ctx is done; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
