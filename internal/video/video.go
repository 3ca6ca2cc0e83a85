// Package video reads frames from a local camera.
package video

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is wrapped when the camera cannot be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Source owns one capture device and the buffer frames are decoded into.
// The buffer is overwritten by every read, so a frame is only valid until
// the next call to ReadFrame.
type Source struct {
	index   int
	capture *gocv.VideoCapture
	frame   gocv.Mat

	closeOnce sync.Once
	closeErr  error
}

// Open binds to the camera at index. Unlike a bare VideoCapture, a device
// that does not open is reported instead of yielding empty frames.
func Open(index int) (*Source, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: invalid camera index %d", ErrCameraUnavailable, index)
	}

	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w: open device %d: %w", ErrCameraUnavailable, index, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %d did not open", ErrCameraUnavailable, index)
	}

	return &Source{
		index:   index,
		capture: capture,
		frame:   gocv.NewMat(),
	}, nil
}

// Index is the camera index the source was opened with.
func (s *Source) Index() int { return s.index }

// ReadFrame blocks for the next frame. ok is false when the device
// returned nothing usable; the frame is undefined in that case.
func (s *Source) ReadFrame() (gocv.Mat, bool) {
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return s.frame, false
	}
	return s.frame, true
}

// Close releases the device and the frame buffer.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.capture.Close(), s.frame.Close())
	})
	return s.closeErr
}
