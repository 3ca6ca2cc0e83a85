// Package detector finds faces with a pre-trained Haar cascade.
package detector

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/andresmejia3/facelight/internal/config"
	"gocv.io/x/gocv"
)

// ErrCascade is wrapped when the classifier cannot be loaded.
var ErrCascade = errors.New("cascade classifier unavailable")

// Config holds the classifier file and multi-scale parameters.
type Config struct {
	CascadePath  string
	ScaleFactor  float64     // Pyramid step between scales, must be > 1
	MinNeighbors int         // Overlapping hits required to keep a candidate
	MinSize      image.Point // Smallest face considered; zero means no limit
}

// DefaultConfig returns the frontal-face cascade with scale 1.1 and 5 neighbours.
func DefaultConfig() Config {
	return Config{
		CascadePath:  config.DefaultCascade,
		ScaleFactor:  config.DefaultScaleFactor,
		MinNeighbors: config.DefaultMinNeighbors,
	}
}

// Validate checks the multi-scale parameters.
func (c Config) Validate() error {
	if c.CascadePath == "" {
		return fmt.Errorf("cascade path is empty")
	}
	if c.ScaleFactor <= 1.0 {
		return fmt.Errorf("scale factor must be > 1.0, got %v", c.ScaleFactor)
	}
	if c.MinNeighbors < 0 {
		return fmt.Errorf("min neighbors must be >= 0, got %d", c.MinNeighbors)
	}
	if c.MinSize.X < 0 || c.MinSize.Y < 0 {
		return fmt.Errorf("min size must not be negative, got %v", c.MinSize)
	}
	return nil
}

// Cascade runs a Haar cascade over grayscale copies of colour frames.
// It keeps no state between frames beyond a reusable scratch buffer.
type Cascade struct {
	classifier gocv.CascadeClassifier
	gray       gocv.Mat
	cfg        Config

	closeOnce sync.Once
}

// New loads the cascade named by cfg.
func New(cfg Config) (*Cascade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCascade, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: could not load %s", ErrCascade, cfg.CascadePath)
	}

	return &Cascade{
		classifier: classifier,
		gray:       gocv.NewMat(),
		cfg:        cfg,
	}, nil
}

// Config returns the parameters the cascade was loaded with.
func (c *Cascade) Config() Config { return c.cfg }

// Prepare converts a BGR frame to single-channel grayscale.
// The returned Mat is owned by the cascade and reused on the next call.
func (c *Cascade) Prepare(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return c.gray, fmt.Errorf("empty frame")
	}
	gocv.CvtColor(frame, &c.gray, gocv.ColorBGRToGray)
	return c.gray, nil
}

// Detect returns candidate face rectangles in frame coordinates.
// The order of the result carries no meaning.
func (c *Cascade) Detect(frame gocv.Mat) ([]image.Rectangle, error) {
	gray, err := c.Prepare(frame)
	if err != nil {
		return nil, err
	}
	return c.classifier.DetectMultiScaleWithParams(
		gray,
		c.cfg.ScaleFactor,
		c.cfg.MinNeighbors,
		0,
		c.cfg.MinSize,
		image.Pt(0, 0),
	), nil
}

// Close releases the classifier and scratch buffer.
func (c *Cascade) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = errors.Join(c.classifier.Close(), c.gray.Close())
	})
	return err
}
