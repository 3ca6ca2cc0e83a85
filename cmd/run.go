package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/andresmejia3/facelight/internal/config"
	"github.com/andresmejia3/facelight/internal/detector"
	"github.com/andresmejia3/facelight/internal/display"
	"github.com/andresmejia3/facelight/internal/indicator"
	"github.com/andresmejia3/facelight/internal/log"
	"github.com/andresmejia3/facelight/internal/loop"
	"github.com/andresmejia3/facelight/internal/serial"
	"github.com/andresmejia3/facelight/internal/utils"
	"github.com/andresmejia3/facelight/internal/video"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

// Options holds shared configuration for the run and signal commands.
type Options struct {
	Camera          int
	SerialPort      string
	BaudRate        int
	Settle          string
	Cascade         string
	ScaleFactor     float64
	MinNeighbors    int
	MinSize         int
	Sink            string
	GPIOPin         string
	WindowTitle     string
	RetryDelay      string
	MaxReadFailures int
	Quiet           bool
}

var runOpts Options

type frameSource interface {
	loop.Source[gocv.Mat]
	io.Closer
}

type faceDetector interface {
	loop.Detector[gocv.Mat]
	io.Closer
}

type previewWindow interface {
	loop.View[gocv.Mat]
	io.Closer
}

// Device constructors, swapped in tests.
var (
	openDetector = func(cfg detector.Config) (faceDetector, error) {
		d, err := detector.New(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	openSink   = indicator.Open
	openWindow = func(title string) previewWindow { return display.Open(title) }
	openCamera = func(index int) (frameSource, error) {
		src, err := video.Open(index)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the camera and drive the indicator until 'q' is pressed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runRun(cmd.Context(), runOpts)
	},
}

func init() {
	addSinkFlags(runCmd, &runOpts)
	runCmd.Flags().IntVarP(&runOpts.Camera, "camera", "c", envDefault(config.Camera), "Camera device index")
	runCmd.Flags().StringVar(&runOpts.Cascade, "cascade", config.Cascade(), "Haar cascade XML; a bare file name is also searched for in the OpenCV haarcascades directories")
	runCmd.Flags().Float64Var(&runOpts.ScaleFactor, "scale-factor", config.DefaultScaleFactor, "Detection pyramid scale step (> 1.0)")
	runCmd.Flags().IntVar(&runOpts.MinNeighbors, "min-neighbors", config.DefaultMinNeighbors, "Overlapping hits required to keep a face")
	runCmd.Flags().IntVar(&runOpts.MinSize, "min-size", 0, "Smallest face side in pixels (0 = no limit)")
	runCmd.Flags().StringVarP(&runOpts.WindowTitle, "window", "w", config.DefaultWindowTitle, "Preview window title")
	runCmd.Flags().StringVar(&runOpts.RetryDelay, "retry-delay", config.DefaultRetryDelay.String(), "Pause after a failed frame read")
	runCmd.Flags().IntVar(&runOpts.MaxReadFailures, "max-read-failures", 0, "Stop after this many consecutive failed reads (0 = retry forever)")
	runCmd.Flags().BoolVarP(&runOpts.Quiet, "quiet", "q", false, "Hide the live status line")
	rootCmd.AddCommand(runCmd)
}

// addSinkFlags registers the indicator flags shared by run and signal.
func addSinkFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.Sink, "sink", config.Sink(), "Indicator sink: serial or gpio")
	cmd.Flags().StringVarP(&opts.SerialPort, "port", "p", config.SerialPort(), "Serial device (e.g. COM3, /dev/ttyACM0)")
	cmd.Flags().IntVarP(&opts.BaudRate, "baud", "b", envDefault(config.BaudRate), "Serial baud rate")
	cmd.Flags().StringVar(&opts.Settle, "settle", config.DefaultSettle.String(), "Wait after opening the port while the board resets")
	cmd.Flags().StringVar(&opts.GPIOPin, "gpio-pin", config.GPIOPin(), "GPIO pin name for the gpio sink (e.g. GPIO17)")
}

// envDefault takes the flag default from an env getter. Malformed values are
// reported later by validateSinkFlags.
func envDefault(get func() (int, error)) int {
	n, _ := get()
	return n
}

// runRun acquires the indicator, window and camera, runs the loop, and
// releases them in reverse order on every exit path.
func runRun(ctx context.Context, opts Options) error {
	if err := validateRunFlags(&opts); err != nil {
		return utils.Report("Invalid flags", err)
	}

	retryDelay, _ := time.ParseDuration(opts.RetryDelay)
	session := uuid.NewString()
	logger := log.With("session", session[:8])

	det, err := openDetector(detectorConfig(opts))
	if err != nil {
		return utils.Report("Failed to load face classifier", err)
	}

	var res loop.Resources
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("release failed", "err", err)
		}
	}()
	res.Add("detector", det)

	sinkCfg, _ := sinkConfig(opts)
	logger.Info("opening indicator", "sink", sinkCfg.Kind, "port", sinkCfg.Serial.Port, "baud", sinkCfg.Serial.BaudRate, "settle", sinkCfg.Serial.Settle)
	sink, err := openSink(ctx, sinkCfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return utils.Report("Failed to open indicator", err)
	}
	res.Add("indicator", sink)

	win := openWindow(opts.WindowTitle)
	res.Add("window", win)

	src, err := openCamera(opts.Camera)
	if err != nil {
		return utils.Report("Failed to open camera", err)
	}
	res.Add("camera", src)

	status := newStatusLine(os.Stderr, opts.Quiet)
	l := loop.New[gocv.Mat](src, det, win, sink, loop.Config{
		RetryDelay:      retryDelay,
		MaxReadFailures: opts.MaxReadFailures,
		OnIteration:     status.Update,
		Logger:          logger,
	})

	logger.Info("running", "camera", opts.Camera, "cascade", opts.Cascade, "hint", "press 'q' in the preview window to stop")
	err = l.Run(ctx)
	status.Finish()
	if err != nil {
		return utils.Report("Detection loop stopped", err)
	}

	logger.Info("stopped", "frames", l.Frames(), "face_frames", status.FaceFrames())
	return nil
}

func detectorConfig(opts Options) detector.Config {
	return detector.Config{
		CascadePath:  opts.Cascade,
		ScaleFactor:  opts.ScaleFactor,
		MinNeighbors: opts.MinNeighbors,
		MinSize:      image.Pt(opts.MinSize, opts.MinSize),
	}
}

func sinkConfig(opts Options) (indicator.Config, error) {
	settle, err := time.ParseDuration(opts.Settle)
	if err != nil {
		return indicator.Config{}, fmt.Errorf("invalid settle duration (use '2s', '500ms'): %w", err)
	}
	return indicator.Config{
		Kind: opts.Sink,
		Serial: serial.Config{
			Port:     opts.SerialPort,
			BaudRate: opts.BaudRate,
			Settle:   settle,
		},
		GPIOPin: opts.GPIOPin,
	}, nil
}

// validateRunFlags checks every flag before any device is touched.
func validateRunFlags(opts *Options) error {
	if opts.Camera < 0 {
		return fmt.Errorf("camera index must be >= 0, got %d", opts.Camera)
	}
	if err := validateSinkFlags(opts); err != nil {
		return err
	}
	if opts.MinSize < 0 {
		return fmt.Errorf("min-size must be >= 0, got %d", opts.MinSize)
	}
	if err := detectorConfig(*opts).Validate(); err != nil {
		return err
	}
	opts.Cascade = config.FindCascade(opts.Cascade)
	info, err := os.Stat(opts.Cascade)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("cascade file does not exist: %s", opts.Cascade)
		}
		return fmt.Errorf("unable to access cascade file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cascade path is a directory, expected an XML file: %s", opts.Cascade)
	}
	if opts.WindowTitle == "" {
		opts.WindowTitle = config.DefaultWindowTitle
	}
	d, err := time.ParseDuration(opts.RetryDelay)
	if err != nil {
		return fmt.Errorf("invalid retry-delay format (use '100ms', '1s'): %w", err)
	}
	if d < config.MinRetryDelay {
		return fmt.Errorf("retry-delay must be at least %v, got %v", config.MinRetryDelay, d)
	}
	if opts.MaxReadFailures < 0 {
		opts.MaxReadFailures = 0
	}
	return nil
}

func validateSinkFlags(opts *Options) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg, err := sinkConfig(*opts)
	if err != nil {
		return err
	}
	return cfg.Validate()
}
