package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facelight/internal/config"
	"github.com/andresmejia3/facelight/internal/log"
	"github.com/andresmejia3/facelight/internal/utils"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var logLevel string

var rootCmd = &cobra.Command{
	Use:     "facelight",
	Short:   "Light an indicator whenever a webcam sees a face",
	Version: Version,
	Long: `facelight watches a webcam, outlines detected faces in a preview window,
and sends '1' (face present) or '0' (no face) over a serial link once per frame.
Press 'q' in the preview window to stop.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(logLevel); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		return nil
	},
}

func Execute() {
	// Ctrl+C or SIGTERM cancels the command context; the loop checks it
	// once per frame and unwinds through the normal release path.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var rep *utils.Reported
		if !errors.As(err, &rep) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevel(), "Log level: debug, info, warn, error")
}
