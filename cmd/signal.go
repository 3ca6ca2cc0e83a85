package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresmejia3/facelight/internal/types"
	"github.com/andresmejia3/facelight/internal/utils"
	"github.com/spf13/cobra"
)

var signalOpts Options

var signalCmd = &cobra.Command{
	Use:   "signal <0|1|on|off>",
	Short: "Send a single on/off byte to the indicator to check the wiring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		sig, err := types.ParseSignal(args[0])
		if err != nil {
			return utils.Report("Invalid signal", err)
		}
		return runSignal(cmd.Context(), sig, signalOpts)
	},
}

func init() {
	addSinkFlags(signalCmd, &signalOpts)
	rootCmd.AddCommand(signalCmd)
}

func runSignal(ctx context.Context, sig types.Signal, opts Options) error {
	if err := validateSinkFlags(&opts); err != nil {
		return utils.Report("Invalid flags", err)
	}
	cfg, _ := sinkConfig(opts)

	sink, err := openSink(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return utils.Report("Failed to open indicator", err)
	}
	defer sink.Close()

	if err := sink.Write(sig); err != nil {
		return utils.Report("Failed to send signal", err)
	}

	fmt.Printf("✅ Sent '%c' (%s) via %s\n", byte(sig), sig, cfg.Kind)
	return nil
}
