package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facelight/internal/serial"
	"github.com/andresmejia3/facelight/internal/utils"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports the indicator board could be attached to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runPorts()
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts() error {
	ports, err := serial.Ports()
	if err != nil {
		return utils.Report("Failed to list serial ports", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PORT\tUSB ID\tSERIAL\tPRODUCT")
	fmt.Fprintln(w, "----\t------\t------\t-------")

	for _, p := range ports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.USBID(), dash(p.Serial), dash(p.Product))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
