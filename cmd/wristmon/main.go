// wristmon runs the wrist motion engine on a host: against real sensors over
// Modbus or I²C, or against a scripted synthetic trace.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

type globalFlags struct {
	configPath string
	board      string
	logLevel   string
	noColor    bool
}

func main() {
	var g globalFlags
	cmd := &cobra.Command{
		Use:   "wristmon",
		Short: "Wrist activity and sleep monitor",
		Long: `wristmon samples a wrist-worn IMU at a fixed rate, classifies activity or
sleep depending on the mode, and writes one status byte per result to a
serial port. A button toggles between activity and sleep mode; turning over
while asleep sends ten 'q' bytes.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (overrides --board)")
	cmd.PersistentFlags().StringVarP(&g.board, "board", "b", "host-sim", "embedded board config to use")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (default from config)")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable coloured logs")

	cmd.AddCommand(newRunCmd(&g), newSimulateCmd(&g), newCodesCmd(), newBoardsCmd())

	if err := fang.Execute(context.Background(), cmd, fang.WithNotifySignal(os.Interrupt)); err != nil {
		os.Exit(1)
	}
}
