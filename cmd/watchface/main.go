// Command watchface runs an analog watch face with a tap-to-show status
// overlay and a bluetooth disconnect alert.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), rootCmd(), fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &flagValues{}
	root := &cobra.Command{
		Use:   "watchface",
		Short: "Analog watch face with status overlay and bluetooth alert",
		Long: "Runs the watch face as a daemon on wrist hardware, in the terminal, " +
			"or renders a single frame. Settings come from the config file, then " +
			"WATCHFACE_* environment variables, then flags.",
		SilenceUsage: true,
	}
	bindFlags(root.PersistentFlags(), flags)

	root.AddCommand(
		runCmd(flags),
		simCmd(flags),
		renderCmd(flags),
		printStateCmd(flags),
	)
	return root
}
