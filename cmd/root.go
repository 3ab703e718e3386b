package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midiapi",
	Short: "MIDI <-> JSON converter",
	Long:  `Converts Standard MIDI Files to a JSON note model and back, as a CLI or an HTTP service.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
