package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sunsetsobserver/midi-json-API/smf"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <in.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Inspects a MIDI file`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspect(args[0])
	},
}

func inspect(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("Could not read midi file: " + err.Error())
	}

	header, events, err := smf.Parse(data)
	if err != nil {
		panic("Could not parse midi file: " + err.Error())
	}

	fmt.Printf("format: %v\n", header.Format)
	fmt.Printf("tracks: %v\n", header.TrackCount)
	fmt.Printf("resolution: %v ticks per quarter\n", header.Resolution)

	for _, evt := range smf.Merge(events) {
		switch evt.Kind {
		case smf.NoteOn, smf.NoteOff:
			fmt.Printf("track %v tick %v %v ch %v pitch %v vel %v\n",
				evt.Track, evt.Tick, evt.Kind, evt.Channel, evt.Pitch, evt.Velocity)
		case smf.ProgramChange:
			fmt.Printf("track %v tick %v %v ch %v program %v\n",
				evt.Track, evt.Tick, evt.Kind, evt.Channel, evt.Program)
		case smf.Tempo:
			fmt.Printf("track %v tick %v %v %v us/quarter\n",
				evt.Track, evt.Tick, evt.Kind, evt.MicrosPerQuarter)
		case smf.TimeSignature:
			fmt.Printf("track %v tick %v %v %v/%v\n",
				evt.Track, evt.Tick, evt.Kind, evt.Numerator, 1<<evt.DenomPow)
		}
	}
}
