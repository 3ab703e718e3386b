package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sunsetsobserver/midi-json-API/codec"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <in.mid> [out.json]",
	Short: "Converts a MIDI file to JSON",
	Long:  `Converts a MIDI file to JSON`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		convert(args)
	},
}

func convert(args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		panic("Could not read midi file: " + err.Error())
	}

	score, warnings, err := codec.Decode(data)
	if err != nil {
		panic("Could not decode midi file: " + err.Error())
	}
	for _, warning := range warnings {
		fmt.Printf("Warning: %v\n", warning)
	}

	out, err := json.MarshalIndent(convertResponse(score, warnings), "", "  ")
	if err != nil {
		panic(err)
	}

	if len(args) == 2 {
		if err := os.WriteFile(args[1], out, 0644); err != nil {
			panic("Could not write json file: " + err.Error())
		}
		return
	}
	fmt.Println(string(out))
}
