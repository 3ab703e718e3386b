package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sunsetsobserver/midi-json-API/codec"
	"github.com/sunsetsobserver/midi-json-API/model"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <in.json> [out.mid]",
	Short: "Generates a MIDI file from JSON",
	Long:  `Generates a MIDI file from JSON`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		generate(args)
	},
}

func generate(args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		panic("Could not read json file: " + err.Error())
	}

	var input model.GenerateRequestBody
	if err := json.Unmarshal(data, &input); err != nil {
		panic("Could not parse json file: " + err.Error())
	}

	out, err := codec.Encode(scoreFromRequest(input))
	if err != nil {
		panic("Could not encode midi file: " + err.Error())
	}

	outPath := "generated.mid"
	if len(args) == 2 {
		outPath = args[1]
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		panic("Could not write midi file: " + err.Error())
	}
	fmt.Printf("Wrote %v bytes to %v\n", len(out), outPath)
}
