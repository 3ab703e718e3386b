package main

import "github.com/sunsetsobserver/midi-json-API/cmd"

func main() {
	cmd.Execute()
}
