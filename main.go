package main

import "github.com/Ardjun6/DeskPilot/cmd"

func main() {
	cmd.Execute()
}
