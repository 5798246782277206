package main

import "github.com/kozaktomas/makeup-coach/cmd"

func main() {
	cmd.Execute()
}
