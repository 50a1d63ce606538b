package main

import "jarvis/client/jarvis-cli/cmd"

func main() {
	cmd.Execute()
}
