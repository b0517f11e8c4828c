package main

import "github.com/planora-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
