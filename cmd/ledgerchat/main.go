package main

import (
	"os"

	"ledgerchat/cmd/ledgerchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
