package main

import (
	"os"

	"github.com/micheleparry/GovIdea/app/radar/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
