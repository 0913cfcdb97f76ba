package main

import (
	"os"

	"github.com/rustyeddy/harness/cmd/harness/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
