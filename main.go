package main

import (
	"os"

	"github.com/hirepulse/tadash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
