package main

import (
	"os"

	"github.com/smartcharge/chargest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
