package main

import (
	"os"

	"github.com/assetforge/assetforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
