package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/dashlite/dashlite/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
