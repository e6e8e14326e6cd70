package main

import (
	"os"

	"github.com/data-ashita/monitor-dash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
