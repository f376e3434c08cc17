package main

import (
	"os"

	"github.com/hamed0406/statusmonitor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
