package main

import (
	"os"

	"github.com/iburimskiy/aurora/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
