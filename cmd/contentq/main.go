package main

import (
	"os"

	"github.com/DjordjeVuckovic/content-query/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
