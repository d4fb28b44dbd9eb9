package main

import (
	"os"

	"github.com/SscSPs/currency_conversion_app/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
