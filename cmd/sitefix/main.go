// Package main is the entry point for the sitefix CLI tool.
package main

import (
	"os"

	"github.com/estimation-maison/sitefix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
