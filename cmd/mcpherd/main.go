// Package main is the entry point for the mcpherd CLI.
package main

import (
	"os"

	"github.com/mcpherd/mcpherd/cmd/mcpherd/app"
	"github.com/mcpherd/mcpherd/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
