// Command autotile resolves tile ids for grid layouts.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/lawnchairsociety/autotile/internal/cli"
	"github.com/lawnchairsociety/autotile/internal/logger"
)

func main() {
	// AUTOTILE_* and OTEL_* overrides may come from a local .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: .env file not loaded:", err)
	}

	err := cli.NewRootCommand().Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
