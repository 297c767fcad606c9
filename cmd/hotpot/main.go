// Command hotpot is the CLI entry point: import tracks into the tile
// store, render tiles or viewports to PNG, and serve the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath    string
	inMemory  bool
	verbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "hotpot",
		Short: "GPS heatmap engine: import tracks, render tiles, serve the API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./hotpot.sqlite3", "path to the SQLite database")
	root.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "use an ephemeral in-memory database")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newImportCmd())
	root.AddCommand(newTileCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newStravaAuthCmd())
	root.AddCommand(newMaskCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
