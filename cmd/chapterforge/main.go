// Command chapterforge runs the chapter boundary detection pipeline: over
// a single document from the CLI, or behind an HTTP server for repeated
// runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "chapterforge",
		Short:   "Chapter boundary detection pipeline",
		Version: version,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config/dev.example.yaml", "path to configuration file")
	viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newExtractCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
