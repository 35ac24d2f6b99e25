// Command axiomarium is the declaration registry server and CLI.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "axiomarium",
	Short: "Append-only declaration registry for axiomatic geometry",
	Long: `Axiomarium maintains a dependency-ordered registry of sorts, relations,
compound schemas, axioms, and proved statements. Theories are loaded from
YAML files, validated on entry, persisted to an append-only log, and
exported as JSON, YAML, or Markdown cheat sheets.`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
