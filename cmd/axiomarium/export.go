package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"axiomarium/internal/codec"
	"axiomarium/internal/loader"
	"axiomarium/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export <theory.yaml>",
	Short: "Render a theory file in an export format",
	Long: `Export loads a theory file into a scratch registry and writes the
dependency-ordered enumeration to stdout or a file. Supported formats: ` + fmt.Sprint(codec.Formats()),
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "export format")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	theory, err := loader.LoadFile(args[0])
	if err != nil {
		return err
	}

	svc := service.NewTheoryService(nil, nil, nil)
	if _, err := svc.LoadTheory(context.Background(), theory); err != nil {
		return err
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return svc.Export(exportFormat, out)
}
