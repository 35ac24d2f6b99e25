package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"axiomarium/internal/loader"
	"axiomarium/internal/service"
)

var checkCmd = &cobra.Command{
	Use:   "check <theory.yaml>",
	Short: "Validate a theory file without persisting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var checkStrict bool

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when any declaration is flagged")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	theory, err := loader.LoadFile(args[0])
	if err != nil {
		return err
	}

	// In-memory only: no log, no events, no metrics.
	svc := service.NewTheoryService(nil, nil, nil)
	result, err := svc.LoadTheory(context.Background(), theory)
	if err != nil {
		return err
	}

	fmt.Printf("Theory %q: %d declarations registered\n", result.Theory, result.Registered)
	if len(result.Flagged) > 0 {
		fmt.Printf("Flagged (%d):\n", len(result.Flagged))
		for _, name := range result.Flagged {
			fmt.Printf("  %s\n", name)
		}
		if checkStrict {
			return fmt.Errorf("%d declarations flagged", len(result.Flagged))
		}
	}
	return nil
}
