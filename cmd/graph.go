package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/injector/app"
)

var graphJSON bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the bootstrap order of the discovered modules",
	Args:  cobra.NoArgs,
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphJSON, "json", false, "print the plan as JSON")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	plan, err := svc.Injector.Plan()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if graphJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	for i, level := range plan.Levels {
		if _, err := fmt.Fprintf(out, "%d: %s\n", i, strings.Join(level, ", ")); err != nil {
			return err
		}
	}
	return nil
}
