package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/injector/app"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Bootstrap the modules and print one of them",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, err := app.Create(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer svc.Close()
	v, err := svc.Injector.Inject(args[0])
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// functions and channels have no JSON form
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
