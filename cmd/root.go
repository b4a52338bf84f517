package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/injector/app"
	"github.com/kilianp07/injector/config"
	"github.com/kilianp07/injector/core/inject"
)

var (
	cfgPath string
	once    bool
)

var rootCmd = &cobra.Command{
	Use:          "injector",
	Short:        "Dependency injection runtime for module files",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().BoolVar(&once, "once", false, "exit after bootstrap")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.Create(ctx, cfg, func(inj *inject.Injector, err error) {
		if err == nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s ready: %d modules\n", inj.Name(), inj.Registry().Len())
		}
	})
	if err != nil {
		return err
	}
	defer svc.Close()
	if once {
		return nil
	}
	return svc.Run(ctx)
}
