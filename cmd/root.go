package main

import (
	"ip-lookup/internal/config"
	"ip-lookup/internal/logger"

	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has loaded it
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "iplookup",
		Short:         "Resolve IPv4 addresses to geolocation data and keep a permanent lookup history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			l, err := logger.Setup(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			logger.Set(l)
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.L().Sync()
		},
	}

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}
