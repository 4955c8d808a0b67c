package main

import (
	"fmt"

	"ip-lookup/db"
	"ip-lookup/internal/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all lookup records from one backend to another",
		Long: `Copy every stored record from the --from backend into the --to backend.
Connection settings for both come from the usual environment variables
(SQLITE_PATH, POSTGRES_DSN or PG_*, MONGODB_URI). Addresses already present
in the destination are skipped, so the command can be re-run safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, dst := config.DatabaseType(from), config.DatabaseType(to)
			if src == dst {
				return fmt.Errorf("source and destination are both %s", src)
			}

			srcRepo, err := openStore(cmd.Context(), a.cfg, src)
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			defer srcRepo.Close()

			dstRepo, err := openStore(cmd.Context(), a.cfg, dst)
			if err != nil {
				return fmt.Errorf("destination: %w", err)
			}
			defer dstRepo.Close()

			result, err := db.CopyRecords(cmd.Context(), srcRepo, dstRepo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d records, skipped %d already present\n", result.Copied, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", string(config.MongoDB), "source backend (sqlite, postgres, mongodb)")
	cmd.Flags().StringVar(&to, "to", string(config.SQLite), "destination backend (sqlite, postgres, mongodb)")
	return cmd
}
