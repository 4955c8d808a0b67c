package main

import (
	"encoding/json"
	"fmt"
	"io"

	"ip-lookup/internal/lookup"

	"github.com/spf13/cobra"
)

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <ip>",
		Short: "Look up one IPv4 address, resolving it if it was never seen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := a.lookupService(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			record, err := svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [ip]",
		Short: "Show the most recent lookups, or the stored record for one address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := a.lookupService(cmd)
			if err != nil {
				return err
			}
			defer closeAll()

			if len(args) == 1 {
				record, err := svc.GetOne(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			}

			records, err := svc.GetHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", lookup.DefaultHistoryLimit, fmt.Sprintf("number of records, at most %d", lookup.MaxHistoryLimit))
	return cmd
}

func (a *app) lookupService(cmd *cobra.Command) (*lookup.LookupService, func(), error) {
	repo, err := openCachedStore(cmd.Context(), a.cfg)
	if err != nil {
		return nil, nil, err
	}
	res, closeResolver, err := openResolver(a.cfg)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	closeAll := func() {
		closeResolver()
		repo.Close()
	}
	return lookup.NewLookupService(repo, res), closeAll, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
