package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

func newInitDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the destination table if it does not exist",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := storage.New(ctx, storage.Config{
				Kind:  a.cfg.StorageKind,
				DSN:   a.cfg.StorageDSN,
				Table: a.cfg.StorageTable,
			})
			if err != nil {
				return storageError(err)
			}
			defer s.Close()

			if err := storage.EnsureTable(ctx, a.cfg.StorageKind, s, a.cfg.StorageTable); err != nil {
				return storageError(err)
			}
			fmt.Fprintf(a.out, "table %s ready (%s)\n", a.cfg.StorageTable, a.cfg.StorageKind)
			return nil
		},
	}
}
