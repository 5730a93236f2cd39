package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
)

func newCheckCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "check <file.csv>",
		Short: "Validate a CSV file and print the preview without importing",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			upload, err := file.ReadUpload(ctx, args[0], a.cfg.MaxUploadBytes)
			if err != nil {
				return err
			}
			pv, err := a.pipeline().Prepare(ctx, upload)
			if err != nil {
				return err
			}
			printPreview(a.out, pv, limit)
			fmt.Fprintf(a.out, "\n%d rows are valid.\n", len(pv.Rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show in the preview (0 shows all)")
	return cmd
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
