package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/skiplog"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		owner   string
		yes     bool
		policy  string
		limit   int
		skipLog string
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Validate a CSV file, confirm the preview and save every row",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ownerID := uuid.Nil
			if strings.TrimSpace(owner) != "" {
				id, err := uuid.Parse(owner)
				if err != nil {
					return usageError(fmt.Errorf("invalid --owner: %w", err))
				}
				ownerID = id
			}
			if !cmd.Flags().Changed("policy") {
				policy = a.cfg.CommitPolicy
			}
			pol, err := ingest.ParseCommitPolicy(policy)
			if err != nil {
				return usageError(err)
			}

			upload, err := file.ReadUpload(ctx, args[0], a.cfg.MaxUploadBytes)
			if err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			sess := ingest.NewSession(a.pipeline(), a.committer(store, pol))
			pv, err := sess.Load(ctx, upload)
			if err != nil {
				return err
			}
			printPreview(a.out, pv, limit)

			if !yes && !confirm(a, len(pv.Rows)) {
				if err := sess.Cancel(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Import cancelled.")
				return nil
			}

			out, err := sess.Confirm(ctx, ownerID)
			var auth *ingest.AuthenticationRequiredError
			if errors.As(err, &auth) {
				return err
			}
			printOutcome(a.out, out)
			if skipLog != "" && len(out.Failed()) > 0 {
				if werr := writeSkipLog(skipLog, pv.Rows, out); werr != nil {
					a.log.WithError(werr).Error("skip log not written")
				} else {
					fmt.Fprintf(a.out, "Rows not imported were written to %s\n", skipLog)
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&owner, "owner", "", "owner user ID (UUID) the properties are saved under")
	f.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	f.StringVar(&policy, "policy", "stop", "on a failed row: stop or continue (env PROPIMPORT_COMMIT_POLICY)")
	f.IntVar(&limit, "limit", 20, "rows to show in the preview (0 shows all)")
	f.StringVar(&skipLog, "skip-log", "", "write rows that were not imported to this CSV file")
	return cmd
}

func writeSkipLog(path string, rows []ingest.PropertyRow, out ingest.Outcome) error {
	l, err := skiplog.Create(path)
	if err != nil {
		return err
	}
	if err := l.AddOutcome(rows, out); err != nil {
		l.Close()
		return err
	}
	return l.Close()
}

// confirm asks on a.in; anything but y/yes declines.
func confirm(a *app, n int) bool {
	fmt.Fprintf(a.out, "\nImport %d properties? [y/N]: ", n)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
