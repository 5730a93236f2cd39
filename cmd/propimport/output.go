package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

// printPreview writes the file summary and up to limit rows as a table.
// limit <= 0 prints every row.
func printPreview(w io.Writer, pv *ingest.Preview, limit int) {
	fmt.Fprintln(w, pv.File.String())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tADDRESS\tRENT\tTYPE\tAVAILABLE\tNATIONALITY\tPROFESSION\tRACE\tPETS")
	shown := pv.Rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Row, r.Address, r.Rent.StringFixed(2), r.PropertyType,
			r.AvailableDate.Format(storage.DateLayout), r.PreferredNationality,
			r.PreferredProfession, r.PreferredRace, yesNo(r.PetsAllowed))
	}
	_ = tw.Flush()
	if rest := len(pv.Rows) - len(shown); rest > 0 {
		fmt.Fprintf(w, "... and %d more rows\n", rest)
	}
}

func printOutcome(w io.Writer, o ingest.Outcome) {
	fmt.Fprintf(w, "Imported %d of %d properties (upload %s).\n", o.Committed, o.Total, o.UploadID)
	for _, r := range o.Results {
		if r.Status == ingest.StatusFailed && r.Err != nil {
			fmt.Fprintf(w, "  %s\n", r.Err)
		}
	}
	if failed := o.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "Rows not imported: %v\n", failed)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
