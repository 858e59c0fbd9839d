package cli

import (
	"context"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clipstamp/internal/ledger"
)

// printLedger renders the processed-video records as a table, replacing
// the ad-hoc database viewer scripts people otherwise reach for.
func printLedger(ctx context.Context, cmd *cobra.Command, dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		cmd.Println("no ledger yet:", dbPath)
		return nil
	}

	led, err := ledger.Open(dbPath)
	if err != nil {
		return err
	}
	defer led.Close()

	recs, err := led.Records(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if _, err := w.Write([]byte("VIDEO ID\tPROCESSED AT\tOUTPUT ID\tTITLE\n")); err != nil {
		return err
	}
	for _, rec := range recs {
		out := rec.OutputVideoID
		if out == "" {
			out = "-"
		}
		if _, err := w.Write([]byte(
			rec.SourceVideoID + "\t" +
				rec.ProcessedAt.Local().Format(time.DateTime) + "\t" +
				out + "\t" +
				rec.Title + "\n",
		)); err != nil {
			return err
		}
	}
	return nil
}
