package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipstamp",
		Short:        "Compile timestamped highlights from channel comments and re-upload them",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("work-dir", "downloads", "Working directory for downloads and clips")
	root.PersistentFlags().String("data-dir", "data", "Directory holding the processing ledger")
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Process unhandled channel videos once",
		Args:  cobra.NoArgs,
		RunE:  runOnce,
	}
	runCmd.Flags().Int64("max", 10, "Maximum candidate videos per pass")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a pass at each configured upload time until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	watchCmd.Flags().Int64("max", 10, "Maximum candidate videos per pass")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "List processed source videos",
		Args:  cobra.NoArgs,
		RunE:  runLedger,
	}

	root.AddCommand(runCmd, watchCmd, ledgerCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
