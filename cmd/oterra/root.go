package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	flagConfig string
	flagDebug  bool

	rootCmd = &cobra.Command{
		Use:   "oterra",
		Short: "Idempotent free-tier provisioning for Oracle Cloud",
		Long: `Oterra - Idempotent Free-Tier Provisioning

Oterra converges an Oracle Cloud tenancy onto a desired free-tier
configuration without ever creating duplicates. Every run scans what
exists, imports it into terraform state, and only creates what is
missing. Running it twice changes nothing the second time.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
)

// Execute runs the root command.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Oterra {{.Version}}
`)
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}
