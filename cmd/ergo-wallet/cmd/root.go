package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ergo-wallet",
	Short: "Ergo wallet transaction authorization",
	Long: `Authorizes Ergo transactions requested by dApps over ErgoPay and ErgoAuth,
and exchanges cold signing requests and results with a watch-only wallet
over chunked QR pages.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
