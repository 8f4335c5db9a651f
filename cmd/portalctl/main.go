package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tools for idm-portal",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newKeygenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
