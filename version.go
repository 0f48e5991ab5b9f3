package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unreal_compilation_database/internal/config"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "compdb %s (config version %s)\n", version, config.SupportedVersion)
	},
}
