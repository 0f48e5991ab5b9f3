package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compdb",
	Short: "Generate clang compile databases for Unreal Engine projects",
	Long: `compdb asks UnrealBuildTool for a compile_commands.json, rewrites every entry
into a clang compatible response file and writes the result next to the .uproject
so clangd can parse engine and project sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including every rewritten entry")
	rootCmd.PersistentFlags().StringVarP(&targetName, "target", "t", "", "target name from the config (default: first editor target)")
	rootCmd.PersistentFlags().StringVar(&dialectName, "dialect", "", "compiler dialect: windows, macos or linux (default: host)")

	rootCmd.AddCommand(genCmd, rewriteCmd, buildCmd, runCmd, configCmd, versionCmd)
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "compdb: %+v\n", err)
		os.Exit(1)
	}
}
