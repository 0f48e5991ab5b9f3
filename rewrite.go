package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"unreal_compilation_database/internal/compdb"
	"unreal_compilation_database/internal/orchestrator"
)

var (
	engineDir  string
	outDir     string
	outputPath string
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <compile_commands.json>",
	Short: "Rewrite an existing UnrealBuildTool compile database",
	Long: `Rewrites a compile_commands.json that UnrealBuildTool already produced, without
running any engine tool. Response files are written next to the originals or into
--out-dir for entries that have none.`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVar(&engineDir, "engine", "", "engine root directory (required)")
	rewriteCmd.Flags().StringVar(&outDir, "out-dir", "", "directory for synthesized response files (default: next to the output)")
	rewriteCmd.Flags().StringVarP(&outputPath, "output", "o", "compile_commands.json", "rewritten database path")
	rewriteCmd.Flags().BoolVar(&withEngine, "with-engine", false, "also write response files for engine sources")
	rewriteCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "concurrent response file writes (default: one per CPU)")
	rewriteCmd.Flags().StringVar(&reportPath, "report", "", "write the result summary as JSON to this file")
	_ = rewriteCmd.MarkFlagRequired("engine")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	d, err := dialect()
	if err != nil {
		return err
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(outputPath), "Intermediate", "clangRsp")
	}
	if engineDir == "" {
		return errors.New("--engine is required")
	}

	res, err := compdb.Process(cmd.Context(), args[0], compdb.Options{
		EngineRoot:        engineDir,
		OutputDir:         dir,
		Dialect:           d,
		SkipEngineEntries: !withEngine,
		Verbose:           verbose,
		Jobs:              jobs,
		Logger:            &log.Logger,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(res.Text), 0o664); err != nil {
		return fmt.Errorf("unable to write %s: %w", outputPath, err)
	}

	summary := orchestrator.Summary{
		Success:        res.Success(),
		FilesProcessed: res.FilesWritten,
		Errors:         res.Errors,
		OutputPath:     outputPath,
	}
	if reportPath != "" {
		if err := Sink(reportPath, summary); err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), outputPath)
	return nil
}
