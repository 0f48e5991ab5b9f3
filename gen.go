package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"unreal_compilation_database/internal/orchestrator"
)

var (
	withEngine bool
	noHeaders  bool
	jobs       int
	reportPath string
)

var genCmd = &cobra.Command{
	Use:   "gen [project]",
	Short: "Generate compile_commands.json for a project",
	Long: `Runs UnrealBuildTool in GenerateClangDatabase mode, rewrites the result for clang
and writes compile_commands.json into the project directory. Engine sources are
skipped unless --with-engine is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().BoolVar(&withEngine, "with-engine", false, "also write response files for engine sources")
	genCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "skip the header generation step")
	genCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "concurrent response file writes (default: config Jobs, else one per CPU)")
	genCmd.Flags().StringVar(&reportPath, "report", "", "write the run report as JSON to this file")
}

func runGen(cmd *cobra.Command, args []string) error {
	project, cfg, err := loadProject(args)
	if err != nil {
		return err
	}
	opts, err := orchestratorOptions()
	if err != nil {
		return err
	}
	opts.WithEngine = withEngine
	opts.NoHeaders = noHeaders
	opts.Jobs = jobs

	rep, err := orchestrator.Generate(cmd.Context(), project, cfg, runner, opts)
	if rep != nil && reportPath != "" {
		if serr := Sink(reportPath, rep); serr != nil {
			log.Warn().Err(serr).Str("report", reportPath).Msg("unable to write report")
		}
	}
	if err != nil {
		return err
	}

	for _, e := range rep.Summary.Errors {
		log.Warn().Msg(e)
	}
	log.Info().
		Str("run", rep.RunID).
		Str("output", rep.Summary.OutputPath).
		Int("written", rep.Summary.FilesProcessed).
		Int("errors", len(rep.Summary.Errors)).
		Msg("compile database generated")
	fmt.Fprintln(cmd.OutOrStdout(), rep.Summary.OutputPath)
	return nil
}
