package main

import (
	"context"

	"github.com/spf13/cobra"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/orchestrator"
	"unreal_compilation_database/internal/ubt"
)

// runner is replaced in tests.
var runner ubt.Runner = ubt.ExecRunner{}

var buildCmd = &cobra.Command{
	Use:   "build [project]",
	Short: "Build the selected target with UnrealBuildTool",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, orchestrator.Build)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [project]",
	Short: "Launch the editor or the game binary of the selected target",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, orchestrator.Launch)
	},
}

type toolFunc func(ctx context.Context, project orchestrator.Project, cfg *config.Config, runner ubt.Runner, opts orchestrator.Options) error

func runTool(cmd *cobra.Command, args []string, fn toolFunc) error {
	project, cfg, err := loadProject(args)
	if err != nil {
		return err
	}
	opts, err := orchestratorOptions()
	if err != nil {
		return err
	}
	return fn(cmd.Context(), project, cfg, runner, opts)
}
