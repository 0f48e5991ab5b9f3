package orchestrator

import (
	"context"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/ubt"
)

// Generate runs the full generation sequence.
func Generate(ctx context.Context, project Project, cfg *config.Config, runner ubt.Runner, opts Options) (*Report, error) {
	seq, err := NewSequencer(project, cfg, runner, opts)
	if err != nil {
		return nil, err
	}
	return seq.Run(ctx)
}

// Build compiles the selected target.
func Build(ctx context.Context, project Project, cfg *config.Config, runner ubt.Runner, opts Options) error {
	return runTool(ctx, project, cfg, runner, opts, ubt.Tool.Build)
}

// Launch starts the editor or the game binary of the selected target.
func Launch(ctx context.Context, project Project, cfg *config.Config, runner ubt.Runner, opts Options) error {
	return runTool(ctx, project, cfg, runner, opts, ubt.Tool.Run)
}

func runTool(ctx context.Context, project Project, cfg *config.Config, runner ubt.Runner, opts Options, mk func(ubt.Tool, config.Target) ubt.Command) error {
	target, err := cfg.Target(opts.Target)
	if err != nil {
		return err
	}
	tool := ubt.Tool{EngineDir: cfg.EngineDir, ProjectFile: project.File, Dialect: opts.Dialect}
	return runner.Run(ctx, mk(tool, target))
}
