package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/orchestrator"
	"unreal_compilation_database/internal/pathpolicy"
)

var (
	verbose     bool
	targetName  string
	dialectName string
)

func initLogger(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.StampMilli,
	})
}

// dialect honours --dialect and falls back to the host.
func dialect() (pathpolicy.Dialect, error) {
	if dialectName == "" {
		return pathpolicy.HostDialect(), nil
	}
	return pathpolicy.ParseDialect(dialectName)
}

// loadProject resolves the project from the optional positional argument and
// reads its configuration.
func loadProject(args []string) (orchestrator.Project, *config.Config, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	project, err := orchestrator.ResolveProject(path)
	if err != nil {
		return project, nil, err
	}
	cfg, err := config.Load(project.Dir)
	if err != nil {
		return project, nil, err
	}
	log.Debug().Str("project", project.File).Str("config", cfg.Path).Str("engine", cfg.EngineDir).Send()
	return project, cfg, nil
}

func orchestratorOptions() (orchestrator.Options, error) {
	d, err := dialect()
	if err != nil {
		return orchestrator.Options{}, err
	}
	return orchestrator.Options{
		Target:  targetName,
		Verbose: verbose,
		Dialect: d,
		Logger:  &log.Logger,
	}, nil
}

// Sink writes out as indented JSON.
func Sink(dst string, out any) error {
	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(dst, buf, 0o664)
}
