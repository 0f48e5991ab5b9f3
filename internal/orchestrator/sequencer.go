// Package orchestrator drives a full generation run: the build tool produces
// the raw database, compdb rewrites it, and the header tool runs last.
package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"unreal_compilation_database/internal/compdb"
	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/pathpolicy"
	"unreal_compilation_database/internal/ubt"
)

// State is a stage of a generation run.
type State int

const (
	Idle State = iota
	GeneratingDatabase
	Rewriting
	GeneratingHeaders
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GeneratingDatabase:
		return "generating-database"
	case Rewriting:
		return "rewriting"
	case GeneratingHeaders:
		return "generating-headers"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event reports that the work of a stage has finished.
type Event struct {
	State State
	Err   error
}

// Summary is the result record handed to callers.
type Summary struct {
	Success        bool     `json:"success"`
	FilesProcessed int      `json:"filesProcessed"`
	Errors         []string `json:"errors"`
	OutputPath     string   `json:"outputPath"`
}

// Report describes a finished run.
type Report struct {
	RunID   string   `json:"runId"`
	State   string   `json:"state"`
	Stages  []string `json:"stages"`
	Summary Summary  `json:"summary"`
}

// Options tunes a generation run.
type Options struct {
	Target     string
	WithEngine bool // keep engine entries instead of skipping them
	NoHeaders  bool
	Verbose    bool
	Jobs       int
	Dialect    pathpolicy.Dialect
	Logger     *zerolog.Logger
}

// Sequencer runs the generation stages one after another. Each stage
// finishes by posting an Event; the next stage starts only from that event.
type Sequencer struct {
	project Project
	cfg     *config.Config
	target  config.Target
	tool    ubt.Tool
	runner  ubt.Runner
	opts    Options
	log     zerolog.Logger
}

// NewSequencer resolves the target and prepares a run.
func NewSequencer(project Project, cfg *config.Config, runner ubt.Runner, opts Options) (*Sequencer, error) {
	target, err := cfg.Target(opts.Target)
	if err != nil {
		return nil, err
	}
	if opts.Jobs == 0 {
		opts.Jobs = cfg.Jobs
	}
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = *opts.Logger
	}
	return &Sequencer{
		project: project,
		cfg:     cfg,
		target:  target,
		tool:    ubt.Tool{EngineDir: cfg.EngineDir, ProjectFile: project.File, Dialect: opts.Dialect},
		runner:  runner,
		opts:    opts,
		log:     l,
	}, nil
}

// Target is the resolved build target.
func (s *Sequencer) Target() config.Target { return s.target }

func (s *Sequencer) next(st State) State {
	switch st {
	case Idle:
		return GeneratingDatabase
	case GeneratingDatabase:
		return Rewriting
	case Rewriting:
		if s.opts.NoHeaders {
			return Done
		}
		return GeneratingHeaders
	}
	return Done
}

// Run executes the stages. On failure the report is still returned with
// State "failed" alongside the error.
func (s *Sequencer) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), State: Idle.String()}
	log := s.log.With().Str("run", rep.RunID).Str("target", ubt.TargetName(s.target)).Logger()

	events := make(chan Event, 1)
	for st := s.next(Idle); st != Done; {
		log.Info().Str("stage", st.String()).Msg("stage started")
		rep.Stages = append(rep.Stages, st.String())
		go s.start(ctx, st, rep, events)

		ev := <-events
		if ev.Err != nil {
			rep.State = Failed.String()
			log.Error().Err(ev.Err).Str("stage", ev.State.String()).Msg("stage failed")
			return rep, fmt.Errorf("%s: %w", ev.State, ev.Err)
		}
		log.Info().Str("stage", ev.State.String()).Msg("stage finished")
		st = s.next(ev.State)
	}
	rep.State = Done.String()
	return rep, nil
}

// start performs the work of st and posts exactly one Event.
func (s *Sequencer) start(ctx context.Context, st State, rep *Report, events chan<- Event) {
	var err error
	switch st {
	case GeneratingDatabase:
		err = s.runner.Run(ctx, s.tool.GenerateDatabase(s.target))
	case Rewriting:
		rep.Summary, err = s.rewrite(ctx)
	case GeneratingHeaders:
		err = s.runner.Run(ctx, s.tool.GenerateHeaders(s.target))
	default:
		err = fmt.Errorf("no work for stage %s", st)
	}
	events <- Event{State: st, Err: err}
}

func (s *Sequencer) rewrite(ctx context.Context) (Summary, error) {
	out := s.project.DatabasePath()
	res, err := compdb.Process(ctx, s.tool.RawDatabasePath(), compdb.Options{
		EngineRoot:        s.cfg.EngineDir,
		OutputDir:         s.project.ResponseDir(),
		Dialect:           s.opts.Dialect,
		SkipEngineEntries: !s.opts.WithEngine,
		Verbose:           s.opts.Verbose,
		Jobs:              s.opts.Jobs,
		Logger:            &s.log,
	})
	if err != nil {
		return Summary{OutputPath: out}, err
	}
	if err := os.WriteFile(out, []byte(res.Text), 0o664); err != nil {
		return Summary{OutputPath: out}, fmt.Errorf("unable to write %s: %w", out, err)
	}
	return Summary{
		Success:        res.Success(),
		FilesProcessed: res.FilesWritten,
		Errors:         res.Errors,
		OutputPath:     out,
	}, nil
}
