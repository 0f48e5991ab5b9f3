package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/pathpolicy"
	"unreal_compilation_database/internal/ubt"
)

// fakeRunner records commands. When asked to generate the database it writes
// raw into the engine directory.
type fakeRunner struct {
	mu     sync.Mutex
	cmds   []ubt.Command
	raw    string
	failOn string
}

func (f *fakeRunner) Run(_ context.Context, c ubt.Command) error {
	f.mu.Lock()
	f.cmds = append(f.cmds, c)
	f.mu.Unlock()
	if f.failOn != "" && slices.Contains(c.Args, f.failOn) {
		return errors.New("exit status 6")
	}
	if slices.Contains(c.Args, "-mode=GenerateClangDatabase") {
		return os.WriteFile(filepath.Join(c.Dir, "compile_commands.json"), []byte(f.raw), 0o664)
	}
	return nil
}

type fixture struct {
	engine  string
	project Project
	cfg     *config.Config
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	engine := filepath.Join(root, "UE_5.3")
	projDir := filepath.Join(root, "Lyra")
	require.NoError(t, os.MkdirAll(engine, 0o775))
	require.NoError(t, os.MkdirAll(projDir, 0o775))
	require.NoError(t, os.WriteFile(filepath.Join(projDir, "Lyra.uproject"), []byte("{}"), 0o664))

	p, err := ResolveProject(projDir)
	require.NoError(t, err)
	cfg := config.Default("Lyra", engine)
	require.NoError(t, cfg.Validate())
	return fixture{engine: engine, project: p, cfg: cfg}
}

func rawDatabase(entries ...[2]string) string {
	var recs []string
	for _, e := range entries {
		recs = append(recs, "\t{\n\t\t\"file\": \""+e[0]+"\",\n\t\t\"command\": \""+e[1]+"\",\n\t\t\"directory\": \"/\"\n\t}")
	}
	return "[\n" + strings.Join(recs, ",\n") + "\n]\n"
}

func TestGenerate(t *testing.T) {
	fx := newFixture(t)
	projFile := filepath.Join(fx.project.Dir, "Source", "Lyra", "Hero.cpp")
	engFile := filepath.Join(fx.engine, "Engine", "Source", "Core.cpp")
	runner := &fakeRunner{raw: rawDatabase(
		[2]string{projFile, `clang++ -c \"-I/inc\" \"` + projFile + `\"`},
		[2]string{engFile, `clang++ -c \"` + engFile + `\"`},
	)}

	rep, err := Generate(context.Background(), fx.project, fx.cfg, runner, Options{Dialect: pathpolicy.Linux, Jobs: 2})
	require.NoError(t, err)

	assert.Equal(t, "done", rep.State)
	assert.Equal(t, []string{"generating-database", "rewriting", "generating-headers"}, rep.Stages)
	assert.NotEmpty(t, rep.RunID)
	assert.True(t, rep.Summary.Success)
	assert.Equal(t, 1, rep.Summary.FilesProcessed, "engine entry is skipped by default")
	assert.Equal(t, fx.project.DatabasePath(), rep.Summary.OutputPath)

	db, err := os.ReadFile(fx.project.DatabasePath())
	require.NoError(t, err)
	assert.Contains(t, string(db), pathpolicy.FlatName(projFile))
	assert.FileExists(t, filepath.Join(fx.project.ResponseDir(), pathpolicy.FlatName(projFile)))
	assert.NoFileExists(t, filepath.Join(fx.project.ResponseDir(), pathpolicy.FlatName(engFile)))

	require.Len(t, runner.cmds, 2)
	assert.Equal(t, "LyraEditor", runner.cmds[0].Args[1])
	assert.Contains(t, runner.cmds[1].Args, "-headers")
}

func TestGenerateWithEngineNoHeaders(t *testing.T) {
	fx := newFixture(t)
	engFile := filepath.Join(fx.engine, "Engine", "Source", "Core.cpp")
	runner := &fakeRunner{raw: rawDatabase([2]string{engFile, `clang++ -c \"` + engFile + `\"`})}

	rep, err := Generate(context.Background(), fx.project, fx.cfg, runner, Options{
		Dialect:    pathpolicy.Linux,
		WithEngine: true,
		NoHeaders:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"generating-database", "rewriting"}, rep.Stages)
	assert.Equal(t, 1, rep.Summary.FilesProcessed)
	assert.Len(t, runner.cmds, 1)
}

func TestGenerateBuildToolFails(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeRunner{failOn: "-mode=GenerateClangDatabase"}

	rep, err := Generate(context.Background(), fx.project, fx.cfg, runner, Options{Dialect: pathpolicy.Linux})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating-database")
	assert.Equal(t, "failed", rep.State)
	assert.NoFileExists(t, fx.project.DatabasePath())
}

func TestGenerateEmptyDatabase(t *testing.T) {
	fx := newFixture(t)

	rep, err := Generate(context.Background(), fx.project, fx.cfg, &fakeRunner{}, Options{Dialect: pathpolicy.Linux, NoHeaders: true})
	require.NoError(t, err)
	assert.True(t, rep.Summary.Success)
	assert.Equal(t, 0, rep.Summary.FilesProcessed)
	assert.FileExists(t, fx.project.DatabasePath())
}

func TestGenerateMissingRawDatabase(t *testing.T) {
	fx := newFixture(t)
	noop := runnerFunc(func(context.Context, ubt.Command) error { return nil })

	seq, err := NewSequencer(fx.project, fx.cfg, noop, Options{Dialect: pathpolicy.Linux})
	require.NoError(t, err)
	rep, err := seq.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rewriting")
	assert.Equal(t, "failed", rep.State)
	assert.Equal(t, []string{"generating-database", "rewriting"}, rep.Stages)
}

type runnerFunc func(context.Context, ubt.Command) error

func (f runnerFunc) Run(ctx context.Context, c ubt.Command) error { return f(ctx, c) }

func TestGenerateUnknownTarget(t *testing.T) {
	fx := newFixture(t)
	_, err := Generate(context.Background(), fx.project, fx.cfg, &fakeRunner{}, Options{Target: "Nope"})
	assert.ErrorIs(t, err, config.ErrTargetNotFound)
}

func TestBuildAndLaunch(t *testing.T) {
	fx := newFixture(t)
	runner := &fakeRunner{}

	require.NoError(t, Build(context.Background(), fx.project, fx.cfg, runner, Options{Dialect: pathpolicy.Linux}))
	require.NoError(t, Launch(context.Background(), fx.project, fx.cfg, runner, Options{Dialect: pathpolicy.Linux}))
	require.Len(t, runner.cmds, 2)
	assert.Equal(t, "LyraEditor", runner.cmds[0].Args[0])
	assert.Equal(t, "UnrealEditor", filepath.Base(runner.cmds[1].Path))
	assert.Equal(t, []string{fx.project.File}, runner.cmds[1].Args)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "generating-headers", GeneratingHeaders.String())
	assert.Equal(t, "State(42)", State(42).String())
}
