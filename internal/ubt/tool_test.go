package ubt

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/pathpolicy"
)

var (
	editorTarget = config.Target{TargetName: "Lyra", Configuration: "Development", WithEditor: true, PlatformName: "Linux", UbtExtraFlags: "-NoHotReload  -Verbose"}
	gameTarget   = config.Target{TargetName: "Lyra", Configuration: "DebugGame", PlatformName: "Win64"}
)

func TestToolPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/ue", "Engine", "Build", "BatchFiles", "Linux", "Build.sh"),
		Tool{EngineDir: "/ue", Dialect: pathpolicy.Linux}.Path())
	assert.Equal(t, filepath.Join("/ue", "Engine", "Build", "BatchFiles", "Mac", "Build.sh"),
		Tool{EngineDir: "/ue", Dialect: pathpolicy.MacOS}.Path())
	assert.Equal(t, filepath.Join("/ue", "Engine", "Binaries", "DotNET", "UnrealBuildTool", "UnrealBuildTool.exe"),
		Tool{EngineDir: "/ue", Dialect: pathpolicy.Windows}.Path())
}

func TestGenerateDatabase(t *testing.T) {
	tool := Tool{EngineDir: "/ue", ProjectFile: "/p/Lyra.uproject", Dialect: pathpolicy.Linux}
	cmd := tool.GenerateDatabase(editorTarget)

	assert.Equal(t, tool.Path(), cmd.Path)
	assert.Equal(t, "/ue", cmd.Dir)
	assert.Equal(t, []string{
		"-mode=GenerateClangDatabase",
		"LyraEditor", "Linux", "Development",
		"-project=/p/Lyra.uproject", "-game", "-engine",
		"-NoHotReload", "-Verbose",
	}, cmd.Args)
	assert.Equal(t, filepath.Join("/ue", "compile_commands.json"), tool.RawDatabasePath())
}

func TestGenerateHeadersAndBuild(t *testing.T) {
	tool := Tool{EngineDir: "/ue", ProjectFile: "/p/Lyra.uproject", Dialect: pathpolicy.Linux}
	h := tool.GenerateHeaders(gameTarget)
	assert.Equal(t, "-headers", h.Args[len(h.Args)-1])
	assert.Equal(t, "Lyra", h.Args[0])

	b := tool.Build(gameTarget)
	assert.NotContains(t, b.Args, "-mode=GenerateClangDatabase")
	assert.NotContains(t, b.Args, "-headers")
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "LyraEditor", TargetName(editorTarget))
	assert.Equal(t, "Lyra", TargetName(gameTarget))
	assert.Equal(t, "LyraEditor", TargetName(config.Target{TargetName: "LyraEditor", WithEditor: true}))
}

func TestRunCommand(t *testing.T) {
	tool := Tool{EngineDir: "/ue", ProjectFile: "/p/Lyra.uproject", Dialect: pathpolicy.Windows}

	ed := tool.Run(config.Target{TargetName: "Lyra", WithEditor: true, PlatformName: "Win64", Configuration: "Development"})
	assert.Equal(t, filepath.Join("/ue", "Engine", "Binaries", "Win64", "UnrealEditor.exe"), ed.Path)
	assert.Equal(t, []string{"/p/Lyra.uproject"}, ed.Args)

	game := tool.Run(gameTarget)
	assert.Equal(t, filepath.Join("/p", "Binaries", "Win64", "Lyra-Win64-DebugGame.exe"), game.Path)

	dev := tool.Run(config.Target{TargetName: "Lyra", PlatformName: "Linux", Configuration: "Development"})
	assert.Equal(t, filepath.Join("/p", "Binaries", "Linux", "Lyra.exe"), dev.Path)
}

func TestCommandString(t *testing.T) {
	c := Command{Path: "/Program Files/ubt", Args: []string{"-a", "b c"}}
	assert.Equal(t, `"/Program Files/ubt" -a "b c"`, c.String())
}

func TestExecRunner(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	r := ExecRunner{Stdout: &out, Stderr: &out}

	require.NoError(t, r.Run(context.Background(), Command{Path: sh, Args: []string{"-c", "echo ok"}}))
	assert.Equal(t, "ok\n", out.String())

	err = r.Run(context.Background(), Command{Path: sh, Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to run")
}
