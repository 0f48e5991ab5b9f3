// Package ubt builds UnrealBuildTool and game binary invocations and runs
// them as child processes.
package ubt

import (
	"path/filepath"
	"strings"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/pathpolicy"
)

// Command is a child process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, p := range append([]string{c.Path}, c.Args...) {
		if strings.ContainsAny(p, " \t") {
			p = `"` + p + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// Tool knows where the engine and project live.
type Tool struct {
	EngineDir   string
	ProjectFile string
	Dialect     pathpolicy.Dialect
}

// Path is the build tool entry point for the host.
func (t Tool) Path() string {
	switch t.Dialect {
	case pathpolicy.Windows:
		return filepath.Join(t.EngineDir, "Engine", "Binaries", "DotNET", "UnrealBuildTool", "UnrealBuildTool.exe")
	case pathpolicy.MacOS:
		return filepath.Join(t.EngineDir, "Engine", "Build", "BatchFiles", "Mac", "Build.sh")
	}
	return filepath.Join(t.EngineDir, "Engine", "Build", "BatchFiles", "Linux", "Build.sh")
}

// RawDatabasePath is where GenerateClangDatabase leaves its output.
func (t Tool) RawDatabasePath() string {
	return filepath.Join(t.EngineDir, "compile_commands.json")
}

// TargetName appends the Editor suffix for editor targets.
func TargetName(target config.Target) string {
	if target.WithEditor && !strings.HasSuffix(target.TargetName, "Editor") {
		return target.TargetName + "Editor"
	}
	return target.TargetName
}

// targetArgs is the positional <Target> <Platform> <Configuration> form.
func (t Tool) targetArgs(target config.Target) []string {
	args := []string{
		TargetName(target),
		target.PlatformName,
		target.Configuration,
		"-project=" + t.ProjectFile,
		"-game",
		"-engine",
	}
	return append(args, strings.Fields(target.UbtExtraFlags)...)
}

// GenerateDatabase asks the build tool for a clang compile database.
func (t Tool) GenerateDatabase(target config.Target) Command {
	return Command{
		Path: t.Path(),
		Args: append([]string{"-mode=GenerateClangDatabase"}, t.targetArgs(target)...),
		Dir:  t.EngineDir,
	}
}

// GenerateHeaders runs the header tool for the target so generated headers
// referenced by the database exist.
func (t Tool) GenerateHeaders(target config.Target) Command {
	return Command{
		Path: t.Path(),
		Args: append(t.targetArgs(target), "-headers"),
		Dir:  t.EngineDir,
	}
}

// Build compiles the target.
func (t Tool) Build(target config.Target) Command {
	return Command{
		Path: t.Path(),
		Args: t.targetArgs(target),
		Dir:  t.EngineDir,
	}
}

// Run launches the editor with the project, or the packaged game binary.
// Development game builds have no platform/configuration suffix.
func (t Tool) Run(target config.Target) Command {
	exe := ""
	if t.Dialect == pathpolicy.Windows {
		exe = ".exe"
	}
	if target.WithEditor {
		return Command{
			Path: filepath.Join(t.EngineDir, "Engine", "Binaries", target.PlatformName, "UnrealEditor"+exe),
			Args: []string{t.ProjectFile},
			Dir:  filepath.Dir(t.ProjectFile),
		}
	}
	name := target.TargetName
	if target.Configuration != "Development" {
		name += "-" + target.PlatformName + "-" + target.Configuration
	}
	return Command{
		Path: filepath.Join(filepath.Dir(t.ProjectFile), "Binaries", target.PlatformName, name+exe),
		Dir:  filepath.Dir(t.ProjectFile),
	}
}
