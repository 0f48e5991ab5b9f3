package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoProject is returned when no single .uproject can be found.
var ErrNoProject = errors.New("no .uproject found")

// Project is a resolved Unreal project.
type Project struct {
	File string // absolute path of the .uproject
	Dir  string
	Name string
}

// ResolveProject accepts a .uproject file or a directory holding exactly one.
// An empty path means the working directory.
func ResolveProject(path string) (Project, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Project{}, fmt.Errorf("unable to get cwd: %w", err)
		}
		path = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Project{}, fmt.Errorf("unable to resolve %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %w", ErrNoProject, err)
	}

	file := abs
	if fi.IsDir() {
		matches, err := filepath.Glob(filepath.Join(abs, "*.uproject"))
		if err != nil {
			return Project{}, err
		}
		switch len(matches) {
		case 0:
			return Project{}, fmt.Errorf("%w in %s", ErrNoProject, abs)
		case 1:
			file = matches[0]
		default:
			return Project{}, fmt.Errorf("%w: %d project files in %s, pass one explicitly", ErrNoProject, len(matches), abs)
		}
	} else if !strings.EqualFold(filepath.Ext(abs), ".uproject") {
		return Project{}, fmt.Errorf("%w: %s is not a .uproject file", ErrNoProject, abs)
	}

	return Project{
		File: file,
		Dir:  filepath.Dir(file),
		Name: strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
	}, nil
}

// DatabasePath is where the rewritten compile database is written.
func (p Project) DatabasePath() string {
	return filepath.Join(p.Dir, "compile_commands.json")
}

// ResponseDir holds synthesized response files.
func (p Project) ResponseDir() string {
	return filepath.Join(p.Dir, "Intermediate", "clangRsp")
}
