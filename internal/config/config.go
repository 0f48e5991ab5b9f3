// Package config loads the per-project generator configuration.
//
// The file lives next to the .uproject as UnrealCompdb.json (or .yaml/.yml).
// Environment variables override the engine directory and the job count.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only config version this build accepts.
const SupportedVersion = "0.1.0"

// FileNames are probed in order.
var FileNames = []string{"UnrealCompdb.json", "UnrealCompdb.yaml", "UnrealCompdb.yml"}

var (
	ErrNotFound           = errors.New("no configuration file found")
	ErrUnsupportedVersion = errors.New("unsupported configuration version")
	ErrTargetNotFound     = errors.New("target not found")
)

// Target is one buildable UnrealBuildTool target.
type Target struct {
	TargetName    string `json:"TargetName" yaml:"TargetName"`
	Configuration string `json:"Configuration" yaml:"Configuration"`
	WithEditor    bool   `json:"withEditor" yaml:"withEditor"`
	UbtExtraFlags string `json:"UbtExtraFlags" yaml:"UbtExtraFlags"`
	PlatformName  string `json:"PlatformName" yaml:"PlatformName"`
}

// Config is the project configuration.
type Config struct {
	Version   string   `json:"version" yaml:"version"`
	EngineDir string   `json:"EngineDir" yaml:"EngineDir" env:"UE_ENGINE_DIR" env-description:"Unreal Engine install directory"`
	Jobs      int      `json:"Jobs" yaml:"Jobs" env:"UE_COMPDB_JOBS" env-description:"concurrent response file writes, 0 for one per CPU"`
	Targets   []Target `json:"Targets" yaml:"Targets"`

	// Path is the file the config was read from.
	Path string `json:"-" yaml:"-"`
}

// Find returns the config file inside projectDir.
func Find(projectDir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(projectDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (expected one of %s)", ErrNotFound, projectDir, strings.Join(FileNames, ", "))
}

// Load finds, reads and validates the configuration of projectDir.
func Load(projectDir string) (*Config, error) {
	path, err := Find(projectDir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects unknown versions and fills per-target defaults.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("%w %q, expected %q", ErrUnsupportedVersion, c.Version, SupportedVersion)
	}
	if strings.TrimSpace(c.EngineDir) == "" {
		return errors.New("EngineDir is not set (set it in the config or via UE_ENGINE_DIR)")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("Jobs must not be negative, got %d", c.Jobs)
	}
	if len(c.Targets) == 0 {
		return errors.New("no Targets configured")
	}
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.TargetName == "" {
			return fmt.Errorf("target %d has no TargetName", i)
		}
		if t.Configuration == "" {
			t.Configuration = "Development"
		}
		if t.PlatformName == "" {
			t.PlatformName = HostPlatform()
		}
	}
	return nil
}

// Target picks the target to work on: the named one, else the first editor
// target, else the first target.
func (c *Config) Target(name string) (Target, error) {
	if name != "" {
		for _, t := range c.Targets {
			if strings.EqualFold(t.TargetName, name) {
				return t, nil
			}
		}
		return Target{}, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
	}
	for _, t := range c.Targets {
		if t.WithEditor {
			return t, nil
		}
	}
	if len(c.Targets) == 0 {
		return Target{}, ErrTargetNotFound
	}
	return c.Targets[0], nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// HostPlatform is the Unreal platform name of the running system.
func HostPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "Win64"
	case "darwin":
		return "Mac"
	}
	return "Linux"
}

// Default is the template written by WriteDefault.
func Default(projectName, engineDir string) *Config {
	return &Config{
		Version:   SupportedVersion,
		EngineDir: engineDir,
		Targets: []Target{
			{TargetName: projectName, Configuration: "Development", WithEditor: true, PlatformName: HostPlatform()},
			{TargetName: projectName, Configuration: "DebugGame", WithEditor: true, PlatformName: HostPlatform()},
			{TargetName: projectName, Configuration: "Development", PlatformName: HostPlatform()},
		},
	}
}

// WriteDefault writes a JSON template into projectDir unless a config
// already exists there.
func WriteDefault(projectDir, projectName, engineDir string) (string, error) {
	if p, err := Find(projectDir); err == nil {
		return p, fmt.Errorf("config already exists: %s", p)
	}
	buf, err := json.MarshalIndent(Default(projectName, engineDir), "", "  ")
	if err != nil {
		return "", err
	}
	p := filepath.Join(projectDir, FileNames[0])
	if err := os.WriteFile(p, append(buf, '\n'), 0o664); err != nil {
		return "", fmt.Errorf("unable to write config: %w", err)
	}
	return p, nil
}
