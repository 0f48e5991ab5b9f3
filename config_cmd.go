package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unreal_compilation_database/internal/config"
	"unreal_compilation_database/internal/orchestrator"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the project configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadProject(args)
		if err != nil {
			return err
		}
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var initEngineDir string

var configInitCmd = &cobra.Command{
	Use:   "init [project]",
	Short: "Write a default UnrealCompdb.json next to the .uproject",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) > 0 {
			path = args[0]
		}
		project, err := orchestrator.ResolveProject(path)
		if err != nil {
			return err
		}
		p, err := config.WriteDefault(project.Dir, project.Name, initEngineDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&initEngineDir, "engine", "", "engine root directory to put into the config")
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
