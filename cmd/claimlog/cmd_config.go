package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"claimlog/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage claimlog configuration",
		Long: `Manage claimlog configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMLOG_*)
3. Config file (~/.claimlog/config.yaml)
4. Defaults`,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration after defaults, config file and environment variables are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Source != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", a.cfg.Source)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
			}

			yamlData, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(yamlData)
			return err
		},
	}

	var force bool
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration file",
		Long:  `Create a default configuration file at ~/.claimlog/config.yaml, or at the --config path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := a.cfgFile
			if configPath == "" {
				var err error
				if configPath, err = config.DefaultPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file already exists: %s\nUse 'claimlog config show' to view it, or pass --force to overwrite", configPath)
			}
			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
				return fmt.Errorf("error creating config directory: %w", err)
			}

			yamlData, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			header := "# claimlog configuration\n" +
				"#\n" +
				"# Configuration hierarchy (highest to lowest priority):\n" +
				"#   1. CLI flags\n" +
				"#   2. Environment variables (CLAIMLOG_*, e.g. CLAIMLOG_ENGINE_KIND=swipl)\n" +
				"#   3. This config file\n" +
				"#   4. Built-in defaults\n\n"
			if err := os.WriteFile(configPath, append([]byte(header), yamlData...), 0644); err != nil {
				return fmt.Errorf("error writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
			return nil
		},
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	return configCmd
}
