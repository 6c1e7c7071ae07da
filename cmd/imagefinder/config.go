package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"imagefinder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the imagefinder configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.NewConfigService().SaveToPath(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := config.NewConfigService()
		var (
			cfg *config.Config
			err error
		)
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err = svc.LoadFromPath(path)
		} else {
			cfg, err = svc.Load()
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if used := svc.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# loaded from %s\n", used)
		}
		return toml.NewEncoder(out).Encode(effective{
			Endpoint:         cfg.Endpoint,
			RequestTimeout:   cfg.RequestTimeout.String(),
			UserAgent:        cfg.UserAgent,
			DefaultNeighbors: cfg.DefaultNeighbors,
			StartDir:         cfg.StartDir,
			LogFile:          cfg.LogFile,
			Debug:            cfg.Debug,
			AlwaysSuccess:    cfg.Notify.AlwaysSuccess,
			NoticeDuration:   cfg.Notify.Duration.String(),
		})
	},
}

// effective is the flattened view printed by config show
type effective struct {
	Endpoint         string `toml:"endpoint"`
	RequestTimeout   string `toml:"request_timeout"`
	UserAgent        string `toml:"user_agent"`
	DefaultNeighbors int    `toml:"default_neighbors"`
	StartDir         string `toml:"start_dir"`
	LogFile          string `toml:"log_file"`
	Debug            bool   `toml:"debug"`
	AlwaysSuccess    bool   `toml:"notify_always_success"`
	NoticeDuration   string `toml:"notify_duration"`
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
