// Package main is the entry point for the imagefinder terminal client.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"imagefinder/internal/config"
	"imagefinder/internal/intake"
	"imagefinder/internal/logging"
	"imagefinder/internal/search"
	"imagefinder/internal/ui"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd opens the search form.
var rootCmd = &cobra.Command{
	Use:   "imagefinder [image]",
	Short: "Find similar images with a remote search service",
	Long: `imagefinder uploads one png or jpeg image to a similarity-search service
and lists the images it returns.

Drop a file onto the terminal (or pass it as an argument), choose how many
images to retrieve and press ctrl+s.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runForm,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./imagefinder.toml or "+config.DefaultPath()+")")

	local := rootCmd.Flags()
	local.String("endpoint", search.DefaultEndpoint, "search service URL")
	local.Duration("timeout", 30*time.Second, "request timeout (0 disables)")
	local.Int("neighbors", 5, "default number of images to retrieve")
	local.String("log-file", "imagefinder.log", "log file path (empty disables logging)")
	local.Bool("debug", false, "enable debug logging")
	local.String("start-dir", "", "directory the file picker opens in")
}

// loadConfig layers defaults, the config file, IMAGEFINDER_* variables and
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	svc := config.NewConfigService()
	if err := svc.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return svc.LoadFromPath(path)
	}
	return svc.Load()
}

func runForm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting imagefinder",
		zap.String("version", version),
		zap.String("endpoint", cfg.Endpoint),
		zap.Duration("timeout", cfg.RequestTimeout),
	)

	var opts []ui.Option
	if len(args) == 1 {
		opts = append(opts, ui.WithInitialImage(args[0]))
	}

	zone := intake.NewZone(afero.NewOsFs())
	client := search.NewHTTPClient(cfg.Endpoint, cfg.RequestTimeout, cfg.UserAgent)
	model := ui.NewModel(cfg, zone, client, logger, opts...)

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.SetProgram(p)

	// Handle termination signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			p.Quit()
		}
	}()

	if _, err := p.Run(); err != nil {
		logger.Error("program failed", zap.Error(err))
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
