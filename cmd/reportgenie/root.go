package main

import (
	"errors"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/logging"
	"github.com/sant0-9/reportgenie/internal/tui"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "reportgenie",
		Short:         "Turn rough notes into professional documents",
		Long:          "ReportGenie rewrites unstructured notes into a Simple or Modern PDF report, or an Academic LaTeX article, using a hosted language model.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags, false)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/reportgenie/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newGenerateCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newSetupCmd(flags))
	cmd.AddCommand(newStylesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads the config file and applies the environment. found is
// false when no file exists and defaults are used.
func loadConfig(flags *globalFlags) (cfg *config.Config, found bool, err error) {
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, false, err
	}

	found = cfg != nil
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, found, nil
}

func newLogger(cfg *config.Config, file string) (*logrus.Logger, func() error, error) {
	if cfg.Log.File != "" {
		file = cfg.Log.File
	}
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   file,
	})
}

func runTUI(flags *globalFlags, forceSetup bool) error {
	cfg, found, err := loadConfig(flags)
	if err != nil {
		return err
	}

	// first run without a usable key goes through the setup wizard
	needsSetup := forceSetup
	if verr := cfg.Validate(); verr != nil {
		switch {
		case !found && errs.HasKind(verr, errs.KindMissingCredential):
			needsSetup = true
		case !forceSetup:
			return verr
		}
	}

	// the terminal belongs to the UI, so logs go to a file
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, filepath.Join(dir, "reportgenie.log"))
	if err != nil {
		return err
	}
	defer closeLog()

	app := tui.NewApp(tui.Options{
		Config:     cfg,
		ConfigPath: flags.configPath,
		NeedsSetup: needsSetup,
		Logger:     logger,
	})
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	app.SetProgram(p)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
	return nil
}
