// Package cli provides the command-line interface for the portfolio analyzer.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio-analyzer/internal/analyzer"
	"portfolio-analyzer/internal/config"
	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/logging"
	"portfolio-analyzer/internal/store"
	"portfolio-analyzer/internal/upload"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies. Config is loaded in the root
// command's pre-run unless already set; the store and analysis client are
// opened on first use.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.Store

	analyzer *analyzer.Client
	once     sync.Once
	storeErr error
}

// NewApp creates an App. cfg may be nil, in which case it is loaded from
// the --config directory when a command runs.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger}
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func (a *App) setup(cmd *cobra.Command) error {
	if a.Config == nil || cmd.Flags().Changed("config") {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
		a.Logger = logging.NewLoggerWithConfig(logConfig(cfg))
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}
	if !a.Config.UI.ColorEnabled {
		color.NoColor = true
	}
	return nil
}

func logConfig(cfg *config.Config) logging.LogConfig {
	return logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	}
}

// openStore returns the configured store, opening it once.
func (a *App) openStore() (store.Store, error) {
	a.once.Do(func() {
		if a.Store != nil {
			return
		}
		switch a.Config.Store.Driver {
		case "memory":
			a.Store = store.NewMemoryStore()
		default:
			s, err := store.NewSQLiteStore(a.Config.Store.Path)
			if err != nil {
				a.storeErr = fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
				return
			}
			a.Store = s
		}
		a.Logger.Debug().Str("driver", a.Config.Store.Driver).Str("path", a.Config.Store.Path).Msg("Store opened")
	})
	return a.Store, a.storeErr
}

func (a *App) analysisClient() *analyzer.Client {
	if a.analyzer == nil {
		a.analyzer = analyzer.NewClient(
			analyzer.WithBaseURL(a.Config.Analyzer.BaseURL),
			analyzer.WithPath(a.Config.Analyzer.Path),
			analyzer.WithTimeout(a.Config.Analyzer.Timeout),
			analyzer.WithLogger(a.Logger),
		)
	}
	return a.analyzer
}

// newOrchestrator wires an upload session to the configured store and
// analysis service.
func (a *App) newOrchestrator(ctx context.Context) (*upload.Orchestrator, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	opts := upload.Options{
		PreviewRows:     a.Config.Upload.PreviewRows,
		MaxFileSize:     a.Config.Upload.MaxFileSize,
		RaggedPolicy:    a.Config.RaggedPolicy(),
		DefaultStrategy: a.Config.DefaultStrategy(),
	}
	return upload.NewOrchestrator(s, a.analysisClient(), opts, logging.FromContext(ctx)), nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio-analyzer",
		Short: "Portfolio Analyzer - upload holdings for AI portfolio analysis",
		Long: `Portfolio Analyzer reads a holdings CSV, previews it, submits it to the
portfolio analysis service and presents the returned analysis.

Typical workflow:
  portfolio-analyzer preview holdings.csv
  portfolio-analyzer upload holdings.csv --strategy balanced
  portfolio-analyzer report --section performance
  portfolio-analyzer holdings`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), logging.WithOperation(app.Logger, cmd.Name()))
			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/portfolio-analyzer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addUploadCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addHelpCommands(rootCmd)

	return rootCmd
}

// Execute runs the command tree and prints a user-facing message on
// failure. It returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	errOut := cmd.ErrOrStderr()
	if cat := apperrors.CategoryOf(err); cat != apperrors.CategoryUnknown {
		fmt.Fprintf(errOut, "Error: %s\n", apperrors.UserMessage(err))
		fmt.Fprintf(errOut, "  %v\n", err)
	} else {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	app.Logger.Debug().Err(err).Str("category", apperrors.CategoryOf(err)).Msg("Command failed")
	return 1
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Portfolio Analyzer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.Config.Dir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	source := cfg.File
	if source == "" {
		source = "(defaults)"
	}
	output.Dim("Loaded from: %s", source)
	output.Println()

	output.Bold("Analysis Service")
	output.Printf("  Endpoint:         %s\n", cfg.Endpoint())
	output.Printf("  Timeout:          %s\n", cfg.Analyzer.Timeout)
	output.Println()

	output.Bold("Upload")
	output.Printf("  Max File Size:    %d bytes\n", cfg.Upload.MaxFileSize)
	output.Printf("  Preview Rows:     %d\n", cfg.Upload.PreviewRows)
	output.Printf("  Ragged Rows:      %s\n", cfg.RaggedPolicy())
	output.Printf("  Default Strategy: %s\n", cfg.DefaultStrategy())
	output.Printf("  Security Mode:    %v\n", cfg.Upload.SecurityMode)
	output.Println()

	output.Bold("Store")
	output.Printf("  Driver:           %s\n", cfg.Store.Driver)
	output.Printf("  Path:             %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Logging.Level)
	output.Printf("  File:             %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
}
