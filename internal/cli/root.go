package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/existflow/irontodo/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	storeFlag  string
	serverFlag string

	// appConfig is loaded once per invocation by the root command
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "IronTodo - Terminal todo list",
	Long: `IronTodo is a terminal-based todo list with per-user lists,
search, filters and staged deletes.

Run 'todo' without arguments to launch the interactive TUI.
Pass --server URL to work on a list kept by irontodo-server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("store") {
			cfg.Store = storeFlag
			configChanged = true
		}
		if cmd.Flags().Changed("server") && serverFlag != cfg.ServerURL {
			cfg.ServerURL = serverFlag
			cfg.SetRemoteSession(model.Session{})
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}
		appConfig = cfg

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("IronTodo started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if appConfig.ServerURL != "" {
			return fmt.Errorf("the interactive view works on the local store; use the list commands with %s or pass --server=", appConfig.ServerURL)
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
			logger.Info("Store closed")
		}()

		removals := tui.NewRemovals()
		mgr, err := a.openTodos(ctx, todo.WithOnRemoved(removals.Notify))
		if err != nil {
			return err
		}

		logger.Info("Launching TUI", logger.F("list", a.listName()))
		m := tui.NewModel(mgr, removals)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("IronTodo exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Storage backend (memory, sqlite, postgres, redis)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Use the list on this irontodo-server URL (empty: local store)")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(authCmd)
}
