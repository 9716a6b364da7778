package cli

import (
	"fmt"

	"github.com/garrow/portfolio/internal/awards"
	"github.com/garrow/portfolio/internal/config"
	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio - project and item tracker with awards and cloud sharing",
	Long: `Portfolio tracks projects and the items of work inside them, evaluates
gamification awards as you make progress, and can mirror a project to a
shared cloud server.

Run 'portfolio' without arguments for a summary of where things stand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}

		logConfig := logger.Config{
			Level:    logger.ParseLevel(cfg.LogLevel),
			FilePath: cfg.LogFile,
			MaxSize:  10 * 1024 * 1024, // 10MB
			Console:  cfg.LogConsole,
		}
		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("portfolio started", logger.F("command", cmd.Name()))
		return nil
	},
	RunE: runHome,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("portfolio exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// runHome prints the home summary: open projects, the top items to
// work on next, and award progress.
func runHome(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	open := a.store.FetchProjects(store.OpenProjects())
	fmt.Printf("Open projects (%d):\n", len(open))
	for _, p := range open {
		items := a.store.ItemsForProject(p.ID, model.SortOptimized)
		fmt.Printf("  %-36s  %-20s  %3.0f%% complete\n",
			p.ID, p.DisplayTitle(), model.CompletionAmount(items)*100)
	}

	top := a.store.FetchItems(store.TopItems(10))
	if len(top) > 0 {
		fmt.Println("\nUp next:")
		for i, it := range top {
			if i == 3 {
				fmt.Println("\nMore to explore:")
			}
			fmt.Printf("  [P%d] %s\n", it.Priority, it.DisplayTitle())
		}
	}

	catalog, err := awards.LoadCatalog()
	if err != nil {
		return err
	}
	earned := awards.EvaluateAll(catalog, a.store.Totals())
	fmt.Printf("\nAwards earned: %d of %d\n", len(earned), len(catalog))
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(awardsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(shareCmd)
}
