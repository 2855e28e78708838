package main

import (
	"fmt"
	"log"
	"os"

	"storeplan/internal/config"
	"storeplan/internal/repository/sqlite"
	"storeplan/internal/service"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	dbPath     string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "storeplan",
		Short: "Storeplan - interactive store floor plans",
		Long: `Storeplan serves, views and edits store floor plans: gondolas, end caps and
decorative shapes on a pannable, zoomable plan with momentum scrolling.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: search STOREPLAN_CONFIG, ./storeplan.yaml, ~/.config/storeplan)")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(newServeCommand(&flags))
	rootCmd.AddCommand(newViewCommand(&flags))
	rootCmd.AddCommand(newExportCommand(&flags))
	rootCmd.AddCommand(newImportCommand(&flags))
	rootCmd.AddCommand(newConfigCommand(&flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config or found on the search path,
// then applies command line overrides
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if flags.configPath != "" {
		cfg, path, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}

	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	return cfg, nil
}

// store bundles the persistence stack every command needs
type store struct {
	repo *sqlite.Repository
	bus  *service.EventBus
	svc  *service.LayoutService
}

func openStore(cfg *config.Config) (*store, error) {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Printf("Database opened: %s", cfg.Database.Path)

	bus := service.NewEventBus()
	return &store{
		repo: repo,
		bus:  bus,
		svc:  service.NewLayoutService(repo, bus),
	}, nil
}

func (s *store) Close() error {
	return s.repo.Close()
}
