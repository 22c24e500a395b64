package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/internal/apiclient"
	"github.com/vulndeck/vulndeck-cli/internal/chartcap"
	"github.com/vulndeck/vulndeck-cli/internal/config"
	"github.com/vulndeck/vulndeck-cli/internal/export"
	"github.com/vulndeck/vulndeck-cli/internal/filterstore"
	"github.com/vulndeck/vulndeck-cli/internal/observability"
	"github.com/vulndeck/vulndeck-cli/internal/session"
	"github.com/vulndeck/vulndeck-cli/internal/views"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "vulndeck",
	Short:   "Vulndeck is a terminal client for the vulnerability dashboard.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Runs before any command, setting up config and logging.
		if err := initializeConfig(); err != nil {
			return err
		}

		cfg, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			// Fall back to a console logger so the error itself is visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "vulndeck"})
			return err
		}

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("Starting vulndeck", zap.String("version", Version))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. The command context is cancelled on SIGINT/SIGTERM so
// in-flight requests and report builds abort cleanly. Buffered log entries
// are flushed before the process exits, on both paths.
func Execute() {
	if err := run(); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newDashboardCmd(),
		newVulnCmd(),
		newHostCmd(),
		newFiltersCmd(),
		newPresetCmd(),
		newImportsCmd(),
		newUsersCmd(),
		newLayersCmd(),
		newSettingsCmd(),
		newBrandingCmd(),
		newMonitoringCmd(),
		newTrendsCmd(),
		newPreferencesCmd(),
		newWatcherCmd(),
	)
}

// initializeConfig reads in the config file and environment variables.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VULNDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return nil
}

// components bundles the wired application services a command needs.
type components struct {
	Cfg     *config.Config
	Session *session.Store
	Client  *apiclient.Client
	Filters *filterstore.Store
	Views   *views.Views
}

// initializeComponents wires the session store, API client, filter store,
// and view facade from the resolved configuration. The filter store is
// hydrated here so every command starts from a ready predicate.
func initializeComponents(ctx context.Context) (*components, error) {
	logger := observability.GetLogger()

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}

	sess, err := session.NewStore(cfg.State.Dir)
	if err != nil {
		return nil, err
	}
	client := apiclient.New(cfg.API, sess, logger)

	filters := filterstore.NewStore(cfg.State.Dir, logger)
	filters.Init(ctx, client)

	var capturer *chartcap.Capturer
	if cfg.Report.ChartCapture {
		capturer = chartcap.New(cfg.Report, logger)
	}

	return &components{
		Cfg:     cfg,
		Session: sess,
		Client:  client,
		Filters: filters,
		Views:   views.New(client, filters, capturer, cfg.Report, logger),
	}, nil
}

// writeArtifact lands a generated artifact in the configured output
// directory and reports the final path on stdout.
func writeArtifact(c *components, a export.Artifact) error {
	path, err := export.WriteFile(c.Cfg.Export.OutputDir, a)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
