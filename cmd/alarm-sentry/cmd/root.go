package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/property-alarm/internal/config"
	"github.com/oshokin/property-alarm/internal/service/sentry"
	"github.com/oshokin/property-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level when set.
	logLevel string
	// scanInterval overrides the configured scan interval when set.
	scanInterval string

	// rootCmd represents the base command for running the alarm sentry.
	rootCmd = &cobra.Command{
		Use:   "alarm-sentry",
		Short: "Run the property alarm detection service.",
		Long: `Starts the property alarm service: registers properties from configuration,
scans live actor positions against armed alarms, and raises notifications
when an intruder enters a detection zone.

When a broker is configured, actor presence, chat deliveries and the command
surface ride on MQTT; without one, deliveries are written to the log.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &sentry.Options{
				ConfigPath:   configPath,
				LogLevel:     logLevel,
				ScanInterval: scanInterval,
			}

			return sentry.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-sentry CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error, fatal)")
	rootCmd.Flags().StringVar(&scanInterval, "scan-interval", "", "scan interval override, e.g. 500ms")
}
