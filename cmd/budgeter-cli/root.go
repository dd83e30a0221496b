package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"budgeter/internal/cli"
	"budgeter/internal/events"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

var (
	flagLogLevel string
	flagNoEvents bool
)

var rootCmd = &cobra.Command{
	Use:   "budgeter-cli",
	Short: "Monthly budget ledger in the terminal",
	Long:  "Track incomes and expenses for the month: budget, totals and the share of income each expense takes.",
	RunE:  runInteractive,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cli.LoadEnvFile()

	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoEvents, "no-events", false, "Do not publish ledger events even when AMQP_URL is set")
}

// newLogger sends logs to stderr so they never mix with the rendered ledger.
func newLogger() *log.Logger {
	return cli.SetupLogger(flagLogLevel, os.Stderr)
}

// newService builds the ledger service. Events are published when AMQP_URL is
// configured; invalid settings or a broker that cannot be reached only cost a warning.
func newService(ctx context.Context, logger *log.Logger) (*services.BudgetService, func()) {
	if flagNoEvents || os.Getenv("AMQP_URL") == "" {
		return services.NewBudgetService(nil, logger), func() {}
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Warn("Ledger events disabled", log.FieldError, err.Error(), "error_type", log.ErrorTypeConfiguration)
		return services.NewBudgetService(nil, logger), func() {}
	}

	client, err := events.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Warn("Ledger events disabled",
			log.FieldError, err.Error(),
			"error_type", log.ErrorTypeNetwork)
		return services.NewBudgetService(nil, logger), func() {}
	}
	return services.NewBudgetService(client, logger), func() { _ = client.Close() }
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
