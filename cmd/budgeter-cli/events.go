package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgeter/internal/cli"
	"budgeter/internal/events"
	"budgeter/internal/format"
	"budgeter/internal/worker"
)

var flagQueue string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow ledger events published by the server",
	Long:  "Consume ledger events from AMQP_URL, print one line per event and a per-session table on exit.",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&flagQueue, "queue", "budgeter.events.cli", "Queue to bind to the ledger exchange")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if !cfg.EventsEnabled() {
		return errors.New("AMQP_URL is not set")
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	logger := newLogger()
	client, err := events.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	projector := worker.NewProjector(cmd.OutOrStdout(), logger)
	err = client.Consume(ctx, flagQueue, projector.Handler(ctx))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTotals(projector.Snapshot()))
	return nil
}

func renderTotals(totals []worker.SessionTotals) string {
	t := cli.Table{Headers: []string{"Session", "Updated", "Added", "Deleted", "Budget", "Expenses"}}
	for _, st := range totals {
		t.Rows = append(t.Rows, []string{
			st.SessionID,
			st.UpdatedAt.Format("15:04:05"),
			strconv.Itoa(st.Added),
			strconv.Itoa(st.Deleted),
			st.Budget,
			format.Percentage(st.ExpensePercentage),
		})
	}
	return cli.RenderTable(t)
}
