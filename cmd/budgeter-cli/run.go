package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"budgeter/internal/cli"
)

var flagFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read ledger commands from a file or stdin",
	Long:  "Read ledger commands line by line and print the ledger after each change.\n\n" + cli.Usage,
	RunE:  runCommands,
}

func init() {
	runCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Command file (default: stdin)")
	rootCmd.AddCommand(runCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), cli.Usage)
	return runFrom(cmd, cmd.InOrStdin())
}

func runCommands(cmd *cobra.Command, _ []string) error {
	if flagFile == "" || flagFile == "-" {
		return runFrom(cmd, cmd.InOrStdin())
	}
	f, err := os.Open(flagFile)
	if err != nil {
		return fmt.Errorf("open command file: %w", err)
	}
	defer f.Close()
	return runFrom(cmd, f)
}

func runFrom(cmd *cobra.Command, in io.Reader) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	logger := newLogger()
	svc, closeEvents := newService(ctx, logger)
	defer closeEvents()

	err := cli.NewRunner(svc, cmd.OutOrStdout(), logger).Run(ctx, in)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
