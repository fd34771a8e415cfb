package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/treetranslate/internal/cli"
	"codeberg.org/snonux/treetranslate/internal/models"
	"codeberg.org/snonux/treetranslate/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)
	historyCmd := cli.CreateHistoryCommand(flags)
	rootCmd.AddCommand(historyCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ResolveFlags(flags)
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), flags)
	}
	historyCmd.RunE = func(cmd *cobra.Command, args []string) error {
		runID := ""
		if len(args) > 0 {
			runID = args[0]
		}
		return processor.NewProcessor(flags).ShowHistory(cmd.Context(), runID)
	}

	// Ctrl-C stops the run after the file in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, flags *cli.Flags) error {
	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(flags.Provider, cli.GetAPIKey(flags.Provider))
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	summary, err := processor.NewProcessor(flags).Run(ctx)
	if err != nil {
		return err
	}

	if summary.Cancelled {
		fmt.Fprintln(os.Stderr, "Interrupted, files already written are kept")
	}
	return nil
}
