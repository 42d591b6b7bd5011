package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/nudge/cmd/nudge/commands"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "nudge",
		Short:         "Daily task reminders with persistent nudges",
		Long:          "nudge schedules a daily reminder per task, nudges hourly until the task is done, and reminds you of upcoming visits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunTUI(cmd.Context())
		},
	}

	rootCmd.AddCommand(commands.NewTUICommand())
	rootCmd.AddCommand(commands.NewDaemonCommand())
	rootCmd.AddCommand(commands.NewDoCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "nudge failed: %v\n", err)
		os.Exit(1)
	}
}
