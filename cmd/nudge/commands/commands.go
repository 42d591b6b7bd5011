package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/config"
	"github.com/sandeepkv93/nudge/internal/storage"
	"github.com/sandeepkv93/nudge/internal/update"
	"github.com/spf13/cobra"
)

// NewTUICommand creates the interactive terminal UI command
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task screen (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(cmd.Context())
		},
	}
}

// NewDaemonCommand creates the headless delivery command
func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Deliver reminders in the background",
		Long:  "Run rollover at startup and every local midnight, deliver alerts to the desktop and optionally expose metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

// NewDoCommand creates the one-shot command runner
func NewDoCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "do <command>",
		Short:   "Run one command, e.g. nudge do add 09:00 Prenatal vitamin",
		Args:    cobra.MinimumNArgs(1),
		Example: "  nudge do add 09:00 Prenatal vitamin\n  nudge do done vitamin\n  nudge do visit 2026-11-02T10:00 Ultrasound",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			if _, err := rt.app.Foreground(ctx); err != nil {
				return err
			}
			res, err := rt.app.Run(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, storage.MigrateUp, "up")
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Apply all down migrations, dropping every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, storage.MigrateDown, "down")
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the newest applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, func(db *sql.DB) error {
				v, err := storage.Version(db)
				if err != nil {
					return err
				}
				if v == "" {
					v = "none"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %s\n", v)
				return nil
			}, "version")
		},
	})
	return migrateCmd
}

func RunTUI(ctx context.Context) error {
	// The TUI owns the terminal; logs go to a file or nowhere.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logCfg := cfg.Logger
	if logCfg.Output != "file" {
		logCfg = config.LoggerConfig{Level: "error", Format: "json", Output: "file", Filename: "nudge.log"}
	}

	rt, err := newRuntime(&logCfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.center.Start()
	program := tea.NewProgram(
		update.NewModel(rt.app,
			update.WithDeliveries(rt.center.C()),
			update.WithBadge(rt.center),
			update.WithClock(clock.Real{}),
			update.WithRefreshInterval(rt.cfg.Reminder.RefreshInterval),
		),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runDaemon(ctx context.Context) error {
	rt, err := newRuntime(nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.log.WithComponent("daemon")

	if rt.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: rt.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server stopped", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
		log.Infow("serving metrics", "addr", rt.cfg.Metrics.Addr)
	}

	rt.center.Start()
	if _, err := rt.app.Foreground(ctx); err != nil {
		return err
	}
	log.Infow("daemon started", "db", rt.cfg.Storage.Path)

	refresh := rt.cfg.Reminder.RefreshInterval
	if refresh <= 0 {
		refresh = time.Hour
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	midnight := time.NewTimer(untilMidnight(time.Now()))
	defer midnight.Stop()

	deliveries := rt.center.C()
	for {
		select {
		case <-ctx.Done():
			log.Infow("daemon stopping")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			log.Infow("alert delivered", "alert_id", d.ID, "title", d.Payload.Title)
		case <-ticker.C:
			if _, err := rt.app.Foreground(ctx); err != nil {
				log.Errorw("refresh failed", "error", err)
			}
		case <-midnight.C:
			if _, err := rt.app.Foreground(ctx); err != nil {
				log.Errorw("midnight rollover failed", "error", err)
			}
			midnight.Reset(untilMidnight(time.Now()))
		}
	}
}

func runMigration(cmd *cobra.Command, apply func(db *sql.DB) error, direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := apply(repo.DB()); err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}
	if direction != "version" {
		fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
	}
	return nil
}

// untilMidnight is the wait until the next local day starts, plus a second
// so rollover observes the new date.
func untilMidnight(now time.Time) time.Duration {
	next := clock.StartOfDay(now).AddDate(0, 0, 1)
	return next.Sub(now) + time.Second
}

