package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sandeepkv93/nudge/internal/app"
	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/config"
	"github.com/sandeepkv93/nudge/internal/logger"
	"github.com/sandeepkv93/nudge/internal/notify"
	"github.com/sandeepkv93/nudge/internal/reminder"
	"github.com/sandeepkv93/nudge/internal/storage"
)

// runtime is everything a subcommand needs, wired from configuration.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	repo     *storage.SQLiteRepository
	center   *notify.Center
	registry *prometheus.Registry
	app      *app.App
}

func newRuntime(logOverride *config.LoggerConfig) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logCfg := cfg.Logger
	if logOverride != nil {
		logCfg = *logOverride
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	repo, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateUp(repo.DB()); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var sink notify.Sink = notify.NoopSink{}
	if cfg.Notify.Desktop {
		sink = notify.NewRateLimitedSink(notify.ExecSink{}, cfg.Notify.RatePerMinute, cfg.Notify.Burst)
	}
	clk := clock.Real{}
	center := notify.NewCenter(
		notify.WithClock(clk),
		notify.WithSink(sink),
		notify.WithLogger(log),
		notify.WithBuffer(cfg.Notify.Buffer),
	)

	// Muted stands in for a denied permission prompt.
	center.SetAuthorized(!cfg.Notify.Muted)
	if _, err := center.RequestAuthorization(context.Background()); err != nil {
		log.Warnw("alert permission request failed", "error", err)
	}

	registry := prometheus.NewRegistry()
	engine := reminder.NewEngine(clk, center,
		reminder.WithPolicy(reminder.PolicyFromConfig(cfg.Reminder)),
		reminder.WithLogger(log),
		reminder.WithMetrics(reminder.NewMetrics(registry)),
	)

	return &runtime{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		center:   center,
		registry: registry,
		app:      app.New(repo, engine, center, clk, app.WithLogger(log)),
	}, nil
}

func (r *runtime) Close() {
	r.center.Stop()
	if err := r.repo.Close(); err != nil {
		r.log.Warnw("failed to close storage", "error", err)
	}
	_ = r.log.Sync()
}
