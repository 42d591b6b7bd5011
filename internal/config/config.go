package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "NUDGE"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name" validate:"required"`
}

type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stderr file"`
	Filename string `mapstructure:"filename"`
}

type NotifyConfig struct {
	Desktop       bool    `mapstructure:"desktop"`
	Muted         bool    `mapstructure:"muted"`
	Buffer        int     `mapstructure:"buffer" validate:"min=1"`
	RatePerMinute float64 `mapstructure:"rate_per_minute" validate:"gt=0"`
	Burst         int     `mapstructure:"burst" validate:"min=1"`
}

type ReminderConfig struct {
	QuietStartHour  int           `mapstructure:"quiet_start_hour" validate:"min=0,max=23"`
	QuietEndHour    int           `mapstructure:"quiet_end_hour" validate:"min=0,max=23"`
	MaxNudges       int           `mapstructure:"max_nudges" validate:"min=0,max=23"`
	SnoozeMinutes   int           `mapstructure:"snooze_minutes" validate:"min=1"`
	DayBeforeHour   int           `mapstructure:"day_before_hour" validate:"min=0,max=23"`
	DayOfHour       int           `mapstructure:"day_of_hour" validate:"min=0,max=23"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func Default() Config {
	return Config{
		App:     AppConfig{Name: "nudge"},
		Storage: StorageConfig{Path: "nudge.db"},
		Logger:  LoggerConfig{Level: "info", Format: "console", Output: "stderr"},
		Notify: NotifyConfig{
			Desktop:       false,
			Buffer:        64,
			RatePerMinute: 6,
			Burst:         3,
		},
		Reminder: ReminderConfig{
			QuietStartHour:  23,
			QuietEndHour:    7,
			MaxNudges:       12,
			SnoozeMinutes:   30,
			DayBeforeHour:   9,
			DayOfHour:       7,
			RefreshInterval: time.Minute,
		},
		Metrics: MetricsConfig{Enabled: false, Addr: "127.0.0.1:9464"},
	}
}

// Load reads .env (if present) and NUDGE_* environment overrides on top of Default.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.output", d.Logger.Output)
	v.SetDefault("logger.filename", d.Logger.Filename)

	v.SetDefault("notify.desktop", d.Notify.Desktop)
	v.SetDefault("notify.muted", d.Notify.Muted)
	v.SetDefault("notify.buffer", d.Notify.Buffer)
	v.SetDefault("notify.rate_per_minute", d.Notify.RatePerMinute)
	v.SetDefault("notify.burst", d.Notify.Burst)

	v.SetDefault("reminder.quiet_start_hour", d.Reminder.QuietStartHour)
	v.SetDefault("reminder.quiet_end_hour", d.Reminder.QuietEndHour)
	v.SetDefault("reminder.max_nudges", d.Reminder.MaxNudges)
	v.SetDefault("reminder.snooze_minutes", d.Reminder.SnoozeMinutes)
	v.SetDefault("reminder.day_before_hour", d.Reminder.DayBeforeHour)
	v.SetDefault("reminder.day_of_hour", d.Reminder.DayOfHour)
	v.SetDefault("reminder.refresh_interval", d.Reminder.RefreshInterval)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Logger.Output == "file" && strings.TrimSpace(cfg.Logger.Filename) == "" {
		return fmt.Errorf("logger filename is required when output is file")
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Addr) == "" {
		return fmt.Errorf("metrics addr is required when metrics are enabled")
	}
	return nil
}
