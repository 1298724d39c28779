// Package config loads nagd settings from defaults, an optional YAML file
// and NAGD_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "NAGD"
	configName     = "nagd"
	appDirName     = "nagd"
	databaseName   = "nagd.db"
	DefaultLogFile = "nagd.log"
)

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Log           LogConfig           `mapstructure:"log" validate:"required"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler" validate:"required"`
	Quotes        QuotesConfig        `mapstructure:"quotes" validate:"required"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
	// File is where logs go while the TUI owns the terminal. Empty means
	// nagd.log next to the database.
	File string `mapstructure:"file"`
}

type SchedulerConfig struct {
	LoopInterval time.Duration `mapstructure:"loop_interval" validate:"gt=0"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	// RetryDelay re-arms the loop after a failed run; zero disables retries.
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	Buffer     int           `mapstructure:"buffer" validate:"gt=0"`
	LockFile   string        `mapstructure:"lock_file"`
}

type QuotesConfig struct {
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type NotificationsConfig struct {
	Desktop bool `mapstructure:"desktop"`
}

func (c Config) LogFilePath() string {
	if strings.TrimSpace(c.Log.File) != "" {
		return c.Log.File
	}
	return filepath.Join(filepath.Dir(c.Database.Path), DefaultLogFile)
}

func (c Config) LockFilePath() string {
	if strings.TrimSpace(c.Scheduler.LockFile) != "" {
		return c.Scheduler.LockFile
	}
	return c.Database.Path + ".lock"
}

func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDirName)
	}
	return "."
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(DefaultDataDir(), databaseName))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("scheduler.loop_interval", 5*time.Minute)
	v.SetDefault("scheduler.initial_delay", time.Minute)
	v.SetDefault("scheduler.retry_delay", time.Minute)
	v.SetDefault("scheduler.buffer", 64)
	v.SetDefault("scheduler.lock_file", "")
	v.SetDefault("quotes.endpoint", "https://bible-api.com")
	v.SetDefault("quotes.timeout", 6*time.Second)
	v.SetDefault("notifications.desktop", true)
}

// Load reads configuration. When file is empty, nagd.yaml is looked up in
// the working directory and the data directory; a missing file is fine.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDataDir())
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
