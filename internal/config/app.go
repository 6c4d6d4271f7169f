package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ember/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"EMBER_RUNTIME_PATH" envDefault:".ember"`

	// Seed selection
	SeedName string `env:"EMBER_SEED" envDefault:"default"`
	SeedFile string `env:"EMBER_SEED_FILE"`

	// Loop tuning
	Interval      time.Duration `env:"EMBER_INTERVAL" envDefault:"0s"`
	CompressAt    int           `env:"EMBER_COMPRESS_AT" envDefault:"5000"`
	SizeMeasure   string        `env:"EMBER_SIZE_MEASURE" envDefault:"chars"`
	KeepRecent    int           `env:"EMBER_KEEP_RECENT" envDefault:"4"`
	DistillTail   int           `env:"EMBER_DISTILL_TAIL" envDefault:"2000"`
	MaxRetries    int           `env:"EMBER_MAX_RETRIES" envDefault:"3"`
	FatalFailures int           `env:"EMBER_FATAL_FAILURES" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "ember.db")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
