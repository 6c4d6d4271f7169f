package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sandevgo/ember/internal/config"
	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/internal/providers/llm"
	"github.com/sandevgo/ember/internal/service/memory"
	"github.com/sandevgo/ember/internal/service/mind"
	"github.com/sandevgo/ember/internal/service/seed"
	"github.com/sandevgo/ember/internal/storage/sqlite"
	"github.com/sandevgo/ember/internal/transport/cli"
	"github.com/sandevgo/ember/pkg/log"
	"github.com/sandevgo/ember/pkg/retry"
	"github.com/sandevgo/ember/pkg/srv"
)

// Overrides carries the run-command flags the user explicitly set.
type Overrides struct {
	SeedName   *string
	SeedFile   *string
	URL        *string
	Interval   *time.Duration
	CompressAt *int
	NoShell    bool
}

func NewServices(ctx context.Context, o Overrides, stop func()) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.NewAppConfig(ctx).RuntimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// Configuration (re-parsed after .env so the file takes effect).
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	applyOverrides(appCfg, llmCfg, o)

	// Seed profile.
	profile, err := loadSeed(appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load seed")
	}
	if profile.HasToolBlock() {
		logger.Info().Str("seed", profile.Name).Msg("seed carries tool definitions")
	}

	// Storage.
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	journal := sqlite.NewThoughtJournal(db)

	// Generation client. When no model is configured, take whatever the
	// server reports first; this doubles as the reachability check.
	client := llm.NewClient(llmCfg.BaseURL, llmCfg.APIKey, llmCfg.Model)
	if client.Model() == "" {
		models, err := client.Models(ctx)
		if err != nil || len(models) == 0 {
			logger.Fatal().Err(err).Str("url", llmCfg.BaseURL).
				Msg("completion server unreachable or has no model loaded")
		}
		client.SetModel(models[0])
	}
	logger.Info().Str("url", llmCfg.BaseURL).Str("model", client.Model()).Msg("connected to completion server")

	// Compression.
	compressor := memory.NewCompressor(client, memory.CompressorConfig{
		Threshold:   appCfg.CompressAt,
		TailWindow:  appCfg.DistillTail,
		KeepRecent:  appCfg.KeepRecent,
		MaxTokens:   llmCfg.CompressMaxTokens,
		Temperature: llmCfg.CompressTemperature,
	})

	// The cognition loop itself.
	inbox := mind.NewInbox()
	driver := mind.NewDriver(
		mind.Config{
			Interval:      appCfg.Interval,
			FatalFailures: appCfg.FatalFailures,
			Generation: core.CompleteOptions{
				MaxTokens:   llmCfg.MaxTokens,
				Temperature: llmCfg.Temperature,
			},
		},
		profile,
		client,
		compressor,
		inbox,
		journal,
		memory.MeasureByName(appCfg.SizeMeasure),
		uuid.NewString(),
		client.Model(),
	)
	driver.SetRetrier(retry.NewRetrier(&retry.Config{
		MaxRetries:    appCfg.MaxRetries,
		BackoffFactor: 2.0,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      15 * time.Second,
		Jitter:        100 * time.Millisecond,
	}))
	driver.OnThought = newThoughtPrinter()
	services = append(services, driver)

	// Shell.
	if !o.NoShell {
		shell, err := cli.NewShell(appCfg, driver, inbox, stop)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize shell")
		}
		services = append(services, shell)
	}

	return services
}

func applyOverrides(appCfg *config.AppConfig, llmCfg *config.LLMConfig, o Overrides) {
	if o.SeedName != nil {
		appCfg.SeedName = *o.SeedName
	}
	if o.SeedFile != nil {
		appCfg.SeedFile = *o.SeedFile
	}
	if o.URL != nil {
		llmCfg.BaseURL = *o.URL
	}
	if o.Interval != nil {
		appCfg.Interval = *o.Interval
	}
	if o.CompressAt != nil {
		appCfg.CompressAt = *o.CompressAt
	}
}

func loadSeed(cfg *config.AppConfig) (core.SeedProfile, error) {
	if cfg.SeedFile != "" {
		return seed.Load(cfg.SeedFile)
	}
	return seed.Builtin(cfg.SeedName)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
