package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ember/pkg/log"
)

type LLMConfig struct {
	BaseURL string `env:"EMBER_URL" envDefault:"http://localhost:1234"`
	APIKey  string `env:"EMBER_API_KEY"`
	// Model may stay empty: the client then uses whatever the server
	// reports first on /v1/models.
	Model string `env:"EMBER_MODEL"`

	MaxTokens   int     `env:"EMBER_MAX_TOKENS" envDefault:"256"`
	Temperature float64 `env:"EMBER_TEMPERATURE" envDefault:"0.85"`

	CompressMaxTokens   int     `env:"EMBER_COMPRESS_MAX_TOKENS" envDefault:"300"`
	CompressTemperature float64 `env:"EMBER_COMPRESS_TEMPERATURE" envDefault:"0.5"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
