package memory

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/pkg/log"
)

const openQuestionsHeading = "open questions:"

type CompressorConfig struct {
	// Threshold is the store size above which ShouldCompress fires.
	Threshold int
	// TailWindow bounds how much of the rendered context feeds the
	// distillation call.
	TailWindow int
	// KeepRecent is how many trailing records the deterministic fallback
	// retains when the distillation call fails.
	KeepRecent int

	MaxTokens   int
	Temperature float64
}

// Compressor shrinks the context store once it outgrows the threshold.
// The distillation itself is delegated to the generator; what the
// compressor guarantees is the retention contract: the seed's tool block
// always comes back verbatim, and a failed call degrades to truncation
// instead of leaving the store unbounded.
type Compressor struct {
	gen core.Generator
	cfg CompressorConfig
}

func NewCompressor(gen core.Generator, cfg CompressorConfig) *Compressor {
	if cfg.TailWindow <= 0 {
		cfg.TailWindow = 2000
	}
	if cfg.KeepRecent <= 0 {
		cfg.KeepRecent = 4
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	return &Compressor{gen: gen, cfg: cfg}
}

func (c *Compressor) ShouldCompress(store *ContextStore) bool {
	return store.Size() > c.cfg.Threshold
}

// Compress distills the current context into a summary. It never returns
// an error: when the generation call fails or yields nothing usable, the
// result is a deterministic truncation summary and a warning is logged.
func (c *Compressor) Compress(ctx context.Context, store *ContextStore, seed core.SeedProfile) core.CompressionSummary {
	logger := log.FromCtx(ctx)

	prompt := distillPrompt(tail(store.Render(), c.cfg.TailWindow))
	completion, err := c.gen.Complete(ctx, prompt, core.CompleteOptions{
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})

	var summary core.CompressionSummary
	if err != nil {
		logger.Warn().Err(err).Msg("distillation call failed, falling back to truncation")
		summary = c.truncate(store, seed)
	} else {
		summary = parseDistillation(completion.Text)
		if summary.RetainedCore == "" {
			logger.Warn().Msg("distillation returned no retained core, falling back to truncation")
			summary = c.truncate(store, seed)
		}
	}

	// The tool block survives compression by construction, not by model
	// cooperation. Losing it once loses tool awareness for good.
	if seed.HasToolBlock() {
		summary.ToolBlock = seed.ToolBlock
	}
	return summary
}

// truncate keeps the seed core plus the most recent records. Bounded and
// deterministic; the degraded path when the model cannot summarize.
func (c *Compressor) truncate(store *ContextStore, seed core.SeedProfile) core.CompressionSummary {
	parts := []string{strings.TrimSpace(seed.CoreText)}
	for _, rec := range store.Last(c.cfg.KeepRecent) {
		if rec.Origin == core.OriginSeed {
			continue
		}
		parts = append(parts, strings.TrimSpace(rec.Text))
	}
	return core.CompressionSummary{
		RetainedCore: strings.Join(parts, "\n"),
		Fallback:     true,
	}
}

func distillPrompt(contextTail string) string {
	var sb strings.Builder
	sb.WriteString("From the following stream of thought, extract only the essential insights and the questions that remain unresolved. ")
	sb.WriteString("No conclusions, no wrap-up. State the core insight, then list every unresolved question under the heading \"Open questions:\" as \"- \" bullets.\n\n")
	sb.WriteString("Thoughts:\n")
	sb.WriteString(contextTail)
	sb.WriteString("\n\nCore:")
	return sb.String()
}

// parseDistillation splits the model's answer into the retained core and
// the open-question bullets under the heading the prompt asked for.
func parseDistillation(text string) core.CompressionSummary {
	var summary core.CompressionSummary

	lines := strings.Split(text, "\n")
	inQuestions := false
	var coreLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, strings.TrimSuffix(openQuestionsHeading, ":")) ||
			strings.EqualFold(trimmed, openQuestionsHeading) {
			inQuestions = true
			continue
		}

		if inQuestions {
			q := strings.TrimSpace(strings.TrimLeft(trimmed, "-*• "))
			if q != "" {
				summary.OpenQuestions = append(summary.OpenQuestions, q)
			}
			continue
		}
		coreLines = append(coreLines, line)
	}

	summary.RetainedCore = strings.TrimSpace(strings.Join(coreLines, "\n"))
	return summary
}

// tail returns at most n bytes from the end of s without splitting a
// rune.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
