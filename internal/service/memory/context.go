// Package memory holds the accumulating cognition context and the
// compression machinery that keeps it bounded.
package memory

import (
	"strings"
	"time"

	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/pkg/tokens"
)

// Measure converts record text into the size unit the compression
// trigger compares against its threshold.
type Measure func(string) int

func CharMeasure(text string) int {
	return len(text)
}

func TokenMeasure(text string) int {
	return tokens.Count(text)
}

// MeasureByName maps the configured size measure to its function,
// defaulting to characters.
func MeasureByName(name string) Measure {
	if name == "tokens" {
		return TokenMeasure
	}
	return CharMeasure
}

// ContextStore is the ordered log of thought records plus a running size
// measure. It is mutated only by the cycle driver's goroutine, so it
// carries no lock. The store is never empty: the seed's core text is
// record index 0.
type ContextStore struct {
	records []core.ThoughtRecord
	size    int
	measure Measure
	nextIdx int
}

func NewContextStore(seed core.SeedProfile, measure Measure) *ContextStore {
	if measure == nil {
		measure = CharMeasure
	}
	s := &ContextStore{measure: measure}
	s.Append(core.ThoughtRecord{
		CreatedAt: time.Now(),
		Origin:    core.OriginSeed,
		Text:      seed.CoreText,
	})
	return s
}

// Append commits a record to the end of the context. The store assigns
// the index; records are immutable afterwards.
func (s *ContextStore) Append(rec core.ThoughtRecord) core.ThoughtRecord {
	rec.Index = s.nextIdx
	s.nextIdx++
	s.records = append(s.records, rec)
	s.size += s.measure(rendered(rec))
	return rec
}

// Render produces the prompt the generator consumes: every record's text
// in order, each terminated by a newline. Deterministic for a given
// state.
func (s *ContextStore) Render() string {
	var sb strings.Builder
	for _, rec := range s.records {
		sb.WriteString(rendered(rec))
	}
	return sb.String()
}

func (s *ContextStore) Size() int {
	return s.size
}

func (s *ContextStore) Len() int {
	return len(s.records)
}

// NextIndex is the index the next appended record will receive. The
// detector needs it before the record exists, since records are
// immutable once committed.
func (s *ContextStore) NextIndex() int {
	return s.nextIdx
}

// Last returns the n most recent records, newest last.
func (s *ContextStore) Last(n int) []core.ThoughtRecord {
	if n <= 0 || len(s.records) == 0 {
		return nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]core.ThoughtRecord, n)
	copy(out, s.records[len(s.records)-n:])
	return out
}

// Replace atomically swaps the full context for a single synthesized
// record built from the summary. Index numbering restarts at zero. This
// is the only operation that can shrink the store, and only the
// compressor calls it.
func (s *ContextStore) Replace(summary core.CompressionSummary) core.ThoughtRecord {
	rec := core.ThoughtRecord{
		CreatedAt: time.Now(),
		Origin:    core.OriginSummary,
		Text:      renderSummary(summary),
	}

	s.records = s.records[:0]
	s.size = 0
	s.nextIdx = 0
	return s.Append(rec)
}

func rendered(rec core.ThoughtRecord) string {
	if strings.HasSuffix(rec.Text, "\n") {
		return rec.Text
	}
	return rec.Text + "\n"
}

// renderSummary lays out the post-compression context: tool definitions
// first (verbatim from the seed), then the retained core, then whatever
// questions are still open, then an invitation to continue.
func renderSummary(summary core.CompressionSummary) string {
	var sb strings.Builder

	if summary.ToolBlock != "" {
		sb.WriteString(summary.ToolBlock)
		sb.WriteString("\n\n")
	}

	sb.WriteString("[memory core]: ")
	sb.WriteString(strings.TrimSpace(summary.RetainedCore))
	sb.WriteString("\n")

	if len(summary.OpenQuestions) > 0 {
		sb.WriteString("\nOpen questions:\n")
		for _, q := range summary.OpenQuestions {
			sb.WriteString("- ")
			sb.WriteString(q)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nWhat lies further on. Keep exploring, using the tools where they help:\n")
	return sb.String()
}
