package mind

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/internal/service/memory"
	"github.com/sandevgo/ember/pkg/retry"
)

type scriptedGenerator struct {
	mu      sync.Mutex
	reply   string
	failFor int // first N calls fail
	calls   int
	prompts []string
}

func (g *scriptedGenerator) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.calls <= g.failFor {
		return core.Completion{}, errors.New("server unavailable")
	}
	return core.Completion{Text: g.reply, Tokens: 5}, nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *scriptedGenerator) promptAt(i int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i >= len(g.prompts) {
		return ""
	}
	return g.prompts[i]
}

type capturingJournal struct {
	mu      sync.Mutex
	records []core.ThoughtRecord
}

func (j *capturingJournal) Append(ctx context.Context, sessionID string, rec core.ThoughtRecord, contextSize int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

func (j *capturingJournal) byOrigin(origin core.Origin) []core.ThoughtRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []core.ThoughtRecord
	for _, r := range j.records {
		if r.Origin == origin {
			out = append(out, r)
		}
	}
	return out
}

func fastRetrier(maxRetries int) *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	})
}

func driverSeed() core.SeedProfile {
	return core.SeedProfile{
		Name:     "test",
		CoreText: "I am thinking now.\n",
		ToolBlock: "Available tools:\n- [TOOL:search:query]\n" +
			"You may use these naturally in your thinking. Permission is not needed.",
	}
}

// newTestDriver wires a driver with a generous compression threshold so
// compression stays out of the way unless a test lowers it.
func newTestDriver(gen core.Generator, journal core.Journal, cfg Config, threshold int) (*Driver, *Inbox) {
	comp := memory.NewCompressor(gen, memory.CompressorConfig{Threshold: threshold, KeepRecent: 2})
	inbox := NewInbox()
	d := NewDriver(cfg, driverSeed(), gen, comp, inbox, journal, memory.CharMeasure, "test-session", "test-model")
	d.SetRetrier(fastRetrier(1))
	return d, inbox
}

// runUntil starts the driver and cancels it once stop returns true for a
// committed record. Returns the driver error.
func runUntil(t *testing.T, d *Driver, stop func(core.ThoughtRecord) bool) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d.OnThought = func(rec core.ThoughtRecord) {
		if stop(rec) {
			cancel()
		}
	}

	return d.Start(ctx)
}

func TestDriver_TenCyclesProduceElevenRecords(t *testing.T) {
	gen := &scriptedGenerator{reply: "a fixed thought"}
	journal := &capturingJournal{}
	d, _ := newTestDriver(gen, journal, Config{Interval: 0}, 1<<30)

	modelCount := 0
	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		if rec.Origin == core.OriginModel {
			modelCount++
		}
		return modelCount >= 10
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	if got := len(journal.byOrigin(core.OriginModel)); got != 10 {
		t.Errorf("expected exactly 10 model records, got %d", got)
	}
	if got := len(journal.byOrigin(core.OriginSeed)); got != 1 {
		t.Errorf("expected exactly 1 seed record, got %d", got)
	}
	journal.mu.Lock()
	total := len(journal.records)
	journal.mu.Unlock()
	if total != 11 {
		t.Errorf("expected 11 records total, got %d", total)
	}
}

func TestDriver_InjectionVisibleExactlyOnce(t *testing.T) {
	gen := &scriptedGenerator{reply: "a reply"}
	journal := &capturingJournal{}
	d, inbox := newTestDriver(gen, journal, Config{Interval: 0}, 1<<30)

	inbox.Push("X")

	modelCount := 0
	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		if rec.Origin == core.OriginModel {
			modelCount++
		}
		return modelCount >= 2
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	// Cycle 1's prompt carries the pending injection.
	if got := strings.Count(gen.promptAt(0), "[human voice]: X"); got != 1 {
		t.Errorf("expected injection once in first prompt, got %d", got)
	}
	// Cycle 2 sees it only as a recorded part of the context, not as a
	// fresh pending injection.
	if got := strings.Count(gen.promptAt(1), "[human voice]: X"); got != 1 {
		t.Errorf("expected injection once in second prompt, got %d", got)
	}
	if inbox.Pending() != 0 {
		t.Error("injection must be consumed")
	}

	// Causal order: the human record precedes the model reply.
	humans := journal.byOrigin(core.OriginHuman)
	if len(humans) != 1 {
		t.Fatalf("expected 1 human record, got %d", len(humans))
	}
	models := journal.byOrigin(core.OriginModel)
	if humans[0].Index >= models[0].Index {
		t.Errorf("human record (index %d) must precede the model reply (index %d)",
			humans[0].Index, models[0].Index)
	}
}

func TestDriver_OneFailureThenSuccessRetriesOnce(t *testing.T) {
	gen := &scriptedGenerator{reply: "recovered thought", failFor: 1}
	journal := &capturingJournal{}
	d, _ := newTestDriver(gen, journal, Config{Interval: 0, FatalFailures: 5}, 1<<30)

	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		return rec.Origin == core.OriginModel
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	if got := gen.callCount(); got != 2 {
		t.Errorf("expected exactly 2 generation calls (1 failure + 1 retry), got %d", got)
	}
	if got := len(journal.byOrigin(core.OriginModel)); got != 1 {
		t.Errorf("expected exactly 1 recorded thought, got %d", got)
	}
}

func TestDriver_FatalAfterConsecutiveFailures(t *testing.T) {
	gen := &scriptedGenerator{failFor: 1 << 30}
	d, _ := newTestDriver(gen, &capturingJournal{}, Config{Interval: 0, FatalFailures: 3}, 1<<30)
	d.SetRetrier(fastRetrier(0))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := d.Start(ctx)
	if err == nil {
		t.Fatal("expected a fatal error after consecutive failures")
	}
	if !strings.Contains(err.Error(), "3 consecutive cycles") {
		t.Errorf("fatal error must report the failure count, got %q", err.Error())
	}
}

func TestDriver_CompressionTriggersAndIsJournaled(t *testing.T) {
	gen := &scriptedGenerator{reply: strings.Repeat("an expansive rambling thought ", 10)}
	journal := &capturingJournal{}
	d, _ := newTestDriver(gen, journal, Config{Interval: 0}, 600)

	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		return rec.Origin == core.OriginSummary
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	if d.Status().Compressions < 1 {
		t.Error("expected at least one compression")
	}
	summaries := journal.byOrigin(core.OriginSummary)
	if len(summaries) < 1 {
		t.Fatal("expected a journaled summary record")
	}
	// The tool block must survive compression in the synthesized record.
	if !strings.Contains(summaries[0].Text, "Available tools:") {
		t.Error("summary record must carry the tool block verbatim")
	}
}

func TestDriver_InvocationsDetectedOnModelRecords(t *testing.T) {
	gen := &scriptedGenerator{reply: "I should look this up [TOOL:search:strange loops]"}
	journal := &capturingJournal{}
	d, _ := newTestDriver(gen, journal, Config{Interval: 0}, 1<<30)

	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		return rec.Origin == core.OriginModel
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	models := journal.byOrigin(core.OriginModel)
	if len(models) == 0 {
		t.Fatal("expected a model record")
	}
	rec := models[0]
	if len(rec.Invocations) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(rec.Invocations))
	}
	inv := rec.Invocations[0]
	if inv.Kind != core.ToolSearch || inv.Argument != "strange loops" {
		t.Errorf("unexpected invocation: %+v", inv)
	}
	if inv.SourceIndex != rec.Index {
		t.Errorf("invocation source index %d must match record index %d", inv.SourceIndex, rec.Index)
	}
}

func TestDriver_StatusAccumulates(t *testing.T) {
	gen := &scriptedGenerator{reply: "counting thoughts"}
	d, _ := newTestDriver(gen, &capturingJournal{}, Config{Interval: 0}, 1<<30)

	modelCount := 0
	err := runUntil(t, d, func(rec core.ThoughtRecord) bool {
		if rec.Origin == core.OriginModel {
			modelCount++
		}
		return modelCount >= 3
	})
	if err != nil {
		t.Fatalf("unexpected driver error: %v", err)
	}

	s := d.Status()
	if s.Thoughts != 3 {
		t.Errorf("expected 3 thoughts, got %d", s.Thoughts)
	}
	if s.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", s.TotalTokens)
	}
	if s.ContextSize == 0 || s.ContextRecords < 4 {
		t.Errorf("context snapshot not updated: %+v", s)
	}
	if d.ContextTail() == "" {
		t.Error("context tail must be populated after a cycle")
	}
}
