// Package mind runs the cognition loop: render the accumulated context,
// generate the next thought, record it, detect tool mentions, compress
// when the context outgrows its budget, fold in human input, repeat.
package mind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/internal/service/detect"
	"github.com/sandevgo/ember/internal/service/memory"
	"github.com/sandevgo/ember/pkg/log"
	"github.com/sandevgo/ember/pkg/retry"
)

type Config struct {
	// Interval is the pause between cycles. Zero means continuous
	// thinking.
	Interval time.Duration
	// FatalFailures is how many consecutive failed generation cycles the
	// driver tolerates before halting the process.
	FatalFailures int
	// Generation tunes the per-cycle completion call.
	Generation core.CompleteOptions
}

// Status is a point-in-time snapshot of the running mind, safe to read
// from any goroutine.
type Status struct {
	SessionID      string
	Model          string
	StartedAt      time.Time
	Thoughts       int
	Compressions   int
	TotalTokens    int
	AvgThoughtSec  float64
	ContextSize    int
	ContextRecords int
	Pending        int
	LastThoughtAt  time.Time
}

// Driver owns the context store and advances it one cycle at a time on a
// single goroutine. The only concurrent touchpoints are the inbox and
// the status snapshot. A stop signal is honored at cycle boundaries,
// never mid-generation.
type Driver struct {
	cfg       Config
	seed      core.SeedProfile
	gen       core.Generator
	store     *memory.ContextStore
	comp      *memory.Compressor
	inbox     *Inbox
	journal   core.Journal
	retrier   *retry.Retrier
	sessionID string
	model     string

	// OnThought, when set before Start, observes every committed record.
	// It runs on the driver goroutine.
	OnThought func(core.ThoughtRecord)

	failures int

	mu        sync.Mutex
	status    Status
	tail      string
	durations []float64
}

func NewDriver(
	cfg Config,
	seed core.SeedProfile,
	gen core.Generator,
	comp *memory.Compressor,
	inbox *Inbox,
	journal core.Journal,
	measure memory.Measure,
	sessionID string,
	model string,
) *Driver {
	if cfg.FatalFailures <= 0 {
		cfg.FatalFailures = 5
	}
	return &Driver{
		cfg:       cfg,
		seed:      seed,
		gen:       gen,
		store:     memory.NewContextStore(seed, measure),
		comp:      comp,
		inbox:     inbox,
		journal:   journal,
		retrier:   retry.NewDefaultRetrier(),
		sessionID: sessionID,
		model:     model,
		status: Status{
			SessionID: sessionID,
			Model:     model,
		},
	}
}

// SetRetrier swaps the backoff policy for the generation call.
func (d *Driver) SetRetrier(r *retry.Retrier) {
	d.retrier = r
}

// Start runs the loop until ctx is canceled. It returns an error only
// when consecutive generation failures cross the fatal threshold; the
// process then exits non-zero.
func (d *Driver) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	d.mu.Lock()
	d.status.StartedAt = time.Now()
	d.mu.Unlock()

	// The seed is record index 0; journal it so the session log is
	// complete from the first entry.
	for _, rec := range d.store.Last(1) {
		d.record(ctx, rec)
	}

	logger.Info().
		Str("session", d.sessionID).
		Str("seed", d.seed.Name).
		Dur("interval", d.cfg.Interval).
		Int("seed_size", d.store.Size()).
		Msg("cognition loop started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := d.cycle(ctx); err != nil {
			return err
		}

		if d.cfg.Interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(d.cfg.Interval):
			}
		}
	}
}

func (d *Driver) Shutdown(ctx context.Context) error {
	s := d.Status()
	log.FromCtx(ctx).Info().
		Str("session", s.SessionID).
		Dur("uptime", time.Since(s.StartedAt).Truncate(time.Second)).
		Int("thoughts", s.Thoughts).
		Int("compressions", s.Compressions).
		Int("total_tokens", s.TotalTokens).
		Float64("avg_thought_sec", s.AvgThoughtSec).
		Msg("cognition loop stopped")
	return nil
}

// cycle performs one full pass of the state machine: Rendering,
// Generating, Recording, Detecting, Compressing (conditional), leaving
// the Waiting state to the caller.
func (d *Driver) cycle(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	// Rendering. One pending injection, if any, rides along with this
	// prompt; it becomes a context record only after it has been used.
	prompt := d.store.Render()
	injection, injected := d.inbox.TakePending()
	if injected {
		prompt += injectionFrame(injection.Text)
	}

	// Generating.
	started := time.Now()
	var completion core.Completion
	err := d.retrier.Do(ctx, func() error {
		c, genErr := d.gen.Complete(ctx, prompt, d.cfg.Generation)
		if genErr == nil {
			completion = c
		}
		return genErr
	})

	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		d.failures++
		logger.Error().Err(err).
			Int("consecutive", d.failures).
			Msg("generation failed, skipping cycle")

		// Keep the injection: it becomes part of the context so the next
		// attempt still sees it.
		if injected {
			d.record(ctx, d.store.Append(core.ThoughtRecord{
				CreatedAt: injection.ReceivedAt,
				Origin:    core.OriginHuman,
				Text:      injectionFrame(injection.Text),
			}))
		}

		if d.failures >= d.cfg.FatalFailures {
			return fmt.Errorf("generation failed %d consecutive cycles: %w", d.failures, err)
		}
		d.snapshot()
		return nil
	}
	d.failures = 0
	elapsed := time.Since(started)

	// Recording. The human record lands before the model's reply,
	// preserving causal order.
	if injected {
		d.record(ctx, d.store.Append(core.ThoughtRecord{
			CreatedAt: injection.ReceivedAt,
			Origin:    core.OriginHuman,
			Text:      injectionFrame(injection.Text),
		}))
	}

	// Detecting happens against the index the record will occupy.
	rec := d.store.Append(core.ThoughtRecord{
		CreatedAt:   time.Now(),
		Origin:      core.OriginModel,
		Text:        completion.Text,
		Invocations: detect.Parse(completion.Text, d.store.NextIndex()),
	})
	d.record(ctx, rec)

	d.mu.Lock()
	d.status.Thoughts++
	d.status.TotalTokens += completion.Tokens
	d.status.LastThoughtAt = rec.CreatedAt
	d.durations = append(d.durations, elapsed.Seconds())
	d.mu.Unlock()

	for _, inv := range rec.Invocations {
		logger.Info().
			Str("kind", string(inv.Kind)).
			Str("argument", inv.Argument).
			Int("record", inv.SourceIndex).
			Msg("tool invocation detected")
	}

	// Compressing.
	if d.comp.ShouldCompress(d.store) {
		before := d.store.Size()
		summary := d.comp.Compress(ctx, d.store, d.seed)
		sumRec := d.store.Replace(summary)
		d.record(ctx, sumRec)

		d.mu.Lock()
		d.status.Compressions++
		d.mu.Unlock()

		logger.Info().
			Int("before", before).
			Int("after", d.store.Size()).
			Bool("fallback", summary.Fallback).
			Msg("context compressed")
	}

	d.snapshot()
	return nil
}

// record journals a committed record and notifies the display callback.
// Journal failures are logged and swallowed: a bad write must not stop
// the loop.
func (d *Driver) record(ctx context.Context, rec core.ThoughtRecord) {
	if d.journal != nil {
		if err := d.journal.Append(ctx, d.sessionID, rec, d.store.Size()); err != nil {
			log.FromCtx(ctx).Error().Err(err).Int("index", rec.Index).Msg("failed to journal record")
		}
	}
	if d.OnThought != nil {
		d.OnThought(rec)
	}
}

func (d *Driver) snapshot() {
	tail := tailRunes(d.store.Render(), 500)
	size := d.store.Size()
	records := d.store.Len()

	d.mu.Lock()
	d.status.ContextSize = size
	d.status.ContextRecords = records
	d.tail = tail
	d.mu.Unlock()
}

// Status returns the current snapshot. Safe from any goroutine.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.status
	s.Pending = d.inbox.Pending()
	if len(d.durations) > 0 {
		var sum float64
		for _, v := range d.durations {
			sum += v
		}
		s.AvgThoughtSec = sum / float64(len(d.durations))
	}
	return s
}

// ContextTail returns the end of the most recently committed context,
// for the shell's /context command.
func (d *Driver) ContextTail() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tail
}

func injectionFrame(text string) string {
	return "\n\n[human voice]: " + text + "\n\n[response]:\n"
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
