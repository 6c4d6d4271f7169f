package mind

import (
	"sync"
	"time"
)

// HumanInjection is text pushed in from outside the cognition loop,
// waiting to be folded into a future prompt.
type HumanInjection struct {
	Text       string
	ReceivedAt time.Time
}

type inboxEntry struct {
	injection HumanInjection
	consumed  bool
}

// Inbox is the concurrency-safe channel between the outside world and
// the cycle driver. Push may be called from any goroutine at any time;
// TakePending hands each injection out exactly once, oldest first.
type Inbox struct {
	mu      sync.Mutex
	entries []inboxEntry
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (b *Inbox) Push(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, inboxEntry{
		injection: HumanInjection{
			Text:       text,
			ReceivedAt: time.Now(),
		},
	})
}

// TakePending atomically marks the oldest unconsumed injection consumed
// and returns it. Consumed entries are pruned once taken.
func (b *Inbox) TakePending() (HumanInjection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].consumed {
			continue
		}
		b.entries[i].consumed = true
		inj := b.entries[i].injection
		b.prune()
		return inj, true
	}
	return HumanInjection{}, false
}

// Pending reports how many injections are waiting.
func (b *Inbox) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, e := range b.entries {
		if !e.consumed {
			n++
		}
	}
	return n
}

// prune drops consumed entries from the head. Callers hold the lock.
func (b *Inbox) prune() {
	i := 0
	for i < len(b.entries) && b.entries[i].consumed {
		i++
	}
	if i > 0 {
		b.entries = append(b.entries[:0], b.entries[i:]...)
	}
}
