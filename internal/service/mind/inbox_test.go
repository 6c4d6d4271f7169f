package mind

import (
	"fmt"
	"sync"
	"testing"
)

func TestInbox_TakeEmptyReturnsNone(t *testing.T) {
	inbox := NewInbox()
	if _, ok := inbox.TakePending(); ok {
		t.Error("empty inbox must return no injection")
	}
}

func TestInbox_ExactlyOnceDelivery(t *testing.T) {
	inbox := NewInbox()
	inbox.Push("X")

	inj, ok := inbox.TakePending()
	if !ok || inj.Text != "X" {
		t.Fatalf("expected to take X, got %q ok=%v", inj.Text, ok)
	}

	if _, ok := inbox.TakePending(); ok {
		t.Error("a consumed injection must never be handed out twice")
	}
}

func TestInbox_FIFOOrder(t *testing.T) {
	inbox := NewInbox()
	inbox.Push("first")
	inbox.Push("second")
	inbox.Push("third")

	for _, want := range []string{"first", "second", "third"} {
		inj, ok := inbox.TakePending()
		if !ok || inj.Text != want {
			t.Fatalf("expected %q, got %q ok=%v", want, inj.Text, ok)
		}
	}
}

func TestInbox_Pending(t *testing.T) {
	inbox := NewInbox()
	if inbox.Pending() != 0 {
		t.Error("fresh inbox must have no pending entries")
	}
	inbox.Push("a")
	inbox.Push("b")
	if got := inbox.Pending(); got != 2 {
		t.Errorf("expected 2 pending, got %d", got)
	}
	inbox.TakePending()
	if got := inbox.Pending(); got != 1 {
		t.Errorf("expected 1 pending after take, got %d", got)
	}
}

func TestInbox_ConcurrentPushersNoLossNoDuplication(t *testing.T) {
	inbox := NewInbox()

	const pushers = 8
	const perPusher = 50

	var wg sync.WaitGroup
	for p := 0; p < pushers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPusher; i++ {
				inbox.Push(fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		inj, ok := inbox.TakePending()
		if !ok {
			break
		}
		if seen[inj.Text] {
			t.Fatalf("duplicate delivery of %q", inj.Text)
		}
		seen[inj.Text] = true
	}

	if len(seen) != pushers*perPusher {
		t.Errorf("expected %d injections, got %d", pushers*perPusher, len(seen))
	}
}
