package bus

import (
	"sync"
	"testing"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()

	var got []string
	b.Subscribe("discovery.response", func(e Event) {
		got = append(got, e.Payload.(string))
	})

	b.Publish(Event{Kind: "discovery.response", Payload: "a"})
	b.Publish(Event{Kind: "discovery.response", Payload: "b"})
	b.Publish(Event{Kind: "monitor.response", Payload: "ignored"})

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestPublishWithNoSubscribersDoesNothing(t *testing.T) {
	b := New()
	b.Publish(Event{Kind: "nobody.listens"})
}

// A handler that subscribes a new handler for the same kind must not
// deadlock and must not see its own registration mid-dispatch.
func TestSubscribeFromWithinHandlerDoesNotDeadlock(t *testing.T) {
	b := New()

	var mu sync.Mutex
	firstRoundCount := 0

	b.Subscribe("k", func(e Event) {
		mu.Lock()
		firstRoundCount++
		mu.Unlock()

		b.Subscribe("k", func(Event) {})
	})

	b.Publish(Event{Kind: "k"})

	mu.Lock()
	defer mu.Unlock()
	if firstRoundCount != 1 {
		t.Fatalf("expected the original handler to run exactly once, got %d", firstRoundCount)
	}

	if len(b.subs["k"]) != 2 {
		t.Fatalf("expected the late subscription to land, got %d handlers", len(b.subs["k"]))
	}
}
