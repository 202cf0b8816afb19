package event

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/linefilter/internal/logging"
)

const doc = "/notes/todo.md"

func TestBus_DeliversPayload(t *testing.T) {
	bus := NewBus()

	var got []Event
	id := bus.Subscribe(TypeFilterChanged, func(e Event) { got = append(got, e) })
	if id == "" {
		t.Fatal("Subscribe returned an empty id")
	}
	if len(got) != 0 {
		t.Fatal("handler ran before anything was published")
	}

	bus.Publish(NewFilterChangedEvent(doc, "toggle", []string{"{{today}}"}, []string{"2024-02-14"}))

	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	changed, ok := got[0].(FilterChangedEvent)
	if !ok {
		t.Fatalf("got %T, want FilterChangedEvent", got[0])
	}
	if changed.DocumentID != doc || changed.Resolved[0] != "2024-02-14" {
		t.Errorf("unexpected payload: %+v", changed)
	}
}

func TestBus_RoutesByType(t *testing.T) {
	bus := NewBus()

	var visibility, failures int
	bus.Subscribe(TypeVisibilityChanged, func(Event) { visibility++ })
	bus.Subscribe(TypeVisibilityChanged, func(Event) { visibility++ })
	bus.Subscribe(TypeCompositionFailed, func(Event) { failures++ })

	bus.Publish(NewVisibilityChangedEvent(doc, []bool{false, true}, 1, true))
	bus.Publish(NewDocumentRenamedEvent(doc, "/notes/done.md"))

	if visibility != 2 {
		t.Errorf("visibility handlers ran %d times, want 2", visibility)
	}
	if failures != 0 {
		t.Errorf("composition handler ran for an unrelated event")
	}
}

func TestBus_WildcardRunsAfterTypedHandlers(t *testing.T) {
	bus := NewBus()

	var calls []string
	bus.SubscribeAll(func(e Event) { calls = append(calls, "all:"+e.EventType()) })
	bus.Subscribe(TypeScanRecovered, func(e Event) { calls = append(calls, "typed:"+e.EventType()) })

	bus.Publish(NewScanRecoveredEvent(doc, "index out of range", true))
	bus.Publish(NewSavedCatalogChangedEvent("item-1", "pin"))

	want := []string{
		"typed:" + TypeScanRecovered,
		"all:" + TypeScanRecovered,
		"all:" + TypeSavedCatalogChanged,
	}
	if !slices.Equal(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var first, second int
	id := bus.Subscribe(TypePersistenceFailed, func(Event) { first++ })
	bus.Subscribe(TypePersistenceFailed, func(Event) { second++ })

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe of a live id returned false")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe of the same id returned true")
	}
	if bus.Unsubscribe("missing") {
		t.Error("Unsubscribe of an unknown id returned true")
	}

	bus.Publish(NewPersistenceFailedEvent(doc, "set", errors.New("disk full")))

	if first != 0 || second != 1 {
		t.Errorf("first=%d second=%d, want 0 and 1", first, second)
	}
	if n := bus.SubscriptionCount(); n != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", n)
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	var id string
	calls := 0
	id = bus.Subscribe(TypeCompositionFailed, func(Event) {
		calls++
		bus.Unsubscribe(id)
	})
	bus.Subscribe(TypeCompositionFailed, func(Event) { calls++ })

	ev := NewCompositionFailedEvent(doc, errors.New("missing )"))
	bus.Publish(ev)
	bus.Publish(ev)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeFilterChanged, func(Event) {})
	bus.Subscribe(TypeVisibilityChanged, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if n := bus.SubscriptionCount(); n != 3 {
		t.Fatalf("SubscriptionCount() = %d, want 3", n)
	}
	bus.Clear()
	if n := bus.SubscriptionCount(); n != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", n)
	}
}

func TestBus_HandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWithWriter(&buf, logging.LevelError))

	calls := 0
	bus.Subscribe(TypeFilterChanged, func(Event) {
		calls++
		panic("renderer gone")
	})
	bus.Subscribe(TypeFilterChanged, func(Event) { calls++ })

	bus.Publish(NewFilterChangedEvent(doc, "clear", nil, nil))

	if calls != 2 {
		t.Errorf("calls = %d, want 2: a panicking handler must not stop the others", calls)
	}
	out := buf.String()
	if !strings.Contains(out, "event handler panicked") || !strings.Contains(out, "renderer gone") {
		t.Errorf("panic was not logged: %q", out)
	}

	// A bus without a logger still recovers
	quiet := NewBus()
	quiet.Subscribe(TypeFilterChanged, func(Event) { panic("x") })
	quiet.Publish(NewFilterChangedEvent(doc, "clear", nil, nil))
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeVisibilityChanged, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(NewVisibilityChangedEvent(doc, nil, 0, false))
		})
		wg.Go(func() {
			id := bus.Subscribe(TypeFilterChanged, func(Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("calls = %d, want 100", calls)
	}
	if n := bus.SubscriptionCount(); n != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", n)
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()

	seen := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe(TypeFilterChanged, func(Event) {})
		if seen[id] {
			t.Fatalf("duplicate subscription id %s", id)
		}
		seen[id] = true
	}
}
