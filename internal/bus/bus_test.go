package bus

import "testing"

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()

	var got []int
	b.Subscribe("position-update", func(Event) { got = append(got, 1) })
	b.Subscribe("position-update", func(Event) { got = append(got, 2) })
	b.Subscribe("position-update", func(Event) { got = append(got, 3) })

	b.Publish(Event{Topic: "position-update"})

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("expected delivery order [1 2 3], got %v", got)
	}
}

func TestPublishOtherTopicNotDelivered(t *testing.T) {
	b := New()

	called := false
	b.Subscribe("phase-change", func(Event) { called = true })

	b.Publish(Event{Topic: "position-update"})

	if called {
		t.Error("handler for phase-change should not receive position-update")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()

	count := 0
	cancel := b.Subscribe("phase-change", func(Event) { count++ })

	b.Publish(Event{Topic: "phase-change"})
	cancel()
	b.Publish(Event{Topic: "phase-change"})

	if count != 1 {
		t.Errorf("expected 1 delivery after cancel, got %d", count)
	}
	if n := b.SubscriberCount("phase-change"); n != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", n)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	b := New()

	cancel1 := b.Subscribe("error", func(Event) {})
	b.Subscribe("error", func(Event) {})

	cancel1()
	cancel1() // Second call must not remove the remaining subscription

	if n := b.SubscriberCount("error"); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}

func TestEventCarriesMissionAndPayload(t *testing.T) {
	b := New()

	var got Event
	b.Subscribe("position-update", func(e Event) { got = e })

	b.Publish(Event{Topic: "position-update", Mission: "artemis-ii", Payload: 42})

	if got.Mission != "artemis-ii" {
		t.Errorf("mission = %q, want %q", got.Mission, "artemis-ii")
	}
	if got.Payload != 42 {
		t.Errorf("payload = %v, want 42", got.Payload)
	}
}
