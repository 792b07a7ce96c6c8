package server

import (
	"testing"
	"time"
)

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	eb := NewEventBroadcaster()

	ch1 := eb.Subscribe("job-1")
	ch2 := eb.Subscribe("job-1")
	other := eb.Subscribe("job-2")

	event := ProgressEvent{JobID: "job-1", State: StateRunning, BestSum: 1.0, Timestamp: time.Now()}
	eb.Broadcast(event)

	for i, ch := range []chan ProgressEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.BestSum != 1.0 {
				t.Errorf("subscriber %d got %+v", i, got)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}

	select {
	case got := <-other:
		t.Errorf("job-2 subscriber received job-1 event: %+v", got)
	default:
	}
}

func TestBroadcasterReplaysLastEvent(t *testing.T) {
	eb := NewEventBroadcaster()

	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateRunning, BestSum: 2.5, Timestamp: time.Now()})

	// A late subscriber immediately sees the last event.
	ch := eb.Subscribe("job-1")
	select {
	case got := <-ch:
		if got.BestSum != 2.5 {
			t.Errorf("replayed event = %+v", got)
		}
	default:
		t.Error("late subscriber received no replay")
	}
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job-1")
	eb.Unsubscribe("job-1", ch)

	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}

	// Broadcasting after unsubscribe must not panic.
	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateCompleted, Timestamp: time.Now()})

	// Double unsubscribe is a no-op.
	eb.Unsubscribe("job-1", ch)
}

func TestBroadcasterSkipsFullChannels(t *testing.T) {
	eb := NewEventBroadcaster()
	ch := eb.Subscribe("job-1")

	// Channel capacity is 10; overfilling must not block Broadcast.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 25; i++ {
			eb.Broadcast(ProgressEvent{JobID: "job-1", Evals: i, Timestamp: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a full channel")
	}

	if len(ch) != 10 {
		t.Errorf("channel holds %d events, want 10", len(ch))
	}
}
