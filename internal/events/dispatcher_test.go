package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var got []string
	d.Subscribe(EventUserSignedIn, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return errors.New("sink unavailable")
	})
	d.Subscribe(EventUserSignedIn, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventUserSignedOut, func(_ context.Context, e Event) error {
		t.Fatal("unrelated subscriber invoked")
		return nil
	})

	event := NewEvent(EventUserSignedIn, "alice", nil)
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Fatalf("event not stamped: %+v", event)
	}
	d.Publish(context.Background(), event)

	if len(got) != 2 || got[0] != "first:alice" || got[1] != "second:alice" {
		t.Fatalf("unexpected deliveries %v", got)
	}
	if logs.FilterMessage("event handler failed").Len() != 1 {
		t.Fatal("expected failing handler to be logged")
	}
}
