package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ticketdesk/cookie-auth/internal/events"
)

func TestAuditWorkerLogsEveryEventType(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	StartAuditWorker(dispatcher, zap.New(core))

	for _, eventType := range events.AllEventTypes {
		dispatcher.Publish(context.Background(), events.NewEvent(eventType, "alice", map[string]string{"reason": "test"}))
	}

	entries := logs.FilterMessage("auth event").All()
	if len(entries) != len(events.AllEventTypes) {
		t.Fatalf("expected %d audit lines, got %d", len(events.AllEventTypes), len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["subject"] != "alice" || fields["reason"] != "test" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
