package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketdesk/cookie-auth/internal/events"
)

// StartAuditWorker subscribes an audit log sink to every auth event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			fields := []zap.Field{
				zap.String("event_id", e.ID),
				zap.String("event_type", string(e.Type)),
				zap.String("subject", e.Subject),
				zap.Time("at", e.Timestamp),
			}
			for k, v := range e.Attrs {
				fields = append(fields, zap.String(k, v))
			}
			audit.Info("auth event", fields...)
			return nil
		})
	}
}
