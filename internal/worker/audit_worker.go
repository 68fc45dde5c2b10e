package worker

import (
	"context"

	"github.com/spec-kit/helpdesk-gateway/internal/events"
)

// AuditSink is anything that can consume audit events.
type AuditSink interface {
	Handle(ctx context.Context, event events.Event) error
}

// StartAuditWorker subscribes the configured sinks to ticket audit events.
func StartAuditWorker(dispatcher events.Dispatcher, sinks ...AuditSink) {
	if dispatcher == nil {
		return
	}
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		dispatcher.Subscribe(events.EventTicketCreated, sink.Handle)
		dispatcher.Subscribe(events.EventTicketCreateFailed, sink.Handle)
	}
}
