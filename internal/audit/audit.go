package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-gateway/internal/events"
)

// Record is one audit entry describing a ticket creation attempt. Write-only;
// it has no lifecycle beyond emission to the configured sinks.
type Record struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Action            string    `json:"action"`
	RequesterName     string    `json:"requester_name,omitempty"`
	RequesterEmail    string    `json:"requester_email,omitempty"`
	RequesterUsername string    `json:"requester_username,omitempty"`
	TicketID          int       `json:"ticket_id,omitempty"`
	Subject           string    `json:"subject,omitempty"`
	AttachmentCount   int       `json:"attachment_count"`
	Error             string    `json:"error,omitempty"`
}

const ActionTicketCreate = "ticket.create"

// Recorder is the capability the ticket workflow uses to emit audit records.
// Implementations never return an error to the caller; a failing sink must
// not abort ticket creation.
type Recorder interface {
	Success(ctx context.Context, record Record)
	Failure(ctx context.Context, record Record)
}

// dispatcherRecorder publishes records as events so any number of sinks can
// subscribe without the workflow knowing about them.
type dispatcherRecorder struct {
	dispatcher events.Dispatcher
}

// NewRecorder builds a Recorder backed by the given dispatcher.
func NewRecorder(dispatcher events.Dispatcher) Recorder {
	return &dispatcherRecorder{dispatcher: dispatcher}
}

func (r *dispatcherRecorder) Success(ctx context.Context, record Record) {
	r.publish(ctx, events.EventTicketCreated, record)
}

func (r *dispatcherRecorder) Failure(ctx context.Context, record Record) {
	r.publish(ctx, events.EventTicketCreateFailed, record)
}

func (r *dispatcherRecorder) publish(ctx context.Context, eventType events.EventType, record Record) {
	if r.dispatcher == nil {
		return
	}
	record.ID = uuid.NewString()
	record.Timestamp = time.Now().UTC()
	record.Action = ActionTicketCreate
	_ = r.dispatcher.Publish(ctx, events.Event{
		ID:        record.ID,
		Type:      eventType,
		Timestamp: record.Timestamp,
		Payload:   record,
	})
}
