package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/events"
)

// ZapSink writes audit records to the structured log. It is the default sink
// and is always registered.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink builds the sink.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.Named("audit")}
}

// Handle logs one audit event.
func (s *ZapSink) Handle(ctx context.Context, event events.Event) error {
	record, ok := event.Payload.(Record)
	if !ok {
		return nil
	}
	fields := []zap.Field{
		zap.String("audit_id", record.ID),
		zap.String("action", record.Action),
		zap.String("requester_name", record.RequesterName),
		zap.String("requester_email", record.RequesterEmail),
		zap.String("subject", record.Subject),
		zap.Int("attachment_count", record.AttachmentCount),
	}
	if event.Type == events.EventTicketCreated {
		s.logger.Info("ticket created", append(fields, zap.Int("ticket_id", record.TicketID))...)
		return nil
	}
	s.logger.Warn("ticket creation failed", append(fields, zap.String("error", record.Error))...)
	return nil
}
